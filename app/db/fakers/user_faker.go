package fakers

import (
	"fmt"
	"strings"

	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
)

// DemoPassword is the password of every faked customer.
const DemoPassword = "password123"

func UserFaker() services.CreateUserInput {
	first, last := faker.FirstName(), faker.LastName()
	email := fmt.Sprintf("%s.%s.%s@example.com", strings.ToLower(first), strings.ToLower(last), uuid.NewString()[:6])

	return services.CreateUserInput{
		Name:                 first + " " + last,
		Email:                email,
		Password:             DemoPassword,
		PasswordConfirmation: DemoPassword,
	}
}

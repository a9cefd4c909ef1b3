package fakers

import (
	"math"
	"math/rand"
	"strings"

	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFaker builds a filler product for load testing the listing.
func ProductFaker(categoryID uint) services.ProductInput {
	word := faker.Word()
	name := strings.ToUpper(word[:1]) + word[1:] + " " + strings.ToUpper(uuid.NewString()[:4])
	description := faker.Sentence()
	active := rand.Intn(5) > 0

	return services.ProductInput{
		CategoryID:  categoryID,
		Name:        name,
		Description: &description,
		Price:       decimal.NewFromFloat(fakePrice()),
		Stock:       rand.Intn(50),
		IsActive:    &active,
	}
}

func fakePrice() float64 {
	return precision(5+rand.Float64()*math.Pow10(rand.Intn(3)+1), 2)
}

func precision(val float64, pre int) float64 {
	a := math.Pow10(pre)
	return float64(int(val*a)) / a
}

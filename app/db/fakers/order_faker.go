package fakers

import (
	"fmt"
	"math/rand"

	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/go-faker/faker/v4"
)

func ShippingAddressFaker() string {
	addr := faker.GetRealAddress()
	return fmt.Sprintf("%s, %s %s", addr.Address, addr.PostalCode, addr.City)
}

// OrderLinesFaker picks one to three distinct products.
func OrderLinesFaker(products []models.Product) []services.NewOrderLine {
	if len(products) == 0 {
		return nil
	}
	count := rand.Intn(3) + 1
	if count > len(products) {
		count = len(products)
	}

	lines := make([]services.NewOrderLine, 0, count)
	for _, i := range rand.Perm(len(products))[:count] {
		lines = append(lines, services.NewOrderLine{
			ProductID: products[i].ID,
			Quantity:  rand.Intn(3) + 1,
		})
	}
	return lines
}

func OrderStatusFaker() string {
	return models.OrderStatuses[rand.Intn(len(models.OrderStatuses))]
}

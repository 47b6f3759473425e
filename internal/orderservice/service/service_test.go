package service_test

import (
	"testing"
	"time"

	"dinehub/internal/orderservice/service"
	"dinehub/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func tenPercentPromo() *models.Promotion {
	return &models.Promotion{
		ID:            1,
		Code:          "SAVE10",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		MinOrderValue: decimal.NewFromInt(20),
		MaxUses:       100,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
		IsActive:      true,
	}
}

func TestComputeTotalsNoExtras(t *testing.T) {
	items := []models.OrderItemRequest{
		{Name: "Burger", Quantity: 2, UnitPrice: 10.00},
		{Name: "Pizza", Quantity: 1, UnitPrice: 30.00},
	}

	totals := service.ComputeTotals(items, decimal.Zero, nil, 0, decimal.Zero)

	assert.Equal(t, "50.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", totals.Tax.StringFixed(2))
	assert.Equal(t, "0.00", totals.Discount.StringFixed(2))
	assert.Equal(t, "50.00", totals.Total.StringFixed(2))
}

func TestComputeTotalsPromotion(t *testing.T) {
	items := []models.OrderItemRequest{
		{Name: "Burger", Quantity: 2, UnitPrice: 10.00},
		{Name: "Pizza", Quantity: 1, UnitPrice: 30.00},
	}

	totals := service.ComputeTotals(items, decimal.Zero, tenPercentPromo(), 0, decimal.Zero)

	assert.Equal(t, "5.00", totals.Discount.StringFixed(2))
	assert.Equal(t, "45.00", totals.Total.StringFixed(2))
}

func TestComputeTotalsTax(t *testing.T) {
	items := []models.OrderItemRequest{
		{Name: "Pizza", Quantity: 1, UnitPrice: 30.00},
	}

	totals := service.ComputeTotals(items, decimal.NewFromFloat(0.10), nil, 0, decimal.Zero)

	assert.Equal(t, "30.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "3.00", totals.Tax.StringFixed(2))
	assert.Equal(t, "33.00", totals.Total.StringFixed(2))
}

func TestComputeTotalsModifierCost(t *testing.T) {
	items := []models.OrderItemRequest{
		{Name: "Burger", Quantity: 2, UnitPrice: 10.00, ModifierCost: 1.50},
	}

	totals := service.ComputeTotals(items, decimal.Zero, nil, 0, decimal.Zero)

	assert.Equal(t, "21.50", totals.Subtotal.StringFixed(2))
}

func TestComputeTotalsPointsRedemption(t *testing.T) {
	items := []models.OrderItemRequest{
		{Name: "Pizza", Quantity: 1, UnitPrice: 30.00},
	}

	totals := service.ComputeTotals(items, decimal.Zero, nil, 200, decimal.NewFromFloat(0.01))

	assert.Equal(t, "2.00", totals.Discount.StringFixed(2))
	assert.Equal(t, "28.00", totals.Total.StringFixed(2))
}

func TestComputeTotalsStackedDiscounts(t *testing.T) {
	items := []models.OrderItemRequest{
		{Name: "Burger", Quantity: 2, UnitPrice: 10.00},
		{Name: "Pizza", Quantity: 1, UnitPrice: 30.00},
	}

	totals := service.ComputeTotals(items, decimal.NewFromFloat(0.10), tenPercentPromo(), 100, decimal.NewFromFloat(0.01))

	// subtotal 50, tax 5, promo 5, points 1
	assert.Equal(t, "6.00", totals.Discount.StringFixed(2))
	assert.Equal(t, "49.00", totals.Total.StringFixed(2))
}

func TestComputeTotalsClampedAtZero(t *testing.T) {
	items := []models.OrderItemRequest{
		{Name: "Soda", Quantity: 1, UnitPrice: 2.00},
	}
	promo := tenPercentPromo()
	promo.DiscountType = models.DiscountFixed
	promo.DiscountValue = decimal.NewFromInt(5)

	totals := service.ComputeTotals(items, decimal.Zero, promo, 500, decimal.NewFromFloat(0.01))

	assert.Equal(t, "0.00", totals.Total.StringFixed(2))
}

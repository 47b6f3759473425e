package validation_test

import (
	"strings"
	"testing"

	"dinehub/internal/orderservice/validation"
	"dinehub/pkg/models"

	"github.com/stretchr/testify/assert"
)

func validRequest() *models.CreateOrderRequest {
	table := 5
	return &models.CreateOrderRequest{
		BranchID:    1,
		OrderType:   models.OrderTypeDineIn,
		TableNumber: &table,
		Items: []models.OrderItemRequest{
			{Name: "Margherita", Quantity: 1, UnitPrice: 12.50},
		},
	}
}

func TestValidateOrder(t *testing.T) {
	longInstructions := strings.Repeat("x", 501)
	badTable := 250
	customerID := int64(7)

	tests := []struct {
		name    string
		mutate  func(req *models.CreateOrderRequest)
		wantErr string
	}{
		{"valid dine_in", func(req *models.CreateOrderRequest) {}, ""},
		{"valid takeaway", func(req *models.CreateOrderRequest) {
			req.OrderType = models.OrderTypeTakeaway
			req.TableNumber = nil
		}, ""},
		{"missing branch", func(req *models.CreateOrderRequest) { req.BranchID = 0 }, "branch_id"},
		{"bad order type", func(req *models.CreateOrderRequest) { req.OrderType = "delivery" }, "order_type"},
		{"dine_in without table", func(req *models.CreateOrderRequest) { req.TableNumber = nil }, "table_number"},
		{"table out of range", func(req *models.CreateOrderRequest) { req.TableNumber = &badTable }, "table_number"},
		{"takeaway with table", func(req *models.CreateOrderRequest) {
			req.OrderType = models.OrderTypeTakeaway
		}, "table_number"},
		{"no items", func(req *models.CreateOrderRequest) { req.Items = nil }, "items"},
		{"too many items", func(req *models.CreateOrderRequest) {
			req.Items = make([]models.OrderItemRequest, 21)
			for i := range req.Items {
				req.Items[i] = models.OrderItemRequest{Name: "Item", Quantity: 1, UnitPrice: 1.00}
			}
		}, "items"},
		{"empty item name", func(req *models.CreateOrderRequest) { req.Items[0].Name = "" }, "name"},
		{"zero quantity", func(req *models.CreateOrderRequest) { req.Items[0].Quantity = 0 }, "quantity"},
		{"free item", func(req *models.CreateOrderRequest) { req.Items[0].UnitPrice = 0 }, "unit_price"},
		{"negative modifier", func(req *models.CreateOrderRequest) { req.Items[0].ModifierCost = -1 }, "modifier_cost"},
		{"negative points", func(req *models.CreateOrderRequest) { req.PointsToRedeem = -10 }, "points_to_redeem"},
		{"points without customer", func(req *models.CreateOrderRequest) { req.PointsToRedeem = 100 }, "customer_id"},
		{"points with customer", func(req *models.CreateOrderRequest) {
			req.PointsToRedeem = 100
			req.CustomerID = &customerID
		}, ""},
		{"instructions too long", func(req *models.CreateOrderRequest) {
			req.SpecialInstructions = &longInstructions
		}, "special_instructions"},
	}

	v := validation.NewOrderValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := v.Validate(req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

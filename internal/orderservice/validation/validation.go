package validation

import (
	"errors"
	"unicode/utf8"

	"dinehub/pkg/models"
)

type OrderValidator struct{}

func NewOrderValidator() *OrderValidator {
	return &OrderValidator{}
}

func (v *OrderValidator) Validate(req *models.CreateOrderRequest) error {
	if req.BranchID <= 0 {
		return errors.New("branch_id is required")
	}

	if err := v.validateOrderType(req.OrderType); err != nil {
		return err
	}

	if err := v.validateItems(req.Items); err != nil {
		return err
	}

	switch req.OrderType {
	case models.OrderTypeDineIn:
		if req.TableNumber == nil {
			return errors.New("table_number is required for dine_in orders")
		}
		if *req.TableNumber < 1 || *req.TableNumber > 200 {
			return errors.New("table_number must be between 1 and 200")
		}
	case models.OrderTypeTakeaway:
		if req.TableNumber != nil {
			return errors.New("table_number must not be present for takeaway orders")
		}
	}

	if req.PointsToRedeem < 0 {
		return errors.New("points_to_redeem must not be negative")
	}
	if req.PointsToRedeem > 0 && req.CustomerID == nil {
		return errors.New("customer_id is required to redeem points")
	}

	if req.SpecialInstructions != nil && utf8.RuneCountInString(*req.SpecialInstructions) > 500 {
		return errors.New("special_instructions must be at most 500 characters")
	}

	return nil
}

func (v *OrderValidator) validateOrderType(orderType string) error {
	switch orderType {
	case models.OrderTypeDineIn, models.OrderTypeTakeaway:
		return nil
	default:
		return errors.New("order_type must be one of: dine_in, takeaway")
	}
}

func (v *OrderValidator) validateItems(items []models.OrderItemRequest) error {
	if len(items) < 1 || len(items) > 20 {
		return errors.New("items must contain between 1 and 20 items")
	}

	for _, item := range items {
		if utf8.RuneCountInString(item.Name) < 1 || utf8.RuneCountInString(item.Name) > 100 {
			return errors.New("item name must be between 1 and 100 characters")
		}
		if item.Quantity < 1 || item.Quantity > 20 {
			return errors.New("item quantity must be between 1 and 20")
		}
		if item.UnitPrice < 0.01 || item.UnitPrice > 9999.99 {
			return errors.New("item unit_price must be between 0.01 and 9999.99")
		}
		if item.ModifierCost < 0 {
			return errors.New("item modifier_cost must not be negative")
		}
	}

	return nil
}

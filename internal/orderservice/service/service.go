package service

import (
	"context"
	"encoding/json"
	"fmt"

	"dinehub/internal/loyalty"
	odb "dinehub/internal/orderservice/db"
	"dinehub/internal/promotion"
	"dinehub/pkg/config"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"
	"dinehub/pkg/rabbitmq"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	dbPool      *pgxpool.Pool
	dbService   *odb.OrderDB
	validator   *promotion.Validator
	ledger      *loyalty.Ledger
	rabbitMQ    *rabbitmq.RabbitMQ
	taxRate     decimal.Decimal
	redeemValue decimal.Decimal
	logger      *logger.Logger
}

func NewOrderService(dbPool *pgxpool.Pool, rmq *rabbitmq.RabbitMQ, cfg *config.Config, log *logger.Logger) *OrderService {
	return &OrderService{
		dbPool:      dbPool,
		dbService:   odb.NewOrderDB(dbPool, log),
		validator:   promotion.NewValidator(dbPool),
		ledger:      loyalty.NewLedger(dbPool, log),
		rabbitMQ:    rmq,
		taxRate:     decimal.NewFromFloat(cfg.Order.TaxRate),
		redeemValue: decimal.NewFromFloat(cfg.Loyalty.RedeemValue),
		logger:      log,
	}
}

// Totals is the priced breakdown of an order before persistence.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals prices the request items and applies tax, an optional
// promotion discount and an optional points-redemption discount.
// total = subtotal + tax - discount, never below zero.
func ComputeTotals(items []models.OrderItemRequest, taxRate decimal.Decimal, promo *models.Promotion, pointsToRedeem int, redeemValue decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.UnitPrice).
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Add(decimal.NewFromFloat(item.ModifierCost))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)

	discount := decimal.Zero
	if promo != nil {
		discount = discount.Add(promotion.Discount(promo, subtotal))
	}
	if pointsToRedeem > 0 {
		discount = discount.Add(redeemValue.Mul(decimal.NewFromInt(int64(pointsToRedeem))).Round(2))
	}

	total := subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{Subtotal: subtotal, Tax: tax, Discount: discount, Total: total}
}

func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, requestID string) (*models.CreateOrderResponse, error) {
	var promo *models.Promotion
	if req.PromoCode != nil && *req.PromoCode != "" {
		subtotal := requestSubtotal(req.Items)
		p, err := s.validator.Validate(ctx, *req.PromoCode, subtotal)
		if err != nil {
			return nil, fmt.Errorf("promotion %s: %w", *req.PromoCode, err)
		}
		promo = p
	}

	// Soft sufficiency check for a friendly error at placement time;
	// settlement re-validates against the live balance.
	if req.PointsToRedeem > 0 {
		customer, err := s.ledger.GetCustomer(ctx, s.dbPool, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer.PointsBalance < req.PointsToRedeem {
			return nil, loyalty.ErrInsufficientPoints
		}
	}

	totals := ComputeTotals(req.Items, s.taxRate, promo, req.PointsToRedeem, s.redeemValue)

	newOrder := &odb.NewOrder{
		BranchID:            req.BranchID,
		CustomerID:          req.CustomerID,
		TableNumber:         req.TableNumber,
		OrderType:           req.OrderType,
		Subtotal:            totals.Subtotal,
		Tax:                 totals.Tax,
		Discount:            totals.Discount,
		Total:               totals.Total,
		PointsRedeemed:      req.PointsToRedeem,
		PaymentMethod:       req.PaymentMethod,
		SpecialInstructions: req.SpecialInstructions,
		Items:               buildItems(req.Items),
	}
	if promo != nil {
		newOrder.PromotionID = &promo.ID
	}

	orderID, orderNumber, err := s.dbService.Create(ctx, newOrder)
	if err != nil {
		s.logger.Error(requestID, "order_creation_failed", "Failed to create order in database", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Debug(requestID, "order_created", fmt.Sprintf("Order %s created with ID %d", orderNumber, orderID))

	s.publishOrderMessage(orderNumber, newOrder, requestID)

	return &models.CreateOrderResponse{
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Status:      models.StatusPending,
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		Discount:    totals.Discount,
		Total:       totals.Total,
	}, nil
}

// ValidatePromotion surfaces discounts to the customer before placement.
func (s *OrderService) ValidatePromotion(ctx context.Context, code string, orderTotal decimal.Decimal) *models.ValidatePromotionResponse {
	promo, err := s.validator.Validate(ctx, code, orderTotal)
	if err != nil {
		return &models.ValidatePromotionResponse{
			Valid:    false,
			Reason:   err.Error(),
			Discount: decimal.Zero,
		}
	}
	return &models.ValidatePromotionResponse{
		Valid:    true,
		Code:     promo.Code,
		Discount: promotion.Discount(promo, orderTotal),
	}
}

func (s *OrderService) AdjustPoints(ctx context.Context, customerID int64, delta int, reason string) error {
	return s.ledger.Adjust(ctx, customerID, delta, reason)
}

func requestSubtotal(items []models.OrderItemRequest) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.UnitPrice).
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Add(decimal.NewFromFloat(item.ModifierCost))
		subtotal = subtotal.Add(line)
	}
	return subtotal.Round(2)
}

func buildItems(reqItems []models.OrderItemRequest) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(reqItems))
	for _, item := range reqItems {
		unitPrice := decimal.NewFromFloat(item.UnitPrice)
		modifierCost := decimal.NewFromFloat(item.ModifierCost)
		items = append(items, models.OrderItem{
			ItemName:     item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    unitPrice,
			ModifierCost: modifierCost,
			Subtotal:     unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Add(modifierCost).Round(2),
		})
	}
	return items
}

func (s *OrderService) publishOrderMessage(orderNumber string, order *odb.NewOrder, requestID string) {
	if s.rabbitMQ == nil {
		return
	}
	msg := models.OrderMessage{
		OrderNumber: orderNumber,
		OrderType:   order.OrderType,
		BranchID:    order.BranchID,
		TableNumber: order.TableNumber,
		Items:       order.Items,
		Total:       order.Total,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(requestID, "order_message_marshal_failed", "Failed to marshal order message", err)
		return
	}
	routingKey := fmt.Sprintf("kitchen.%s", order.OrderType)
	if err := s.rabbitMQ.PublishMessage(rabbitmq.OrdersExchange, routingKey, body); err != nil {
		// Order is persisted; the kitchen display falls back to polling.
		s.logger.Error(requestID, "order_message_publish_failed", "Failed to publish order message", err)
	}
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Transitions between them are governed by the
// kitchen service's state machine.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusServed    = "served"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order types
const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
)

// Payment statuses
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Promotion discount types
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Points transaction types
const (
	PointsEarned   = "earned"
	PointsRedeemed = "redeemed"
	PointsAdjusted = "adjusted"
	PointsExpired  = "expired"
)

type Order struct {
	ID                  int64           `json:"id"`
	OrderNumber         string          `json:"order_number"`
	BranchID            int64           `json:"branch_id"`
	CustomerID          *int64          `json:"customer_id,omitempty"`
	TableNumber         *int            `json:"table_number,omitempty"`
	OrderType           string          `json:"order_type"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	Tax                 decimal.Decimal `json:"tax"`
	Discount            decimal.Decimal `json:"discount"`
	Total               decimal.Decimal `json:"total"`
	PointsEarned        int             `json:"points_earned"`
	PointsRedeemed      int             `json:"points_redeemed"`
	PromotionID         *int64          `json:"promotion_id,omitempty"`
	PaymentMethod       *string         `json:"payment_method,omitempty"`
	PaymentStatus       string          `json:"payment_status"`
	Status              string          `json:"status"`
	StartedAt           *time.Time      `json:"started_at,omitempty"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	PrepTimeSeconds     *int            `json:"prep_time_seconds,omitempty"`
	SettledAt           *time.Time      `json:"settled_at,omitempty"`
	SpecialInstructions *string         `json:"special_instructions,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ItemName     string          `json:"item_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ModifierCost decimal.Decimal `json:"modifier_cost"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Customer struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	PointsBalance int             `json:"points_balance"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	TotalOrders   int             `json:"total_orders"`
	Tier          string          `json:"tier"`
	LastOrderAt   *time.Time      `json:"last_order_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PointsTransaction struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	OrderID     *int64    `json:"order_id,omitempty"`
	Points      int       `json:"points"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type LoyaltyTier struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	MinPoints        int             `json:"min_points"`
	PointsMultiplier decimal.Decimal `json:"points_multiplier"`
}

type Promotion struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	MaxUses       int             `json:"max_uses"`
	UsedCount     int             `json:"used_count"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	IsActive      bool            `json:"is_active"`
}

type OrderStatusLog struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
	Notes     *string   `json:"notes,omitempty"`
}

type CreateOrderRequest struct {
	BranchID            int64              `json:"branch_id"`
	CustomerID          *int64             `json:"customer_id,omitempty"`
	OrderType           string             `json:"order_type"`
	TableNumber         *int               `json:"table_number,omitempty"`
	Items               []OrderItemRequest `json:"items"`
	PromoCode           *string            `json:"promo_code,omitempty"`
	PointsToRedeem      int                `json:"points_to_redeem,omitempty"`
	PaymentMethod       *string            `json:"payment_method,omitempty"`
	SpecialInstructions *string            `json:"special_instructions,omitempty"`
}

type OrderItemRequest struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	ModifierCost float64 `json:"modifier_cost,omitempty"`
}

type CreateOrderResponse struct {
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

type TransitionRequest struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by"`
}

type ValidatePromotionRequest struct {
	Code       string  `json:"code"`
	OrderTotal float64 `json:"order_total"`
}

type ValidatePromotionResponse struct {
	Valid    bool            `json:"valid"`
	Reason   string          `json:"reason,omitempty"`
	Code     string          `json:"code,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}

type AdjustPointsRequest struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

type PrepTimeStats struct {
	AvgSeconds float64 `json:"avg_seconds"`
	MinSeconds int     `json:"min_seconds"`
	MaxSeconds int     `json:"max_seconds"`
	Total      int     `json:"total"`
}

type OrderStatusResponse struct {
	OrderNumber     string     `json:"order_number"`
	CurrentStatus   string     `json:"current_status"`
	UpdatedAt       time.Time  `json:"updated_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	PrepTimeSeconds *int       `json:"prep_time_seconds,omitempty"`
}

type OrderHistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ChangedBy string    `json:"changed_by"`
}

type KitchenQueueEntry struct {
	OrderNumber    string `json:"order_number"`
	OrderType      string `json:"order_type"`
	TableNumber    *int   `json:"table_number,omitempty"`
	Status         string `json:"status"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
}

// OrderMessage is published to the orders topic exchange when an order
// is placed, so kitchen displays pick it up without polling.
type OrderMessage struct {
	OrderNumber string          `json:"order_number"`
	OrderType   string          `json:"order_type"`
	BranchID    int64           `json:"branch_id"`
	TableNumber *int            `json:"table_number,omitempty"`
	Items       []OrderItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
}

// StatusUpdateMessage is published to the notifications fanout exchange
// on every successful status transition.
type StatusUpdateMessage struct {
	OrderNumber string    `json:"order_number"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	ChangedBy   string    `json:"changed_by"`
	Timestamp   time.Time `json:"timestamp"`
}

package settlement

import (
	"context"
	"fmt"
	"time"

	"dinehub/internal/loyalty"
	"dinehub/internal/promotion"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Error wraps the underlying cause of a failed settlement. The caller
// rolls back, leaving the order in its pre-completion status.
type Error struct {
	Cause error
}

func (e *Error) Error() string { return "settlement failed: " + e.Cause.Error() }
func (e *Error) Unwrap() error { return e.Cause }

// Plan is the precomputed outcome of settling one order against one
// customer: what to debit, what to credit, and the resulting tier.
type Plan struct {
	Debit       int
	Credit      int
	NewBalance  int
	NewTier     string
	TierChanged bool
}

// BuildPlan re-validates points sufficiency against the live balance and
// computes the earn from the order total and the customer's current tier
// multiplier. Pure; does not touch the store.
func BuildPlan(order *models.Order, customer *models.Customer, tiers []models.LoyaltyTier) (Plan, error) {
	if order.PointsRedeemed > customer.PointsBalance {
		return Plan{}, loyalty.ErrInsufficientPoints
	}

	credit := order.PointsEarned
	if credit == 0 {
		credit = earnedPoints(order.Total, multiplierFor(customer.PointsBalance, tiers))
	}

	newBalance := customer.PointsBalance - order.PointsRedeemed + credit
	newTier := loyalty.TierFor(newBalance, tiers)

	return Plan{
		Debit:       order.PointsRedeemed,
		Credit:      credit,
		NewBalance:  newBalance,
		NewTier:     newTier.Name,
		TierChanged: newTier.Name != customer.Tier,
	}, nil
}

// earnedPoints accrues one point per whole currency unit, scaled by the
// tier multiplier and truncated.
func earnedPoints(total decimal.Decimal, multiplier decimal.Decimal) int {
	return int(total.Mul(multiplier).IntPart())
}

func multiplierFor(balance int, tiers []models.LoyaltyTier) decimal.Decimal {
	tier := loyalty.TierFor(balance, tiers)
	if tier.PointsMultiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return tier.PointsMultiplier
}

// Engine applies the financial and loyalty consequences of a completed
// order as one all-or-nothing unit inside the caller's transaction.
type Engine struct {
	ledger *loyalty.Ledger
	logger *logger.Logger
}

func NewEngine(ledger *loyalty.Ledger, log *logger.Logger) *Engine {
	return &Engine{ledger: ledger, logger: log}
}

// Settle runs the settlement steps in the given transaction. It is
// idempotent per order: an order already carrying a settlement marker is
// a no-op. Any step failing returns a *Error and the caller must roll
// the transaction back.
func (e *Engine) Settle(ctx context.Context, tx pgx.Tx, order *models.Order, requestID string) error {
	if order.SettledAt != nil {
		e.logger.Debug(requestID, "settlement_skipped",
			fmt.Sprintf("Order %s already settled at %s", order.OrderNumber, order.SettledAt.Format(time.RFC3339)))
		return nil
	}

	// The settled_at guard is re-checked in SQL so two racing
	// settlements cannot both pass the in-memory check above.
	tag, err := tx.Exec(ctx, `
        UPDATE orders
        SET payment_status = CASE WHEN payment_status = 'pending' THEN 'paid' ELSE payment_status END,
            settled_at = now(),
            updated_at = now()
        WHERE id = $1 AND settled_at IS NULL
    `, order.ID)
	if err != nil {
		return &Error{Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	if order.CustomerID != nil {
		if err := e.settleCustomer(ctx, tx, order); err != nil {
			return &Error{Cause: err}
		}
	}

	if order.PromotionID != nil {
		if err := promotion.Redeem(ctx, tx, *order.PromotionID); err != nil {
			return &Error{Cause: err}
		}
	}

	e.logger.Info(requestID, "settlement_completed",
		fmt.Sprintf("Settled order %s", order.OrderNumber))
	return nil
}

func (e *Engine) settleCustomer(ctx context.Context, tx pgx.Tx, order *models.Order) error {
	customer, err := e.ledger.GetCustomerForUpdate(ctx, tx, *order.CustomerID)
	if err != nil {
		return err
	}
	tiers, err := e.ledger.Tiers(ctx, tx)
	if err != nil {
		return err
	}

	plan, err := BuildPlan(order, customer, tiers)
	if err != nil {
		return err
	}

	if plan.Debit > 0 {
		err = e.ledger.Debit(ctx, tx, customer.ID, &order.ID, plan.Debit,
			fmt.Sprintf("Redeemed on order %s", order.OrderNumber))
		if err != nil {
			return err
		}
	}
	if plan.Credit > 0 {
		err = e.ledger.Credit(ctx, tx, customer.ID, &order.ID, plan.Credit,
			fmt.Sprintf("Earned on order %s", order.OrderNumber))
		if err != nil {
			return err
		}
	}

	if order.PointsEarned != plan.Credit {
		_, err = tx.Exec(ctx, `
            UPDATE orders SET points_earned = $1 WHERE id = $2
        `, plan.Credit, order.ID)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
        UPDATE customers
        SET total_orders = total_orders + 1,
            total_spent = total_spent + $1,
            last_order_at = now(),
            tier = CASE WHEN $2 <> '' THEN $2 ELSE tier END
        WHERE id = $3
    `, order.Total, plan.NewTier, customer.ID)
	return err
}

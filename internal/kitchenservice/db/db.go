package db

import (
	"context"
	"errors"
	"time"

	"dinehub/internal/kitchenservice/statemachine"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrConcurrentModification = errors.New("order was modified concurrently")
)

type KitchenDB struct {
	dbPool *pgxpool.Pool
	logger *logger.Logger
}

func NewKitchenDB(dbPool *pgxpool.Pool, log *logger.Logger) *KitchenDB {
	return &KitchenDB{dbPool: dbPool, logger: log}
}

func (d *KitchenDB) Pool() *pgxpool.Pool { return d.dbPool }

// GetOrderForUpdate locks the order row for the remainder of the
// caller's transaction, serializing concurrent transitions on the same
// order.
func (d *KitchenDB) GetOrderForUpdate(ctx context.Context, tx pgx.Tx, orderNumber string) (*models.Order, error) {
	var o models.Order
	err := tx.QueryRow(ctx, `
        SELECT id, order_number, branch_id, customer_id, table_number, order_type,
               subtotal, tax, discount, total, points_earned, points_redeemed,
               promotion_id, payment_method, payment_status, status,
               started_at, completed_at, prep_time_seconds, settled_at,
               special_instructions, created_at, updated_at
        FROM orders
        WHERE order_number = $1
        FOR UPDATE
    `, orderNumber).Scan(
		&o.ID, &o.OrderNumber, &o.BranchID, &o.CustomerID, &o.TableNumber, &o.OrderType,
		&o.Subtotal, &o.Tax, &o.Discount, &o.Total, &o.PointsEarned, &o.PointsRedeemed,
		&o.PromotionID, &o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&o.StartedAt, &o.CompletedAt, &o.PrepTimeSeconds, &o.SettledAt,
		&o.SpecialInstructions, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ApplyTransition writes the new status together with its timing side
// effects. The updated_at predicate doubles as an optimistic version
// check on top of the row lock.
func (d *KitchenDB) ApplyTransition(ctx context.Context, tx pgx.Tx, order *models.Order, eff statemachine.Effects, now time.Time) error {
	var startedAt, completedAt *time.Time
	if eff.SetStartedAt {
		startedAt = &now
	}
	if eff.SetCompletedAt {
		completedAt = &now
	}

	tag, err := tx.Exec(ctx, `
        UPDATE orders
        SET status = $1,
            started_at = COALESCE(started_at, $2),
            completed_at = COALESCE(completed_at, $3),
            prep_time_seconds = COALESCE(prep_time_seconds, $4),
            updated_at = now()
        WHERE id = $5 AND updated_at = $6
    `, eff.Target, startedAt, completedAt, eff.PrepTimeSeconds, order.ID, order.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (d *KitchenDB) LogOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status, changedBy, notes string) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO order_status_log (order_id, status, changed_by, notes)
        VALUES ($1, $2, $3, $4)
    `, orderID, status, changedBy, notes)
	return err
}

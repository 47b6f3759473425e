package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dinehub/pkg/logger"
	"dinehub/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type OrderDB struct {
	dbPool *pgxpool.Pool
	logger *logger.Logger
}

func NewOrderDB(dbPool *pgxpool.Pool, log *logger.Logger) *OrderDB {
	return &OrderDB{dbPool: dbPool, logger: log}
}

// NewOrder is the fully-typed placement record the service hands to the
// store once pricing and discounts are settled.
type NewOrder struct {
	BranchID            int64
	CustomerID          *int64
	TableNumber         *int
	OrderType           string
	Subtotal            decimal.Decimal
	Tax                 decimal.Decimal
	Discount            decimal.Decimal
	Total               decimal.Decimal
	PointsRedeemed      int
	PromotionID         *int64
	PaymentMethod       *string
	SpecialInstructions *string
	Items               []models.OrderItem
}

// Create inserts the order, its items and the initial status log entry
// in one transaction, generating a date-scoped sequential order number.
// Two concurrent placements can compute the same number; the loser
// hits the unique constraint and is retried with a fresh count.
func (d *OrderDB) Create(ctx context.Context, order *NewOrder) (int64, string, error) {
	var (
		orderID     int64
		orderNumber string
		err         error
	)
	for attempt := 0; attempt < 3; attempt++ {
		orderID, orderNumber, err = d.createOnce(ctx, order)
		if !isOrderNumberConflict(err) {
			return orderID, orderNumber, err
		}
		d.logger.Warn("", "order_number_conflict",
			"Generated order number already taken, retrying with a fresh count")
	}
	return 0, "", err
}

// isOrderNumberConflict matches a unique violation on orders.order_number.
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		pgErr.ConstraintName == "orders_order_number_key"
}

func (d *OrderDB) createOnce(ctx context.Context, order *NewOrder) (int64, string, error) {
	tx, err := d.dbPool.Begin(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderNumber, err := d.nextOrderNumber(ctx, tx)
	if err != nil {
		return 0, "", fmt.Errorf("failed to generate order number: %w", err)
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
        INSERT INTO orders (
            order_number, branch_id, customer_id, table_number, order_type,
            subtotal, tax, discount, total, points_redeemed,
            promotion_id, payment_method, payment_status, status, special_instructions
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'pending', 'pending', $13)
        RETURNING id
    `,
		orderNumber, order.BranchID, order.CustomerID, order.TableNumber, order.OrderType,
		order.Subtotal, order.Tax, order.Discount, order.Total, order.PointsRedeemed,
		order.PromotionID, order.PaymentMethod, order.SpecialInstructions,
	).Scan(&orderID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, item := range order.Items {
		batch.Queue(`
            INSERT INTO order_items (order_id, item_name, quantity, unit_price, modifier_cost, subtotal)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, orderID, item.ItemName, item.Quantity, item.UnitPrice, item.ModifierCost, item.Subtotal)
	}
	br := tx.SendBatch(ctx, batch)
	for range order.Items {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, "", fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, "", err
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO order_status_log (order_id, status, changed_by, notes)
        VALUES ($1, 'pending', 'order-service', 'Order placed')
    `, orderID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to insert order status log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return orderID, orderNumber, nil
}

// nextOrderNumber produces ORD_YYYYMMDD_NNN, restarting the sequence
// each day.
func (d *OrderDB) nextOrderNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	today := time.Now().UTC().Format("20060102")

	var count int
	err := tx.QueryRow(ctx, `
        SELECT COUNT(*) FROM orders
        WHERE created_at >= CURRENT_DATE AT TIME ZONE 'UTC'
          AND created_at < (CURRENT_DATE + INTERVAL '1 day') AT TIME ZONE 'UTC'
    `).Scan(&count)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("ORD_%s_%03d", today, count+1), nil
}

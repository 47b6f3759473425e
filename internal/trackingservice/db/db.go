package db

import (
	"context"
	"errors"

	"dinehub/pkg/logger"
	"dinehub/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderNotFound = errors.New("order not found")

type TrackingDB struct {
	dbPool *pgxpool.Pool
	logger *logger.Logger
}

func NewTrackingDB(dbPool *pgxpool.Pool, log *logger.Logger) *TrackingDB {
	return &TrackingDB{dbPool: dbPool, logger: log}
}

func (d *TrackingDB) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var o models.Order
	err := d.dbPool.QueryRow(ctx, `
        SELECT id, order_number, branch_id, customer_id, table_number, order_type,
               subtotal, tax, discount, total, points_earned, points_redeemed,
               promotion_id, payment_method, payment_status, status,
               started_at, completed_at, prep_time_seconds, settled_at,
               special_instructions, created_at, updated_at
        FROM orders
        WHERE order_number = $1
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

func (d *TrackingDB) GetOrderStatusHistory(ctx context.Context, orderID int64) ([]models.OrderStatusLog, error) {
	rows, err := d.dbPool.Query(ctx, `
        SELECT id, order_id, status, changed_by, changed_at, notes
        FROM order_status_log
        WHERE order_id = $1
        ORDER BY changed_at ASC
    `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.OrderStatusLog
	for rows.Next() {
		var entry models.OrderStatusLog
		err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Status,
			&entry.ChangedBy, &entry.ChangedAt, &entry.Notes)
		if err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// GetPrepTimeStats aggregates today's completed prep times. Orders
// without a recorded prep time are excluded, not counted as zero.
func (d *TrackingDB) GetPrepTimeStats(ctx context.Context) (*models.PrepTimeStats, error) {
	var stats models.PrepTimeStats
	err := d.dbPool.QueryRow(ctx, `
        SELECT COALESCE(AVG(prep_time_seconds), 0),
               COALESCE(MIN(prep_time_seconds), 0),
               COALESCE(MAX(prep_time_seconds), 0),
               COUNT(*)
        FROM orders
        WHERE prep_time_seconds IS NOT NULL
          AND completed_at >= CURRENT_DATE
    `).Scan(&stats.AvgSeconds, &stats.MinSeconds, &stats.MaxSeconds, &stats.Total)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetAvgPrepTime returns the rolling average prep time over the last
// N days, zero when no orders qualify.
func (d *TrackingDB) GetAvgPrepTime(ctx context.Context, days int) (float64, error) {
	var avg float64
	err := d.dbPool.QueryRow(ctx, `
        SELECT COALESCE(AVG(prep_time_seconds), 0)
        FROM orders
        WHERE prep_time_seconds IS NOT NULL
          AND completed_at >= now() - make_interval(days => $1)
    `, days).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg, nil
}

// GetKitchenQueue lists in-flight orders for the polling kitchen
// display, oldest first.
func (d *TrackingDB) GetKitchenQueue(ctx context.Context) ([]models.KitchenQueueEntry, error) {
	rows, err := d.dbPool.Query(ctx, `
        SELECT order_number, order_type, table_number, status,
               EXTRACT(EPOCH FROM (now() - created_at))::int
        FROM orders
        WHERE status IN ('pending', 'confirmed', 'preparing', 'ready')
        ORDER BY created_at ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queue []models.KitchenQueueEntry
	for rows.Next() {
		var entry models.KitchenQueueEntry
		err := rows.Scan(&entry.OrderNumber, &entry.OrderType, &entry.TableNumber,
			&entry.Status, &entry.ElapsedSeconds)
		if err != nil {
			return nil, err
		}
		queue = append(queue, entry)
	}
	return queue, rows.Err()
}

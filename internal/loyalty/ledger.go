package loyalty

import (
	"context"
	"errors"
	"fmt"

	"dinehub/pkg/db"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInsufficientPoints = errors.New("insufficient points balance")
	ErrCustomerNotFound   = errors.New("customer not found")
)

// TierFor returns the highest tier whose min_points is reached by the
// given balance. Ties break to the highest min_points. Returns the
// zero tier when no threshold is reached.
func TierFor(points int, tiers []models.LoyaltyTier) models.LoyaltyTier {
	var best models.LoyaltyTier
	found := false
	for _, t := range tiers {
		if t.MinPoints > points {
			continue
		}
		if !found || t.MinPoints >= best.MinPoints {
			best = t
			found = true
		}
	}
	return best
}

// Ledger owns customer point balances, tier assignment and the
// append-only points transaction log.
type Ledger struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

func NewLedger(pool *pgxpool.Pool, log *logger.Logger) *Ledger {
	return &Ledger{pool: pool, logger: log}
}

func (l *Ledger) GetCustomer(ctx context.Context, q db.Querier, customerID int64) (*models.Customer, error) {
	var c models.Customer
	err := q.QueryRow(ctx, `
        SELECT id, name, points_balance, total_spent, total_orders, tier, last_order_at, created_at
        FROM customers
        WHERE id = $1
    `, customerID).Scan(
		&c.ID, &c.Name, &c.PointsBalance, &c.TotalSpent, &c.TotalOrders,
		&c.Tier, &c.LastOrderAt, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCustomerForUpdate locks the customer row for the remainder of the
// caller's transaction.
func (l *Ledger) GetCustomerForUpdate(ctx context.Context, tx pgx.Tx, customerID int64) (*models.Customer, error) {
	var c models.Customer
	err := tx.QueryRow(ctx, `
        SELECT id, name, points_balance, total_spent, total_orders, tier, last_order_at, created_at
        FROM customers
        WHERE id = $1
        FOR UPDATE
    `, customerID).Scan(
		&c.ID, &c.Name, &c.PointsBalance, &c.TotalSpent, &c.TotalOrders,
		&c.Tier, &c.LastOrderAt, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (l *Ledger) Tiers(ctx context.Context, q db.Querier) ([]models.LoyaltyTier, error) {
	rows, err := q.Query(ctx, `
        SELECT id, name, min_points, points_multiplier
        FROM loyalty_tiers
        ORDER BY min_points ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []models.LoyaltyTier
	for rows.Next() {
		var t models.LoyaltyTier
		if err := rows.Scan(&t.ID, &t.Name, &t.MinPoints, &t.PointsMultiplier); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// Credit adds points to the customer balance and appends a ledger entry.
// Runs against the caller's querier so it can join a larger transaction.
func (l *Ledger) Credit(ctx context.Context, q db.Querier, customerID int64, orderID *int64, points int, description string) error {
	if points <= 0 {
		return nil
	}
	tag, err := q.Exec(ctx, `
        UPDATE customers SET points_balance = points_balance + $1 WHERE id = $2
    `, points, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return l.logTransaction(ctx, q, customerID, orderID, points, models.PointsEarned, description)
}

// Debit removes points, failing with ErrInsufficientPoints when the
// balance cannot cover the amount. The sufficiency check and the write
// are a single guarded statement.
func (l *Ledger) Debit(ctx context.Context, q db.Querier, customerID int64, orderID *int64, points int, description string) error {
	if points <= 0 {
		return nil
	}
	tag, err := q.Exec(ctx, `
        UPDATE customers SET points_balance = points_balance - $1
        WHERE id = $2 AND points_balance >= $1
    `, points, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientPoints
	}
	return l.logTransaction(ctx, q, customerID, orderID, -points, models.PointsRedeemed, description)
}

// Adjust applies a signed manual correction with a human-supplied
// reason, recomputing the tier from the new balance.
func (l *Ledger) Adjust(ctx context.Context, customerID int64, delta int, reason string) error {
	if delta == 0 {
		return nil
	}
	if reason == "" {
		return errors.New("adjustment reason is required")
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	customer, err := l.GetCustomerForUpdate(ctx, tx, customerID)
	if err != nil {
		return err
	}
	newBalance := customer.PointsBalance + delta
	if newBalance < 0 {
		return ErrInsufficientPoints
	}

	tiers, err := l.Tiers(ctx, tx)
	if err != nil {
		return err
	}
	newTier := TierFor(newBalance, tiers)

	_, err = tx.Exec(ctx, `
        UPDATE customers SET points_balance = $1, tier = $2 WHERE id = $3
    `, newBalance, newTier.Name, customerID)
	if err != nil {
		return err
	}

	if err := l.logTransaction(ctx, tx, customerID, nil, delta, models.PointsAdjusted, reason); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit adjustment: %w", err)
	}

	l.logger.Info("", "points_adjusted",
		fmt.Sprintf("Adjusted customer %d points by %d: %s", customerID, delta, reason))
	return nil
}

func (l *Ledger) logTransaction(ctx context.Context, q db.Querier, customerID int64, orderID *int64, points int, txType, description string) error {
	_, err := q.Exec(ctx, `
        INSERT INTO points_transactions (customer_id, order_id, points, type, description)
        VALUES ($1, $2, $3, $4, $5)
    `, customerID, orderID, points, txType, description)
	return err
}

package settlement_test

import (
	"context"
	"testing"
	"time"

	"dinehub/internal/kitchenservice/settlement"
	"dinehub/internal/loyalty"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardTiers() []models.LoyaltyTier {
	return []models.LoyaltyTier{
		{ID: 1, Name: "Bronze", MinPoints: 0, PointsMultiplier: decimal.NewFromFloat(1.00)},
		{ID: 2, Name: "Silver", MinPoints: 500, PointsMultiplier: decimal.NewFromFloat(1.25)},
		{ID: 3, Name: "Gold", MinPoints: 1000, PointsMultiplier: decimal.NewFromFloat(1.50)},
	}
}

func TestBuildPlanInsufficientPoints(t *testing.T) {
	order := &models.Order{
		Total:          decimal.NewFromFloat(20.00),
		PointsRedeemed: 200,
	}
	customer := &models.Customer{ID: 1, PointsBalance: 150, Tier: "Bronze"}

	_, err := settlement.BuildPlan(order, customer, standardTiers())
	assert.ErrorIs(t, err, loyalty.ErrInsufficientPoints)
}

func TestBuildPlanTierPromotion(t *testing.T) {
	order := &models.Order{Total: decimal.NewFromFloat(30.00)}
	customer := &models.Customer{ID: 1, PointsBalance: 480, Tier: "Bronze"}

	plan, err := settlement.BuildPlan(order, customer, standardTiers())
	require.NoError(t, err)

	assert.Equal(t, 0, plan.Debit)
	assert.Equal(t, 30, plan.Credit)
	assert.Equal(t, 510, plan.NewBalance)
	assert.Equal(t, "Silver", plan.NewTier)
	assert.True(t, plan.TierChanged)
}

func TestBuildPlanMultiplier(t *testing.T) {
	order := &models.Order{Total: decimal.NewFromFloat(100.00)}
	customer := &models.Customer{ID: 1, PointsBalance: 600, Tier: "Silver"}

	plan, err := settlement.BuildPlan(order, customer, standardTiers())
	require.NoError(t, err)

	assert.Equal(t, 125, plan.Credit)
	assert.Equal(t, 725, plan.NewBalance)
	assert.Equal(t, "Silver", plan.NewTier)
	assert.False(t, plan.TierChanged)
}

func TestBuildPlanTruncatesFractionalPoints(t *testing.T) {
	order := &models.Order{Total: decimal.NewFromFloat(19.99)}
	customer := &models.Customer{ID: 1, PointsBalance: 0, Tier: "Bronze"}

	plan, err := settlement.BuildPlan(order, customer, standardTiers())
	require.NoError(t, err)

	assert.Equal(t, 19, plan.Credit)
}

func TestBuildPlanPresetPointsEarned(t *testing.T) {
	order := &models.Order{
		Total:        decimal.NewFromFloat(30.00),
		PointsEarned: 10,
	}
	customer := &models.Customer{ID: 1, PointsBalance: 0, Tier: "Bronze"}

	plan, err := settlement.BuildPlan(order, customer, standardTiers())
	require.NoError(t, err)

	assert.Equal(t, 10, plan.Credit)
	assert.Equal(t, 10, plan.NewBalance)
}

func TestBuildPlanDebitAndCredit(t *testing.T) {
	order := &models.Order{
		Total:          decimal.NewFromFloat(40.00),
		PointsRedeemed: 100,
	}
	customer := &models.Customer{ID: 1, PointsBalance: 520, Tier: "Silver"}

	plan, err := settlement.BuildPlan(order, customer, standardTiers())
	require.NoError(t, err)

	assert.Equal(t, 100, plan.Debit)
	assert.Equal(t, 50, plan.Credit) // 40 * 1.25
	assert.Equal(t, 470, plan.NewBalance)
	assert.Equal(t, "Bronze", plan.NewTier)
	assert.True(t, plan.TierChanged)
}

func TestBuildPlanNoTiersConfigured(t *testing.T) {
	order := &models.Order{Total: decimal.NewFromFloat(25.00)}
	customer := &models.Customer{ID: 1, PointsBalance: 0}

	plan, err := settlement.BuildPlan(order, customer, nil)
	require.NoError(t, err)

	// Default multiplier of 1 applies when no tiers exist.
	assert.Equal(t, 25, plan.Credit)
	assert.Equal(t, "", plan.NewTier)
}

// fakeTx records writes so the idempotence tests can assert that a
// repeated settlement touches nothing.
type fakeTx struct {
	execSQL   []string
	execTag   pgconn.CommandTag
	queryRows int
}

func (f *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return f, nil }
func (f *fakeTx) Commit(ctx context.Context) error          { return nil }
func (f *fakeTx) Rollback(ctx context.Context) error        { return nil }

func (f *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (f *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (f *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }

func (f *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return f.execTag, nil
}

func (f *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.queryRows++
	return errRow{}
}

func (f *fakeTx) Conn() *pgx.Conn { return nil }

type errRow struct{}

func (errRow) Scan(dest ...any) error { return pgx.ErrNoRows }

func newTestEngine() *settlement.Engine {
	log := logger.NewLogger("settlement-test")
	return settlement.NewEngine(loyalty.NewLedger(nil, log), log)
}

func TestSettleAlreadySettledIsNoOp(t *testing.T) {
	settled := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	customerID := int64(7)
	order := &models.Order{
		ID:             1,
		OrderNumber:    "ORD_20250301_001",
		CustomerID:     &customerID,
		Total:          decimal.NewFromFloat(30.00),
		PointsRedeemed: 100,
		SettledAt:      &settled,
	}

	tx := &fakeTx{}
	require.NoError(t, newTestEngine().Settle(context.Background(), tx, order, "req-1"))

	assert.Empty(t, tx.execSQL)
	assert.Zero(t, tx.queryRows)
}

func TestSettleStopsWhenMarkerAlreadyWritten(t *testing.T) {
	// A racing settlement that committed the settled_at marker first
	// leaves the guarded UPDATE matching zero rows; the loser must
	// stop without touching the customer or the promotion.
	customerID := int64(7)
	promotionID := int64(3)
	order := &models.Order{
		ID:          1,
		OrderNumber: "ORD_20250301_001",
		CustomerID:  &customerID,
		PromotionID: &promotionID,
		Total:       decimal.NewFromFloat(30.00),
	}

	tx := &fakeTx{execTag: pgconn.NewCommandTag("UPDATE 0")}
	require.NoError(t, newTestEngine().Settle(context.Background(), tx, order, "req-1"))

	assert.Len(t, tx.execSQL, 1)
	assert.Zero(t, tx.queryRows)
}

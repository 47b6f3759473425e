package promotion

import (
	"context"
	"errors"
	"strings"
	"time"

	"dinehub/pkg/db"
	"dinehub/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Validation failure reasons, returned so the caller can present an
// actionable message.
var (
	ErrNotFound     = errors.New("promotion code not found")
	ErrInactive     = errors.New("promotion is not active")
	ErrExpired      = errors.New("promotion is outside its validity window")
	ErrExhausted    = errors.New("promotion has reached its maximum uses")
	ErrBelowMinimum = errors.New("order total is below the promotion minimum")
)

type Validator struct {
	pool db.Querier
}

func NewValidator(pool db.Querier) *Validator {
	return &Validator{pool: pool}
}

// Validate looks up a code (case-insensitive) and checks it against the
// order total. It does not reserve the code; usage is re-checked at
// settlement time.
func (v *Validator) Validate(ctx context.Context, code string, orderTotal decimal.Decimal) (*models.Promotion, error) {
	promo, err := v.getByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := Check(promo, orderTotal, time.Now().UTC()); err != nil {
		return nil, err
	}
	return promo, nil
}

func (v *Validator) getByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var p models.Promotion
	err := v.pool.QueryRow(ctx, `
        SELECT id, code, discount_type, discount_value, min_order_value,
               max_uses, used_count, start_date, end_date, is_active
        FROM promotions
        WHERE code = $1
    `, strings.ToUpper(strings.TrimSpace(code))).Scan(
		&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.MinOrderValue,
		&p.MaxUses, &p.UsedCount, &p.StartDate, &p.EndDate, &p.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Check applies the validity rules to an already-loaded promotion.
func Check(p *models.Promotion, orderTotal decimal.Decimal, now time.Time) error {
	if !p.IsActive {
		return ErrInactive
	}
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return ErrExpired
	}
	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return ErrExhausted
	}
	if orderTotal.LessThan(p.MinOrderValue) {
		return ErrBelowMinimum
	}
	return nil
}

// Discount computes the discount amount for the given base. Fixed
// discounts never exceed the base.
func Discount(p *models.Promotion, base decimal.Decimal) decimal.Decimal {
	switch p.DiscountType {
	case models.DiscountPercentage:
		return base.Mul(p.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case models.DiscountFixed:
		if p.DiscountValue.GreaterThan(base) {
			return base
		}
		return p.DiscountValue
	default:
		return decimal.Zero
	}
}

// Redeem increments used_count by exactly one, guarded against the cap.
// Runs on the caller's querier so the increment commits or aborts with
// the settlement transaction.
func Redeem(ctx context.Context, q db.Querier, promotionID int64) error {
	tag, err := q.Exec(ctx, `
        UPDATE promotions SET used_count = used_count + 1
        WHERE id = $1 AND (max_uses = 0 OR used_count < max_uses)
    `, promotionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExhausted
	}
	return nil
}

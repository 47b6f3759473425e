package promotion_test

import (
	"testing"
	"time"

	"dinehub/internal/promotion"
	"dinehub/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func activePromo() *models.Promotion {
	return &models.Promotion{
		ID:            1,
		Code:          "SAVE10",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		MinOrderValue: decimal.NewFromInt(20),
		MaxUses:       100,
		UsedCount:     4,
		StartDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
		IsActive:      true,
	}
}

func TestCheck(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(p *models.Promotion)
		total  decimal.Decimal
		want   error
	}{
		{"valid", func(p *models.Promotion) {}, decimal.NewFromInt(50), nil},
		{"inactive", func(p *models.Promotion) { p.IsActive = false }, decimal.NewFromInt(50), promotion.ErrInactive},
		{"not started", func(p *models.Promotion) { p.StartDate = now.Add(time.Hour) }, decimal.NewFromInt(50), promotion.ErrExpired},
		{"ended", func(p *models.Promotion) { p.EndDate = now.Add(-time.Hour) }, decimal.NewFromInt(50), promotion.ErrExpired},
		{"exhausted", func(p *models.Promotion) { p.UsedCount = p.MaxUses }, decimal.NewFromInt(50), promotion.ErrExhausted},
		{"unlimited uses", func(p *models.Promotion) { p.MaxUses = 0; p.UsedCount = 9999 }, decimal.NewFromInt(50), nil},
		{"below minimum", func(p *models.Promotion) {}, decimal.NewFromInt(15), promotion.ErrBelowMinimum},
		{"exactly at minimum", func(p *models.Promotion) {}, decimal.NewFromInt(20), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := activePromo()
			tt.mutate(p)
			err := promotion.Check(p, tt.total, now)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestDiscountPercentage(t *testing.T) {
	p := activePromo()
	got := promotion.Discount(p, decimal.NewFromInt(50))
	assert.Equal(t, "5.00", got.StringFixed(2))
}

func TestDiscountPercentageRounds(t *testing.T) {
	p := activePromo()
	p.DiscountValue = decimal.NewFromFloat(12.5)
	got := promotion.Discount(p, decimal.NewFromFloat(19.99))
	assert.Equal(t, "2.50", got.StringFixed(2))
}

func TestDiscountFixed(t *testing.T) {
	p := activePromo()
	p.DiscountType = models.DiscountFixed
	p.DiscountValue = decimal.NewFromInt(5)
	got := promotion.Discount(p, decimal.NewFromInt(50))
	assert.Equal(t, "5.00", got.StringFixed(2))
}

func TestDiscountFixedClampedToBase(t *testing.T) {
	p := activePromo()
	p.DiscountType = models.DiscountFixed
	p.DiscountValue = decimal.NewFromInt(10)
	got := promotion.Discount(p, decimal.NewFromInt(8))
	assert.Equal(t, "8.00", got.StringFixed(2))
}

func TestDiscountUnknownType(t *testing.T) {
	p := activePromo()
	p.DiscountType = "bogus"
	got := promotion.Discount(p, decimal.NewFromInt(50))
	assert.True(t, got.IsZero())
}

package loyalty_test

import (
	"testing"

	"dinehub/internal/loyalty"
	"dinehub/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func standardTiers() []models.LoyaltyTier {
	return []models.LoyaltyTier{
		{ID: 1, Name: "Bronze", MinPoints: 0, PointsMultiplier: decimal.NewFromFloat(1.00)},
		{ID: 2, Name: "Silver", MinPoints: 500, PointsMultiplier: decimal.NewFromFloat(1.25)},
		{ID: 3, Name: "Gold", MinPoints: 1000, PointsMultiplier: decimal.NewFromFloat(1.50)},
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name   string
		points int
		want   string
	}{
		{"zero balance", 0, "Bronze"},
		{"just below silver", 480, "Bronze"},
		{"exactly silver", 500, "Silver"},
		{"just above silver", 510, "Silver"},
		{"gold", 1200, "Gold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loyalty.TierFor(tt.points, standardTiers())
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestTierForNoTiers(t *testing.T) {
	got := loyalty.TierFor(100, nil)
	assert.Equal(t, "", got.Name)
}

func TestTierForTieBreaksToLatest(t *testing.T) {
	tiers := []models.LoyaltyTier{
		{ID: 1, Name: "Old Silver", MinPoints: 500},
		{ID: 2, Name: "Silver", MinPoints: 500},
	}
	got := loyalty.TierFor(600, tiers)
	assert.Equal(t, "Silver", got.Name)
}

func TestTierForUnorderedInput(t *testing.T) {
	tiers := []models.LoyaltyTier{
		{ID: 3, Name: "Gold", MinPoints: 1000},
		{ID: 1, Name: "Bronze", MinPoints: 0},
		{ID: 2, Name: "Silver", MinPoints: 500},
	}
	got := loyalty.TierFor(700, tiers)
	assert.Equal(t, "Silver", got.Name)
}

package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsOrderNumberConflict(t *testing.T) {
	conflict := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"order number conflict", conflict, true},
		{"wrapped conflict", fmt.Errorf("failed to insert order: %w", conflict), true},
		{"other unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "promotions_code_key"}, false},
		{"other pg error", &pgconn.PgError{Code: "23503"}, false},
		{"plain error", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isOrderNumberConflict(tt.err))
		})
	}
}

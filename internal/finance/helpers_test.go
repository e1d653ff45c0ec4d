package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func num(v int64) decimal.NullDecimal {
	return Some(decimal.NewFromInt(v))
}

func day(offset int) *time.Time {
	t := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &t
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}

func requireNull(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	require.Truef(t, got.Valid, "want %s got no data", want)
	requireDecimal(t, want, got.Decimal)
}

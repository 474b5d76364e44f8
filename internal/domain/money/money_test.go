package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/money"
)

// ──────────────────────────────────────────────────────────────────────────────
// ParseCents — strings decimales a centavos enteros en la frontera
// ──────────────────────────────────────────────────────────────────────────────

func TestParseCents_MontosExactos(t *testing.T) {
	cases := map[string]int64{
		"500.00": 50000,
		"500":    50000,
		"0.01":   1,
		"100.5":  10050,
		"0":      0,
	}
	for in, want := range cases {
		got, err := money.ParseCents(in)
		require.NoError(t, err, "monto %q debe parsear", in)
		assert.Equal(t, want, got, "monto %q", in)
	}
}

func TestParseCents_RedondeaAlCentavo(t *testing.T) {
	// Medio centavo redondea hacia arriba (half-up).
	got, err := money.ParseCents("10.005")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), got)

	got, err = money.ParseCents("10.004")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got)
}

func TestParseCents_RechazaInvalidos(t *testing.T) {
	for _, in := range []string{"", "abc", "10,50", "-5.00"} {
		_, err := money.ParseCents(in)
		assert.ErrorIs(t, err, domain.ErrValidation, "monto %q debe rechazarse", in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ParseHours
// ──────────────────────────────────────────────────────────────────────────────

func TestParseHours_AceptaFraccionales(t *testing.T) {
	got, err := money.ParseHours("6.5")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("6.5")))
}

func TestParseHours_RechazaCeroYNegativos(t *testing.T) {
	for _, in := range []string{"0", "-1", "x"} {
		_, err := money.ParseHours(in)
		assert.ErrorIs(t, err, domain.ErrValidation, "horas %q deben rechazarse", in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// HourlyAmountCents — horas fraccionales × tarifa, redondeo al centavo
// ──────────────────────────────────────────────────────────────────────────────

func TestHourlyAmountCents(t *testing.T) {
	// 6.5 h × $100.00/h = $650.00
	hours := decimal.RequireFromString("6.5")
	assert.Equal(t, int64(65000), money.HourlyAmountCents(hours, 10000))

	// 0.33 h × $99.99/h = 3299.67 → 3300 centavos
	hours = decimal.RequireFromString("0.33")
	assert.Equal(t, int64(3300), money.HourlyAmountCents(hours, 9999))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "650.00", money.FormatCents(65000))
	assert.Equal(t, "0.01", money.FormatCents(1))
	assert.Equal(t, "0.00", money.FormatCents(0))
}

package money

import (
	"fmt"

	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Paquete de frontera monetaria: los montos llegan como strings decimales
// ("500.00") y se convierten de inmediato a centavos enteros, redondeando al
// centavo más cercano. Nunca circula un float monetario más allá de aquí.

var hundred = decimal.NewFromInt(100)

// ParseCents convierte un string decimal a centavos enteros (redondeo al centavo).
// Rechaza valores no numéricos y negativos.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: monto %q no es decimal", domain.ErrValidation, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: monto negativo", domain.ErrValidation)
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}

// ParseHours convierte un string decimal de horas a decimal. Debe ser > 0.
func ParseHours(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: horas %q no son decimales", domain.ErrValidation, s)
	}
	if !d.GreaterThan(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: horas deben ser > 0", domain.ErrValidation)
	}
	return d, nil
}

// HourlyAmountCents calcula round(horas × tarifa) en centavos.
func HourlyAmountCents(hours decimal.Decimal, rateCents int64) int64 {
	return hours.Mul(decimal.NewFromInt(rateCents)).Round(0).IntPart()
}

// FormatCents representa centavos como string decimal con dos posiciones ("650.00").
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

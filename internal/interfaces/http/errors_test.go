package http

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfix/flowfix-api/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores de dominio a HTTP
// ──────────────────────────────────────────────────────────────────────────────

func responseFor(t *testing.T, err error) (int, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		return mapDomainError(c, err)
	})
	resp, reqErr := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	require.NoError(t, reqErr)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestMapDomainError_Sentinelas(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrValidation, http.StatusBadRequest, "VALIDATION"},
		{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrConflictingProposal, http.StatusConflict, "CONFLICTING_PROPOSAL"},
		{domain.ErrNothingToBill, http.StatusConflict, "NOTHING_TO_BILL"},
		{domain.ErrPaymentMethodRequired, http.StatusPaymentRequired, "PAYMENT_METHOD_REQUIRED"},
		{domain.ErrPaymentDeclined, http.StatusPaymentRequired, "PAYMENT_DECLINED"},
	}
	for _, tc := range cases {
		status, body := responseFor(t, tc.err)
		assert.Equal(t, tc.status, status, "error %v", tc.err)
		assert.Contains(t, body, tc.code, "error %v", tc.err)
	}
}

func TestMapDomainError_InternoNoFiltraDetalle(t *testing.T) {
	status, body := responseFor(t, errors.New("pq: conexión rechazada en 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "INTERNAL")
	assert.NotContains(t, body, "10.0.0.5",
		"el detalle interno nunca viaja al cliente")
	assert.NotContains(t, body, "conexión rechazada")
}

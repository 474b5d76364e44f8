package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nullIfEmpty mapea "" a NULL para columnas opcionales con FK.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// emptyIfNull mapea NULL a "" al leer columnas opcionales.
func emptyIfNull(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

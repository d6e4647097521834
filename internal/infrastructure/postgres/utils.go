package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que la bitácora distingue.
const (
	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

// sqlState devuelve el SQLSTATE de un error de PostgreSQL, o "" si no lo es.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool { return sqlState(err) == codeUniqueViolation }

// isUndefinedTable indica que el esquema de la bitácora aún no existe.
func isUndefinedTable(err error) bool { return sqlState(err) == codeUndefinedTable }

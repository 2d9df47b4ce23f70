package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/perecibles-api/internal/domain"
)

// Querier subconjunto común de *pgxpool.Pool y pgx.Tx; los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation referencia a una fila inexistente (23503), p.ej. proveedor.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isOutOfRange valor numérico fuera de la precisión de la columna (22003).
func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22003"
}

// isUnavailable errores de conexión: el llamador puede reintentar, no es un error de datos.
func isUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// clase 08 = connection exception; 57P01..03 = admin/crash shutdown, cannot connect now
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0")
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// wrapErr traduce errores del driver a la taxonomía del dominio, conservando el detalle.
// Los errores de contexto se devuelven tal cual para que la capa superior decida (timeout).
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: referencia inexistente: %w", op, domain.ErrNotFound)
	case isOutOfRange(err):
		return fmt.Errorf("%s: %w: valor numérico fuera de rango", op, domain.ErrInvalidInput)
	case isUnavailable(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

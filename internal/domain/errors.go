package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
	ErrTimeout            = errors.New("tiempo de espera agotado")

	// ErrBatchInactive es un caso particular de ErrNotFound: el lote existe pero ya no está activo.
	// errors.Is(ErrBatchInactive, ErrNotFound) == true.
	ErrBatchInactive = fmt.Errorf("%w: el lote no está activo", ErrNotFound)
)

// Invalid construye un error de validación con detalle, comparable con errors.Is(err, ErrInvalidInput).
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

package inventory

import (
	"context"

	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Toda mutación de lotes y del stock calculado pasa por aquí: o se aplica completa o no se aplica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
	) error) error
}

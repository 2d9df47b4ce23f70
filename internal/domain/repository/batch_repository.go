package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/perecibles-api/internal/domain/entity"
)

// BatchRepository puerto de persistencia de lotes. Siempre se usa dentro de una transacción
// que ya tiene bloqueado el producto dueño.
type BatchRepository interface {
	ExistsCode(ctx context.Context, code string) (bool, error)
	// Create inserta el lote. ErrDuplicate si el código ya existe en cualquier producto.
	Create(ctx context.Context, batch *entity.Batch) error
	Update(ctx context.Context, batch *entity.Batch) error
	// RepriceByProduct recalcula unit_value = price × quantity para todos los lotes del producto.
	RepriceByProduct(ctx context.Context, productKey int64, price decimal.Decimal) (int64, error)
	SumActiveQuantity(ctx context.Context, productKey int64) (int64, error)
}

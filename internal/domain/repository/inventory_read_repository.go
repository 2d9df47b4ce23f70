package repository

import (
	"context"

	"github.com/jhoicas/perecibles-api/internal/domain/entity"
)

// InventoryReadRepository consultas de solo lectura sobre la población producto→lote.
// Las implementaciones no toman bloqueos: el dashboard acepta instantáneas eventualmente consistentes.
type InventoryReadRepository interface {
	// ScanProducts recorre todos los productos con sus lotes en una sola pasada.
	// Si fn devuelve error el recorrido se detiene y el error se propaga.
	ScanProducts(ctx context.Context, fn func(*entity.Product) error) error

	// FindByNameKey productos cuyo nombre normalizado coincide exactamente.
	FindByNameKey(ctx context.Context, nameKey string) ([]*entity.Product, error)
}

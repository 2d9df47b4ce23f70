package repository

import (
	"context"

	"github.com/jhoicas/perecibles-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos de lectura devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	// Create persiste la fila del producto (sin lotes). ErrDuplicate si la clave ya existe.
	Create(ctx context.Context, product *entity.Product) error
	// GetByKey obtiene el producto con todos sus lotes.
	GetByKey(ctx context.Context, key int64) (*entity.Product, error)
	// GetForUpdate igual que GetByKey pero bloquea la fila del producto (SELECT FOR UPDATE).
	// Serializa las escrituras concurrentes sobre un mismo producto.
	GetForUpdate(ctx context.Context, key int64) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// Update actualiza los campos descriptivos, precio y stock reportado. Nunca toca CalculatedStock.
	Update(ctx context.Context, product *entity.Product) error
	// AdjustCalculatedStock suma delta de forma atómica y devuelve el nuevo valor.
	AdjustCalculatedStock(ctx context.Context, key int64, delta int64) (int64, error)
	// SetCalculatedStock sobrescribe el contador (sólo para la reparación fuera de línea).
	SetCalculatedStock(ctx context.Context, key int64, value int64) error
	// Delete elimina el producto y sus lotes. Devuelve false si no existía.
	Delete(ctx context.Context, key int64) (bool, error)
	ListKeys(ctx context.Context) ([]int64, error)
}

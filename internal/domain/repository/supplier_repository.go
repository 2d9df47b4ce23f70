package repository

import (
	"context"

	"github.com/jhoicas/perecibles-api/internal/domain/entity"
)

// SupplierRepository registro de proveedores por CNPJ.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByCNPJ(ctx context.Context, cnpj string) (*entity.Supplier, error)
	List(ctx context.Context) ([]*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	// Delete elimina el proveedor y limpia la referencia en los productos.
	Delete(ctx context.Context, cnpj string) (bool, error)
}

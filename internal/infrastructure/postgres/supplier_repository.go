package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

const supplierColumns = `cnpj, name, return_policy_days, contact, created_at, updated_at`

// SupplierRepo registro de proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// Create inserta un proveedor. ErrDuplicate si el CNPJ ya existe.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO suppliers (`+supplierColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.CNPJ, s.Name, s.ReturnPolicyDays, s.Contact, s.CreatedAt, s.UpdatedAt)
	return wrapErr(fmt.Sprintf("insert supplier %s", s.CNPJ), err)
}

// GetByCNPJ (nil, nil) si no existe.
func (r *SupplierRepo) GetByCNPJ(ctx context.Context, cnpj string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE cnpj = $1`, cnpj))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get supplier", err)
	}
	return s, nil
}

// List proveedores ordenados por nombre.
func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name, cnpj`)
	if err != nil {
		return nil, wrapErr("list suppliers", err)
	}
	defer rows.Close()

	list := []*entity.Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, wrapErr("scan supplier", err)
		}
		list = append(list, s)
	}
	return list, wrapErr("list suppliers", rows.Err())
}

// Update actualiza nombre, política de devolución y contacto.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE suppliers SET name = $2, return_policy_days = $3, contact = $4, updated_at = $5 WHERE cnpj = $1`,
		s.CNPJ, s.Name, s.ReturnPolicyDays, s.Contact, s.UpdatedAt)
	if err != nil {
		return wrapErr("update supplier", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("proveedor %s: %w", s.CNPJ, domain.ErrNotFound)
	}
	return nil
}

// Delete elimina el proveedor; products.supplier_cnpj queda en NULL (ON DELETE SET NULL).
func (r *SupplierRepo) Delete(ctx context.Context, cnpj string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE cnpj = $1`, cnpj)
	if err != nil {
		return false, wrapErr("delete supplier", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(&s.CNPJ, &s.Name, &s.ReturnPolicyDays, &s.Contact, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}


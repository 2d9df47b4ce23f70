package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, product_key, batch_code, manufacture_date, expiry_date, shelf_life_months, quantity,
	active, status_changed_at, unit_value, loss_reason, created_at, updated_at`

// BatchRepo lotes sobre PostgreSQL. Pensado para usarse dentro de la tx del ledger.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// ExistsCode indica si el código de lote ya está usado por cualquier producto.
func (r *BatchRepo) ExistsCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM batches WHERE batch_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, wrapErr("batch code exists", err)
	}
	return exists, nil
}

// Create inserta el lote. La restricción UNIQUE(batch_code) cubre la carrera entre dos productos.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductKey, b.Code, b.ManufactureDate, b.ExpiryDate, b.ShelfLifeMonths, b.Quantity,
		b.Active, b.StatusChangedAt, b.UnitValue, b.LossReason, b.CreatedAt, b.UpdatedAt,
	)
	return wrapErr(fmt.Sprintf("insert batch %s", b.Code), err)
}

// Update reescribe los campos mutables. El código y el producto dueño son inmutables.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	query := `
		UPDATE batches SET
			manufacture_date = $3, expiry_date = $4, shelf_life_months = $5, quantity = $6,
			active = $7, status_changed_at = $8, unit_value = $9, loss_reason = $10, updated_at = $11
		WHERE batch_code = $1 AND product_key = $2`
	tag, err := r.q.Exec(ctx, query,
		b.Code, b.ProductKey, b.ManufactureDate, b.ExpiryDate, b.ShelfLifeMonths, b.Quantity,
		b.Active, b.StatusChangedAt, b.UnitValue, b.LossReason, b.UpdatedAt,
	)
	if err != nil {
		return wrapErr(fmt.Sprintf("update batch %s", b.Code), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lote %s: %w", b.Code, domain.ErrNotFound)
	}
	return nil
}

// RepriceByProduct recalcula unit_value de todos los lotes del producto en una sola sentencia.
func (r *BatchRepo) RepriceByProduct(ctx context.Context, productKey int64, price decimal.Decimal) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE batches SET unit_value = $2::NUMERIC * quantity, updated_at = now() WHERE product_key = $1`,
		productKey, price)
	if err != nil {
		return 0, wrapErr("reprice batches", err)
	}
	return tag.RowsAffected(), nil
}

// SumActiveQuantity suma real de cantidades activas (base de la reparación).
func (r *BatchRepo) SumActiveQuantity(ctx context.Context, productKey int64) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::BIGINT FROM batches WHERE product_key = $1 AND active`,
		productKey).Scan(&total)
	if err != nil {
		return 0, wrapErr("sum active quantity", err)
	}
	return total, nil
}

func listBatches(ctx context.Context, q Querier, productKey int64) ([]*entity.Batch, error) {
	rows, err := q.Query(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE product_key = $1 ORDER BY expiry_date, batch_code`, productKey)
	if err != nil {
		return nil, wrapErr("list batches", err)
	}
	defer rows.Close()

	batches := []*entity.Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, wrapErr("scan batch", err)
		}
		batches = append(batches, b)
	}
	return batches, wrapErr("list batches", rows.Err())
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.ProductKey, &b.Code, &b.ManufactureDate, &b.ExpiryDate, &b.ShelfLifeMonths, &b.Quantity,
		&b.Active, &b.StatusChangedAt, &b.UnitValue, &b.LossReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

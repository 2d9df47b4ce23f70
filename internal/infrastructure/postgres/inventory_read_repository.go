package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

var _ repository.InventoryReadRepository = (*InventoryReadRepo)(nil)

// InventoryReadRepo consultas de solo lectura para el dashboard. No toma locks.
type InventoryReadRepo struct {
	q Querier
}

// NewInventoryReadRepository construye el adaptador (normalmente sobre el pool).
func NewInventoryReadRepository(q Querier) *InventoryReadRepo {
	return &InventoryReadRepo{q: q}
}

// ScanProducts un único LEFT JOIN ordenado por producto; las filas se agrupan en memoria
// y fn recibe cada producto en cuanto se completan sus lotes.
func (r *InventoryReadRepo) ScanProducts(ctx context.Context, fn func(*entity.Product) error) error {
	return r.scan(ctx, `
		SELECT `+joinedColumns+`
		FROM products p
		LEFT JOIN batches b ON b.product_key = p.product_key
		ORDER BY p.product_key, b.expiry_date, b.batch_code`, fn)
}

// FindByNameKey productos con el nombre normalizado dado, con sus lotes.
func (r *InventoryReadRepo) FindByNameKey(ctx context.Context, nameKey string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.scan(ctx, `
		SELECT `+joinedColumns+`
		FROM products p
		LEFT JOIN batches b ON b.product_key = p.product_key
		WHERE p.name_key = $1
		ORDER BY p.product_key, b.expiry_date, b.batch_code`,
		func(p *entity.Product) error {
			out = append(out, p)
			return nil
		}, nameKey)
	return out, err
}

const joinedColumns = `p.product_key, p.name, p.name_key, p.ean, p.brand, p.spec_sheet_url, p.product_url, p.color, p.avs,
	p.unit_price, p.reported_stock, p.calculated_stock, p.section_code, p.section_name, p.subsection_code, p.subsection_name,
	p.supplier_cnpj, p.registration_pending, p.created_at, p.updated_at,
	b.id::TEXT, b.batch_code, b.manufacture_date, b.expiry_date, b.shelf_life_months, b.quantity,
	b.active, b.status_changed_at, b.unit_value, b.loss_reason, b.created_at, b.updated_at`

// joinedBatch columnas del lado derecho del LEFT JOIN (NULL si el producto no tiene lotes).
type joinedBatch struct {
	id              *string
	code            *string
	manufactureDate *time.Time
	expiryDate      *time.Time
	shelfLifeMonths *int
	quantity        *int64
	active          *bool
	statusChangedAt *time.Time
	unitValue       decimal.NullDecimal
	lossReason      *string
	createdAt       *time.Time
	updatedAt       *time.Time
}

func (j joinedBatch) toEntity(productKey int64) *entity.Batch {
	return &entity.Batch{
		ID:              *j.id,
		ProductKey:      productKey,
		Code:            *j.code,
		ManufactureDate: *j.manufactureDate,
		ExpiryDate:      *j.expiryDate,
		ShelfLifeMonths: *j.shelfLifeMonths,
		Quantity:        *j.quantity,
		Active:          *j.active,
		StatusChangedAt: *j.statusChangedAt,
		UnitValue:       j.unitValue.Decimal,
		LossReason:      j.lossReason,
		CreatedAt:       *j.createdAt,
		UpdatedAt:       *j.updatedAt,
	}
}

func (r *InventoryReadRepo) scan(ctx context.Context, query string, fn func(*entity.Product) error, args ...any) error {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return wrapErr("scan inventory", err)
	}
	defer rows.Close()

	var current *entity.Product
	for rows.Next() {
		var (
			p entity.Product
			j joinedBatch
		)
		err := rows.Scan(
			&p.Key, &p.Name, &p.NameKey, &p.EAN, &p.Brand, &p.SpecSheetURL, &p.ProductURL, &p.Color, &p.AVS,
			&p.UnitPrice, &p.ReportedStock, &p.CalculatedStock, &p.SectionCode, &p.SectionName, &p.SubsectionCode, &p.SubsectionName,
			&p.SupplierCNPJ, &p.RegistrationPending, &p.CreatedAt, &p.UpdatedAt,
			&j.id, &j.code, &j.manufactureDate, &j.expiryDate, &j.shelfLifeMonths, &j.quantity,
			&j.active, &j.statusChangedAt, &j.unitValue, &j.lossReason, &j.createdAt, &j.updatedAt,
		)
		if err != nil {
			return wrapErr("scan inventory row", err)
		}
		if current == nil || current.Key != p.Key {
			if current != nil {
				if err := fn(current); err != nil {
					return err
				}
			}
			p.Batches = []*entity.Batch{}
			current = &p
		}
		if j.id != nil {
			current.Batches = append(current.Batches, j.toEntity(current.Key))
		}
	}
	if err := rows.Err(); err != nil {
		return wrapErr("scan inventory", err)
	}
	if current != nil {
		return fn(current)
	}
	return nil
}

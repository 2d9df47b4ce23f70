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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `product_key, name, name_key, ean, brand, spec_sheet_url, product_url, color, avs,
	unit_price, reported_stock, calculated_stock, section_code, section_name, subsection_code, subsection_name,
	supplier_cnpj, registration_pending, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto (sin lotes).
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		p.Key, p.Name, p.NameKey, p.EAN, p.Brand, p.SpecSheetURL, p.ProductURL, p.Color, p.AVS,
		p.UnitPrice, p.ReportedStock, p.CalculatedStock, p.SectionCode, p.SectionName, p.SubsectionCode, p.SubsectionName,
		p.SupplierCNPJ, p.RegistrationPending, p.CreatedAt, p.UpdatedAt,
	)
	return wrapErr(fmt.Sprintf("insert product %d", p.Key), err)
}

// GetByKey obtiene un producto con sus lotes; (nil, nil) si no existe.
func (r *ProductRepo) GetByKey(ctx context.Context, key int64) (*entity.Product, error) {
	return r.get(ctx, key, false)
}

// GetForUpdate igual que GetByKey pero bloquea la fila del producto hasta el fin de la tx.
// Todas las escrituras de lotes toman este lock primero, así que sus lotes quedan estables.
func (r *ProductRepo) GetForUpdate(ctx context.Context, key int64) (*entity.Product, error) {
	return r.get(ctx, key, true)
}

func (r *ProductRepo) get(ctx context.Context, key int64, forUpdate bool) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_key = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	batches, err := listBatches(ctx, r.q, key)
	if err != nil {
		return nil, err
	}
	p.Batches = batches
	return p, nil
}

// List productos ordenados por clave, con sus lotes (una consulta para productos y otra para lotes).
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY product_key LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, wrapErr("list products", err)
	}
	defer rows.Close()

	var (
		list []*entity.Product
		keys []int64
		byID = make(map[int64]*entity.Product)
	)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan product", err)
		}
		list = append(list, p)
		keys = append(keys, p.Key)
		byID[p.Key] = p
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list products", err)
	}
	if len(keys) == 0 {
		return []*entity.Product{}, nil
	}

	bq := `SELECT ` + batchColumns + ` FROM batches WHERE product_key = ANY($1) ORDER BY product_key, expiry_date, batch_code`
	brows, err := r.q.Query(ctx, bq, keys)
	if err != nil {
		return nil, wrapErr("list batches", err)
	}
	defer brows.Close()
	for brows.Next() {
		b, err := scanBatch(brows)
		if err != nil {
			return nil, wrapErr("scan batch", err)
		}
		if p := byID[b.ProductKey]; p != nil {
			p.Batches = append(p.Batches, b)
		}
	}
	return list, wrapErr("list batches", brows.Err())
}

// Update actualiza campos descriptivos, precio y stock reportado. calculated_stock no se toca.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET
			name = $2, name_key = $3, ean = $4, brand = $5, spec_sheet_url = $6, product_url = $7, color = $8,
			avs = $9, unit_price = $10, reported_stock = $11, section_code = $12, section_name = $13,
			subsection_code = $14, subsection_name = $15, supplier_cnpj = $16, registration_pending = $17,
			updated_at = $18
		WHERE product_key = $1`
	tag, err := r.q.Exec(ctx, query,
		p.Key, p.Name, p.NameKey, p.EAN, p.Brand, p.SpecSheetURL, p.ProductURL, p.Color,
		p.AVS, p.UnitPrice, p.ReportedStock, p.SectionCode, p.SectionName,
		p.SubsectionCode, p.SubsectionName, p.SupplierCNPJ, p.RegistrationPending, p.UpdatedAt,
	)
	if err != nil {
		return wrapErr(fmt.Sprintf("update product %d", p.Key), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %d: %w", p.Key, domain.ErrNotFound)
	}
	return nil
}

// AdjustCalculatedStock suma delta en una sola sentencia (sin leer y reescribir el contador).
func (r *ProductRepo) AdjustCalculatedStock(ctx context.Context, key int64, delta int64) (int64, error) {
	query := `
		UPDATE products SET calculated_stock = calculated_stock + $2, updated_at = now()
		WHERE product_key = $1
		RETURNING calculated_stock`
	var stock int64
	if err := r.q.QueryRow(ctx, query, key, delta).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("producto %d: %w", key, domain.ErrNotFound)
		}
		return 0, wrapErr("adjust calculated stock", err)
	}
	return stock, nil
}

// SetCalculatedStock sobrescribe el contador; sólo la reparación fuera de línea lo usa.
func (r *ProductRepo) SetCalculatedStock(ctx context.Context, key int64, value int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET calculated_stock = $2, updated_at = now() WHERE product_key = $1`, key, value)
	if err != nil {
		return wrapErr("set calculated stock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %d: %w", key, domain.ErrNotFound)
	}
	return nil
}

// Delete elimina el producto; los lotes caen por ON DELETE CASCADE.
func (r *ProductRepo) Delete(ctx context.Context, key int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE product_key = $1`, key)
	if err != nil {
		return false, wrapErr("delete product", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListKeys todas las claves ordenadas.
func (r *ProductRepo) ListKeys(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT product_key FROM products ORDER BY product_key`)
	if err != nil {
		return nil, wrapErr("list product keys", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, wrapErr("list product keys", err)
	}
	return keys, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.Key, &p.Name, &p.NameKey, &p.EAN, &p.Brand, &p.SpecSheetURL, &p.ProductURL, &p.Color, &p.AVS,
		&p.UnitPrice, &p.ReportedStock, &p.CalculatedStock, &p.SectionCode, &p.SectionName, &p.SubsectionCode, &p.SubsectionName,
		&p.SupplierCNPJ, &p.RegistrationPending, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

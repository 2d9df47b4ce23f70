package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*productRepo)(nil)
	_ repository.ProductRepository = (*autoProductRepo)(nil)
)

// productRepo opera sobre el estado de una transacción. Devuelve siempre copias.
type productRepo struct {
	st *state
}

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.st.products[p.Key]; ok {
		return fmt.Errorf("producto %d: %w", p.Key, domain.ErrDuplicate)
	}
	if p.SupplierCNPJ != nil {
		if _, ok := r.st.suppliers[*p.SupplierCNPJ]; !ok {
			return fmt.Errorf("proveedor %s: %w", *p.SupplierCNPJ, domain.ErrNotFound)
		}
	}
	c := p.Clone()
	c.Batches = nil
	r.st.products[p.Key] = c
	return nil
}

func (r *productRepo) GetByKey(_ context.Context, key int64) (*entity.Product, error) {
	p, ok := r.st.products[key]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

// GetForUpdate en memoria el lock de escritura del store ya serializa la transacción completa.
func (r *productRepo) GetForUpdate(ctx context.Context, key int64) (*entity.Product, error) {
	return r.GetByKey(ctx, key)
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	keys := r.st.sortedKeys()
	if offset >= len(keys) {
		return []*entity.Product{}, nil
	}
	keys = keys[offset:]
	if limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}
	out := make([]*entity.Product, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.st.products[k].Clone())
	}
	return out, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	cur, ok := r.st.products[p.Key]
	if !ok {
		return fmt.Errorf("producto %d: %w", p.Key, domain.ErrNotFound)
	}
	if p.SupplierCNPJ != nil {
		if _, ok := r.st.suppliers[*p.SupplierCNPJ]; !ok {
			return fmt.Errorf("proveedor %s: %w", *p.SupplierCNPJ, domain.ErrNotFound)
		}
	}
	next := p.Clone()
	next.CalculatedStock = cur.CalculatedStock
	next.Batches = cur.Batches
	next.CreatedAt = cur.CreatedAt
	r.st.products[p.Key] = next
	return nil
}

func (r *productRepo) AdjustCalculatedStock(_ context.Context, key int64, delta int64) (int64, error) {
	p, ok := r.st.products[key]
	if !ok {
		return 0, fmt.Errorf("producto %d: %w", key, domain.ErrNotFound)
	}
	p.CalculatedStock += delta
	p.UpdatedAt = time.Now()
	return p.CalculatedStock, nil
}

func (r *productRepo) SetCalculatedStock(_ context.Context, key int64, value int64) error {
	p, ok := r.st.products[key]
	if !ok {
		return fmt.Errorf("producto %d: %w", key, domain.ErrNotFound)
	}
	p.CalculatedStock = value
	p.UpdatedAt = time.Now()
	return nil
}

func (r *productRepo) Delete(_ context.Context, key int64) (bool, error) {
	p, ok := r.st.products[key]
	if !ok {
		return false, nil
	}
	for _, b := range p.Batches {
		delete(r.st.batchOwner, b.Code)
	}
	delete(r.st.products, key)
	return true, nil
}

func (r *productRepo) ListKeys(_ context.Context) ([]int64, error) {
	return r.st.sortedKeys(), nil
}

// autoProductRepo cada llamada es su propia transacción implícita sobre el estado confirmado.
type autoProductRepo struct {
	s *Store
}

func (r *autoProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.s.write(func(st *state) error { return (&productRepo{st: st}).Create(ctx, p) })
}

func (r *autoProductRepo) GetByKey(ctx context.Context, key int64) (p *entity.Product, err error) {
	err = r.s.read(func(st *state) error {
		p, err = (&productRepo{st: st}).GetByKey(ctx, key)
		return err
	})
	return p, err
}

func (r *autoProductRepo) GetForUpdate(ctx context.Context, key int64) (*entity.Product, error) {
	return r.GetByKey(ctx, key)
}

func (r *autoProductRepo) List(ctx context.Context, limit, offset int) (out []*entity.Product, err error) {
	err = r.s.read(func(st *state) error {
		out, err = (&productRepo{st: st}).List(ctx, limit, offset)
		return err
	})
	return out, err
}

func (r *autoProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.s.write(func(st *state) error { return (&productRepo{st: st}).Update(ctx, p) })
}

func (r *autoProductRepo) AdjustCalculatedStock(ctx context.Context, key int64, delta int64) (n int64, err error) {
	err = r.s.write(func(st *state) error {
		n, err = (&productRepo{st: st}).AdjustCalculatedStock(ctx, key, delta)
		return err
	})
	return n, err
}

func (r *autoProductRepo) SetCalculatedStock(ctx context.Context, key int64, value int64) error {
	return r.s.write(func(st *state) error { return (&productRepo{st: st}).SetCalculatedStock(ctx, key, value) })
}

func (r *autoProductRepo) Delete(ctx context.Context, key int64) (ok bool, err error) {
	err = r.s.write(func(st *state) error {
		ok, err = (&productRepo{st: st}).Delete(ctx, key)
		return err
	})
	return ok, err
}

func (r *autoProductRepo) ListKeys(ctx context.Context) (keys []int64, err error) {
	err = r.s.read(func(st *state) error {
		keys, err = (&productRepo{st: st}).ListKeys(ctx)
		return err
	})
	return keys, err
}

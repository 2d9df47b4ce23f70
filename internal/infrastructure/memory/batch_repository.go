package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*batchRepo)(nil)

// batchRepo lotes dentro del estado de una transacción.
type batchRepo struct {
	st *state
}

func (r *batchRepo) ExistsCode(_ context.Context, code string) (bool, error) {
	_, ok := r.st.batchOwner[code]
	return ok, nil
}

func (r *batchRepo) Create(_ context.Context, b *entity.Batch) error {
	if _, ok := r.st.batchOwner[b.Code]; ok {
		return fmt.Errorf("lote %s: %w", b.Code, domain.ErrDuplicate)
	}
	p, ok := r.st.products[b.ProductKey]
	if !ok {
		return fmt.Errorf("producto %d: %w", b.ProductKey, domain.ErrNotFound)
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	p.Batches = append(p.Batches, b.Clone())
	r.st.batchOwner[b.Code] = b.ProductKey
	return nil
}

func (r *batchRepo) Update(_ context.Context, b *entity.Batch) error {
	key, ok := r.st.batchOwner[b.Code]
	if !ok || key != b.ProductKey {
		return fmt.Errorf("lote %s: %w", b.Code, domain.ErrNotFound)
	}
	p := r.st.products[key]
	for i, cur := range p.Batches {
		if cur.Code == b.Code {
			next := b.Clone()
			next.ID = cur.ID
			next.CreatedAt = cur.CreatedAt
			p.Batches[i] = next
			return nil
		}
	}
	return fmt.Errorf("lote %s: %w", b.Code, domain.ErrNotFound)
}

func (r *batchRepo) RepriceByProduct(_ context.Context, productKey int64, price decimal.Decimal) (int64, error) {
	p, ok := r.st.products[productKey]
	if !ok {
		return 0, nil
	}
	for _, b := range p.Batches {
		b.Reprice(price)
	}
	return int64(len(p.Batches)), nil
}

func (r *batchRepo) SumActiveQuantity(_ context.Context, productKey int64) (int64, error) {
	p, ok := r.st.products[productKey]
	if !ok {
		return 0, nil
	}
	return p.ActiveQuantity(), nil
}

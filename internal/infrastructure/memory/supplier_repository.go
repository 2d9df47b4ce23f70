package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*supplierRepo)(nil)

type supplierRepo struct {
	s *Store
}

func (r *supplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.suppliers[sup.CNPJ]; ok {
			return fmt.Errorf("proveedor %s: %w", sup.CNPJ, domain.ErrDuplicate)
		}
		cp := *sup
		st.suppliers[sup.CNPJ] = &cp
		return nil
	})
}

func (r *supplierRepo) GetByCNPJ(_ context.Context, cnpj string) (out *entity.Supplier, err error) {
	err = r.s.read(func(st *state) error {
		if sup, ok := st.suppliers[cnpj]; ok {
			cp := *sup
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *supplierRepo) List(_ context.Context) (out []*entity.Supplier, err error) {
	err = r.s.read(func(st *state) error {
		out = make([]*entity.Supplier, 0, len(st.suppliers))
		for _, sup := range st.suppliers {
			cp := *sup
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *supplierRepo) Update(_ context.Context, sup *entity.Supplier) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.suppliers[sup.CNPJ]
		if !ok {
			return fmt.Errorf("proveedor %s: %w", sup.CNPJ, domain.ErrNotFound)
		}
		cp := *sup
		cp.CreatedAt = cur.CreatedAt
		st.suppliers[sup.CNPJ] = &cp
		return nil
	})
}

func (r *supplierRepo) Delete(_ context.Context, cnpj string) (found bool, err error) {
	err = r.s.write(func(st *state) error {
		if _, found = st.suppliers[cnpj]; !found {
			return nil
		}
		delete(st.suppliers, cnpj)
		for _, p := range st.products {
			if p.SupplierCNPJ != nil && *p.SupplierCNPJ == cnpj {
				p.SupplierCNPJ = nil
			}
		}
		return nil
	})
	return found, err
}

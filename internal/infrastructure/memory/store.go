// Package memory adaptador de persistencia en proceso para desarrollo local y pruebas.
// No persiste entre reinicios.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/perecibles-api/internal/application/inventory"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner                 = (*Store)(nil)
	_ repository.InventoryReadRepository = (*Store)(nil)
)

type state struct {
	products   map[int64]*entity.Product
	batchOwner map[string]int64 // batch code -> product key
	suppliers  map[string]*entity.Supplier
	knowledge  map[string]*entity.KnowledgeItem
}

func newState() *state {
	return &state{
		products:   make(map[int64]*entity.Product),
		batchOwner: make(map[string]int64),
		suppliers:  make(map[string]*entity.Supplier),
		knowledge:  make(map[string]*entity.KnowledgeItem),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, p := range s.products {
		c.products[k] = p.Clone()
	}
	for code, k := range s.batchOwner {
		c.batchOwner[code] = k
	}
	for cnpj, sup := range s.suppliers {
		cp := *sup
		c.suppliers[cnpj] = &cp
	}
	for id, it := range s.knowledge {
		c.knowledge[id] = it.Clone()
	}
	return c
}

func (s *state) sortedKeys() []int64 {
	keys := make([]int64, 0, len(s.products))
	for k := range s.products {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Store guarda productos, lotes, proveedores y la base de conocimiento en memoria.
// Las transacciones toman el lock de escritura y trabajan sobre una copia del estado,
// que reemplaza al original sólo si fn no devuelve error.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn con repositorios atados a una copia del estado y la confirma si no hay error.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&productRepo{st: work}, &batchRepo{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// read ejecuta fn bajo el lock de lectura sobre el estado confirmado.
func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// write ejecuta fn bajo el lock de escritura sobre el estado confirmado (operaciones de una sola sentencia).
func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository {
	return &autoProductRepo{s: s}
}

// Suppliers repositorio de proveedores.
func (s *Store) Suppliers() repository.SupplierRepository {
	return &supplierRepo{s: s}
}

// Knowledge repositorio de la base de conocimiento.
func (s *Store) Knowledge() repository.KnowledgeRepository {
	return &knowledgeRepo{s: s}
}

// ScanProducts recorre una copia de cada producto ordenado por clave.
func (s *Store) ScanProducts(ctx context.Context, fn func(*entity.Product) error) error {
	var snapshot []*entity.Product
	_ = s.read(func(st *state) error {
		for _, k := range st.sortedKeys() {
			snapshot = append(snapshot, st.products[k].Clone())
		}
		return nil
	})
	for _, p := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// FindByNameKey productos cuyo nombre normalizado coincide.
func (s *Store) FindByNameKey(ctx context.Context, nameKey string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := s.read(func(st *state) error {
		for _, k := range st.sortedKeys() {
			if p := st.products[k]; p.NameKey == nameKey {
				out = append(out, p.Clone())
			}
		}
		return nil
	})
	return out, err
}

package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
	"github.com/jhoicas/perecibles-api/pkg/logger"
	"github.com/jhoicas/perecibles-api/pkg/textnorm"
)

// LedgerUseCase es el único dueño de las mutaciones de productos y lotes.
// Cada operación corre en una transacción que bloquea la fila del producto (SELECT FOR UPDATE),
// aplica el cambio del lote y ajusta el stock calculado con el delta de la transición.
type LedgerUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	log          *logger.Logger
	now          func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	log *logger.Logger,
) *LedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		log:          log.Component("ledger"),
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj usado para fechas de estado y auditoría.
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// CreateProduct registra un producto y, opcionalmente, sus lotes iniciales en una sola transacción.
// Falla con ErrDuplicate si la clave o algún código de lote ya existen, y con ErrNotFound
// si el proveedor indicado no está registrado.
func (uc *LedgerUseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.ProductKey <= 0 {
		return nil, domain.Invalid("product_key debe ser positivo")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("nombre requerido")
	}
	if err := entity.ValidateUnitPrice(in.UnitPrice); err != nil {
		return nil, err
	}
	if in.ReportedStock != nil && *in.ReportedStock < 0 {
		return nil, domain.Invalid("stock reportado negativo")
	}
	supplierName, err := uc.requireSupplier(ctx, in.SupplierCNPJ)
	if err != nil {
		return nil, err
	}
	existing, err := uc.productRepo.GetByKey(ctx, in.ProductKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("producto %d: %w", in.ProductKey, domain.ErrDuplicate)
	}

	now := uc.now()
	product := &entity.Product{
		Key:            in.ProductKey,
		Name:           name,
		NameKey:        textnorm.Key(name),
		EAN:            in.EAN,
		Brand:          in.Brand,
		SpecSheetURL:   in.SpecSheetURL,
		ProductURL:     in.ProductURL,
		Color:          in.Color,
		AVS:            in.AVS,
		UnitPrice:      in.UnitPrice,
		ReportedStock:  in.ReportedStock,
		SectionCode:    in.SectionCode,
		SectionName:    in.SectionName,
		SubsectionCode: in.SubsectionCode,
		SubsectionName: in.SubsectionName,
		SupplierCNPJ:   in.SupplierCNPJ,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	batches := make([]*entity.Batch, 0, len(in.Batches))
	seen := make(map[string]struct{}, len(in.Batches))
	for _, req := range in.Batches {
		b, err := entity.NewBatch(product.Key, batchSpec(req), product.UnitPrice, now)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[b.Code]; dup {
			return nil, fmt.Errorf("lote %s repetido en la solicitud: %w", b.Code, domain.ErrDuplicate)
		}
		seen[b.Code] = struct{}{}
		batches = append(batches, b)
	}

	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, batchRepo repository.BatchRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		var delta int64
		for _, b := range batches {
			if err := batchRepo.Create(ctx, b); err != nil {
				return err
			}
			delta += b.InitialDelta()
		}
		stock, err := applyDelta(ctx, productRepo, product.Key, 0, delta)
		if err != nil {
			return err
		}
		product.CalculatedStock = stock
		product.Batches = batches
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("product_key", product.Key).
		Int("batches", len(batches)).
		Int64("calculated_stock", product.CalculatedStock).
		Msg("producto creado")
	return toProductResponse(product, supplierName), nil
}

// GetProduct devuelve el producto con sus lotes y el nombre del proveedor, si existe.
func (uc *LedgerUseCase) GetProduct(ctx context.Context, key int64) (*dto.ProductResponse, error) {
	p, err := uc.productRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %d: %w", key, domain.ErrNotFound)
	}
	return uc.decorate(ctx, p)
}

// ListProducts lista productos ordenados por clave.
func (uc *LedgerUseCase) ListProducts(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.Normalize()
	list, err := uc.productRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}

	names := make(map[string]*string)
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		var supplierName *string
		if p.SupplierCNPJ != nil {
			cnpj := *p.SupplierCNPJ
			name, ok := names[cnpj]
			if !ok {
				if name, err = uc.lookupSupplierName(ctx, cnpj); err != nil {
					return nil, err
				}
				names[cnpj] = name
			}
			supplierName = name
		}
		items = append(items, *toProductResponse(p, supplierName))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// UpdateProduct actualiza campos descriptivos, precio y stock reportado.
// Un cambio de precio recalcula el valor de todos los lotes del producto en la misma transacción.
func (uc *LedgerUseCase) UpdateProduct(ctx context.Context, key int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Invalid("nombre requerido")
	}
	if in.UnitPrice != nil {
		if err := entity.ValidateUnitPrice(*in.UnitPrice); err != nil {
			return nil, err
		}
	}
	if in.ReportedStock != nil && *in.ReportedStock < 0 {
		return nil, domain.Invalid("stock reportado negativo")
	}
	if _, err := uc.requireSupplier(ctx, in.SupplierCNPJ); err != nil {
		return nil, err
	}

	now := uc.now()
	var (
		updated  *entity.Product
		repriced bool
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, batchRepo repository.BatchRepository) error {
		p, err := productRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %d: %w", key, domain.ErrNotFound)
		}
		applyProductChanges(p, in)
		if in.UnitPrice != nil && p.SetUnitPrice(*in.UnitPrice) {
			if _, err := batchRepo.RepriceByProduct(ctx, key, p.UnitPrice); err != nil {
				return err
			}
			repriced = true
		}
		p.UpdatedAt = now
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("product_key", key).
		Bool("repriced", repriced).
		Msg("producto actualizado")
	return uc.decorateCommitted(ctx, updated), nil
}

// DeleteProduct elimina el producto y todos sus lotes.
func (uc *LedgerUseCase) DeleteProduct(ctx context.Context, key int64) error {
	found, err := uc.productRepo.Delete(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("producto %d: %w", key, domain.ErrNotFound)
	}
	uc.log.Info().Int64("product_key", key).Msg("producto eliminado")
	return nil
}

// AddBatch registra un lote nuevo. El código debe ser único en todo el sistema.
// Si el lote entra activo, el stock calculado sube en su cantidad.
func (uc *LedgerUseCase) AddBatch(ctx context.Context, key int64, in dto.CreateBatchRequest) (*dto.ProductResponse, error) {
	now := uc.now()
	var (
		updated *entity.Product
		delta   int64
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, batchRepo repository.BatchRepository) error {
		p, err := productRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %d: %w", key, domain.ErrNotFound)
		}
		b, err := entity.NewBatch(key, batchSpec(in), p.UnitPrice, now)
		if err != nil {
			return err
		}
		exists, err := batchRepo.ExistsCode(ctx, b.Code)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("lote %s: %w", b.Code, domain.ErrDuplicate)
		}
		if err := batchRepo.Create(ctx, b); err != nil {
			return err
		}
		delta = b.InitialDelta()
		if p.CalculatedStock, err = applyDelta(ctx, productRepo, key, p.CalculatedStock, delta); err != nil {
			return err
		}
		p.Batches = append(p.Batches, b)
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("product_key", key).
		Str("batch_code", strings.TrimSpace(in.BatchCode)).
		Int64("delta", delta).
		Int64("calculated_stock", updated.CalculatedStock).
		Msg("lote agregado")
	return uc.decorateCommitted(ctx, updated), nil
}

// UpdateBatch aplica cambios parciales a un lote y ajusta el stock con el delta de la transición
// (cambio de cantidad y/o de estado activo).
func (uc *LedgerUseCase) UpdateBatch(ctx context.Context, key int64, code string, in dto.UpdateBatchRequest) (*dto.ProductResponse, error) {
	changes := entity.BatchChanges{
		ManufactureDate: in.ManufactureDate.TimePtr(),
		ExpiryDate:      in.ExpiryDate.TimePtr(),
		ShelfLifeMonths: in.ShelfLifeMonths,
		Quantity:        in.Quantity,
		Active:          in.Active,
		LossReason:      in.LossReason,
	}
	return uc.mutateBatch(ctx, key, code, "lote actualizado", func(b *entity.Batch, p *entity.Product, now time.Time) (int64, error) {
		return b.Apply(changes, p.UnitPrice, now)
	})
}

// DeactivateBatch baja lógica del lote (pérdida). Falla con ErrBatchInactive si ya estaba inactivo.
// El lote se conserva con su valor para el reporte de pérdidas.
func (uc *LedgerUseCase) DeactivateBatch(ctx context.Context, key int64, code string, in dto.DeactivateBatchRequest) (*dto.ProductResponse, error) {
	return uc.mutateBatch(ctx, key, code, "lote desactivado", func(b *entity.Batch, _ *entity.Product, now time.Time) (int64, error) {
		return b.Deactivate(in.LossReason, now)
	})
}

type batchMutation func(b *entity.Batch, p *entity.Product, now time.Time) (int64, error)

func (uc *LedgerUseCase) mutateBatch(ctx context.Context, key int64, code, msg string, mutate batchMutation) (*dto.ProductResponse, error) {
	now := uc.now()
	var (
		updated *entity.Product
		delta   int64
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, batchRepo repository.BatchRepository) error {
		p, err := productRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %d: %w", key, domain.ErrNotFound)
		}
		b := p.FindBatch(code)
		if b == nil {
			return fmt.Errorf("lote %s del producto %d: %w", code, key, domain.ErrNotFound)
		}
		if delta, err = mutate(b, p, now); err != nil {
			return err
		}
		if err := batchRepo.Update(ctx, b); err != nil {
			return err
		}
		if p.CalculatedStock, err = applyDelta(ctx, productRepo, key, p.CalculatedStock, delta); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("product_key", key).
		Str("batch_code", code).
		Int64("delta", delta).
		Int64("calculated_stock", updated.CalculatedStock).
		Msg(msg)
	return uc.decorateCommitted(ctx, updated), nil
}

// applyDelta ajusta el stock calculado sólo si el delta es distinto de cero.
func applyDelta(ctx context.Context, productRepo repository.ProductRepository, key, current, delta int64) (int64, error) {
	if delta == 0 {
		return current, nil
	}
	return productRepo.AdjustCalculatedStock(ctx, key, delta)
}

// requireSupplier valida que el proveedor referenciado exista y devuelve su nombre.
func (uc *LedgerUseCase) requireSupplier(ctx context.Context, cnpj *string) (*string, error) {
	if cnpj == nil {
		return nil, nil
	}
	name, err := uc.lookupSupplierName(ctx, *cnpj)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return nil, fmt.Errorf("proveedor %s: %w", *cnpj, domain.ErrNotFound)
	}
	return name, nil
}

func (uc *LedgerUseCase) lookupSupplierName(ctx context.Context, cnpj string) (*string, error) {
	s, err := uc.supplierRepo.GetByCNPJ(ctx, cnpj)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	name := s.Name
	return &name, nil
}

func (uc *LedgerUseCase) decorate(ctx context.Context, p *entity.Product) (*dto.ProductResponse, error) {
	var supplierName *string
	if p.SupplierCNPJ != nil {
		var err error
		if supplierName, err = uc.lookupSupplierName(ctx, *p.SupplierCNPJ); err != nil {
			return nil, err
		}
	}
	return toProductResponse(p, supplierName), nil
}

// decorateCommitted arma la respuesta de una mutación ya confirmada. Si falla la consulta del
// proveedor se registra y la respuesta sale sin supplier_name: la mutación no se reporta como fallida.
func (uc *LedgerUseCase) decorateCommitted(ctx context.Context, p *entity.Product) *dto.ProductResponse {
	resp, err := uc.decorate(ctx, p)
	if err != nil {
		uc.log.Warn().Err(err).Int64("product_key", p.Key).Msg("nombre de proveedor no disponible tras confirmar")
		return toProductResponse(p, nil)
	}
	return resp
}

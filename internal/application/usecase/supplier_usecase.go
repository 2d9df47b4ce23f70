package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
	"github.com/jhoicas/perecibles-api/pkg/cnpj"
	"github.com/jhoicas/perecibles-api/pkg/logger"
)

// SupplierUseCase registro de proveedores por CNPJ.
type SupplierUseCase struct {
	repo repository.SupplierRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewSupplierUseCase construye el caso de uso con el puerto de persistencia.
func NewSupplierUseCase(repo repository.SupplierRepository, log *logger.Logger) *SupplierUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SupplierUseCase{repo: repo, log: log.Component("suppliers"), now: time.Now}
}

// Create da de alta un proveedor. Devuelve domain.ErrDuplicate si el CNPJ ya existe.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	cnpjKey := strings.TrimSpace(in.CNPJ)
	name := strings.TrimSpace(in.Name)
	if cnpjKey == "" || name == "" {
		return nil, domain.Invalid("cnpj y nombre requeridos")
	}
	if err := cnpj.Validate(cnpjKey); err != nil {
		return nil, domain.Invalid("%v", err)
	}
	cnpjKey = cnpj.Normalize(cnpjKey)
	if in.ReturnPolicyDays < 0 {
		return nil, domain.Invalid("return_policy_days negativo")
	}
	existing, err := uc.repo.GetByCNPJ(ctx, cnpjKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("proveedor %s: %w", cnpjKey, domain.ErrDuplicate)
	}

	now := uc.now()
	s := &entity.Supplier{
		CNPJ:             cnpjKey,
		Name:             name,
		ReturnPolicyDays: in.ReturnPolicyDays,
		Contact:          in.Contact,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("cnpj", cnpjKey).Msg("proveedor creado")
	return toSupplierResponse(s), nil
}

// Get proveedor por CNPJ; domain.ErrNotFound si no existe.
func (uc *SupplierUseCase) Get(ctx context.Context, taxID string) (*dto.SupplierResponse, error) {
	s, err := uc.find(ctx, taxID)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// List todos los proveedores.
func (uc *SupplierUseCase) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return items, nil
}

// Update cambios parciales (nombre, política de devolución, contacto).
func (uc *SupplierUseCase) Update(ctx context.Context, taxID string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.find(ctx, taxID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("nombre vacío")
		}
		s.Name = name
	}
	if in.ReturnPolicyDays != nil {
		if *in.ReturnPolicyDays < 0 {
			return nil, domain.Invalid("return_policy_days negativo")
		}
		s.ReturnPolicyDays = *in.ReturnPolicyDays
	}
	if in.Contact != nil {
		s.Contact = in.Contact
	}
	s.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// Delete elimina el proveedor; los productos que lo referencian quedan sin proveedor.
func (uc *SupplierUseCase) Delete(ctx context.Context, taxID string) error {
	ok, err := uc.repo.Delete(ctx, taxID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("proveedor %s: %w", taxID, domain.ErrNotFound)
	}
	uc.log.Info().Str("cnpj", taxID).Msg("proveedor eliminado")
	return nil
}

func (uc *SupplierUseCase) find(ctx context.Context, taxID string) (*entity.Supplier, error) {
	s, err := uc.repo.GetByCNPJ(ctx, taxID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("proveedor %s: %w", taxID, domain.ErrNotFound)
	}
	return s, nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		CNPJ:             s.CNPJ,
		Name:             s.Name,
		ReturnPolicyDays: s.ReturnPolicyDays,
		Contact:          s.Contact,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

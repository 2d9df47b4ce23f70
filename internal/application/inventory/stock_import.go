package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/application/ports"
	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
	"github.com/jhoicas/perecibles-api/pkg/logger"
	"github.com/jhoicas/perecibles-api/pkg/textnorm"
)

// StockImportUseCase aplica la planilla externa de stock: actualiza stock reportado, precio y
// secciones de los productos existentes y crea los que faltan con datos de relleno.
// Nunca toca lotes ni el stock calculado (salvo el recálculo de valor por cambio de precio).
type StockImportUseCase struct {
	txRunner TxRunner
	locker   ports.Locker
	lockTTL  time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewStockImportUseCase construye el caso de uso.
func NewStockImportUseCase(txRunner TxRunner, locker ports.Locker, lockTTL time.Duration, log *logger.Logger) *StockImportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockImportUseCase{
		txRunner: txRunner,
		locker:   locker,
		lockTTL:  lockTTL,
		log:      log.Component("stock_import"),
		now:      time.Now,
	}
}

// Import procesa los registros uno por uno, cada uno en su propia transacción.
// Los registros inválidos o en conflicto se reportan en Failed; un error de almacenamiento
// corta la corrida. Sólo una importación puede correr a la vez (ErrConflict).
func (uc *StockImportUseCase) Import(ctx context.Context, in dto.ImportStockRequest) (*dto.ImportResultDTO, error) {
	if len(in.Records) == 0 {
		return nil, domain.Invalid("la importación no trae registros")
	}
	lock, err := uc.locker.Obtain(ctx, ports.LockStockImport, uc.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo liberar el lock de importación")
		}
	}()

	res := &dto.ImportResultDTO{Failed: []dto.ImportFailure{}}
	for _, rec := range in.Records {
		created, err := uc.upsert(ctx, rec)
		switch {
		case err == nil && created:
			res.Created++
		case err == nil:
			res.Updated++
		case isRecordError(err):
			res.Failed = append(res.Failed, dto.ImportFailure{ProductKey: rec.ProductKey, Error: err.Error()})
		default:
			uc.log.Error().Err(err).Int64("product_key", rec.ProductKey).Msg("importación abortada")
			return nil, err
		}
	}

	uc.log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("failed", len(res.Failed)).
		Msg("importación de stock terminada")
	return res, nil
}

func isRecordError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, domain.ErrNotFound)
}

func (uc *StockImportUseCase) upsert(ctx context.Context, rec dto.StockRecord) (bool, error) {
	if rec.ProductKey <= 0 {
		return false, domain.Invalid("product_key debe ser positivo")
	}
	if err := entity.ValidateUnitPrice(rec.UnitPrice); err != nil {
		return false, err
	}
	if rec.ReportedStock != nil && *rec.ReportedStock < 0 {
		return false, domain.Invalid("stock reportado negativo")
	}

	now := uc.now()
	created := false
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, batchRepo repository.BatchRepository) error {
		p, err := productRepo.GetForUpdate(ctx, rec.ProductKey)
		if err != nil {
			return err
		}
		if p == nil {
			created = true
			return productRepo.Create(ctx, placeholderProduct(rec, now))
		}
		p.ReportedStock = rec.ReportedStock
		p.SectionCode = rec.SectionCode
		p.SectionName = rec.SectionName
		p.SubsectionCode = rec.SubsectionCode
		p.SubsectionName = rec.SubsectionName
		if p.SetUnitPrice(rec.UnitPrice) {
			if _, err := batchRepo.RepriceByProduct(ctx, p.Key, p.UnitPrice); err != nil {
				return err
			}
		}
		p.UpdatedAt = now
		return productRepo.Update(ctx, p)
	})
	if err != nil {
		return false, fmt.Errorf("producto %d: %w", rec.ProductKey, err)
	}
	return created, nil
}

// placeholderProduct producto mínimo para una clave que la planilla trae y el sistema no conoce.
func placeholderProduct(rec dto.StockRecord, now time.Time) *entity.Product {
	return &entity.Product{
		Key:                 rec.ProductKey,
		Name:                entity.PendingRegistration,
		NameKey:             textnorm.Key(entity.PendingRegistration),
		Brand:               entity.PendingRegistration,
		SpecSheetURL:        entity.PendingRegistration,
		ProductURL:          entity.PendingRegistration,
		Color:               entity.PendingRegistration,
		UnitPrice:           rec.UnitPrice,
		ReportedStock:       rec.ReportedStock,
		SectionCode:         rec.SectionCode,
		SectionName:         rec.SectionName,
		SubsectionCode:      rec.SubsectionCode,
		SubsectionName:      rec.SubsectionName,
		RegistrationPending: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

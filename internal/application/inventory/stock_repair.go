package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/application/ports"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
	"github.com/jhoicas/perecibles-api/pkg/logger"
)

// StockRepairUseCase recalcula el stock calculado desde la suma de lotes activos.
// Es una herramienta de mantenimiento fuera de línea: el ledger nunca lo necesita en operación normal.
type StockRepairUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	locker      ports.Locker
	lockTTL     time.Duration
	log         *logger.Logger
}

// NewStockRepairUseCase construye el caso de uso.
func NewStockRepairUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locker ports.Locker,
	lockTTL time.Duration,
	log *logger.Logger,
) *StockRepairUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockRepairUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		locker:      locker,
		lockTTL:     lockTTL,
		log:         log.Component("stock_repair"),
	}
}

// Run revisa cada producto bajo su lock de fila y corrige el contador si se desvió.
// Devuelve los productos corregidos con el valor guardado y el real.
func (uc *StockRepairUseCase) Run(ctx context.Context) (*dto.StockRepairResultDTO, error) {
	lock, err := uc.locker.Obtain(ctx, ports.LockStockRepair, uc.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo liberar el lock de reparación")
		}
	}()

	keys, err := uc.productRepo.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.StockRepairResultDTO{Repaired: []dto.StockDrift{}}
	for _, key := range keys {
		var drift *dto.StockDrift
		err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, batchRepo repository.BatchRepository) error {
			p, err := productRepo.GetForUpdate(ctx, key)
			if err != nil || p == nil {
				return err
			}
			actual, err := batchRepo.SumActiveQuantity(ctx, key)
			if err != nil {
				return err
			}
			if actual == p.CalculatedStock {
				return nil
			}
			if err := productRepo.SetCalculatedStock(ctx, key, actual); err != nil {
				return err
			}
			drift = &dto.StockDrift{ProductKey: key, Stored: p.CalculatedStock, Actual: actual}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reparar producto %d: %w", key, err)
		}
		res.Checked++
		if drift != nil {
			uc.log.Warn().
				Int64("product_key", drift.ProductKey).
				Int64("stored", drift.Stored).
				Int64("actual", drift.Actual).
				Msg("stock calculado corregido")
			res.Repaired = append(res.Repaired, *drift)
		}
	}

	uc.log.Info().Int("checked", res.Checked).Int("repaired", len(res.Repaired)).Msg("reparación de stock terminada")
	return res, nil
}

// Package analytics contiene los casos de uso de solo lectura del dashboard de vencimientos:
// KPIs globales, distribución por producto y el reporte PDF.
package analytics

import (
	"context"
	"errors"
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

// ReportGenerator puerto para renderizar el snapshot (PDF con maroto en infraestructura).
type ReportGenerator interface {
	GenerateDashboardPDF(ctx context.Context, snap *dto.DashboardSnapshotDTO) ([]byte, error)
}

// DashboardUseCase calcula los KPIs sobre toda la población producto→lote.
//
// Fuente de datos: InventoryReadRepository (lecturas sin lock).
// El snapshot puede reflejar una mutación del ledger que termina un instante después.
type DashboardUseCase struct {
	readRepo repository.InventoryReadRepository
	reports  ReportGenerator
	timeout  time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewDashboardUseCase construye el caso de uso. timeout es el presupuesto de cada agregación.
func NewDashboardUseCase(
	readRepo repository.InventoryReadRepository,
	reports ReportGenerator,
	timeout time.Duration,
	log *logger.Logger,
) *DashboardUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardUseCase{
		readRepo: readRepo,
		reports:  reports,
		timeout:  timeout,
		log:      log.Component("dashboard"),
		now:      time.Now,
	}
}

// WithClock fija el "ahora" de referencia de las ventanas.
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSnapshot recorre todos los productos una vez y arma el snapshot.
// Si se agota el presupuesto devuelve ErrTimeout, nunca datos parciales.
func (uc *DashboardUseCase) GetSnapshot(ctx context.Context) (*dto.DashboardSnapshotDTO, error) {
	ctx, cancel := uc.withBudget(ctx)
	defer cancel()

	start := time.Now()
	builder := newSnapshotBuilder(uc.now())
	err := uc.readRepo.ScanProducts(ctx, func(p *entity.Product) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		builder.add(p)
		return nil
	})
	if err != nil {
		return nil, uc.mapError(err)
	}
	snap := builder.build()

	uc.log.Debug().
		Int("products", snap.General.TotalProducts).
		Int("batches", snap.Batches.TotalBatches).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot del dashboard calculado")
	return snap, nil
}

// GetSnapshotPDF snapshot renderizado como PDF.
func (uc *DashboardUseCase) GetSnapshotPDF(ctx context.Context) ([]byte, error) {
	snap, err := uc.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if uc.reports == nil {
		return nil, fmt.Errorf("generador de reportes no configurado")
	}
	return uc.reports.GenerateDashboardPDF(ctx, snap)
}

// GetProductExpiryDistribution distribución de cantidades activas por ventana de vencimiento
// de todos los productos cuyo nombre normalizado coincide con productName.
func (uc *DashboardUseCase) GetProductExpiryDistribution(ctx context.Context, productName string) (*dto.ProductExpiryDistributionDTO, error) {
	name := strings.TrimSpace(productName)
	if name == "" {
		return nil, domain.Invalid("product_name requerido")
	}
	ctx, cancel := uc.withBudget(ctx)
	defer cancel()

	products, err := uc.readRepo.FindByNameKey(ctx, textnorm.Key(name))
	if err != nil {
		return nil, uc.mapError(err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("producto %q: %w", name, domain.ErrNotFound)
	}

	buckets, total := quantityByWindow(uc.now(), products)
	keys := make([]int64, 0, len(products))
	for _, p := range products {
		keys = append(keys, p.Key)
	}
	return &dto.ProductExpiryDistributionDTO{
		ProductName:    products[0].Name,
		ProductKeys:    keys,
		ActiveQuantity: total,
		Quantities:     buckets.toDTO(),
	}, nil
}

func (uc *DashboardUseCase) withBudget(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.timeout)
}

func (uc *DashboardUseCase) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		uc.log.Warn().Dur("timeout", uc.timeout).Msg("agregación del dashboard cancelada por tiempo")
		return fmt.Errorf("%w: agregación excedió %s", domain.ErrTimeout, uc.timeout)
	}
	return err
}

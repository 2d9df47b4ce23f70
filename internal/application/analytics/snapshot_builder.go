package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/inventory"
)

const (
	nearExpiryLimit     = 5
	reconciliationLimit = 10
)

// valueBuckets acumuladores sin redondear; se redondea sólo al construir el DTO.
type valueBuckets [5]decimal.Decimal

type countBuckets [5]int64

// snapshotBuilder acumula todos los KPIs del dashboard en un único recorrido producto→lote.
type snapshotBuilder struct {
	now time.Time

	products       int
	withReported   int
	reportedValue  decimal.Decimal
	stockValue     decimal.Decimal
	batches        int
	activeBatches  int
	lostBatches    int
	lostValue      decimal.Decimal
	valueByWindow  valueBuckets
	countByWindow  countBuckets
	nearExpiry     []dto.NearExpiryItemDTO
	reconciliation []dto.ReconciliationItemDTO
}

func newSnapshotBuilder(now time.Time) *snapshotBuilder {
	return &snapshotBuilder{now: now}
}

// add incorpora un producto con todos sus lotes.
func (b *snapshotBuilder) add(p *entity.Product) {
	b.products++
	if p.ReportedStock != nil && *p.ReportedStock > 0 {
		b.withReported++
	}
	if v, ok := p.ReportedValue(); ok {
		b.reportedValue = b.reportedValue.Add(v)
	}
	b.stockValue = b.stockValue.Add(p.StockValue())

	atRisk := false
	for _, batch := range p.Batches {
		b.batches++
		if !batch.Active {
			b.lostBatches++
			b.lostValue = b.lostValue.Add(batch.UnitValue)
			continue
		}
		b.activeBatches++
		w := inventory.ClassifyExpiry(b.now, batch.ExpiryDate)
		b.countByWindow[w]++
		b.valueByWindow[w] = b.valueByWindow[w].Add(batch.UnitValue)
		if !batch.ExpiryDate.After(b.now.Add(inventory.RiskHorizon)) {
			atRisk = true
		}
		if inventory.WithinHorizon(b.now, batch.ExpiryDate, inventory.NearExpiryHorizon) {
			b.nearExpiry = append(b.nearExpiry, dto.NearExpiryItemDTO{
				ProductKey:   p.Key,
				ProductName:  p.Name,
				BatchCode:    batch.Code,
				ExpiryDate:   batch.ExpiryDate,
				DaysToExpiry: inventory.DaysUntil(b.now, batch.ExpiryDate),
				Quantity:     batch.Quantity,
				UnitValue:    batch.UnitValue.Round(2),
			})
		}
	}

	if p.ReportedStock != nil && *p.ReportedStock > p.CalculatedStock {
		b.reconciliation = append(b.reconciliation, reconciliationItem(p, atRisk))
	}
}

func reconciliationItem(p *entity.Product, atRisk bool) dto.ReconciliationItemDTO {
	reported := *p.ReportedStock
	denom := reported
	if denom < 1 {
		denom = 1
	}
	pct, _ := decimal.NewFromInt(p.CalculatedStock).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(denom)).
		Round(1).
		Float64()
	return dto.ReconciliationItemDTO{
		ProductKey:      p.Key,
		ProductName:     p.Name,
		ReportedStock:   reported,
		CalculatedStock: p.CalculatedStock,
		Shortfall:       reported - p.CalculatedStock,
		CompletionPct:   pct,
		AtRisk:          atRisk,
	}
}

func (b *snapshotBuilder) build() *dto.DashboardSnapshotDTO {
	sort.SliceStable(b.nearExpiry, func(i, j int) bool {
		x, y := b.nearExpiry[i], b.nearExpiry[j]
		if !x.ExpiryDate.Equal(y.ExpiryDate) {
			return x.ExpiryDate.Before(y.ExpiryDate)
		}
		return x.BatchCode < y.BatchCode
	})
	if len(b.nearExpiry) > nearExpiryLimit {
		b.nearExpiry = b.nearExpiry[:nearExpiryLimit]
	}

	sort.SliceStable(b.reconciliation, func(i, j int) bool {
		x, y := b.reconciliation[i], b.reconciliation[j]
		if x.AtRisk != y.AtRisk {
			return x.AtRisk
		}
		if x.Shortfall != y.Shortfall {
			return x.Shortfall > y.Shortfall
		}
		return x.ProductKey < y.ProductKey
	})
	if len(b.reconciliation) > reconciliationLimit {
		b.reconciliation = b.reconciliation[:reconciliationLimit]
	}

	near := b.nearExpiry
	if near == nil {
		near = []dto.NearExpiryItemDTO{}
	}
	recon := b.reconciliation
	if recon == nil {
		recon = []dto.ReconciliationItemDTO{}
	}

	return &dto.DashboardSnapshotDTO{
		GeneratedAt: b.now,
		General: dto.GeneralKPIsDTO{
			TotalProducts:             b.products,
			ProductsWithReportedStock: b.withReported,
			TotalReportedValue:        b.reportedValue.Round(2),
			TotalStockValue:           b.stockValue.Round(2),
		},
		Batches: dto.BatchKPIsDTO{
			TotalBatches:  b.batches,
			ActiveBatches: b.activeBatches,
			LostBatches:   b.lostBatches,
			LostValue:     b.lostValue.Round(2),
		},
		ValueAtRisk:    b.valueByWindow.toDTO(),
		ByWindow:       b.countByWindow.toDTO(),
		NearExpiry:     near,
		Reconciliation: recon,
	}
}

func (v valueBuckets) toDTO() dto.ExpiryValueBucketsDTO {
	return dto.ExpiryValueBucketsDTO{
		Expired:    v[inventory.WindowExpired].Round(2),
		Days0To30:  v[inventory.Window0To30].Round(2),
		Days31To60: v[inventory.Window31To60].Round(2),
		Days61To90: v[inventory.Window61To90].Round(2),
		Over90:     v[inventory.WindowOver90].Round(2),
	}
}

func (c countBuckets) toDTO() dto.ExpiryCountBucketsDTO {
	return dto.ExpiryCountBucketsDTO{
		Expired:    c[inventory.WindowExpired],
		Days0To30:  c[inventory.Window0To30],
		Days31To60: c[inventory.Window31To60],
		Days61To90: c[inventory.Window61To90],
		Over90:     c[inventory.WindowOver90],
	}
}

// quantityByWindow distribución de cantidades (no de lotes) de los lotes activos de varios productos.
func quantityByWindow(now time.Time, products []*entity.Product) (countBuckets, int64) {
	var out countBuckets
	var total int64
	for _, p := range products {
		for _, batch := range p.Batches {
			if !batch.Active {
				continue
			}
			out[inventory.ClassifyExpiry(now, batch.ExpiryDate)] += batch.Quantity
			total += batch.Quantity
		}
	}
	return out, total
}

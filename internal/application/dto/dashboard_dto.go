package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSnapshotDTO respuesta de GET /api/dashboard/kpis.
// Los montos vienen redondeados a 2 decimales; se calcula en una sola pasada sobre producto→lote.
type DashboardSnapshotDTO struct {
	GeneratedAt time.Time `json:"generated_at"`

	General     GeneralKPIsDTO        `json:"general"`
	Batches     BatchKPIsDTO          `json:"batches"`
	ValueAtRisk ExpiryValueBucketsDTO `json:"value_at_risk"` // valor de lotes activos por ventana de vencimiento
	ByWindow    ExpiryCountBucketsDTO `json:"by_window"`     // cantidad de lotes activos por ventana

	// Top 5 lotes activos que vencen en los próximos 15 días (más cercano primero)
	NearExpiry []NearExpiryItemDTO `json:"near_expiry"`

	// Top 10 productos en riesgo de conciliación (stock calculado < reportado)
	Reconciliation []ReconciliationItemDTO `json:"reconciliation"`
}

// GeneralKPIsDTO totales a nivel producto.
type GeneralKPIsDTO struct {
	TotalProducts             int             `json:"total_products"`
	ProductsWithReportedStock int             `json:"products_with_reported_stock"`
	TotalReportedValue        decimal.Decimal `json:"total_reported_value"`
	TotalStockValue           decimal.Decimal `json:"total_stock_value"`
}

// BatchKPIsDTO totales a nivel lote.
type BatchKPIsDTO struct {
	TotalBatches  int             `json:"total_batches"`
	ActiveBatches int             `json:"active_batches"`
	LostBatches   int             `json:"lost_batches"`
	LostValue     decimal.Decimal `json:"lost_value"`
}

// ExpiryValueBucketsDTO montos por ventana de vencimiento. Expired = activos ya vencidos.
type ExpiryValueBucketsDTO struct {
	Expired    decimal.Decimal `json:"expired"`
	Days0To30  decimal.Decimal `json:"days_0_30"`
	Days31To60 decimal.Decimal `json:"days_31_60"`
	Days61To90 decimal.Decimal `json:"days_61_90"`
	Over90     decimal.Decimal `json:"over_90"`
}

// ExpiryCountBucketsDTO conteos o cantidades por ventana de vencimiento.
type ExpiryCountBucketsDTO struct {
	Expired    int64 `json:"expired"`
	Days0To30  int64 `json:"days_0_30"`
	Days31To60 int64 `json:"days_31_60"`
	Days61To90 int64 `json:"days_61_90"`
	Over90     int64 `json:"over_90"`
}

// NearExpiryItemDTO lote próximo a vencer.
type NearExpiryItemDTO struct {
	ProductKey   int64           `json:"product_key"`
	ProductName  string          `json:"product_name"`
	BatchCode    string          `json:"batch_code"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	DaysToExpiry int             `json:"days_to_expiry"`
	Quantity     int64           `json:"quantity"`
	UnitValue    decimal.Decimal `json:"unit_value"`
}

// ReconciliationItemDTO producto con stock calculado por debajo del reportado.
// Shortfall = reportado - calculado (falta_atribuir); CompletionPct = calculado/reportado × 100.
type ReconciliationItemDTO struct {
	ProductKey      int64   `json:"product_key"`
	ProductName     string  `json:"product_name"`
	ReportedStock   int64   `json:"reported_stock"`
	CalculatedStock int64   `json:"calculated_stock"`
	Shortfall       int64   `json:"shortfall"`
	CompletionPct   float64 `json:"completion_pct"`
	AtRisk          bool    `json:"at_risk"` // algún lote activo vence en ≤ 90 días
}

// ProductExpiryDistributionDTO respuesta de GET /api/dashboard/expiry-distribution.
// Quantities suma las cantidades de lotes activos de todos los productos con ese nombre.
type ProductExpiryDistributionDTO struct {
	ProductName    string                `json:"product_name"`
	ProductKeys    []int64               `json:"product_keys"`
	ActiveQuantity int64                 `json:"active_quantity"`
	Quantities     ExpiryCountBucketsDTO `json:"quantities"`
}

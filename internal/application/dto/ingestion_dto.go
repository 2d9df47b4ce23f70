package dto

import "github.com/shopspring/decimal"

// StockRecord fila de la planilla externa de stock ya parseada.
type StockRecord struct {
	ProductKey     int64           `json:"product_key" validate:"required,gt=0"`
	ReportedStock  *int64          `json:"reported_stock" validate:"omitempty,gte=0"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SectionCode    string          `json:"section_code" validate:"max=50"`
	SectionName    string          `json:"section_name" validate:"max=100"`
	SubsectionCode string          `json:"subsection_code" validate:"max=50"`
	SubsectionName string          `json:"subsection_name" validate:"max=100"`
}

// ImportStockRequest cuerpo de POST /api/products/import.
type ImportStockRequest struct {
	Records []StockRecord `json:"records" validate:"required,min=1"`
}

// ImportFailure registro rechazado durante la importación.
type ImportFailure struct {
	ProductKey int64  `json:"product_key"`
	Error      string `json:"error"`
}

// ImportResultDTO resumen de una corrida de importación.
type ImportResultDTO struct {
	Created int             `json:"created"`
	Updated int             `json:"updated"`
	Failed  []ImportFailure `json:"failed"`
}

// StockDrift producto cuyo contador no coincidía con la suma de sus lotes activos.
type StockDrift struct {
	ProductKey int64 `json:"product_key"`
	Stored     int64 `json:"stored"`
	Actual     int64 `json:"actual"`
}

// StockRepairResultDTO resumen de la reparación del stock calculado.
type StockRepairResultDTO struct {
	Checked  int          `json:"checked"`
	Repaired []StockDrift `json:"repaired"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto (opcionalmente con sus lotes iniciales).
type CreateProductRequest struct {
	ProductKey     int64                `json:"product_key" validate:"required,gt=0"`
	Name           string               `json:"name" validate:"required,min=1,max=200"`
	EAN            *int64               `json:"ean" validate:"omitempty,gt=0"`
	Brand          string               `json:"brand" validate:"max=100"`
	SpecSheetURL   string               `json:"spec_sheet_url" validate:"max=500"`
	ProductURL     string               `json:"product_url" validate:"max=300"`
	Color          string               `json:"color" validate:"max=50"`
	AVS            bool                 `json:"avs"`
	UnitPrice      decimal.Decimal      `json:"unit_price"`
	ReportedStock  *int64               `json:"reported_stock" validate:"omitempty,gte=0"`
	SectionCode    string               `json:"section_code" validate:"max=50"`
	SectionName    string               `json:"section_name" validate:"max=100"`
	SubsectionCode string               `json:"subsection_code" validate:"max=50"`
	SubsectionName string               `json:"subsection_name" validate:"max=100"`
	SupplierCNPJ   *string              `json:"supplier_cnpj" validate:"omitempty,len=14,numeric"`
	Batches        []CreateBatchRequest `json:"batches" validate:"omitempty,dive"`
}

// UpdateProductRequest actualización parcial. El stock calculado no es editable.
type UpdateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	EAN            *int64           `json:"ean" validate:"omitempty,gt=0"`
	Brand          *string          `json:"brand" validate:"omitempty,max=100"`
	SpecSheetURL   *string          `json:"spec_sheet_url" validate:"omitempty,max=500"`
	ProductURL     *string          `json:"product_url" validate:"omitempty,max=300"`
	Color          *string          `json:"color" validate:"omitempty,max=50"`
	AVS            *bool            `json:"avs"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	ReportedStock  *int64           `json:"reported_stock" validate:"omitempty,gte=0"`
	SectionCode    *string          `json:"section_code" validate:"omitempty,max=50"`
	SectionName    *string          `json:"section_name" validate:"omitempty,max=100"`
	SubsectionCode *string          `json:"subsection_code" validate:"omitempty,max=50"`
	SubsectionName *string          `json:"subsection_name" validate:"omitempty,max=100"`
	SupplierCNPJ   *string          `json:"supplier_cnpj" validate:"omitempty,len=14,numeric"`
}

// ProductResponse salida de un producto con sus lotes y valores derivados.
type ProductResponse struct {
	ProductKey          int64            `json:"product_key"`
	Name                string           `json:"name"`
	EAN                 *int64           `json:"ean"`
	Brand               string           `json:"brand"`
	SpecSheetURL        string           `json:"spec_sheet_url"`
	ProductURL          string           `json:"product_url"`
	Color               string           `json:"color"`
	AVS                 bool             `json:"avs"`
	UnitPrice           decimal.Decimal  `json:"unit_price"`
	ReportedStock       *int64           `json:"reported_stock"`
	CalculatedStock     int64            `json:"calculated_stock"`
	StockValue          decimal.Decimal  `json:"stock_value"`
	ReportedValue       *decimal.Decimal `json:"reported_value"`
	StockDiscrepancy    int64            `json:"stock_discrepancy"`
	SectionCode         string           `json:"section_code"`
	SectionName         string           `json:"section_name"`
	SubsectionCode      string           `json:"subsection_code"`
	SubsectionName      string           `json:"subsection_name"`
	SupplierCNPJ        *string          `json:"supplier_cnpj"`
	SupplierName        *string          `json:"supplier_name"`
	RegistrationPending bool             `json:"registration_pending"`
	Batches             []BatchResponse  `json:"batches"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/perecibles-api/internal/domain"
)

// PendingRegistration texto de relleno para los campos que la planilla de stock no trae.
const PendingRegistration = "pendiente de registro"

// UnitPriceScale decimales admitidos en el precio unitario (products.unit_price es NUMERIC(14,4)).
const UnitPriceScale = 4

var maxUnitPrice = decimal.New(1, 10)

// ValidateUnitPrice rechaza precios negativos, con más de UnitPriceScale decimales o >= 1e10.
// Un precio redondeado por la base dejaría unit_value distinto de precio × cantidad.
func ValidateUnitPrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return domain.Invalid("precio unitario negativo")
	case price.GreaterThanOrEqual(maxUnitPrice):
		return domain.Invalid("precio unitario fuera de rango (máximo %s)", maxUnitPrice.Sub(decimal.New(1, -UnitPriceScale)))
	case !price.Equal(price.Truncate(UnitPriceScale)):
		return domain.Invalid("precio unitario con más de %d decimales", UnitPriceScale)
	}
	return nil
}

// Product representa un producto perecedero (agregado raíz) con sus lotes.
// CalculatedStock es la suma de Quantity de los lotes activos; sólo el ledger lo modifica.
// ReportedStock proviene de un sistema externo (planilla) y se usa sólo para conciliación.
type Product struct {
	Key                 int64  // código LM: identidad externa e inmutable
	Name                string
	NameKey             string // nombre normalizado para búsquedas
	EAN                 *int64
	Brand               string
	SpecSheetURL        string
	ProductURL          string
	Color               string
	AVS                 bool
	UnitPrice           decimal.Decimal
	ReportedStock       *int64
	CalculatedStock     int64
	SectionCode         string
	SectionName         string
	SubsectionCode      string
	SubsectionName      string
	SupplierCNPJ        *string
	RegistrationPending bool
	Batches             []*Batch
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// StockValue valor del stock calculado (precio × stock calculado).
func (p *Product) StockValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(p.CalculatedStock))
}

// ReportedValue valor del stock reportado; ok=false si no hay stock reportado.
func (p *Product) ReportedValue() (decimal.Decimal, bool) {
	if p.ReportedStock == nil {
		return decimal.Zero, false
	}
	return p.UnitPrice.Mul(decimal.NewFromInt(*p.ReportedStock)), true
}

// StockDiscrepancy reportado - calculado (0 si no hay stock reportado).
func (p *Product) StockDiscrepancy() int64 {
	if p.ReportedStock == nil {
		return 0
	}
	return *p.ReportedStock - p.CalculatedStock
}

// SetUnitPrice cambia el precio y recalcula el valor de todos los lotes (activos e inactivos).
// Devuelve false si el precio no cambió.
func (p *Product) SetUnitPrice(price decimal.Decimal) bool {
	if p.UnitPrice.Equal(price) {
		return false
	}
	p.UnitPrice = price
	for _, b := range p.Batches {
		b.Reprice(price)
	}
	return true
}

// ActiveQuantity suma de cantidades de lotes activos (base del invariante de stock).
func (p *Product) ActiveQuantity() int64 {
	var total int64
	for _, b := range p.Batches {
		if b.Active {
			total += b.Quantity
		}
	}
	return total
}

// FindBatch busca un lote del producto por código.
func (p *Product) FindBatch(code string) *Batch {
	for _, b := range p.Batches {
		if b.Code == code {
			return b
		}
	}
	return nil
}

// Clone copia profunda del producto y sus lotes.
func (p *Product) Clone() *Product {
	c := *p
	if p.EAN != nil {
		v := *p.EAN
		c.EAN = &v
	}
	if p.ReportedStock != nil {
		v := *p.ReportedStock
		c.ReportedStock = &v
	}
	if p.SupplierCNPJ != nil {
		v := *p.SupplierCNPJ
		c.SupplierCNPJ = &v
	}
	c.Batches = make([]*Batch, len(p.Batches))
	for i, b := range p.Batches {
		c.Batches[i] = b.Clone()
	}
	return &c
}

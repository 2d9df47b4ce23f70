package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/inventory"
)

// Batch representa un lote fechado de un producto. Pertenece a un único Product y sólo
// se crea, edita o desactiva a través del ledger.
// UnitValue = precio unitario del producto × Quantity al momento del último recálculo.
type Batch struct {
	ID              string
	ProductKey      int64
	Code            string // único en todo el sistema
	ManufactureDate time.Time
	ExpiryDate      time.Time
	ShelfLifeMonths int
	Quantity        int64
	Active          bool
	StatusChangedAt time.Time
	UnitValue       decimal.Decimal
	LossReason      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BatchSpec datos de entrada para construir un lote. Debe venir ExpiryDate o ShelfLifeMonths.
type BatchSpec struct {
	Code            string
	ManufactureDate time.Time
	ExpiryDate      *time.Time
	ShelfLifeMonths *int
	Quantity        int64
	Active          *bool // nil = activo
}

// BatchChanges cambios parciales sobre un lote existente (nil = sin cambio).
type BatchChanges struct {
	ManufactureDate *time.Time
	ExpiryDate      *time.Time
	ShelfLifeMonths *int
	Quantity        *int64
	Active          *bool
	LossReason      *string
}

// NewBatch construye un lote resolviendo el vencimiento o la vida útil faltante.
// Si vienen ambos, manda ExpiryDate y los meses se derivan de él.
func NewBatch(productKey int64, spec BatchSpec, unitPrice decimal.Decimal, now time.Time) (*Batch, error) {
	code := strings.TrimSpace(spec.Code)
	if code == "" {
		return nil, domain.Invalid("código de lote requerido")
	}
	if spec.Quantity < 0 {
		return nil, domain.Invalid("cantidad negativa en lote %s", code)
	}
	expiry, months, err := resolveExpiry(spec.ManufactureDate, spec.ExpiryDate, spec.ShelfLifeMonths)
	if err != nil {
		return nil, err
	}
	active := true
	if spec.Active != nil {
		active = *spec.Active
	}
	return &Batch{
		ProductKey:      productKey,
		Code:            code,
		ManufactureDate: spec.ManufactureDate,
		ExpiryDate:      expiry,
		ShelfLifeMonths: months,
		Quantity:        spec.Quantity,
		Active:          active,
		StatusChangedAt: now,
		UnitValue:       unitPrice.Mul(decimal.NewFromInt(spec.Quantity)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func resolveExpiry(manufacture time.Time, expiry *time.Time, months *int) (time.Time, int, error) {
	if manufacture.IsZero() {
		return time.Time{}, 0, domain.Invalid("fecha de fabricación requerida")
	}
	switch {
	case expiry != nil:
		if expiry.Before(manufacture) {
			return time.Time{}, 0, domain.Invalid("vencimiento anterior a la fabricación")
		}
		return *expiry, inventory.MonthsBetween(manufacture, *expiry), nil
	case months != nil:
		if *months <= 0 {
			return time.Time{}, 0, domain.Invalid("vida útil debe ser mayor a cero")
		}
		return inventory.ExpiryFromShelfLife(manufacture, *months), *months, nil
	default:
		return time.Time{}, 0, domain.Invalid("se requiere fecha de vencimiento o vida útil en meses")
	}
}

// State estado relevante para el stock calculado.
func (b *Batch) State() inventory.BatchState {
	return inventory.BatchState{Active: b.Active, Quantity: b.Quantity}
}

// InitialDelta delta de stock que aporta un lote recién creado.
func (b *Batch) InitialDelta() int64 {
	return inventory.StockDelta(inventory.BatchState{}, b.State())
}

// Apply aplica cambios al lote, recalcula UnitValue con el precio vigente y devuelve
// el delta de stock de la transición. Es la única vía para mutar un lote existente.
func (b *Batch) Apply(ch BatchChanges, unitPrice decimal.Decimal, now time.Time) (int64, error) {
	before := b.State()

	next := *b
	if ch.Quantity != nil {
		if *ch.Quantity < 0 {
			return 0, domain.Invalid("cantidad negativa en lote %s", b.Code)
		}
		next.Quantity = *ch.Quantity
	}
	if ch.ManufactureDate != nil || ch.ExpiryDate != nil || ch.ShelfLifeMonths != nil {
		mfg := b.ManufactureDate
		if ch.ManufactureDate != nil {
			mfg = *ch.ManufactureDate
		}
		expiry := ch.ExpiryDate
		if expiry == nil && ch.ShelfLifeMonths == nil {
			// sólo cambió la fabricación: se conserva el vencimiento y se re-derivan los meses
			current := b.ExpiryDate
			expiry = &current
		}
		resolved, months, err := resolveExpiry(mfg, expiry, ch.ShelfLifeMonths)
		if err != nil {
			return 0, err
		}
		next.ManufactureDate = mfg
		next.ExpiryDate = resolved
		next.ShelfLifeMonths = months
	}
	if ch.Active != nil && *ch.Active != b.Active {
		next.Active = *ch.Active
		next.StatusChangedAt = now
	}
	if ch.LossReason != nil {
		reason := *ch.LossReason
		next.LossReason = &reason
	}
	next.UnitValue = unitPrice.Mul(decimal.NewFromInt(next.Quantity))
	next.UpdatedAt = now

	*b = next
	return inventory.StockDelta(before, b.State()), nil
}

// Deactivate baja lógica del lote. Falla con ErrBatchInactive si ya estaba inactivo.
// UnitValue se conserva para el reporte de pérdidas.
func (b *Batch) Deactivate(reason *string, now time.Time) (int64, error) {
	if !b.Active {
		return 0, domain.ErrBatchInactive
	}
	before := b.State()
	b.Active = false
	b.StatusChangedAt = now
	b.UpdatedAt = now
	if reason != nil {
		r := *reason
		b.LossReason = &r
	}
	return inventory.StockDelta(before, b.State()), nil
}

// Reprice recalcula UnitValue con un nuevo precio unitario, sin importar el estado.
func (b *Batch) Reprice(unitPrice decimal.Decimal) {
	b.UnitValue = unitPrice.Mul(decimal.NewFromInt(b.Quantity))
}

// Clone copia profunda del lote.
func (b *Batch) Clone() *Batch {
	c := *b
	if b.LossReason != nil {
		r := *b.LossReason
		c.LossReason = &r
	}
	return &c
}

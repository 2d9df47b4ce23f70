package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/perecibles-api/internal/domain"
)

var (
	now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mfg = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

func TestNewBatch_ResuelveVencimiento(t *testing.T) {
	price := decimal.RequireFromString("15.75")

	b, err := NewBatch(1, BatchSpec{Code: " L-1 ", ManufactureDate: mfg, ShelfLifeMonths: ptr(6), Quantity: 100}, price, now)
	require.NoError(t, err)
	assert.Equal(t, "L-1", b.Code)
	assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), b.ExpiryDate)
	assert.True(t, b.UnitValue.Equal(decimal.NewFromInt(1575)))
	assert.True(t, b.Active)
	assert.Equal(t, int64(100), b.InitialDelta())

	// con ambos manda el vencimiento explícito
	expiry := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	b, err = NewBatch(1, BatchSpec{Code: "L-2", ManufactureDate: mfg, ExpiryDate: &expiry, ShelfLifeMonths: ptr(12), Quantity: 1}, price, now)
	require.NoError(t, err)
	assert.Equal(t, expiry, b.ExpiryDate)
	assert.Equal(t, 2, b.ShelfLifeMonths)

	b, err = NewBatch(1, BatchSpec{Code: "L-3", ManufactureDate: mfg, ShelfLifeMonths: ptr(1), Quantity: 5, Active: ptr(false)}, price, now)
	require.NoError(t, err)
	assert.Zero(t, b.InitialDelta())
}

func TestNewBatch_Validaciones(t *testing.T) {
	before := mfg.AddDate(0, 0, -1)
	cases := []struct {
		name string
		spec BatchSpec
	}{
		{"sin código", BatchSpec{Code: "  ", ManufactureDate: mfg, ShelfLifeMonths: ptr(1)}},
		{"cantidad negativa", BatchSpec{Code: "A", ManufactureDate: mfg, ShelfLifeMonths: ptr(1), Quantity: -1}},
		{"sin fabricación", BatchSpec{Code: "A", ShelfLifeMonths: ptr(1)}},
		{"sin vencimiento ni vida útil", BatchSpec{Code: "A", ManufactureDate: mfg}},
		{"vida útil cero", BatchSpec{Code: "A", ManufactureDate: mfg, ShelfLifeMonths: ptr(0)}},
		{"vence antes de fabricarse", BatchSpec{Code: "A", ManufactureDate: mfg, ExpiryDate: &before}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBatch(1, tc.spec, decimal.NewFromInt(1), now)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBatch_Apply(t *testing.T) {
	price := decimal.NewFromInt(2)
	b, err := NewBatch(1, BatchSpec{Code: "A", ManufactureDate: mfg, ShelfLifeMonths: ptr(6), Quantity: 10}, price, now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	delta, err := b.Apply(BatchChanges{Quantity: ptr(int64(25))}, price, later)
	require.NoError(t, err)
	assert.Equal(t, int64(15), delta)
	assert.True(t, b.UnitValue.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, now, b.StatusChangedAt, "sin cambio de estado no se toca")

	delta, err = b.Apply(BatchChanges{Active: ptr(false), Quantity: ptr(int64(40))}, price, later)
	require.NoError(t, err)
	assert.Equal(t, int64(-25), delta)
	assert.Equal(t, later, b.StatusChangedAt)

	delta, err = b.Apply(BatchChanges{Active: ptr(true)}, price, later)
	require.NoError(t, err)
	assert.Equal(t, int64(40), delta)

	// cambiar sólo la fabricación conserva el vencimiento
	expiry := b.ExpiryDate
	_, err = b.Apply(BatchChanges{ManufactureDate: ptr(mfg.AddDate(0, 1, 0))}, price, later)
	require.NoError(t, err)
	assert.Equal(t, expiry, b.ExpiryDate)
	assert.Equal(t, 5, b.ShelfLifeMonths)

	snapshot := *b
	_, err = b.Apply(BatchChanges{Quantity: ptr(int64(-1))}, price, later)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, snapshot, *b, "un error no deja cambios a medias")
}

func TestBatch_Deactivate(t *testing.T) {
	b, err := NewBatch(1, BatchSpec{Code: "A", ManufactureDate: mfg, ShelfLifeMonths: ptr(6), Quantity: 10}, decimal.NewFromInt(3), now)
	require.NoError(t, err)

	delta, err := b.Deactivate(ptr("vencido"), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(-10), delta)
	assert.False(t, b.Active)
	assert.Equal(t, "vencido", *b.LossReason)
	assert.True(t, b.UnitValue.Equal(decimal.NewFromInt(30)), "el valor se conserva para el reporte de pérdidas")

	_, err = b.Deactivate(nil, now)
	assert.ErrorIs(t, err, domain.ErrBatchInactive)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

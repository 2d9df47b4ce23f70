package inventory_test

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/application/inventory"
	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
	"github.com/jhoicas/perecibles-api/internal/infrastructure/memory"
	"github.com/jhoicas/perecibles-api/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (*inventory.LedgerUseCase, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	uc := inventory.NewLedgerUseCase(st, st.Products(), st.Suppliers(), logger.Nop()).
		WithClock(func() time.Time { return fixedNow })
	return uc, st
}

func ptr[T any](v T) *T { return &v }

func createProduct(t *testing.T, uc *inventory.LedgerUseCase, key int64, price string) {
	t.Helper()
	_, err := uc.CreateProduct(context.Background(), dto.CreateProductRequest{
		ProductKey: key,
		Name:       "Iogurte Natural " + strconv.FormatInt(key, 10),
		UnitPrice:  decimal.RequireFromString(price),
	})
	require.NoError(t, err)
}

func batchReq(code string, qty int64) dto.CreateBatchRequest {
	return dto.CreateBatchRequest{
		BatchCode:       code,
		ManufactureDate: dto.NewDate(fixedNow.AddDate(0, 0, -10)),
		ShelfLifeMonths: ptr(6),
		Quantity:        qty,
	}
}

func TestAddBatch_ValorYStock(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 1001, "15.75")

	resp, err := uc.AddBatch(ctx, 1001, batchReq("L-1", 100))
	require.NoError(t, err)

	assert.Equal(t, int64(100), resp.CalculatedStock)
	require.Len(t, resp.Batches, 1)
	b := resp.Batches[0]
	assert.True(t, b.UnitValue.Equal(decimal.RequireFromString("1575.00")), "15.75 × 100 = %s", b.UnitValue)
	assert.Equal(t, fixedNow.AddDate(0, 0, -10).AddDate(0, 6, 0), b.ExpiryDate)
	assert.Equal(t, 6, b.ShelfLifeMonths)
	assert.True(t, b.Active)
	assert.True(t, resp.StockValue.Equal(decimal.RequireFromString("1575")))
}

func TestAddBatch_InactivoNoSumaStock(t *testing.T) {
	uc, _ := newLedger(t)
	createProduct(t, uc, 1, "2")

	req := batchReq("L-INACT", 40)
	req.Active = ptr(false)
	resp, err := uc.AddBatch(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.CalculatedStock)
	assert.True(t, resp.Batches[0].UnitValue.Equal(decimal.NewFromInt(80)))
}

func TestAddBatch_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 1, "1")

	noDates := batchReq("L-X", 1)
	noDates.ShelfLifeMonths = nil
	_, err := uc.AddBatch(ctx, 1, noDates)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin vencimiento ni vida útil")

	backwards := batchReq("L-Y", 1)
	backwards.ExpiryDate = ptr(dto.NewDate(backwards.ManufactureDate.AddDate(0, 0, -1)))
	_, err = uc.AddBatch(ctx, 1, backwards)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "vencimiento antes de fabricación")

	_, err = uc.AddBatch(ctx, 1, batchReq("L-Z", -5))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AddBatch(ctx, 999, batchReq("L-W", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := uc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, p.Batches, "ningún intento fallido deja rastro")
	assert.Equal(t, int64(0), p.CalculatedStock)
}

func TestAddBatch_CodigoDuplicadoGlobal(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 1, "1")
	createProduct(t, uc, 2, "1")

	_, err := uc.AddBatch(ctx, 1, batchReq("L-SHARED", 5))
	require.NoError(t, err)

	_, err = uc.AddBatch(ctx, 2, batchReq("L-SHARED", 7))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	p2, err := uc.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p2.CalculatedStock)
	assert.Empty(t, p2.Batches)
}

func TestAddBatch_Concurrente(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 7, "3.10")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.AddBatch(ctx, 7, batchReq("L-C"+strconv.Itoa(i), 10))
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	p, err := uc.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(20), p.CalculatedStock)
	assert.Len(t, p.Batches, 2)
}

func TestDeactivateBatch_DosVeces(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 1001, "15.75")
	_, err := uc.AddBatch(ctx, 1001, batchReq("L-1", 100))
	require.NoError(t, err)

	resp, err := uc.DeactivateBatch(ctx, 1001, "L-1", dto.DeactivateBatchRequest{LossReason: ptr("vencido en góndola")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.CalculatedStock)
	require.Len(t, resp.Batches, 1, "la baja es lógica")
	assert.False(t, resp.Batches[0].Active)
	assert.True(t, resp.Batches[0].UnitValue.Equal(decimal.RequireFromString("1575")))
	assert.Equal(t, "vencido en góndola", *resp.Batches[0].LossReason)

	_, err = uc.DeactivateBatch(ctx, 1001, "L-1", dto.DeactivateBatchRequest{})
	assert.ErrorIs(t, err, domain.ErrBatchInactive)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := uc.GetProduct(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.CalculatedStock)
}

func TestUpdateBatch_Transiciones(t *testing.T) {
	tests := []struct {
		name      string
		active    bool
		qty       int64
		change    dto.UpdateBatchRequest
		wantStock int64
	}{
		{"activo sube cantidad", true, 10, dto.UpdateBatchRequest{Quantity: ptr(int64(25))}, 25},
		{"activo baja cantidad", true, 10, dto.UpdateBatchRequest{Quantity: ptr(int64(4))}, 4},
		{"desactivar por update", true, 10, dto.UpdateBatchRequest{Active: ptr(false)}, 0},
		{"reactivar", false, 10, dto.UpdateBatchRequest{Active: ptr(true)}, 10},
		{"reactivar con otra cantidad", false, 10, dto.UpdateBatchRequest{Active: ptr(true), Quantity: ptr(int64(3))}, 3},
		{"inactivo cambia cantidad", false, 10, dto.UpdateBatchRequest{Quantity: ptr(int64(50))}, 0},
		{"sólo fechas", true, 10, dto.UpdateBatchRequest{ShelfLifeMonths: ptr(12)}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			uc, _ := newLedger(t)
			createProduct(t, uc, 1, "2")
			req := batchReq("L-T", tt.qty)
			req.Active = ptr(tt.active)
			_, err := uc.AddBatch(ctx, 1, req)
			require.NoError(t, err)

			resp, err := uc.UpdateBatch(ctx, 1, "L-T", tt.change)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, resp.CalculatedStock)
			b := resp.Batches[0]
			assert.True(t, b.UnitValue.Equal(decimal.NewFromInt(2*b.Quantity)))
		})
	}
}

func TestUpdateBatch_Reactivar(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 1, "1")
	_, err := uc.AddBatch(ctx, 1, batchReq("L-R", 8))
	require.NoError(t, err)
	_, err = uc.DeactivateBatch(ctx, 1, "L-R", dto.DeactivateBatchRequest{})
	require.NoError(t, err)

	later := fixedNow.Add(48 * time.Hour)
	uc.WithClock(func() time.Time { return later })
	resp, err := uc.UpdateBatch(ctx, 1, "L-R", dto.UpdateBatchRequest{Active: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.CalculatedStock)
	assert.Equal(t, later, resp.Batches[0].StatusChangedAt)
}

func TestUpdateBatch_NoEncontrado(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 1, "1")

	_, err := uc.UpdateBatch(ctx, 1, "NOPE", dto.UpdateBatchRequest{Quantity: ptr(int64(1))})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.DeactivateBatch(ctx, 2, "NOPE", dto.DeactivateBatchRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProduct_PrecioRecalculaLotes(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 1, "10")
	_, err := uc.AddBatch(ctx, 1, batchReq("A", 3))
	require.NoError(t, err)
	_, err = uc.AddBatch(ctx, 1, batchReq("B", 5))
	require.NoError(t, err)
	_, err = uc.DeactivateBatch(ctx, 1, "B", dto.DeactivateBatchRequest{})
	require.NoError(t, err)

	resp, err := uc.UpdateProduct(ctx, 1, dto.UpdateProductRequest{UnitPrice: ptr(decimal.RequireFromString("2.5"))})
	require.NoError(t, err)

	values := map[string]decimal.Decimal{}
	for _, b := range resp.Batches {
		values[b.BatchCode] = b.UnitValue
	}
	assert.True(t, values["A"].Equal(decimal.RequireFromString("7.5")))
	assert.True(t, values["B"].Equal(decimal.RequireFromString("12.5")), "los inactivos también se recalculan")
	assert.Equal(t, int64(3), resp.CalculatedStock, "el precio no toca el stock")

	stored, err := uc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.True(t, stored.UnitPrice.Equal(decimal.RequireFromString("2.5")))
}

func TestUpdateProduct_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 1, "1")

	_, err := uc.UpdateProduct(ctx, 1, dto.UpdateProductRequest{UnitPrice: ptr(decimal.NewFromInt(-1))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.UpdateProduct(ctx, 1, dto.UpdateProductRequest{UnitPrice: ptr(decimal.RequireFromString("1.23456"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "más decimales de los que guarda la columna")
	_, err = uc.UpdateProduct(ctx, 1, dto.UpdateProductRequest{UnitPrice: ptr(decimal.New(1, 10))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.UpdateProduct(ctx, 1, dto.UpdateProductRequest{Name: ptr("   ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.UpdateProduct(ctx, 1, dto.UpdateProductRequest{SupplierCNPJ: ptr("11111111000111")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.UpdateProduct(ctx, 42, dto.UpdateProductRequest{Color: ptr("azul")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateProduct_ConLotesYProveedor(t *testing.T) {
	ctx := context.Background()
	uc, st := newLedger(t)
	require.NoError(t, st.Suppliers().Create(ctx, &entity.Supplier{CNPJ: "12345678000195", Name: "Laticínios Serra"}))

	resp, err := uc.CreateProduct(ctx, dto.CreateProductRequest{
		ProductKey:    89001,
		Name:          "Queijo Minas",
		UnitPrice:     decimal.RequireFromString("4.20"),
		ReportedStock: ptr(int64(30)),
		SupplierCNPJ:  ptr("12345678000195"),
		Batches:       []dto.CreateBatchRequest{batchReq("Q-1", 10), batchReq("Q-2", 5)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), resp.CalculatedStock)
	assert.Equal(t, int64(15), resp.StockDiscrepancy)
	require.NotNil(t, resp.SupplierName)
	assert.Equal(t, "Laticínios Serra", *resp.SupplierName)
	require.NotNil(t, resp.ReportedValue)
	assert.True(t, resp.ReportedValue.Equal(decimal.RequireFromString("126")))

	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{ProductKey: 89001, Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateProduct_Errores(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 5, "1")
	_, err := uc.AddBatch(ctx, 5, batchReq("USED", 1))
	require.NoError(t, err)

	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{ProductKey: 6, Name: "X", SupplierCNPJ: ptr("99999999000199")})
	assert.ErrorIs(t, err, domain.ErrNotFound, "proveedor inexistente")

	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{ProductKey: 6, Name: "X", UnitPrice: decimal.NewFromInt(-2)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{ProductKey: 6, Name: "X", UnitPrice: decimal.RequireFromString("0.00005")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{
		ProductKey: 6, Name: "X",
		Batches: []dto.CreateBatchRequest{batchReq("NEW", 1), batchReq("USED", 1)},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "código ya usado por otro producto")

	_, err = uc.GetProduct(ctx, 6)
	assert.ErrorIs(t, err, domain.ErrNotFound, "la creación fallida no deja el producto")

	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{
		ProductKey: 6, Name: "X",
		Batches: []dto.CreateBatchRequest{batchReq("D", 1), batchReq("D", 1)},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "código repetido en la misma solicitud")
}

func TestDeleteProduct_LiberaCodigos(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	createProduct(t, uc, 1, "1")
	createProduct(t, uc, 2, "1")
	_, err := uc.AddBatch(ctx, 1, batchReq("L-1", 1))
	require.NoError(t, err)

	require.NoError(t, uc.DeleteProduct(ctx, 1))
	assert.ErrorIs(t, uc.DeleteProduct(ctx, 1), domain.ErrNotFound)

	_, err = uc.AddBatch(ctx, 2, batchReq("L-1", 1))
	assert.NoError(t, err, "el código del producto borrado queda libre")
}

func TestListProducts_Paginado(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger(t)
	for k := int64(1); k <= 5; k++ {
		createProduct(t, uc, k, "1")
	}
	page, err := uc.ListProducts(ctx, dto.PageRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Items[0].ProductKey)
	assert.Equal(t, int64(3), page.Items[1].ProductKey)

	page, err = uc.ListProducts(ctx, dto.PageRequest{Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, dto.PageResponse{Limit: dto.MaxPageLimit, Offset: 0}, page.Page)
	assert.Len(t, page.Items, 5)
}

// Cualquier secuencia de operaciones deja stock calculado = suma de lotes activos.
func TestLedger_InvarianteSecuenciaAleatoria(t *testing.T) {
	ctx := context.Background()
	uc, st := newLedger(t)
	keys := []int64{1, 2, 3}
	for _, k := range keys {
		createProduct(t, uc, k, "1.5")
	}

	rng := rand.New(rand.NewSource(42))
	codes := map[int64][]string{}
	for i := 0; i < 300; i++ {
		key := keys[rng.Intn(len(keys))]
		switch op := rng.Intn(4); {
		case op == 0 || len(codes[key]) == 0:
			code := "R-" + strconv.Itoa(i)
			req := batchReq(code, rng.Int63n(50))
			req.Active = ptr(rng.Intn(3) > 0)
			_, err := uc.AddBatch(ctx, key, req)
			require.NoError(t, err)
			codes[key] = append(codes[key], code)
		case op == 1:
			code := codes[key][rng.Intn(len(codes[key]))]
			_, err := uc.UpdateBatch(ctx, key, code, dto.UpdateBatchRequest{Quantity: ptr(rng.Int63n(80))})
			require.NoError(t, err)
		case op == 2:
			code := codes[key][rng.Intn(len(codes[key]))]
			_, err := uc.DeactivateBatch(ctx, key, code, dto.DeactivateBatchRequest{})
			if err != nil {
				require.ErrorIs(t, err, domain.ErrBatchInactive)
			}
		default:
			code := codes[key][rng.Intn(len(codes[key]))]
			_, err := uc.UpdateBatch(ctx, key, code, dto.UpdateBatchRequest{Active: ptr(rng.Intn(2) == 0)})
			require.NoError(t, err)
		}
	}

	for _, k := range keys {
		p, err := st.Products().GetByKey(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, p.ActiveQuantity(), p.CalculatedStock, "producto %d", k)
	}
}

// flakySuppliers falla las lecturas de proveedores mientras down esté activo.
type flakySuppliers struct {
	repository.SupplierRepository
	down bool
}

func (f *flakySuppliers) GetByCNPJ(ctx context.Context, cnpj string) (*entity.Supplier, error) {
	if f.down {
		return nil, domain.ErrStorageUnavailable
	}
	return f.SupplierRepository.GetByCNPJ(ctx, cnpj)
}

func TestAddBatch_ProveedorCaidoTrasConfirmar(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	suppliers := &flakySuppliers{SupplierRepository: st.Suppliers()}
	uc := inventory.NewLedgerUseCase(st, st.Products(), suppliers, logger.Nop()).
		WithClock(func() time.Time { return fixedNow })
	require.NoError(t, st.Suppliers().Create(ctx, &entity.Supplier{CNPJ: "12345678000195", Name: "Laticínios Serra"}))
	_, err := uc.CreateProduct(ctx, dto.CreateProductRequest{
		ProductKey: 1, Name: "Queijo", UnitPrice: decimal.NewFromInt(2), SupplierCNPJ: ptr("12345678000195"),
	})
	require.NoError(t, err)

	suppliers.down = true
	resp, err := uc.AddBatch(ctx, 1, batchReq("L-1", 10))
	require.NoError(t, err, "la mutación confirmada no se reporta como error")
	assert.Equal(t, int64(10), resp.CalculatedStock)
	assert.Nil(t, resp.SupplierName)
	require.NotNil(t, resp.SupplierCNPJ)

	resp, err = uc.DeactivateBatch(ctx, 1, "L-1", dto.DeactivateBatchRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.CalculatedStock)

	_, err = uc.GetProduct(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable, "las lecturas sí propagan el error")

	suppliers.down = false
	p, err := uc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, p.Batches, 1)
	require.NotNil(t, p.SupplierName)
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/perecibles-api/internal/application/analytics"
	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/application/inventory"
	"github.com/jhoicas/perecibles-api/internal/application/usecase"
	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
	"github.com/jhoicas/perecibles-api/internal/infrastructure/lock"
	"github.com/jhoicas/perecibles-api/internal/infrastructure/memory"
	"github.com/jhoicas/perecibles-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/perecibles-api/internal/interfaces/http"
	"github.com/jhoicas/perecibles-api/pkg/logger"
)

// testDeps dependencias completas sobre el almacenamiento en memoria.
func testDeps(t *testing.T) apphttp.RouterDeps {
	t.Helper()
	st := memory.NewStore()
	locker := lock.NewMemoryLocker()
	log := logger.Nop()
	return apphttp.RouterDeps{
		AppName:     "perecibles-test",
		Ledger:      inventory.NewLedgerUseCase(st, st.Products(), st.Suppliers(), log),
		StockImport: inventory.NewStockImportUseCase(st, locker, time.Minute, log),
		StockRepair: inventory.NewStockRepairUseCase(st, st.Products(), locker, time.Minute, log),
		SupplierUC:  usecase.NewSupplierUseCase(st.Suppliers(), log),
		DashboardUC: appanalytics.NewDashboardUseCase(st, pdf.NewDashboardReport("Vencimientos"), 5*time.Second, log),
		KnowledgeUC: usecase.NewKnowledgeUseCase(st.Knowledge(), log),
	}
}

func newTestApp(deps apphttp.RouterDeps) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, deps)
	return app
}

// buildTestApp arma la API completa sobre el almacenamiento en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestApp(testDeps(t))
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	return decode[dto.ErrorResponse](t, resp).Code
}

var product = map[string]any{"product_key": 1001, "name": "Iogurte Natural", "unit_price": "15.75"}

func batch(code string, qty int) map[string]any {
	return map[string]any{
		"batch_code":        code,
		"manufacture_date":  time.Now().UTC().AddDate(0, 0, -2).Format(time.RFC3339),
		"shelf_life_months": 1,
		"quantity":          qty,
	}
}

func TestHealth(t *testing.T) {
	resp := doJSON(t, buildTestApp(t), http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProductos_FlujoDeLotes(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/products", product)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/products", product)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", errorCode(t, resp))

	resp = doJSON(t, app, http.MethodPost, "/api/products/1001/batches", batch("L-1", 100))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	p := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, int64(100), p.CalculatedStock)
	require.Len(t, p.Batches, 1)
	assert.Equal(t, "1575", p.Batches[0].UnitValue.String())

	resp = doJSON(t, app, http.MethodPost, "/api/products/1001/batches", batch("L-1", 5))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/products/1001/batches/L-1", map[string]any{"quantity": 60})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(60), decode[dto.ProductResponse](t, resp).CalculatedStock)

	resp = doJSON(t, app, http.MethodDelete, "/api/products/1001/batches/L-1", map[string]any{"loss_reason": "vencido"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	p = decode[dto.ProductResponse](t, resp)
	assert.Equal(t, int64(0), p.CalculatedStock)
	require.NotNil(t, p.Batches[0].LossReason)
	assert.Equal(t, "vencido", *p.Batches[0].LossReason)

	resp = doJSON(t, app, http.MethodDelete, "/api/products/1001/batches/L-1", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "BATCH_INACTIVE", errorCode(t, resp))

	resp = doJSON(t, app, http.MethodDelete, "/api/products/1001", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, app, http.MethodGet, "/api/products/1001", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProductos_Validaciones(t *testing.T) {
	app := buildTestApp(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		code   string
	}{
		{"sin nombre", http.MethodPost, "/api/products", map[string]any{"product_key": 1}, "VALIDATION"},
		{"clave no numérica", http.MethodGet, "/api/products/abc", nil, "VALIDATION"},
		{"cnpj corto", http.MethodPost, "/api/products", map[string]any{"product_key": 1, "name": "X", "supplier_cnpj": "123"}, "VALIDATION"},
		{"lote sin vencimiento", http.MethodPost, "/api/products/1/batches", map[string]any{"batch_code": "A", "quantity": 1, "manufacture_date": time.Now().Format(time.RFC3339)}, "VALIDATION"},
	}
	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{"product_key": 1, "name": "Base", "unit_price": "1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, tc.method, tc.path, tc.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.code, errorCode(t, resp))
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, raw.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, raw))
}

func TestProveedores(t *testing.T) {
	app := buildTestApp(t)
	supplier := map[string]any{"cnpj": "12345678000195", "name": "Laticínios Serra", "return_policy_days": 10}

	resp := doJSON(t, app, http.MethodPost, "/api/suppliers", supplier)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
		"product_key": 5, "name": "Queijo", "unit_price": "30", "supplier_cnpj": "12345678000195",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	p := decode[dto.ProductResponse](t, resp)
	require.NotNil(t, p.SupplierName)
	assert.Equal(t, "Laticínios Serra", *p.SupplierName)

	resp = doJSON(t, app, http.MethodGet, "/api/suppliers", nil)
	assert.Len(t, decode[[]dto.SupplierResponse](t, resp), 1)

	resp = doJSON(t, app, http.MethodDelete, "/api/suppliers/12345678000195", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/products/5", nil)
	assert.Nil(t, decode[dto.ProductResponse](t, resp).SupplierName)

	resp = doJSON(t, app, http.MethodGet, "/api/suppliers/12345678000195", nil)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestImportYReparacion(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/products/import", map[string]any{"records": []map[string]any{
		{"product_key": 77, "reported_stock": 40, "unit_price": "2.50", "section_name": "Frios"},
	}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	res := decode[dto.ImportResultDTO](t, resp)
	assert.Equal(t, 1, res.Created)

	resp = doJSON(t, app, http.MethodPost, "/api/products/import", map[string]any{"records": []any{}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/admin/stock/repair", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	rep := decode[dto.StockRepairResultDTO](t, resp)
	assert.Equal(t, 1, rep.Checked)
	assert.Empty(t, rep.Repaired)
}

func TestDashboard(t *testing.T) {
	app := buildTestApp(t)
	require.Equal(t, fiber.StatusCreated, doJSON(t, app, http.MethodPost, "/api/products", product).StatusCode)
	require.Equal(t, fiber.StatusCreated, doJSON(t, app, http.MethodPost, "/api/products/1001/batches", batch("L-9", 10)).StatusCode)

	resp := doJSON(t, app, http.MethodGet, "/api/dashboard/kpis", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snap := decode[dto.DashboardSnapshotDTO](t, resp)
	assert.Equal(t, 1, snap.General.TotalProducts)
	assert.Equal(t, 1, snap.Batches.ActiveBatches)
	assert.Equal(t, "157.5", snap.ValueAtRisk.Days0To30.String())

	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/expiry-distribution?product_name=iogurte%20natural", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(10), decode[dto.ProductExpiryDistributionDTO](t, resp).ActiveQuantity)

	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/expiry-distribution", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/kpis/report.pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

// downTx simula la base caída al abrir la transacción.
type downTx struct{}

func (downTx) Run(context.Context, func(repository.ProductRepository, repository.BatchRepository) error) error {
	return fmt.Errorf("begin: %w", domain.ErrStorageUnavailable)
}

// stubRead lectura del dashboard: err fijo o, con block, un recorrido que sólo termina al cancelar ctx.
type stubRead struct {
	err   error
	block bool
}

func (s stubRead) ScanProducts(ctx context.Context, _ func(*entity.Product) error) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s stubRead) FindByNameKey(ctx context.Context, _ string) ([]*entity.Product, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return nil, s.err
}

func TestAlmacenamientoCaido(t *testing.T) {
	unavailable := fmt.Errorf("scan: %w", domain.ErrStorageUnavailable)

	cases := []struct {
		name   string
		deps   func(apphttp.RouterDeps) apphttp.RouterDeps
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{
			name: "alta de lote sin transacción",
			deps: func(d apphttp.RouterDeps) apphttp.RouterDeps {
				st := memory.NewStore()
				d.Ledger = inventory.NewLedgerUseCase(downTx{}, st.Products(), st.Suppliers(), logger.Nop())
				return d
			},
			method: http.MethodPost, path: "/api/products/1001/batches", body: batch("L-1", 5),
			status: fiber.StatusServiceUnavailable, code: "STORAGE_UNAVAILABLE",
		},
		{
			name: "kpis con lectura caída",
			deps: func(d apphttp.RouterDeps) apphttp.RouterDeps {
				d.DashboardUC = appanalytics.NewDashboardUseCase(stubRead{err: unavailable}, nil, time.Second, logger.Nop())
				return d
			},
			method: http.MethodGet, path: "/api/dashboard/kpis",
			status: fiber.StatusServiceUnavailable, code: "STORAGE_UNAVAILABLE",
		},
		{
			name: "distribución con lectura caída",
			deps: func(d apphttp.RouterDeps) apphttp.RouterDeps {
				d.DashboardUC = appanalytics.NewDashboardUseCase(stubRead{err: unavailable}, nil, time.Second, logger.Nop())
				return d
			},
			method: http.MethodGet, path: "/api/dashboard/expiry-distribution?product_name=queijo",
			status: fiber.StatusServiceUnavailable, code: "STORAGE_UNAVAILABLE",
		},
		{
			name: "kpis con recorrido bloqueado",
			deps: func(d apphttp.RouterDeps) apphttp.RouterDeps {
				d.DashboardUC = appanalytics.NewDashboardUseCase(stubRead{block: true}, nil, 20*time.Millisecond, logger.Nop())
				return d
			},
			method: http.MethodGet, path: "/api/dashboard/kpis",
			status: fiber.StatusGatewayTimeout, code: "TIMEOUT",
		},
		{
			name: "distribución con recorrido bloqueado",
			deps: func(d apphttp.RouterDeps) apphttp.RouterDeps {
				d.DashboardUC = appanalytics.NewDashboardUseCase(stubRead{block: true}, nil, 20*time.Millisecond, logger.Nop())
				return d
			},
			method: http.MethodGet, path: "/api/dashboard/expiry-distribution?product_name=queijo",
			status: fiber.StatusGatewayTimeout, code: "TIMEOUT",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(tc.deps(testDeps(t)))
			resp := doJSON(t, app, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, errorCode(t, resp))
		})
	}
}

func TestHealth_BaseCaida(t *testing.T) {
	deps := testDeps(t)
	deps.HealthCheck = func(context.Context) error { return errors.New("dial tcp: connection refused") }
	resp := doJSON(t, newTestApp(deps), http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestLotes_FormatosDeFecha(t *testing.T) {
	app := buildTestApp(t)
	require.Equal(t, fiber.StatusCreated, doJSON(t, app, http.MethodPost, "/api/products", product).StatusCode)

	resp := doJSON(t, app, http.MethodPost, "/api/products/1001/batches", map[string]any{
		"batch_code":       "D-1",
		"manufacture_date": "2026-01-15",
		"expiry_date":      "2026-03-01T08:30:00",
		"quantity":         4,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	p := decode[dto.ProductResponse](t, resp)
	require.Len(t, p.Batches, 1)
	assert.True(t, p.Batches[0].ManufactureDate.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Batches[0].ExpiryDate.Equal(time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)))

	resp = doJSON(t, app, http.MethodPut, "/api/products/1001/batches/D-1", map[string]any{"expiry_date": "2026-04-01T00:00:00-03:00"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	p = decode[dto.ProductResponse](t, resp)
	assert.True(t, p.Batches[0].ExpiryDate.Equal(time.Date(2026, 4, 1, 3, 0, 0, 0, time.UTC)))

	resp = doJSON(t, app, http.MethodPost, "/api/products/1001/batches", map[string]any{
		"batch_code": "D-2", "manufacture_date": "15/01/2026", "shelf_life_months": 1, "quantity": 1,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, resp))
}

func TestBaseDeConocimiento(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/knowledge", map[string]any{
		"title":    "Como registrar lote vencido",
		"answer":   "Desactive el lote indicando el motivo de pérdida.",
		"keywords": []string{"vencido", "perda"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.KnowledgeResponse](t, resp)

	resp = doJSON(t, app, http.MethodPost, "/api/knowledge", map[string]any{
		"title": "Como registrar lote vencido", "answer": "otra", "keywords": []string{"x"},
	})
	assert.Equal(t, "DUPLICATE", errorCode(t, resp))

	resp = doJSON(t, app, http.MethodPost, "/api/knowledge/search", map[string]any{"message": "registrar lote vencido"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	found := decode[[]dto.KnowledgeMatchResponse](t, resp)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].Item.ID)
	assert.Equal(t, 100.0, found[0].Score)

	resp = doJSON(t, app, http.MethodGet, "/api/knowledge/best?message=lote%20vencido", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), decode[dto.KnowledgeMatchResponse](t, resp).Item.Views)

	resp = doJSON(t, app, http.MethodGet, "/api/knowledge/best?message=ok", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))

	resp = doJSON(t, app, http.MethodGet, "/api/knowledge/best?message=horario%20atendimento", nil)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))

	resp = doJSON(t, app, http.MethodPut, "/api/knowledge/"+created.ID, map[string]any{"category": "lotes"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, decode[dto.KnowledgeResponse](t, resp).Category)

	resp = doJSON(t, app, http.MethodDelete, "/api/knowledge/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, app, http.MethodDelete, "/api/knowledge/"+created.ID, nil)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))

	resp = doJSON(t, app, http.MethodGet, "/api/knowledge", nil)
	assert.Empty(t, decode[[]dto.KnowledgeResponse](t, resp))
	resp = doJSON(t, app, http.MethodGet, "/api/knowledge?active_only=false", nil)
	assert.Len(t, decode[[]dto.KnowledgeResponse](t, resp), 1)

	resp = doJSON(t, app, http.MethodGet, "/api/knowledge/no-es-uuid", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

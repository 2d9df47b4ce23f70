package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/perecibles-api/internal/application/analytics"
	"github.com/jhoicas/perecibles-api/internal/application/inventory"
	"github.com/jhoicas/perecibles-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	Ledger      *inventory.LedgerUseCase
	StockImport *inventory.StockImportUseCase
	StockRepair *inventory.StockRepairUseCase
	SupplierUC  *usecase.SupplierUseCase
	DashboardUC *appanalytics.DashboardUseCase
	KnowledgeUC *usecase.KnowledgeUseCase
	// HealthCheck opcional (ping a la base); nil = siempre ok.
	HealthCheck func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "service": deps.AppName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:cnpj", supplierHandler.Get)
	suppliers.Put("/:cnpj", supplierHandler.Update)
	suppliers.Delete("/:cnpj", supplierHandler.Delete)

	stockHandler := NewStockHandler(deps.StockImport, deps.StockRepair)

	// /import antes de /:key
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Ledger)
	products.Post("/import", stockHandler.Import)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:key", productHandler.Get)
	products.Put("/:key", productHandler.Update)
	products.Delete("/:key", productHandler.Delete)
	products.Post("/:key/batches", productHandler.AddBatch)
	products.Put("/:key/batches/:code", productHandler.UpdateBatch)
	products.Delete("/:key/batches/:code", productHandler.DeactivateBatch)

	admin := api.Group("/admin")
	admin.Post("/stock/repair", stockHandler.Repair)

	dashboard := api.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/kpis", dashboardHandler.GetKPIs)
	dashboard.Get("/kpis/report.pdf", dashboardHandler.GetKPIsPDF)
	dashboard.Get("/expiry-distribution", dashboardHandler.GetExpiryDistribution)

	kb := api.Group("/knowledge")
	knowledgeHandler := NewKnowledgeHandler(deps.KnowledgeUC)
	// rutas fijas antes de /:id
	kb.Post("/search", knowledgeHandler.Search)
	kb.Get("/best", knowledgeHandler.Best)
	kb.Get("/", knowledgeHandler.List)
	kb.Post("/", knowledgeHandler.Create)
	kb.Get("/:id", knowledgeHandler.Get)
	kb.Put("/:id", knowledgeHandler.Update)
	kb.Delete("/:id", knowledgeHandler.Delete)
}

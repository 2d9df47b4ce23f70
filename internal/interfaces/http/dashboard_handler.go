package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/perecibles-api/internal/application/analytics"
)

// DashboardHandler KPIs de vencimiento y conciliación.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetKPIs devuelve el snapshot completo del dashboard.
// GET /api/dashboard/kpis
//
// Si la agregación excede el presupuesto configurado responde 504 sin datos parciales.
func (h *DashboardHandler) GetKPIs(c *fiber.Ctx) error {
	snap, err := h.uc.GetSnapshot(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(snap)
}

// GetKPIsPDF mismo snapshot renderizado como PDF.
// GET /api/dashboard/kpis/report.pdf
func (h *DashboardHandler) GetKPIsPDF(c *fiber.Ctx) error {
	out, err := h.uc.GetSnapshotPDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="dashboard-vencimientos.pdf"`)
	return c.Send(out)
}

// GetExpiryDistribution cantidades activas por ventana para un nombre de producto.
// GET /api/dashboard/expiry-distribution?product_name=...
func (h *DashboardHandler) GetExpiryDistribution(c *fiber.Ctx) error {
	out, err := h.uc.GetProductExpiryDistribution(c.UserContext(), c.Query("product_name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

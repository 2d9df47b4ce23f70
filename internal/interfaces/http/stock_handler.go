package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/application/inventory"
)

// StockHandler trabajos de stock: importación de la planilla y reparación del contador.
type StockHandler struct {
	importer *inventory.StockImportUseCase
	repair   *inventory.StockRepairUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(importer *inventory.StockImportUseCase, repair *inventory.StockRepairUseCase) *StockHandler {
	return &StockHandler{importer: importer, repair: repair}
}

// Import godoc
// @Summary      Importar stock reportado (registros ya normalizados)
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ImportStockRequest  true  "Registros"
// @Success      200   {object}  dto.ImportResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/import [post]
func (h *StockHandler) Import(c *fiber.Ctx) error {
	var in dto.ImportStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.importer.Import(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Repair godoc
// @Summary      Recalcular el stock de todos los productos desde sus lotes activos
// @Tags         admin
// @Produce      json
// @Success      200  {object}  dto.StockRepairResultDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/stock/repair [post]
func (h *StockHandler) Repair(c *fiber.Ctx) error {
	out, err := h.repair.Run(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

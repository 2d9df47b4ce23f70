package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/application/inventory"
)

// ProductHandler productos y lotes; todas las escrituras pasan por el ledger.
type ProductHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(ledger *inventory.LedgerUseCase) *ProductHandler {
	return &ProductHandler{ledger: ledger}
}

// Create godoc
// @Summary      Crear producto (opcionalmente con lotes iniciales)
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.ledger.CreateProduct(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener producto con sus lotes
// @Tags         products
// @Produce      json
// @Param        key  path  int  true  "Código LM"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{key} [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	key, ok, err := productKeyParam(c)
	if !ok {
		return err
	}
	out, err := h.ledger.GetProduct(c.UserContext(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	page.Normalize()
	out, err := h.ledger.ListProducts(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto (un cambio de precio recalcula todos los lotes)
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        key   path  int  true  "Código LM"
// @Param        body  body  dto.UpdateProductRequest  true  "Cambios"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{key} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	key, ok, err := productKeyParam(c)
	if !ok {
		return err
	}
	var in dto.UpdateProductRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.ledger.UpdateProduct(c.UserContext(), key, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto y sus lotes
// @Tags         products
// @Param        key  path  int  true  "Código LM"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{key} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	key, ok, err := productKeyParam(c)
	if !ok {
		return err
	}
	if err := h.ledger.DeleteProduct(c.UserContext(), key); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddBatch godoc
// @Summary      Registrar lote
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        key   path  int  true  "Código LM"
// @Param        body  body  dto.CreateBatchRequest  true  "Lote"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{key}/batches [post]
func (h *ProductHandler) AddBatch(c *fiber.Ctx) error {
	key, ok, err := productKeyParam(c)
	if !ok {
		return err
	}
	var in dto.CreateBatchRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.ledger.AddBatch(c.UserContext(), key, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateBatch godoc
// @Summary      Editar lote
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        key   path  int     true  "Código LM"
// @Param        code  path  string  true  "Código de lote"
// @Param        body  body  dto.UpdateBatchRequest  true  "Cambios"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{key}/batches/{code} [put]
func (h *ProductHandler) UpdateBatch(c *fiber.Ctx) error {
	key, ok, err := productKeyParam(c)
	if !ok {
		return err
	}
	var in dto.UpdateBatchRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.ledger.UpdateBatch(c.UserContext(), key, c.Params("code"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeactivateBatch godoc
// @Summary      Baja lógica de lote (pérdida)
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        key   path  int     true   "Código LM"
// @Param        code  path  string  true   "Código de lote"
// @Param        body  body  dto.DeactivateBatchRequest  false  "Motivo"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{key}/batches/{code} [delete]
func (h *ProductHandler) DeactivateBatch(c *fiber.Ctx) error {
	key, ok, err := productKeyParam(c)
	if !ok {
		return err
	}
	var in dto.DeactivateBatchRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.ledger.DeactivateBatch(c.UserContext(), key, c.Params("code"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

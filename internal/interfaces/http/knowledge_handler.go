package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/application/usecase"
	"github.com/jhoicas/perecibles-api/internal/domain/knowledge"
)

// KnowledgeHandler base de conocimiento (ayuda y preguntas frecuentes).
type KnowledgeHandler struct {
	uc *usecase.KnowledgeUseCase
}

// NewKnowledgeHandler construye el handler.
func NewKnowledgeHandler(uc *usecase.KnowledgeUseCase) *KnowledgeHandler {
	return &KnowledgeHandler{uc: uc}
}

// List godoc
// @Summary      Listar entradas de la base de conocimiento
// @Tags         knowledge
// @Produce      json
// @Param        active_only  query  bool  false  "Sólo activas"  default(true)
// @Success      200  {array}  dto.KnowledgeResponse
// @Router       /api/knowledge [get]
func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.QueryBool("active_only", true))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear entrada
// @Tags         knowledge
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateKnowledgeRequest  true  "Entrada"
// @Success      201   {object}  dto.KnowledgeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/knowledge [post]
func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateKnowledgeRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener entrada por id
// @Tags         knowledge
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.KnowledgeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/knowledge/{id} [get]
func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar entrada
// @Tags         knowledge
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.UpdateKnowledgeRequest  true  "Cambios"
// @Success      200   {object}  dto.KnowledgeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/knowledge/{id} [put]
func (h *KnowledgeHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateKnowledgeRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Desactivar entrada (baja lógica)
// @Tags         knowledge
// @Param        id  path  string  true  "ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/knowledge/{id} [delete]
func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Search godoc
// @Summary      Buscar entradas por mensaje libre
// @Tags         knowledge
// @Accept       json
// @Produce      json
// @Param        body  body  dto.KnowledgeSearchRequest  true  "Mensaje; min_score por defecto 30, max_results 3"
// @Success      200   {array}   dto.KnowledgeMatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/knowledge/search [post]
func (h *KnowledgeHandler) Search(c *fiber.Ctx) error {
	var in dto.KnowledgeSearchRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	minScore, maxResults := knowledge.DefaultMinScore, knowledge.DefaultMaxResults
	if in.MinScore != nil {
		minScore = *in.MinScore
	}
	if in.MaxResults != nil {
		maxResults = *in.MaxResults
	}
	out, err := h.uc.Search(c.UserContext(), in.Message, minScore, maxResults)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Best godoc
// @Summary      Mejor respuesta para un mensaje (suma una visualización)
// @Tags         knowledge
// @Produce      json
// @Param        message  query  string  true  "Mensaje"
// @Success      200  {object}  dto.KnowledgeMatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/knowledge/best [get]
func (h *KnowledgeHandler) Best(c *fiber.Ctx) error {
	out, err := h.uc.Best(c.UserContext(), c.Query("message"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

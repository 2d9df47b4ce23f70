package dto

// Límites de paginación del listado de productos.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest ventana del listado de productos, ordenado por código LM.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize lleva Limit a [1, MaxPageLimit] y Offset a >= 0.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse ventana efectivamente aplicada.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de todas las respuestas de error.
// Code es estable (VALIDATION, INVALID_BODY, NOT_FOUND, BATCH_INACTIVE, DUPLICATE, CONFLICT,
// STORAGE_UNAVAILABLE, TIMEOUT, INTERNAL); Message es texto libre para humanos.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

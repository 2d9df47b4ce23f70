package dto

import "time"

// CreateKnowledgeRequest alta de una entrada de la base de conocimiento.
type CreateKnowledgeRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Answer   string   `json:"answer" validate:"required,max=2000"`
	Keywords []string `json:"keywords" validate:"required,dive,max=100"`
	Category *string  `json:"category" validate:"omitempty,max=50"`
	Active   *bool    `json:"active"`
}

// UpdateKnowledgeRequest cambios parciales; los campos ausentes no se tocan.
type UpdateKnowledgeRequest struct {
	Title    *string  `json:"title" validate:"omitempty,max=200"`
	Answer   *string  `json:"answer" validate:"omitempty,max=2000"`
	Keywords []string `json:"keywords" validate:"omitempty,dive,max=100"`
	Category *string  `json:"category" validate:"omitempty,max=50"`
	Active   *bool    `json:"active"`
}

// KnowledgeSearchRequest búsqueda por mensaje libre. MinScore y MaxResults son opcionales.
type KnowledgeSearchRequest struct {
	Message    string   `json:"message" validate:"required"`
	MinScore   *float64 `json:"min_score" validate:"omitempty,gte=0,lte=100"`
	MaxResults *int     `json:"max_results" validate:"omitempty,gte=1,lte=10"`
}

// KnowledgeResponse salida de una entrada.
type KnowledgeResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Answer    string    `json:"answer"`
	Keywords  []string  `json:"keywords"`
	Category  *string   `json:"category"`
	Active    bool      `json:"active"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnowledgeMatchResponse entrada con su puntaje (0-100) y las palabras que coincidieron.
type KnowledgeMatchResponse struct {
	Item    KnowledgeResponse `json:"item"`
	Score   float64           `json:"score"`
	Matches []string          `json:"matches"`
}

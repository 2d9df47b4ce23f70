package repository

import (
	"context"
	"time"

	"github.com/jhoicas/perecibles-api/internal/domain/entity"
)

// KnowledgeRepository persistencia de la base de conocimiento.
// Los Get devuelven (nil, nil) si no existe.
type KnowledgeRepository interface {
	Create(ctx context.Context, item *entity.KnowledgeItem) error
	GetByID(ctx context.Context, id string) (*entity.KnowledgeItem, error)
	GetByTitle(ctx context.Context, title string) (*entity.KnowledgeItem, error)
	// List ordenado por título; activeOnly filtra las entradas dadas de baja.
	List(ctx context.Context, activeOnly bool) ([]*entity.KnowledgeItem, error)
	Update(ctx context.Context, item *entity.KnowledgeItem) error
	// Deactivate baja lógica; false si no existe o ya estaba inactiva.
	Deactivate(ctx context.Context, id string, at time.Time) (bool, error)
	// IncrementViews suma una visualización y devuelve el total; false si no existe.
	IncrementViews(ctx context.Context, id string) (int64, bool, error)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

var _ repository.KnowledgeRepository = (*KnowledgeRepo)(nil)

const knowledgeColumns = `id::TEXT, title, answer, keywords, category, active, views, created_at, updated_at`

// KnowledgeRepo base de conocimiento sobre PostgreSQL. keywords es TEXT[].
type KnowledgeRepo struct {
	q Querier
}

// NewKnowledgeRepository construye el adaptador.
func NewKnowledgeRepository(q Querier) *KnowledgeRepo {
	return &KnowledgeRepo{q: q}
}

// Create inserta la entrada. La restricción UNIQUE(title) devuelve ErrDuplicate.
func (r *KnowledgeRepo) Create(ctx context.Context, it *entity.KnowledgeItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO knowledge_items (id, title, answer, keywords, category, active, views, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		it.ID, it.Title, it.Answer, keywordsArg(it.Keywords), it.Category, it.Active, it.Views, it.CreatedAt, it.UpdatedAt)
	return wrapErr("insert knowledge item", err)
}

// GetByID (nil, nil) si no existe.
func (r *KnowledgeRepo) GetByID(ctx context.Context, id string) (*entity.KnowledgeItem, error) {
	return r.getOne(ctx, `SELECT `+knowledgeColumns+` FROM knowledge_items WHERE id = $1`, id)
}

// GetByTitle (nil, nil) si no existe.
func (r *KnowledgeRepo) GetByTitle(ctx context.Context, title string) (*entity.KnowledgeItem, error) {
	return r.getOne(ctx, `SELECT `+knowledgeColumns+` FROM knowledge_items WHERE title = $1`, title)
}

func (r *KnowledgeRepo) getOne(ctx context.Context, query string, arg any) (*entity.KnowledgeItem, error) {
	it, err := scanKnowledge(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get knowledge item", err)
	}
	return it, nil
}

// List ordenado por título.
func (r *KnowledgeRepo) List(ctx context.Context, activeOnly bool) ([]*entity.KnowledgeItem, error) {
	query := `SELECT ` + knowledgeColumns + ` FROM knowledge_items`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY title`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list knowledge items", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.KnowledgeItem, error) {
		return scanKnowledge(row)
	})
	if err != nil {
		return nil, wrapErr("list knowledge items", err)
	}
	return items, nil
}

// Update reescribe los campos editables; views y created_at no se tocan.
func (r *KnowledgeRepo) Update(ctx context.Context, it *entity.KnowledgeItem) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE knowledge_items SET title = $2, answer = $3, keywords = $4, category = $5, active = $6, updated_at = $7
		WHERE id = $1`,
		it.ID, it.Title, it.Answer, keywordsArg(it.Keywords), it.Category, it.Active, it.UpdatedAt)
	if err != nil {
		return wrapErr("update knowledge item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entrada %s: %w", it.ID, domain.ErrNotFound)
	}
	return nil
}

// Deactivate baja lógica; sólo afecta filas activas.
func (r *KnowledgeRepo) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE knowledge_items SET active = FALSE, updated_at = $2 WHERE id = $1 AND active`, id, at)
	if err != nil {
		return false, wrapErr("deactivate knowledge item", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementViews suma una visualización en una sola sentencia.
func (r *KnowledgeRepo) IncrementViews(ctx context.Context, id string) (int64, bool, error) {
	var views int64
	err := r.q.QueryRow(ctx,
		`UPDATE knowledge_items SET views = views + 1 WHERE id = $1 RETURNING views`, id).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, wrapErr("increment knowledge views", err)
	}
	return views, true, nil
}

// keywordsArg evita enviar NULL a la columna NOT NULL.
func keywordsArg(k []string) []string {
	if k == nil {
		return []string{}
	}
	return k
}

func scanKnowledge(row pgx.Row) (*entity.KnowledgeItem, error) {
	var it entity.KnowledgeItem
	err := row.Scan(&it.ID, &it.Title, &it.Answer, &it.Keywords, &it.Category, &it.Active, &it.Views, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

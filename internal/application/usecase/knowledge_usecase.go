package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/perecibles-api/internal/application/dto"
	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/knowledge"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
	"github.com/jhoicas/perecibles-api/pkg/logger"
)

// KnowledgeUseCase base de conocimiento: CRUD con baja lógica y búsqueda por puntaje de palabras.
type KnowledgeUseCase struct {
	repo repository.KnowledgeRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewKnowledgeUseCase construye el caso de uso.
func NewKnowledgeUseCase(repo repository.KnowledgeRepository, log *logger.Logger) *KnowledgeUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &KnowledgeUseCase{repo: repo, log: log.Component("knowledge"), now: time.Now}
}

// Create registra una entrada. ErrDuplicate si el título ya existe (aunque esté inactiva).
func (uc *KnowledgeUseCase) Create(ctx context.Context, in dto.CreateKnowledgeRequest) (*dto.KnowledgeResponse, error) {
	title := strings.TrimSpace(in.Title)
	answer := strings.TrimSpace(in.Answer)
	if title == "" || answer == "" {
		return nil, domain.Invalid("título y respuesta requeridos")
	}
	if err := uc.ensureTitleFree(ctx, title, ""); err != nil {
		return nil, err
	}

	now := uc.now()
	item := &entity.KnowledgeItem{
		ID:        uuid.New().String(),
		Title:     title,
		Answer:    answer,
		Keywords:  cleanKeywords(in.Keywords),
		Category:  in.Category,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Active != nil {
		item.Active = *in.Active
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	uc.log.Info().Str("id", item.ID).Str("title", title).Msg("entrada de conocimiento creada")
	return toKnowledgeResponse(item), nil
}

// Get entrada por id (activa o no); ErrNotFound si no existe.
func (uc *KnowledgeUseCase) Get(ctx context.Context, id string) (*dto.KnowledgeResponse, error) {
	item, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toKnowledgeResponse(item), nil
}

// List entradas ordenadas por título.
func (uc *KnowledgeUseCase) List(ctx context.Context, activeOnly bool) ([]dto.KnowledgeResponse, error) {
	items, err := uc.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.KnowledgeResponse, 0, len(items))
	for _, it := range items {
		out = append(out, *toKnowledgeResponse(it))
	}
	return out, nil
}

// Update cambios parciales. Un título nuevo no puede chocar con otra entrada.
func (uc *KnowledgeUseCase) Update(ctx context.Context, id string, in dto.UpdateKnowledgeRequest) (*dto.KnowledgeResponse, error) {
	item, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.Invalid("título vacío")
		}
		if title != item.Title {
			if err := uc.ensureTitleFree(ctx, title, item.ID); err != nil {
				return nil, err
			}
		}
		item.Title = title
	}
	if in.Answer != nil {
		answer := strings.TrimSpace(*in.Answer)
		if answer == "" {
			return nil, domain.Invalid("respuesta vacía")
		}
		item.Answer = answer
	}
	if in.Keywords != nil {
		item.Keywords = cleanKeywords(in.Keywords)
	}
	if in.Category != nil {
		item.Category = in.Category
	}
	if in.Active != nil {
		item.Active = *in.Active
	}
	item.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return toKnowledgeResponse(item), nil
}

// Delete baja lógica. ErrNotFound si no existe o ya estaba inactiva.
func (uc *KnowledgeUseCase) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("entrada %s: %w", id, domain.ErrNotFound)
	}
	ok, err := uc.repo.Deactivate(ctx, id, uc.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("entrada %s activa: %w", id, domain.ErrNotFound)
	}
	uc.log.Info().Str("id", id).Msg("entrada de conocimiento desactivada")
	return nil
}

// Search puntúa las entradas activas contra el mensaje y devuelve las que alcanzan minScore,
// de mayor a menor puntaje (empate por título), como máximo maxResults.
func (uc *KnowledgeUseCase) Search(ctx context.Context, message string, minScore float64, maxResults int) ([]dto.KnowledgeMatchResponse, error) {
	message = strings.TrimSpace(message)
	switch {
	case utf8.RuneCountInString(message) < knowledge.MinMessageLength:
		return nil, domain.Invalid("el mensaje debe tener al menos %d caracteres", knowledge.MinMessageLength)
	case minScore < 0 || minScore > knowledge.MaxScore:
		return nil, domain.Invalid("min_score debe estar entre 0 y 100")
	case maxResults < 1 || maxResults > knowledge.MaxResultsLimit:
		return nil, domain.Invalid("max_results debe estar entre 1 y %d", knowledge.MaxResultsLimit)
	}

	items, err := uc.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	matches := make([]dto.KnowledgeMatchResponse, 0, len(items))
	for _, it := range items {
		score, words := knowledge.Score(message, it.Title, it.Keywords)
		if score < minScore {
			continue
		}
		matches = append(matches, dto.KnowledgeMatchResponse{
			Item:    *toKnowledgeResponse(it),
			Score:   score,
			Matches: words,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Item.Title < matches[j].Item.Title
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// Best la mejor coincidencia con los valores por defecto; suma una visualización.
// ErrNotFound si ninguna entrada alcanza el puntaje mínimo.
func (uc *KnowledgeUseCase) Best(ctx context.Context, message string) (*dto.KnowledgeMatchResponse, error) {
	matches, err := uc.Search(ctx, message, knowledge.DefaultMinScore, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("ninguna respuesta relevante, reformule la pregunta: %w", domain.ErrNotFound)
	}
	best := matches[0]
	views, ok, err := uc.repo.IncrementViews(ctx, best.Item.ID)
	switch {
	case err != nil:
		uc.log.Warn().Err(err).Str("id", best.Item.ID).Msg("no se pudo registrar la visualización")
	case ok:
		best.Item.Views = views
	}
	return &best, nil
}

func (uc *KnowledgeUseCase) find(ctx context.Context, id string) (*entity.KnowledgeItem, error) {
	if !validID(id) {
		return nil, fmt.Errorf("entrada %s: %w", id, domain.ErrNotFound)
	}
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("entrada %s: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

func (uc *KnowledgeUseCase) ensureTitleFree(ctx context.Context, title, selfID string) error {
	other, err := uc.repo.GetByTitle(ctx, title)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return fmt.Errorf("entrada con título %q: %w", title, domain.ErrDuplicate)
	}
	return nil
}

// validID los ids son UUID; cualquier otro valor no puede existir.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func toKnowledgeResponse(it *entity.KnowledgeItem) *dto.KnowledgeResponse {
	return &dto.KnowledgeResponse{
		ID:        it.ID,
		Title:     it.Title,
		Answer:    it.Answer,
		Keywords:  append([]string{}, it.Keywords...),
		Category:  it.Category,
		Active:    it.Active,
		Views:     it.Views,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

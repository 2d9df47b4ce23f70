package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/perecibles-api/internal/domain"
	"github.com/jhoicas/perecibles-api/internal/domain/entity"
	"github.com/jhoicas/perecibles-api/internal/domain/repository"
)

var _ repository.KnowledgeRepository = (*knowledgeRepo)(nil)

type knowledgeRepo struct {
	s *Store
}

func (r *knowledgeRepo) Create(_ context.Context, item *entity.KnowledgeItem) error {
	return r.s.write(func(st *state) error {
		for _, it := range st.knowledge {
			if it.Title == item.Title {
				return fmt.Errorf("entrada %q: %w", item.Title, domain.ErrDuplicate)
			}
		}
		if _, ok := st.knowledge[item.ID]; ok {
			return fmt.Errorf("entrada %s: %w", item.ID, domain.ErrDuplicate)
		}
		st.knowledge[item.ID] = item.Clone()
		return nil
	})
}

func (r *knowledgeRepo) GetByID(_ context.Context, id string) (out *entity.KnowledgeItem, err error) {
	err = r.s.read(func(st *state) error {
		if it, ok := st.knowledge[id]; ok {
			out = it.Clone()
		}
		return nil
	})
	return out, err
}

func (r *knowledgeRepo) GetByTitle(_ context.Context, title string) (out *entity.KnowledgeItem, err error) {
	err = r.s.read(func(st *state) error {
		for _, it := range st.knowledge {
			if it.Title == title {
				out = it.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *knowledgeRepo) List(_ context.Context, activeOnly bool) (out []*entity.KnowledgeItem, err error) {
	err = r.s.read(func(st *state) error {
		out = make([]*entity.KnowledgeItem, 0, len(st.knowledge))
		for _, it := range st.knowledge {
			if activeOnly && !it.Active {
				continue
			}
			out = append(out, it.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, err
}

func (r *knowledgeRepo) Update(_ context.Context, item *entity.KnowledgeItem) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.knowledge[item.ID]
		if !ok {
			return fmt.Errorf("entrada %s: %w", item.ID, domain.ErrNotFound)
		}
		for id, it := range st.knowledge {
			if id != item.ID && it.Title == item.Title {
				return fmt.Errorf("entrada %q: %w", item.Title, domain.ErrDuplicate)
			}
		}
		c := item.Clone()
		c.CreatedAt = cur.CreatedAt
		c.Views = cur.Views
		st.knowledge[item.ID] = c
		return nil
	})
}

func (r *knowledgeRepo) Deactivate(_ context.Context, id string, at time.Time) (changed bool, err error) {
	err = r.s.write(func(st *state) error {
		it, ok := st.knowledge[id]
		if !ok || !it.Active {
			return nil
		}
		it.Active = false
		it.UpdatedAt = at
		changed = true
		return nil
	})
	return changed, err
}

func (r *knowledgeRepo) IncrementViews(_ context.Context, id string) (views int64, found bool, err error) {
	err = r.s.write(func(st *state) error {
		it, ok := st.knowledge[id]
		if !ok {
			return nil
		}
		it.Views++
		views, found = it.Views, true
		return nil
	})
	return views, found, err
}

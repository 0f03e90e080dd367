package memory

import (
	"context"
	"sync"
	"time"

	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

// Repository keeps entities in a map keyed by id. Entities are cloned on the
// way in and out so callers never share state with the store.
type Repository[T domain.Entity[T], P domain.Patch[T]] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	now   func() time.Time
}

func New[T domain.Entity[T], P domain.Patch[T]]() *Repository[T, P] {
	return &Repository[T, P]{
		items: make(map[string]T),
		now:   time.Now,
	}
}

// NewSet returns empty in-memory repositories for every entity kind.
func NewSet() repository.Set {
	return repository.Set{
		Users:     New[*domain.User, domain.UserPatch](),
		Places:    New[*domain.Place, domain.PlacePatch](),
		Reviews:   New[*domain.Review, domain.ReviewPatch](),
		Amenities: New[*domain.Amenity, domain.AmenityPatch](),
	}
}

func (r *Repository[T, P]) Get(_ context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	item, ok := r.items[id]
	if !ok {
		return zero, nil
	}
	return item.Clone(), nil
}

func (r *Repository[T, P]) GetByAttribute(_ context.Context, attr string, value any) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	for _, id := range r.order {
		item := r.items[id]
		ok, err := item.Matches(attr, value)
		if err != nil {
			return zero, err
		}
		if ok {
			return item.Clone(), nil
		}
	}
	return zero, nil
}

func (r *Repository[T, P]) GetAll(_ context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

func (r *Repository[T, P]) FindAll(_ context.Context, attr string, value any) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0)
	for _, id := range r.order {
		item := r.items[id]
		ok, err := item.Matches(attr, value)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

func (r *Repository[T, P]) Add(_ context.Context, entity T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := entity.Clone()
	meta := stored.Metadata()
	for {
		meta.Stamp(r.now())
		if _, taken := r.items[meta.ID]; !taken {
			break
		}
	}
	r.items[meta.ID] = stored
	r.order = append(r.order, meta.ID)

	*entity.Metadata() = *meta
	return stored.Clone(), nil
}

func (r *Repository[T, P]) Update(_ context.Context, id string, patch P) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	item, ok := r.items[id]
	if !ok {
		return zero, nil
	}
	updated := item.Clone()
	patch.Apply(updated)
	updated.Metadata().Touch(r.now())
	r.items[id] = updated
	return updated.Clone(), nil
}

func (r *Repository[T, P]) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

var _ repository.UserRepository = (*Repository[*domain.User, domain.UserPatch])(nil)

package service

import (
	"context"
	"fmt"
	"log/slog"

	"spaceship-manager/internal/cache"
	"spaceship-manager/internal/event"
	"spaceship-manager/internal/model"
	"spaceship-manager/internal/repository"
)

// Publisher delivers a committed-mutation event. Implemented by
// event.Notifier; failures never roll back the mutation.
type Publisher interface {
	Publish(ctx context.Context, e event.SpaceshipEvent) error
}

// SpaceshipService orchestrates the record lifecycle. Every mutation runs the
// same fixed pipeline: validate, persist, invalidate cache, publish. A failed
// persist leaves cache and notifier untouched; once the store commit succeeds
// it is the point of no return and later steps cannot undo it. Reads go
// cache-first and fall back to the store on a miss.
//
// Concurrent mutations to the same id are last-write-wins; no version field
// guards against interleaving beyond the store's transaction isolation.
type SpaceshipService struct {
	store     repository.SpaceshipStore
	cache     cache.Cache
	publisher Publisher
}

func NewSpaceshipService(store repository.SpaceshipStore, c cache.Cache, publisher Publisher) *SpaceshipService {
	return &SpaceshipService{store: store, cache: c, publisher: publisher}
}

func (s *SpaceshipService) List(ctx context.Context, page int, size int, sort string) (model.SpaceshipPage, error) {
	spec := model.PageSpec{Page: page, Size: size, Sort: sort}

	value, err := s.cache.GetOrLoad(ctx, cache.RegionSpaceships, cache.PageKey(spec.Page, spec.Size, spec.Sort),
		func(ctx context.Context) (any, error) {
			return s.store.List(ctx, spec)
		})
	if err != nil {
		return model.SpaceshipPage{}, err
	}

	return value.(model.SpaceshipPage), nil
}

func (s *SpaceshipService) GetByID(ctx context.Context, id int64) (model.Spaceship, error) {
	if id < 0 {
		return model.Spaceship{}, fmt.Errorf("%w: %d", model.ErrInvalidSpaceshipID, id)
	}

	value, err := s.cache.GetOrLoad(ctx, cache.RegionSpaceship, cache.IDKey(id),
		func(ctx context.Context) (any, error) {
			return s.store.Get(ctx, id)
		})
	if err != nil {
		return model.Spaceship{}, err
	}

	return value.(model.Spaceship), nil
}

func (s *SpaceshipService) SearchByName(ctx context.Context, term string) (model.SpaceshipsData, error) {
	value, err := s.cache.GetOrLoad(ctx, cache.RegionSpaceships, cache.SearchKey(term),
		func(ctx context.Context) (any, error) {
			ships, err := s.store.SearchByName(ctx, term)
			if err != nil {
				return nil, err
			}
			return model.SpaceshipsData{Spaceships: ships}, nil
		})
	if err != nil {
		return model.SpaceshipsData{}, err
	}

	return value.(model.SpaceshipsData), nil
}

func (s *SpaceshipService) Create(ctx context.Context, payload model.SpaceshipPayload) (model.Spaceship, error) {
	if err := payload.Validate(); err != nil {
		return model.Spaceship{}, err
	}

	saved, err := s.store.Save(ctx, model.Spaceship{
		Name:     payload.Name,
		Category: payload.Category,
		Origin:   payload.Origin,
		Capacity: payload.Capacity,
	})
	if err != nil {
		return model.Spaceship{}, err
	}

	// A new row can change every page boundary and every search result.
	s.cache.InvalidateRegion(cache.RegionSpaceships)

	s.publish(ctx, event.FromSpaceship(event.KindCreate, saved))
	return saved, nil
}

func (s *SpaceshipService) Update(ctx context.Context, id int64, payload model.SpaceshipPayload) (model.Spaceship, error) {
	if id < 0 {
		return model.Spaceship{}, fmt.Errorf("%w: %d", model.ErrInvalidSpaceshipID, id)
	}
	// Id 0 is Save's insert marker and no persisted row ever carries it; an
	// update against it must not fall into the insert branch.
	if id == 0 {
		return model.Spaceship{}, model.ErrSpaceshipNotFound
	}
	if err := payload.Validate(); err != nil {
		return model.Spaceship{}, err
	}

	saved, err := s.store.Save(ctx, model.Spaceship{
		ID:       id,
		Name:     payload.Name,
		Category: payload.Category,
		Origin:   payload.Origin,
		Capacity: payload.Capacity,
	})
	if err != nil {
		return model.Spaceship{}, err
	}

	s.cache.Invalidate(cache.RegionSpaceship, cache.IDKey(id))
	s.cache.InvalidateRegion(cache.RegionSpaceships)

	s.publish(ctx, event.FromSpaceship(event.KindUpdate, saved))
	return saved, nil
}

func (s *SpaceshipService) Delete(ctx context.Context, id int64) error {
	if id < 0 {
		return fmt.Errorf("%w: %d", model.ErrInvalidSpaceshipID, id)
	}

	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(cache.RegionSpaceship, cache.IDKey(id))
	s.cache.InvalidateRegion(cache.RegionSpaceships)

	s.publish(ctx, event.Deleted(id))
	return nil
}

// publish runs after commit and invalidation. The persisted state is the
// truth: a delivery failure is advisory and never propagated to the caller.
// The notifier already falls back to the durable outbox, so reaching the
// warning below means both the bus and the outbox were unavailable.
func (s *SpaceshipService) publish(ctx context.Context, e event.SpaceshipEvent) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Warn("change event delivery failed",
			"change_kind", e.ChangeKind, "record_id", e.RecordID, "error", err)
	}
}

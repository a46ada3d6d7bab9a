package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"spaceship-manager/internal/model"
)

// MemorySpaceshipStore implements SpaceshipStore with the same soft-delete
// semantics as the Postgres repository. It backs tests and MEMORY_STORE runs.
type MemorySpaceshipStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]model.Spaceship
}

func NewMemorySpaceshipStore() *MemorySpaceshipStore {
	return &MemorySpaceshipStore{nextID: 1, rows: map[int64]model.Spaceship{}}
}

func (s *MemorySpaceshipStore) Get(_ context.Context, id int64) (model.Spaceship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok || row.Deleted {
		return model.Spaceship{}, model.ErrSpaceshipNotFound
	}
	return row, nil
}

func (s *MemorySpaceshipStore) GetAny(_ context.Context, id int64) (model.Spaceship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return model.Spaceship{}, model.ErrSpaceshipNotFound
	}
	return row, nil
}

func (s *MemorySpaceshipStore) List(_ context.Context, spec model.PageSpec) (model.SpaceshipPage, error) {
	spec = normalizePageSpec(spec)

	s.mu.RLock()
	live := make([]model.Spaceship, 0, len(s.rows))
	for _, row := range s.rows {
		if !row.Deleted {
			live = append(live, row)
		}
	}
	s.mu.RUnlock()

	sortSpaceships(live, spec.Sort)

	total := int64(len(live))
	start := spec.Page * spec.Size
	if start > len(live) {
		start = len(live)
	}
	end := start + spec.Size
	if end > len(live) {
		end = len(live)
	}

	return model.SpaceshipPage{
		Content:       live[start:end],
		PageNumber:    spec.Page,
		PageSize:      spec.Size,
		TotalElements: total,
		TotalPages:    totalPages(total, spec.Size),
	}, nil
}

// SearchByName matches case-insensitively, mirroring the Postgres ILIKE query.
func (s *MemorySpaceshipStore) SearchByName(_ context.Context, term string) ([]model.Spaceship, error) {
	folded := strings.ToLower(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]model.Spaceship, 0)
	for _, row := range s.rows {
		if row.Deleted {
			continue
		}
		if strings.Contains(strings.ToLower(row.Name), folded) {
			matches = append(matches, row)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (s *MemorySpaceshipStore) Save(_ context.Context, ship model.Spaceship) (model.Spaceship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ship.ID == 0 {
		ship.ID = s.nextID
		s.nextID++ // ids are never reused, even after deletes
		s.rows[ship.ID] = ship
		return ship, nil
	}

	existing, ok := s.rows[ship.ID]
	if !ok || existing.Deleted {
		return model.Spaceship{}, model.ErrSpaceshipNotFound
	}

	existing.Name = ship.Name
	existing.Category = ship.Category
	existing.Origin = ship.Origin
	existing.Capacity = ship.Capacity
	s.rows[ship.ID] = existing
	return existing, nil
}

func (s *MemorySpaceshipStore) SoftDelete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok || row.Deleted {
		return model.ErrSpaceshipNotFound
	}
	row.Deleted = true
	s.rows[id] = row
	return nil
}

func sortSpaceships(items []model.Spaceship, spec string) {
	column, descending := parseSort(spec)

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if descending {
			a, b = b, a
		}

		switch column {
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case "category":
			if a.Category != b.Category {
				return a.Category < b.Category
			}
		case "origin":
			if a.Origin != b.Origin {
				return a.Origin < b.Origin
			}
		case "capacity":
			if a.Capacity != b.Capacity {
				return a.Capacity < b.Capacity
			}
		}
		return a.ID < b.ID
	})
}

// MemoryOutbox implements event.OutboxStore in memory.
type MemoryOutbox struct {
	mu   sync.Mutex
	rows []model.OutboxEvent
}

func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{}
}

func (o *MemoryOutbox) Enqueue(_ context.Context, e model.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rows = append(o.rows, e)
	return nil
}

func (o *MemoryOutbox) Pending(_ context.Context, limit int) ([]model.OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]model.OutboxEvent, 0, limit)
	for _, e := range o.rows {
		if len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (o *MemoryOutbox) MarkDelivered(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	kept := o.rows[:0]
	for _, e := range o.rows {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	o.rows = kept
	return nil
}

func (o *MemoryOutbox) MarkFailed(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := range o.rows {
		if o.rows[i].ID == id {
			o.rows[i].Attempts++
		}
	}
	return nil
}

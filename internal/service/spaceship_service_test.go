package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spaceship-manager/internal/cache"
	"spaceship-manager/internal/event"
	"spaceship-manager/internal/model"
	"spaceship-manager/internal/repository"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []event.SpaceshipEvent
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, e event.SpaceshipEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) published() []event.SpaceshipEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.SpaceshipEvent, len(p.events))
	copy(out, p.events)
	return out
}

func newService(store repository.SpaceshipStore) (*SpaceshipService, *capturePublisher) {
	publisher := &capturePublisher{}
	return NewSpaceshipService(store, cache.New(time.Minute), publisher), publisher
}

var falconPayload = model.SpaceshipPayload{
	Name: "Falcon", Category: "freighter", Origin: "Star Wars", Capacity: 4,
}

func TestSpaceshipService_NegativeIDShortCircuits(t *testing.T) {
	mockStore := new(repository.MockSpaceshipStore)
	svc, publisher := newService(mockStore)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, -1)
	assert.ErrorIs(t, err, model.ErrInvalidSpaceshipID)

	_, err = svc.Update(ctx, -5, falconPayload)
	assert.ErrorIs(t, err, model.ErrInvalidSpaceshipID)

	err = svc.Delete(ctx, -9)
	assert.ErrorIs(t, err, model.ErrInvalidSpaceshipID)

	// The identifier check runs before any I/O.
	mockStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.published())
}

func TestSpaceshipService_UpdateZeroIDIsNotFound(t *testing.T) {
	store := repository.NewMemorySpaceshipStore()
	svc, publisher := newService(store)
	ctx := context.Background()

	// Id 0 must never reach Save, whose zero-id branch inserts.
	_, err := svc.Update(ctx, 0, falconPayload)
	assert.ErrorIs(t, err, model.ErrSpaceshipNotFound)

	page, err := svc.List(ctx, 0, 20, "")
	require.NoError(t, err)
	assert.Zero(t, page.TotalElements)
	assert.Empty(t, publisher.published())
}

func TestSpaceshipService_CreateValidation(t *testing.T) {
	mockStore := new(repository.MockSpaceshipStore)
	svc, publisher := newService(mockStore)

	for name, payload := range map[string]model.SpaceshipPayload{
		"missing name":      {Category: "freighter"},
		"missing category":  {Name: "Falcon"},
		"negative capacity": {Name: "Falcon", Category: "freighter", Capacity: -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), payload)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}

	mockStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.published())
}

func TestSpaceshipService_ReadAfterWrite(t *testing.T) {
	svc, _ := newService(repository.NewMemorySpaceshipStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, falconPayload)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	cold, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, cold)

	warm, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, warm, "warm cache read must equal the committed value")
}

func TestSpaceshipService_UpdateEvictsStaleReads(t *testing.T) {
	svc, _ := newService(repository.NewMemorySpaceshipStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, falconPayload)
	require.NoError(t, err)

	// Warm both regions.
	_, err = svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.List(ctx, 0, 10, "id,asc")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, model.SpaceshipPayload{
		Name: "Millennium Falcon", Category: "freighter", Origin: "Star Wars", Capacity: 6,
	})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got, "no stale value may be observable after update returns")
	assert.Equal(t, "Millennium Falcon", got.Name)
	assert.Equal(t, 6, got.Capacity)

	page, err := svc.List(ctx, 0, 10, "id,asc")
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Millennium Falcon", page.Content[0].Name)
}

func TestSpaceshipService_DeleteHidesButRetainsRow(t *testing.T) {
	store := repository.NewMemorySpaceshipStore()
	svc, _ := newService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, falconPayload)
	require.NoError(t, err)

	// Warm the per-id cache so delete must evict it.
	_, err = svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrSpaceshipNotFound)

	page, err := svc.List(ctx, 0, 10, "")
	require.NoError(t, err)
	assert.Empty(t, page.Content)

	data, err := svc.SearchByName(ctx, "falcon")
	require.NoError(t, err)
	assert.Empty(t, data.Spaceships)

	// Deletion is logical: the store still holds the row.
	row, err := store.GetAny(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, row.Deleted)
	assert.Equal(t, "Falcon", row.Name)
}

func TestSpaceshipService_EventsPerMutation(t *testing.T) {
	svc, publisher := newService(repository.NewMemorySpaceshipStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, falconPayload)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, model.SpaceshipPayload{
		Name: "Falcon", Category: "freighter", Origin: "Star Wars", Capacity: 8,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	events := publisher.published()
	require.Len(t, events, 3, "each successful mutation emits exactly one event")

	assert.Equal(t, event.KindCreate, events[0].ChangeKind)
	assert.Equal(t, created.ID, events[0].RecordID)
	assert.Equal(t, "Falcon", events[0].Name)
	assert.Equal(t, 4, events[0].Capacity)

	assert.Equal(t, event.KindUpdate, events[1].ChangeKind)
	assert.Equal(t, 8, events[1].Capacity)

	// DELETE carries only the kind and the id.
	assert.Equal(t, event.SpaceshipEvent{ChangeKind: event.KindDelete, RecordID: created.ID}, events[2])
}

func TestSpaceshipService_FailedPersistHasNoSideEffects(t *testing.T) {
	mockStore := new(repository.MockSpaceshipStore)
	svc, publisher := newService(mockStore)
	ctx := context.Background()

	page := model.SpaceshipPage{Content: []model.Spaceship{{ID: 1, Name: "Falcon", Category: "freighter"}}}
	mockStore.On("List", mock.Anything, mock.Anything).Return(page, nil).Once()

	// Warm the collection region.
	_, err := svc.List(ctx, 0, 10, "id,asc")
	require.NoError(t, err)

	mockStore.On("Save", mock.Anything, mock.Anything).Return(model.Spaceship{}, model.ErrSpaceshipNotFound).Once()
	_, err = svc.Update(ctx, 999, falconPayload)
	assert.ErrorIs(t, err, model.ErrSpaceshipNotFound)

	assert.Empty(t, publisher.published(), "no event on a failed persist")

	// Cache untouched: the warmed page is still served without a store call.
	got, err := svc.List(ctx, 0, 10, "id,asc")
	require.NoError(t, err)
	assert.Equal(t, page, got)
	mockStore.AssertNumberOfCalls(t, "List", 1)
}

func TestSpaceshipService_DeliveryFailureDoesNotMaskSuccess(t *testing.T) {
	store := repository.NewMemorySpaceshipStore()
	publisher := &capturePublisher{err: errors.New("broker and outbox down")}
	svc := NewSpaceshipService(store, cache.New(time.Minute), publisher)
	ctx := context.Background()

	created, err := svc.Create(ctx, falconPayload)
	require.NoError(t, err, "the persisted state is the truth; delivery failure is advisory")

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestSpaceshipService_Lifecycle(t *testing.T) {
	// The end-to-end walk: create, read, delete, verify events.
	svc, publisher := newService(repository.NewMemorySpaceshipStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, falconPayload)
	require.NoError(t, err)
	assert.Equal(t, model.Spaceship{
		ID: 1, Name: "Falcon", Category: "freighter", Origin: "Star Wars", Capacity: 4,
	}, created)

	got, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.NoError(t, svc.Delete(ctx, 1))

	_, err = svc.GetByID(ctx, 1)
	assert.ErrorIs(t, err, model.ErrSpaceshipNotFound)

	events := publisher.published()
	require.Len(t, events, 2)
	assert.Equal(t, event.KindCreate, events[0].ChangeKind)
	assert.Equal(t, event.KindDelete, events[1].ChangeKind)
	assert.Equal(t, int64(1), events[0].RecordID)
	assert.Equal(t, int64(1), events[1].RecordID)
}

func TestSpaceshipService_SearchEmptyIsNotAnError(t *testing.T) {
	svc, _ := newService(repository.NewMemorySpaceshipStore())

	data, err := svc.SearchByName(context.Background(), "enterprise")
	require.NoError(t, err)
	assert.Empty(t, data.Spaceships)
}

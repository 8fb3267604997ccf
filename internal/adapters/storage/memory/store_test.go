package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/domain/pets"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func TestEventRepo_ListByPet_FilterOrderLimit(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	r := s.Repos()

	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e1", PetID: "p1", Type: care.CareTypeFeed, At: t0}))
	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e2", PetID: "p1", Type: care.CareTypeWater, At: t0.Add(time.Hour)}))
	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e3", PetID: "p1", Type: care.CareTypeFeed, At: t0.Add(2 * time.Hour)}))
	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e4", PetID: "p2", Type: care.CareTypeFeed, At: t0}))

	all, err := r.Events.ListByPet(ctx, "p1", care.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "e3", all[0].ID)

	from := t0.Add(30 * time.Minute)
	feeds, err := r.Events.ListByPet(ctx, "p1", care.ListFilter{Types: []care.CareType{care.CareTypeFeed}, From: &from})
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "e3", feeds[0].ID)

	limited, err := r.Events.ListByPet(ctx, "p1", care.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestEventRepo_IdempotencyKeyUnique(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	r := s.Repos()

	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e1", PetID: "p1", Type: care.CareTypeTreat, At: t0, IdempotencyKey: "k"}))
	assert.ErrorIs(t, r.Events.Append(ctx, care.CareEvent{ID: "e2", PetID: "p1", Type: care.CareTypeTreat, At: t0, IdempotencyKey: "k"}), care.ErrDuplicate)

	got, err := r.Events.GetByIdempotencyKey(ctx, "p1", "k")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)

	_, err = r.Events.GetByIdempotencyKey(ctx, "p2", "k")
	assert.ErrorIs(t, err, care.ErrNotFound)
}

func TestMoodRepo_UpsertKeepsIdentity(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	r := s.Repos()

	_, err := r.Moods.GetByDay(ctx, "p1", "2025-03-10")
	require.ErrorIs(t, err, care.ErrNotFound)

	require.NoError(t, r.Moods.Upsert(ctx, care.MoodRecord{ID: "m1", PetID: "p1", Date: "2025-03-10", Score: 3.2, CreatedAt: t0}))
	require.NoError(t, r.Moods.Upsert(ctx, care.MoodRecord{ID: "other", PetID: "p1", Date: "2025-03-10", Score: 4.2, CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, r.Moods.Upsert(ctx, care.MoodRecord{ID: "m2", PetID: "p1", Date: "2025-03-08", Score: 2}))

	m, err := r.Moods.GetByDay(ctx, "p1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, t0, m.CreatedAt)
	assert.InDelta(t, 4.2, m.Score, 1e-9)

	items, err := r.Moods.ListByPet(ctx, "p1", "2025-03-09", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2025-03-10", items[0].Date)
}

func TestPetRepo_DeleteCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Pets().Create(ctx, pets.Pet{ID: "p1", OwnerUserID: "u1", Name: "Luna"}))
	require.NoError(t, s.Repos().Events.Append(ctx, care.CareEvent{ID: "e1", PetID: "p1", Type: care.CareTypeFeed, At: t0}))
	require.NoError(t, s.Repos().Moods.Upsert(ctx, care.MoodRecord{ID: "m1", PetID: "p1", Date: "2025-03-10", Score: 3}))

	require.NoError(t, s.Pets().Delete(ctx, "p1"))

	_, err := s.Pets().GetByID(ctx, "p1")
	assert.ErrorIs(t, err, pets.ErrNotFound)

	evs, err := s.Repos().Events.ListByPet(ctx, "p1", care.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, evs)

	_, err = s.Repos().Moods.GetByDay(ctx, "p1", "2025-03-10")
	assert.ErrorIs(t, err, care.ErrNotFound)

	assert.ErrorIs(t, s.Pets().Delete(ctx, "p1"), pets.ErrNotFound)
}

func TestWithinPetTx_SerializesSamePet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinPetTx(ctx, "p1", func(ctx context.Context, r care.Repos) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, s.locks.m, "locks released")
}

func TestWithinPetTx_CanceledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinPetTx(ctx, "p1", func(ctx context.Context, r care.Repos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/domain/pets"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func seedPet(t *testing.T, s *Store, id string) pets.Pet {
	t.Helper()
	ft, ff := 2, 6
	w := 4.5
	bd := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
	p := pets.Pet{
		ID:               id,
		OwnerUserID:      "u1",
		Name:             "Luna",
		Species:          pets.SpeciesRagdoll,
		Sex:              pets.SexFemale,
		BirthDate:        &bd,
		WeightKg:         &w,
		Neutered:         true,
		FeedingTime:      &ft,
		FeedingFrequency: &ff,
		CreatedAt:        t0,
		UpdatedAt:        t0,
	}
	require.NoError(t, s.Pets().Create(context.Background(), p))
	return p
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "data", "care.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestPetsRepo_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	want := seedPet(t, s, "p1")

	got, err := s.Pets().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, care.PetConfig{FeedingTime: 2, FeedingFrequency: 6}, got.CareConfig())

	list, err := s.Pets().ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.Pets().GetByID(ctx, "nope")
	assert.ErrorIs(t, err, pets.ErrNotFound)
}

func TestEventsRepo_FiltersAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPet(t, s, "p1")
	r := s.Repos()

	amount := 40.0
	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e1", PetID: "p1", Type: care.CareTypeFeed, At: t0, AmountG: &amount}))
	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e2", PetID: "p1", Type: care.CareTypeWater, At: t0.Add(time.Hour)}))
	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e3", PetID: "p1", Type: care.CareTypeFeed, At: t0.Add(6 * time.Hour), Note: "wet food"}))

	all, err := r.Events.ListByPet(ctx, "p1", care.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"e3", "e2", "e1"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, t0, all[2].At)
	require.NotNil(t, all[2].AmountG)
	assert.InDelta(t, 40.0, *all[2].AmountG, 1e-9)

	to := t0.Add(2 * time.Hour)
	feeds, err := r.Events.ListByPet(ctx, "p1", care.ListFilter{
		Types: []care.CareType{care.CareTypeFeed},
		To:    &to,
	})
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "e1", feeds[0].ID)

	limited, err := r.Events.ListByPet(ctx, "p1", care.ListFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "wet food", limited[0].Note)
}

func TestEventsRepo_DuplicateIdempotencyKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPet(t, s, "p1")
	r := s.Repos()

	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e1", PetID: "p1", Type: care.CareTypeTreat, At: t0, IdempotencyKey: "k1"}))
	err := r.Events.Append(ctx, care.CareEvent{ID: "e2", PetID: "p1", Type: care.CareTypeTreat, At: t0, IdempotencyKey: "k1"})
	assert.ErrorIs(t, err, care.ErrDuplicate)

	// Sin clave no hay conflicto.
	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e3", PetID: "p1", Type: care.CareTypeTreat, At: t0}))
	require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e4", PetID: "p1", Type: care.CareTypeTreat, At: t0}))

	got, err := r.Events.GetByIdempotencyKey(ctx, "p1", "k1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
}

func TestMoodsRepo_UpsertKeepsIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPet(t, s, "p1")
	r := s.Repos()

	require.NoError(t, r.Moods.Upsert(ctx, care.MoodRecord{ID: "m1", PetID: "p1", Date: "2025-03-10", Score: 3.2, CreatedAt: t0, UpdatedAt: t0}))
	require.NoError(t, r.Moods.Upsert(ctx, care.MoodRecord{ID: "ignored", PetID: "p1", Date: "2025-03-10", Score: 4.2, CreatedAt: t0.Add(time.Hour), UpdatedAt: t0.Add(time.Hour)}))

	m, err := r.Moods.GetByDay(ctx, "p1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, t0, m.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), m.UpdatedAt)
	assert.InDelta(t, 4.2, m.Score, 1e-9)

	_, err = r.Moods.GetByDay(ctx, "p1", "2025-03-09")
	assert.ErrorIs(t, err, care.ErrNotFound)
}

func TestWithinPetTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPet(t, s, "p1")

	boom := errors.New("boom")
	err := s.WithinPetTx(ctx, "p1", func(ctx context.Context, r care.Repos) error {
		require.NoError(t, r.Events.Append(ctx, care.CareEvent{ID: "e1", PetID: "p1", Type: care.CareTypeFeed, At: t0}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := s.Repos().Events.ListByPet(ctx, "p1", care.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items, "append rolled back with the failed mood write")
}

func TestDeletePet_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPet(t, s, "p1")

	require.NoError(t, s.Repos().Events.Append(ctx, care.CareEvent{ID: "e1", PetID: "p1", Type: care.CareTypeFeed, At: t0}))
	require.NoError(t, s.Repos().Moods.Upsert(ctx, care.MoodRecord{ID: "m1", PetID: "p1", Date: "2025-03-10", Score: 3, CreatedAt: t0, UpdatedAt: t0}))

	require.NoError(t, s.Pets().Delete(ctx, "p1"))
	assert.ErrorIs(t, s.Pets().Delete(ctx, "p1"), pets.ErrNotFound)

	items, err := s.Repos().Events.ListByPet(ctx, "p1", care.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.Repos().Moods.GetByDay(ctx, "p1", "2025-03-10")
	assert.ErrorIs(t, err, care.ErrNotFound)
}

func TestCareService_ConcurrentApplyRespectsCap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPet(t, s, "p1")

	svc := care.NewService(s, care.Options{Location: time.UTC})

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		blocked int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Apply(ctx, care.ApplyInput{PetID: p.ID, Type: care.CareTypeTreat}, p.CareConfig())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, care.ErrNotAllowed):
				blocked++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok, "TREAT cap is 5 per day")
	assert.Equal(t, n-5, blocked)

	st, err := svc.Status(ctx, p.ID, p.CareConfig())
	require.NoError(t, err)
	assert.Equal(t, 5, st.Counts.Treat)
	require.NotNil(t, st.Mood)
	assert.Equal(t, care.MoodMax, st.Mood.Score)
}

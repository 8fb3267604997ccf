package care

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-care-tracker/internal/domain/validation"
)

// -------------------------
// Test store (in-memory)
// -------------------------

type testStore struct {
	mu     sync.Mutex
	events []CareEvent
	moods  map[string]MoodRecord

	moodErr error
}

func newTestStore() *testStore {
	return &testStore{moods: map[string]MoodRecord{}}
}

func (s *testStore) Repos() Repos {
	return Repos{Events: testEvents{s}, Moods: testMoods{s}}
}

func (s *testStore) WithinPetTx(ctx context.Context, petID string, fn func(ctx context.Context, r Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, s.Repos())
}

type testEvents struct{ s *testStore }

func (r testEvents) Append(ctx context.Context, e CareEvent) error {
	r.s.events = append(r.s.events, e)
	return nil
}

func (r testEvents) ListByPet(ctx context.Context, petID string, f ListFilter) ([]CareEvent, error) {
	out := make([]CareEvent, 0)
	for _, e := range r.s.events {
		if e.PetID == petID && f.Matches(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r testEvents) GetByIdempotencyKey(ctx context.Context, petID, key string) (CareEvent, error) {
	for _, e := range r.s.events {
		if e.PetID == petID && e.IdempotencyKey == key {
			return e, nil
		}
	}
	return CareEvent{}, ErrNotFound
}

type testMoods struct{ s *testStore }

func (r testMoods) GetByDay(ctx context.Context, petID, date string) (MoodRecord, error) {
	if r.s.moodErr != nil {
		return MoodRecord{}, r.s.moodErr
	}
	m, ok := r.s.moods[petID+"|"+date]
	if !ok {
		return MoodRecord{}, ErrNotFound
	}
	return m, nil
}

func (r testMoods) Upsert(ctx context.Context, m MoodRecord) error {
	if r.s.moodErr != nil {
		return r.s.moodErr
	}
	r.s.moods[m.PetID+"|"+m.Date] = m
	return nil
}

func (r testMoods) ListByPet(ctx context.Context, petID, fromDate, toDate string) ([]MoodRecord, error) {
	out := make([]MoodRecord, 0)
	for _, m := range r.s.moods {
		if m.PetID == petID && m.Date >= fromDate && m.Date <= toDate {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// -------------------------
// Helpers
// -------------------------

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*Service, *testStore, *testClock) {
	t.Helper()
	store := newTestStore()
	clk := &testClock{t: t0}
	svc := NewService(store, Options{Location: time.UTC})
	svc.now = clk.now
	return svc, store, clk
}

var feedCfg = PetConfig{FeedingTime: 2, FeedingFrequency: 6}

// -------------------------
// Tests
// -------------------------

func TestApply_FeedScenario(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	res, err := svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypeFeed}, feedCfg)
	require.NoError(t, err)
	assert.Equal(t, t0, res.Event.At)
	require.NotNil(t, res.Mood)
	assert.InDelta(t, 3.2, res.Mood.Score, 1e-9)

	clk.advance(time.Hour)
	_, err = svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypeFeed}, feedCfg)
	var na *NotAllowedError
	require.ErrorAs(t, err, &na)
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Equal(t, t0.Add(6*time.Hour), na.NextAllowedAt)

	st, err := svc.Status(ctx, "pet-1", feedCfg)
	require.NoError(t, err)
	assert.True(t, st.Needs.Feed)
	assert.False(t, st.Allowed.Feed)

	clk.advance(5 * time.Hour)
	res, err = svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypeFeed}, feedCfg)
	require.NoError(t, err)
	assert.InDelta(t, 3.4, res.Mood.Score, 1e-9)

	assert.Len(t, store.events, 2, "blocked attempts leave no event")
}

func TestApply_InvalidInput(t *testing.T) {
	svc, store, _ := newTestService(t)
	neg := -5.0

	cases := []struct {
		name  string
		in    ApplyInput
		field string
		code  validation.Code
	}{
		{"missing pet", ApplyInput{Type: CareTypeFeed}, "petId", validation.CodeRequired},
		{"unknown type", ApplyInput{PetID: "pet-1", Type: "BATH"}, "careType", validation.CodeInvalidValue},
		{"negative amount", ApplyInput{PetID: "pet-1", Type: CareTypeFeed, AmountG: &neg}, "amountG", validation.CodeOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Apply(context.Background(), tc.in, PetConfig{})
			require.ErrorIs(t, err, ErrInvalidInput)

			var res validation.Result
			require.ErrorAs(t, err, &res)
			assert.True(t, res.Has(tc.field, tc.code), "errors: %v", res.Errors)
		})
	}
	assert.Empty(t, store.events)
}

func TestApply_SanitizesNote(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.Apply(context.Background(), ApplyInput{
		PetID: "pet-1",
		Type:  CareTypeWater,
		Note:  `<script>alert(1)</script>fresh bowl`,
	}, PetConfig{})
	require.NoError(t, err)
	assert.Equal(t, "fresh bowl", res.Event.Note)
	assert.Nil(t, res.Mood, "WATER does not touch mood")
}

func TestApply_NoteKeepsPunctuationAndLength(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	res, err := svc.Apply(ctx, ApplyInput{
		PetID: "pet-1",
		Type:  CareTypeWater,
		Note:  `Tom & Jerry's "fresh" bowl`,
	}, PetConfig{})
	require.NoError(t, err)
	assert.Equal(t, `Tom & Jerry's "fresh" bowl`, res.Event.Note)

	quotes := strings.Repeat(`"`, MaxNoteLen)
	res, err = svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypeTreat, Note: quotes}, PetConfig{})
	require.NoError(t, err)
	assert.Equal(t, quotes, res.Event.Note)

	clk.advance(time.Minute)
	_, err = svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypeTreat, Note: quotes + "&"}, PetConfig{})
	var vr validation.Result
	require.ErrorAs(t, err, &vr)
	assert.True(t, vr.Has("note", validation.CodeTooLong))
}

func TestApply_IdempotentReplay(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()
	in := ApplyInput{PetID: "pet-1", Type: CareTypeTreat, IdempotencyKey: "req-1"}

	first, err := svc.Apply(ctx, in, PetConfig{})
	require.NoError(t, err)
	require.False(t, first.Replayed)

	clk.advance(time.Minute)
	again, err := svc.Apply(ctx, in, PetConfig{})
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Event.ID, again.Event.ID)
	assert.Nil(t, again.Mood)

	assert.Len(t, store.events, 1)
	m, err := store.Repos().Moods.GetByDay(ctx, "pet-1", DayKey(t0))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, m.Score, 1e-9, "mood bumped once")
}

func TestApply_TreatCapAndMoodClamp(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	var last ApplyResult
	for i := 0; i < 5; i++ {
		var err error
		last, err = svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypeTreat}, PetConfig{})
		require.NoError(t, err, "treat %d", i+1)
		clk.advance(time.Minute)
	}
	assert.Equal(t, MoodMax, last.Mood.Score)

	_, err := svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypeTreat}, PetConfig{})
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestApply_ConcurrentSubmissionsRespectCap(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	const n = 20
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
			_, err := svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypePlay}, PetConfig{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrNotAllowed):
				blocked++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, ok)
	assert.Equal(t, n-2, blocked)
	assert.Len(t, store.events, 2)
}

func TestApply_MoodStoreFailurePropagates(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.moodErr = errors.New("disk full")

	_, err := svc.Apply(context.Background(), ApplyInput{PetID: "pet-1", Type: CareTypePlay}, PetConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotErrorIs(t, err, ErrNotAllowed)
}

func TestStatus_IncludesMoodAndUrgent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	st, err := svc.Status(ctx, "pet-1", feedCfg)
	require.NoError(t, err)
	assert.Nil(t, st.Mood)
	assert.Equal(t, CareTypeFeed, st.Urgent)

	_, err = svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypeFeed}, feedCfg)
	require.NoError(t, err)

	st, err = svc.Status(ctx, "pet-1", feedCfg)
	require.NoError(t, err)
	require.NotNil(t, st.Mood)
	assert.Equal(t, CareTypeWater, st.Urgent)
	assert.Equal(t, 1, st.Counts.Feed)

	_, err = svc.Status(ctx, " ", feedCfg)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHistory_FiltersByType(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	for _, ct := range []CareType{CareTypeFeed, CareTypeWater, CareTypeTreat, CareTypeTreat} {
		_, err := svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: ct}, PetConfig{})
		require.NoError(t, err)
		clk.advance(time.Minute)
	}

	items, err := svc.History(ctx, "pet-1", ListFilter{Types: []CareType{CareTypeTreat}})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].At.After(items[1].At), "newest first")

	items, err = svc.History(ctx, "pet-1", ListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMoodHistory_LastDays(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: CareTypePlay}, PetConfig{})
		require.NoError(t, err)
		clk.advance(24 * time.Hour)
	}

	items, err := svc.MoodHistory(ctx, "pet-1", 2)
	require.NoError(t, err)
	require.Len(t, items, 1, "today has no record yet, yesterday does")
	assert.Equal(t, DayKey(t0.Add(48*time.Hour)), items[0].Date)

	items, err = svc.MoodHistory(ctx, "pet-1", 7)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = svc.MoodHistory(ctx, "pet-1", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRebuildMood_RepairsDrift(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	for _, ct := range []CareType{CareTypeFeed, CareTypePlay} {
		_, err := svc.Apply(ctx, ApplyInput{PetID: "pet-1", Type: ct}, PetConfig{})
		require.NoError(t, err)
		clk.advance(time.Minute)
	}

	key := "pet-1|" + DayKey(t0)
	drifted := store.moods[key]
	drifted.Score = 1
	store.moods[key] = drifted

	m, changed, err := svc.RebuildMood(ctx, "pet-1", "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.InDelta(t, 4.2, m.Score, 1e-9)
	assert.Equal(t, drifted.ID, m.ID)

	_, changed, err = svc.RebuildMood(ctx, "pet-1", DayKey(t0))
	require.NoError(t, err)
	assert.False(t, changed, "already consistent")

	_, changed, err = svc.RebuildMood(ctx, "pet-1", "2025-03-01")
	require.NoError(t, err)
	assert.False(t, changed, "no events that day")

	_, _, err = svc.RebuildMood(ctx, "pet-1", "2030-01-01")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

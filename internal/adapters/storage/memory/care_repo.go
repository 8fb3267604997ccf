package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-care-tracker/internal/domain/care"
)

type eventRepo struct {
	s *Store
}

func (r *eventRepo) Append(ctx context.Context, e care.CareEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.PetID) == "" {
		return errors.New("event id and pet id required")
	}
	for _, prev := range r.s.events[e.PetID] {
		if prev.ID == e.ID {
			return errors.New("event already exists")
		}
		if e.IdempotencyKey != "" && prev.IdempotencyKey == e.IdempotencyKey {
			return care.ErrDuplicate
		}
	}

	r.s.events[e.PetID] = append(r.s.events[e.PetID], e)
	return nil
}

func (r *eventRepo) ListByPet(ctx context.Context, petID string, filter care.ListFilter) ([]care.CareEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]care.CareEvent, 0)
	for _, e := range r.s.events[petID] {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}

	// Orden por At desc; en empate se respeta el orden de inserción.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.After(out[j].At)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *eventRepo) GetByIdempotencyKey(ctx context.Context, petID, key string) (care.CareEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if key == "" {
		return care.CareEvent{}, care.ErrNotFound
	}
	for _, e := range r.s.events[petID] {
		if e.IdempotencyKey == key {
			return e, nil
		}
	}
	return care.CareEvent{}, care.ErrNotFound
}

type moodRepo struct {
	s *Store
}

func moodKey(petID, date string) string {
	return petID + "|" + date
}

func (r *moodRepo) GetByDay(ctx context.Context, petID, date string) (care.MoodRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.moods[moodKey(petID, date)]
	if !ok {
		return care.MoodRecord{}, care.ErrNotFound
	}
	return m, nil
}

// Upsert conserva ID y CreatedAt del registro existente para (pet, día).
func (r *moodRepo) Upsert(ctx context.Context, m care.MoodRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(m.PetID) == "" || strings.TrimSpace(m.Date) == "" {
		return errors.New("mood pet id and date required")
	}

	k := moodKey(m.PetID, m.Date)
	if cur, ok := r.s.moods[k]; ok {
		m.ID = cur.ID
		m.CreatedAt = cur.CreatedAt
	}
	r.s.moods[k] = m
	return nil
}

func (r *moodRepo) ListByPet(ctx context.Context, petID, fromDate, toDate string) ([]care.MoodRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]care.MoodRecord, 0)
	for _, m := range r.s.moods {
		if m.PetID != petID {
			continue
		}
		if m.Date < fromDate || m.Date > toDate {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

package memory

import (
	"context"
	"sync"

	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/domain/pets"
)

// Store guarda mascotas, eventos de cuidado y ánimo en memoria (dev / tests).
//
// WithinPetTx serializa por mascota pero no es atómico: si el upsert de
// ánimo falla, el evento ya agregado queda escrito.
type Store struct {
	mu     sync.RWMutex
	pets   map[string]pets.Pet
	events map[string][]care.CareEvent // petID -> eventos en orden de inserción
	moods  map[string]care.MoodRecord  // petID|date -> registro

	locks petLocks
}

func NewStore() *Store {
	return &Store{
		pets:   make(map[string]pets.Pet),
		events: make(map[string][]care.CareEvent),
		moods:  make(map[string]care.MoodRecord),
		locks:  petLocks{m: make(map[string]*petLock)},
	}
}

func (s *Store) Pets() pets.Repository {
	return &petRepo{s: s}
}

func (s *Store) Repos() care.Repos {
	return care.Repos{
		Events: &eventRepo{s: s},
		Moods:  &moodRepo{s: s},
	}
}

func (s *Store) WithinPetTx(ctx context.Context, petID string, fn func(ctx context.Context, r care.Repos) error) error {
	unlock := s.locks.lock(petID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s.Repos())
}

func (s *Store) Ping(ctx context.Context) error { return nil }

// petLocks entrega un mutex por mascota y lo libera cuando nadie lo usa.
type petLocks struct {
	mu sync.Mutex
	m  map[string]*petLock
}

type petLock struct {
	sync.Mutex
	refs int
}

func (l *petLocks) lock(petID string) func() {
	l.mu.Lock()
	pl, ok := l.m[petID]
	if !ok {
		pl = &petLock{}
		l.m[petID] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.Lock()
	return func() {
		pl.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.m, petID)
		}
		l.mu.Unlock()
	}
}

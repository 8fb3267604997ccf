package care

import (
	"context"
	"time"
)

type EventRepository interface {
	Append(ctx context.Context, e CareEvent) error
	// ListByPet ordena por At desc. Limit <= 0 = sin límite.
	ListByPet(ctx context.Context, petID string, filter ListFilter) ([]CareEvent, error)
	GetByIdempotencyKey(ctx context.Context, petID, key string) (CareEvent, error)
}

type MoodRepository interface {
	GetByDay(ctx context.Context, petID, date string) (MoodRecord, error)
	Upsert(ctx context.Context, m MoodRecord) error
	// ListByPet devuelve registros con fromDate <= date <= toDate, date desc.
	ListByPet(ctx context.Context, petID, fromDate, toDate string) ([]MoodRecord, error)
}

type Repos struct {
	Events EventRepository
	Moods  MoodRepository
}

// Store expone los repos y una sección crítica por mascota.
// Dentro de WithinPetTx las lecturas y escrituras de un mismo pet quedan
// serializadas; si el backend lo soporta, además son atómicas.
type Store interface {
	Repos() Repos
	WithinPetTx(ctx context.Context, petID string, fn func(ctx context.Context, r Repos) error) error
}

type ListFilter struct {
	Types []CareType
	From  *time.Time
	To    *time.Time
	Limit int
}

// Matches aplica el filtro en memoria (lo usan los adapters sin SQL).
func (f ListFilter) Matches(e CareEvent) bool {
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if e.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.From != nil && e.At.Before(*f.From) {
		return false
	}
	if f.To != nil && e.At.After(*f.To) {
		return false
	}
	return true
}

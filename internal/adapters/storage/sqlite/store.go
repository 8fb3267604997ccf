package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/domain/pets"
)

// Store implementa pets.Repository (vía Pets) y care.Store sobre SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Pets() pets.Repository {
	return &PetsRepo{db: s.db}
}

func (s *Store) Repos() care.Repos {
	return reposFor(s.db)
}

func reposFor(q DBTX) care.Repos {
	return care.Repos{
		Events: &EventsRepo{db: q},
		Moods:  &MoodsRepo{db: q},
	}
}

// WithinPetTx corre fn en una transacción IMMEDIATE: toma el lock de
// escritura al empezar, así la relectura y el append quedan serializados.
func (s *Store) WithinPetTx(ctx context.Context, petID string, fn func(ctx context.Context, r care.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, reposFor(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

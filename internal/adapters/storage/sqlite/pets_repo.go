package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pet-care-tracker/internal/domain/pets"
)

type PetsRepo struct {
	db DBTX
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `id, owner_user_id, name, species, sex, birth_date, weight_kg, neutered,
	feeding_time, feeding_frequency, notes, created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO pets (`+petColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		string(p.Species),
		string(p.Sex),
		nullableDate(p.BirthDate),
		nullableFloat(p.WeightKg),
		boolToInt(p.Neutered),
		nullableInt(p.FeedingTime),
		nullableInt(p.FeedingFrequency),
		p.Notes,
		toNanos(p.CreatedAt),
		toNanos(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting pet: %w", err)
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = ?`, id)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return []pets.Pet{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+petColumns+` FROM pets
		WHERE owner_user_id = ? ORDER BY created_at ASC, id ASC`, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("listing pets: %w", err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete borra en cascada eventos y ánimo (FOREIGN KEY ... ON DELETE CASCADE).
func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting pet: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPet(s scanner) (pets.Pet, error) {
	var (
		p                pets.Pet
		species, sex     string
		birth            sql.NullString
		weight           sql.NullFloat64
		neutered         int
		feedTime, feedFq sql.NullInt64
		created, updated int64
	)
	if err := s.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&species,
		&sex,
		&birth,
		&weight,
		&neutered,
		&feedTime,
		&feedFq,
		&p.Notes,
		&created,
		&updated,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Species = pets.Species(species)
	p.Sex = pets.Sex(sex)
	p.BirthDate = parseNullableDate(birth)
	p.WeightKg = floatPtr(weight)
	p.Neutered = neutered != 0
	p.FeedingTime = intPtr(feedTime)
	p.FeedingFrequency = intPtr(feedFq)
	p.CreatedAt = fromNanos(created)
	p.UpdatedAt = fromNanos(updated)
	return p, nil
}

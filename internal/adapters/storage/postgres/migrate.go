package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS pets (
		id                TEXT PRIMARY KEY,
		owner_user_id     TEXT NOT NULL,
		name              TEXT NOT NULL,
		species           TEXT NOT NULL,
		sex               TEXT NOT NULL,
		birth_date        DATE,
		weight_kg         DOUBLE PRECISION,
		neutered          BOOLEAN NOT NULL DEFAULT FALSE,
		feeding_time      INTEGER,
		feeding_frequency INTEGER,
		notes             TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pets_owner ON pets(owner_user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS care_events (
		id              TEXT PRIMARY KEY,
		pet_id          TEXT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
		type            TEXT NOT NULL
		                CHECK (type IN ('FEED','WATER','TREAT','PLAY','NAILS','BRUSH','LITTER','VACCINE')),
		at              TIMESTAMPTZ NOT NULL,
		amount_g        DOUBLE PRECISION,
		note            TEXT NOT NULL DEFAULT '',
		idempotency_key TEXT,
		seq             BIGSERIAL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_care_events_pet_at ON care_events(pet_id, at)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_care_events_idem ON care_events(pet_id, idempotency_key)
		WHERE idempotency_key IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS mood_records (
		id         TEXT PRIMARY KEY,
		pet_id     TEXT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
		date       TEXT NOT NULL,
		score      DOUBLE PRECISION NOT NULL CHECK (score >= 1 AND score <= 5),
		note       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (pet_id, date)
	)`,
}

// Migrate aplica el schema; todas las sentencias son IF NOT EXISTS.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

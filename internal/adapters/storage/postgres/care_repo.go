package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pet-care-tracker/internal/domain/care"
)

type EventsRepo struct {
	db DBTX
}

func (r *EventsRepo) Append(ctx context.Context, e care.CareEvent) error {
	var key sql.NullString
	if e.IdempotencyKey != "" {
		key = sql.NullString{String: e.IdempotencyKey, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO care_events (id, pet_id, type, at, amount_g, note, idempotency_key)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		e.ID,
		e.PetID,
		string(e.Type),
		e.At,
		toNullFloat(e.AmountG),
		e.Note,
		key,
	)
	if err != nil {
		if key.Valid && isUniqueViolation(err) {
			return care.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *EventsRepo) ListByPet(ctx context.Context, petID string, f care.ListFilter) ([]care.CareEvent, error) {
	var (
		sb   strings.Builder
		args = []any{petID}
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString(`
		SELECT id, pet_id, type, at, amount_g, note, idempotency_key
		FROM care_events
		WHERE pet_id = $1`)

	if len(f.Types) > 0 {
		types := make([]string, 0, len(f.Types))
		for _, t := range f.Types {
			types = append(types, arg(string(t)))
		}
		sb.WriteString(" AND type IN (" + strings.Join(types, ",") + ")")
	}
	if f.From != nil {
		sb.WriteString(" AND at >= " + arg(*f.From))
	}
	if f.To != nil {
		sb.WriteString(" AND at <= " + arg(*f.To))
	}
	sb.WriteString(" ORDER BY at DESC, seq ASC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(f.Limit))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]care.CareEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventsRepo) GetByIdempotencyKey(ctx context.Context, petID, key string) (care.CareEvent, error) {
	if strings.TrimSpace(key) == "" {
		return care.CareEvent{}, care.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, pet_id, type, at, amount_g, note, idempotency_key
		FROM care_events
		WHERE pet_id = $1 AND idempotency_key = $2
	`, petID, key)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return care.CareEvent{}, care.ErrNotFound
	}
	return e, err
}

func scanEvent(s scanner) (care.CareEvent, error) {
	var (
		e      care.CareEvent
		typ    string
		amount sql.NullFloat64
		key    sql.NullString
	)
	if err := s.Scan(&e.ID, &e.PetID, &typ, &e.At, &amount, &e.Note, &key); err != nil {
		return care.CareEvent{}, err
	}
	e.Type = care.CareType(typ)
	if amount.Valid {
		a := amount.Float64
		e.AmountG = &a
	}
	e.IdempotencyKey = key.String
	return e, nil
}

type MoodsRepo struct {
	db DBTX
}

func (r *MoodsRepo) GetByDay(ctx context.Context, petID, date string) (care.MoodRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, pet_id, date, score, note, created_at, updated_at
		FROM mood_records
		WHERE pet_id = $1 AND date = $2
	`, petID, date)

	m, err := scanMood(row)
	if errors.Is(err, sql.ErrNoRows) {
		return care.MoodRecord{}, care.ErrNotFound
	}
	return m, err
}

func (r *MoodsRepo) Upsert(ctx context.Context, m care.MoodRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mood_records (id, pet_id, date, score, note, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (pet_id, date) DO UPDATE SET
			score = EXCLUDED.score,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at
	`,
		m.ID,
		m.PetID,
		m.Date,
		m.Score,
		m.Note,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MoodsRepo) ListByPet(ctx context.Context, petID, fromDate, toDate string) ([]care.MoodRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, date, score, note, created_at, updated_at
		FROM mood_records
		WHERE pet_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC
	`, petID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]care.MoodRecord, 0)
	for rows.Next() {
		m, err := scanMood(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMood(s scanner) (care.MoodRecord, error) {
	var m care.MoodRecord
	if err := s.Scan(&m.ID, &m.PetID, &m.Date, &m.Score, &m.Note, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return care.MoodRecord{}, err
	}
	return m, nil
}

package sqlite

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
	_, err := r.db.ExecContext(ctx, `INSERT INTO care_events
		(id, pet_id, type, at, amount_g, note, idempotency_key)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.PetID,
		string(e.Type),
		toNanos(e.At),
		nullableFloat(e.AmountG),
		e.Note,
		nullableString(e.IdempotencyKey),
	)
	if err != nil {
		if isUniqueViolation(err) && e.IdempotencyKey != "" {
			return care.ErrDuplicate
		}
		return fmt.Errorf("inserting care event: %w", err)
	}
	return nil
}

func (r *EventsRepo) ListByPet(ctx context.Context, petID string, f care.ListFilter) ([]care.CareEvent, error) {
	var (
		sb   strings.Builder
		args = []any{petID}
	)
	sb.WriteString(`SELECT id, pet_id, type, at, amount_g, note, idempotency_key
		FROM care_events WHERE pet_id = ?`)

	if len(f.Types) > 0 {
		marks := make([]string, 0, len(f.Types))
		for _, t := range f.Types {
			marks = append(marks, "?")
			args = append(args, string(t))
		}
		sb.WriteString(" AND type IN (" + strings.Join(marks, ",") + ")")
	}
	if f.From != nil {
		sb.WriteString(" AND at >= ?")
		args = append(args, toNanos(*f.From))
	}
	if f.To != nil {
		sb.WriteString(" AND at <= ?")
		args = append(args, toNanos(*f.To))
	}
	sb.WriteString(" ORDER BY at DESC, rowid ASC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing care events: %w", err)
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
	row := r.db.QueryRowContext(ctx, `SELECT id, pet_id, type, at, amount_g, note, idempotency_key
		FROM care_events WHERE pet_id = ? AND idempotency_key = ?`, petID, key)

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
		at     int64
		amount sql.NullFloat64
		key    sql.NullString
	)
	if err := s.Scan(&e.ID, &e.PetID, &typ, &at, &amount, &e.Note, &key); err != nil {
		return care.CareEvent{}, err
	}
	e.Type = care.CareType(typ)
	e.At = fromNanos(at)
	e.AmountG = floatPtr(amount)
	e.IdempotencyKey = key.String
	return e, nil
}

type MoodsRepo struct {
	db DBTX
}

func (r *MoodsRepo) GetByDay(ctx context.Context, petID, date string) (care.MoodRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, pet_id, date, score, note, created_at, updated_at
		FROM mood_records WHERE pet_id = ? AND date = ?`, petID, date)

	m, err := scanMood(row)
	if errors.Is(err, sql.ErrNoRows) {
		return care.MoodRecord{}, care.ErrNotFound
	}
	return m, err
}

// Upsert conserva id y created_at del registro existente para (pet, día).
func (r *MoodsRepo) Upsert(ctx context.Context, m care.MoodRecord) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO mood_records
		(id, pet_id, date, score, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pet_id, date) DO UPDATE SET
			score = excluded.score,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		m.ID,
		m.PetID,
		m.Date,
		m.Score,
		m.Note,
		toNanos(m.CreatedAt),
		toNanos(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting mood record: %w", err)
	}
	return nil
}

func (r *MoodsRepo) ListByPet(ctx context.Context, petID, fromDate, toDate string) ([]care.MoodRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, pet_id, date, score, note, created_at, updated_at
		FROM mood_records
		WHERE pet_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC`, petID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("listing mood records: %w", err)
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
	var (
		m                care.MoodRecord
		created, updated int64
	)
	if err := s.Scan(&m.ID, &m.PetID, &m.Date, &m.Score, &m.Note, &created, &updated); err != nil {
		return care.MoodRecord{}, err
	}
	m.CreatedAt = fromNanos(created)
	m.UpdatedAt = fromNanos(updated)
	return m, nil
}

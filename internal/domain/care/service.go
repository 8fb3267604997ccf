package care

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-care-tracker/internal/domain/validation"
	"pet-care-tracker/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrNotAllowed   = errors.New("care action not allowed now")

	// ErrDuplicate lo devuelven los repos cuando el idempotency key ya existe.
	ErrDuplicate = errors.New("duplicate idempotency key")
)

// NotAllowedError indica qué tipo quedó bloqueado y hasta cuándo.
type NotAllowedError struct {
	Type          CareType
	NextAllowedAt time.Time
}

func (e *NotAllowedError) Error() string {
	return fmt.Sprintf("%s not allowed until %s", e.Type, e.NextAllowedAt.Format(time.RFC3339))
}

func (e *NotAllowedError) Unwrap() error { return ErrNotAllowed }

const DefaultLookback = 365 * 24 * time.Hour

type Service struct {
	store    Store
	engine   *Engine
	loc      *time.Location
	lookback time.Duration
	log      logger.Logger
	now      func() time.Time
}

type Options struct {
	Engine   *Engine
	Location *time.Location // frontera de día; default time.Local
	Lookback time.Duration  // default 365 días
	Logger   logger.Logger
}

func NewService(store Store, opts Options) *Service {
	eng := opts.Engine
	if eng == nil {
		eng = NewEngine(nil)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	lookback := opts.Lookback
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Service{
		store:    store,
		engine:   eng,
		loc:      loc,
		lookback: lookback,
		log:      log.With(map[string]any{"component": "care"}),
		now:      time.Now,
	}
}

func (s *Service) Engine() *Engine { return s.engine }

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

type ApplyInput struct {
	PetID          string
	Type           CareType
	AmountG        *float64
	Note           string
	IdempotencyKey string
}

type ApplyResult struct {
	Event    CareEvent
	Mood     *MoodRecord // nil si el tipo no afecta el ánimo o fue replay
	Replayed bool
}

// Apply registra una acción de cuidado. La allowance se vuelve a evaluar
// dentro de la sección crítica del pet, así dos envíos concurrentes no
// pueden pasar ambos el chequeo.
func (s *Service) Apply(ctx context.Context, in ApplyInput, cfg PetConfig) (ApplyResult, error) {
	in.PetID = strings.TrimSpace(in.PetID)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	in.Note = validation.PlainText(in.Note)

	if res := ValidateApply(in.PetID, string(in.Type), in.AmountG, in.Note, in.IdempotencyKey); !res.OK() {
		return ApplyResult{}, errors.Join(ErrInvalidInput, res)
	}
	in.Type, _ = ParseCareType(string(in.Type))

	now := s.clock()
	log := s.log.With(map[string]any{"pet_id": in.PetID, "type": string(in.Type)})

	var out ApplyResult
	err := s.store.WithinPetTx(ctx, in.PetID, func(ctx context.Context, r Repos) error {
		if in.IdempotencyKey != "" {
			prev, err := r.Events.GetByIdempotencyKey(ctx, in.PetID, in.IdempotencyKey)
			switch {
			case err == nil:
				out = ApplyResult{Event: prev, Replayed: true}
				return nil
			case !errors.Is(err, ErrNotFound):
				return fmt.Errorf("lookup idempotency key: %w", err)
			}
		}

		history, err := s.history(ctx, r.Events, in.PetID, now)
		if err != nil {
			return err
		}

		today := TodayCounts(history, now)
		if until, blocked := s.engine.blockedUntil(in.Type, history, today, cfg, now); blocked {
			return &NotAllowedError{Type: in.Type, NextAllowedAt: until}
		}

		ev := CareEvent{
			ID:             uuid.NewString(),
			PetID:          in.PetID,
			Type:           in.Type,
			At:             now,
			AmountG:        in.AmountG,
			Note:           in.Note,
			IdempotencyKey: in.IdempotencyKey,
		}
		if err := r.Events.Append(ctx, ev); err != nil {
			return fmt.Errorf("append care event: %w", err)
		}
		out.Event = ev

		delta := s.engine.MoodDelta(in.Type)
		if delta <= 0 {
			return nil
		}
		m, err := s.bumpMood(ctx, r.Moods, in.PetID, in.Type, delta, now)
		if err != nil {
			// En stores sin transacción el evento ya quedó escrito: el log manda.
			return fmt.Errorf("update mood: %w", err)
		}
		out.Mood = &m
		return nil
	})
	if err != nil {
		var na *NotAllowedError
		if errors.As(err, &na) {
			log.Debug("care action blocked", map[string]any{"next_allowed_at": na.NextAllowedAt})
		} else {
			log.Error("care action failed", map[string]any{"err": err})
		}
		return ApplyResult{}, err
	}

	if out.Replayed {
		log.Info("care action replayed", map[string]any{"event_id": out.Event.ID})
	} else {
		log.Debug("care action applied", map[string]any{"event_id": out.Event.ID})
	}
	return out, nil
}

func (s *Service) bumpMood(ctx context.Context, moods MoodRepository, petID string, t CareType, delta float64, now time.Time) (MoodRecord, error) {
	var next MoodRecord

	cur, err := moods.GetByDay(ctx, petID, DayKey(now))
	switch {
	case err == nil:
		next = ApplyMood(&cur, petID, t, delta, now)
	case errors.Is(err, ErrNotFound):
		next = ApplyMood(nil, petID, t, delta, now)
		next.ID = uuid.NewString()
	default:
		return MoodRecord{}, err
	}

	if err := moods.Upsert(ctx, next); err != nil {
		return MoodRecord{}, err
	}
	return next, nil
}

func (s *Service) history(ctx context.Context, events EventRepository, petID string, now time.Time) ([]CareEvent, error) {
	from := now.Add(-s.lookback)
	items, err := events.ListByPet(ctx, petID, ListFilter{From: &from, To: &now})
	if err != nil {
		return nil, fmt.Errorf("list care events: %w", err)
	}
	return items, nil
}

// PetStatus es Status + el ánimo del día (nil si todavía no hay registro).
type PetStatus struct {
	Status
	Mood *MoodRecord
}

func (s *Service) Status(ctx context.Context, petID string, cfg PetConfig) (PetStatus, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return PetStatus{}, ErrInvalidInput
	}

	now := s.clock()
	repos := s.store.Repos()

	history, err := s.history(ctx, repos.Events, petID, now)
	if err != nil {
		return PetStatus{}, err
	}

	out := PetStatus{Status: s.engine.Evaluate(history, cfg, now)}

	m, err := repos.Moods.GetByDay(ctx, petID, DayKey(now))
	switch {
	case err == nil:
		out.Mood = &m
	case errors.Is(err, ErrNotFound):
	default:
		return PetStatus{}, fmt.Errorf("get mood: %w", err)
	}
	return out, nil
}

func (s *Service) History(ctx context.Context, petID string, filter ListFilter) ([]CareEvent, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	return s.store.Repos().Events.ListByPet(ctx, petID, filter)
}

// MoodHistory devuelve los últimos days días (incluye hoy), más reciente primero.
func (s *Service) MoodHistory(ctx context.Context, petID string, days int) ([]MoodRecord, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" || days <= 0 {
		return nil, ErrInvalidInput
	}
	now := s.clock()
	from := DayKey(now.AddDate(0, 0, -(days - 1)))
	return s.store.Repos().Moods.ListByPet(ctx, petID, from, DayKey(now))
}

// RebuildMood recalcula el ánimo de un día desde el log de eventos.
// day vacío = hoy. changed=false cuando no hay nada que escribir.
func (s *Service) RebuildMood(ctx context.Context, petID, day string) (MoodRecord, bool, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return MoodRecord{}, false, ErrInvalidInput
	}

	now := s.clock()
	start := StartOfDay(now)
	if strings.TrimSpace(day) != "" {
		d, err := ParseDayKey(strings.TrimSpace(day), s.loc)
		if err != nil || d.After(now) {
			return MoodRecord{}, false, ErrInvalidInput
		}
		start = d
	}
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	key := DayKey(start)

	var out MoodRecord
	changed := false
	err := s.store.WithinPetTx(ctx, petID, func(ctx context.Context, r Repos) error {
		events, err := r.Events.ListByPet(ctx, petID, ListFilter{From: &start, To: &end})
		if err != nil {
			return fmt.Errorf("list care events: %w", err)
		}
		score, touched := s.engine.ReplayMood(events)

		cur, err := r.Moods.GetByDay(ctx, petID, key)
		exists := err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("get mood: %w", err)
		}
		if !touched && !exists {
			return nil
		}

		if exists {
			out = cur
		} else {
			out = MoodRecord{
				ID:        uuid.NewString(),
				PetID:     petID,
				Date:      key,
				Note:      "Rebuilt from care log",
				CreatedAt: now,
			}
		}
		if exists && out.Score == score {
			return nil
		}
		out.Score = score
		out.UpdatedAt = now
		changed = true
		return r.Moods.Upsert(ctx, out)
	})
	if err != nil {
		return MoodRecord{}, false, err
	}
	if changed {
		s.log.Info("mood rebuilt", map[string]any{"pet_id": petID, "date": key, "score": out.Score})
	}
	return out, changed, nil
}

package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-care-tracker/internal/domain/validation"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
)

const (
	MaxNameLen  = 50
	MaxNotesLen = 1000
	MaxWeightKg = 30.0

	MinFeedingTime      = 1
	MaxFeedingTime      = 6
	MinFeedingFrequency = 1
	MaxFeedingFrequency = 24
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name             string
	Species          string
	Sex              string
	BirthDate        *time.Time
	WeightKg         *float64
	Neutered         bool
	FeedingTime      *int
	FeedingFrequency *int
	Notes            string
}

// Validate no modifica el input; Create normaliza antes de llamarla.
func (in CreateInput) Validate(now time.Time) validation.Result {
	var r validation.Result

	if r.Required("name", in.Name) {
		r.MaxLen("name", in.Name, MaxNameLen)
	}
	if r.Required("species", in.Species) {
		r.OneOf("species", in.Species, speciesValues())
	}
	r.OneOf("sex", in.Sex, sexValues())
	r.NotFuture("birth_date", in.BirthDate, now)
	r.PositiveFloatMax("weight_kg", in.WeightKg, MaxWeightKg)
	r.IntRange("feeding_time", in.FeedingTime, MinFeedingTime, MaxFeedingTime)
	r.IntRange("feeding_frequency", in.FeedingFrequency, MinFeedingFrequency, MaxFeedingFrequency)
	r.MaxLen("notes", in.Notes, MaxNotesLen)

	return r
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}

	in.Name = validation.PlainText(in.Name)
	in.Species = strings.ToUpper(strings.TrimSpace(in.Species))
	in.Sex = strings.ToUpper(strings.TrimSpace(in.Sex))
	in.Notes = validation.PlainText(in.Notes)

	now := s.now()
	if res := in.Validate(now); !res.OK() {
		return Pet{}, errors.Join(ErrInvalidInput, res)
	}

	sex := Sex(in.Sex)
	if sex == "" {
		sex = SexUnknown
	}

	p := Pet{
		ID:               uuid.NewString(),
		OwnerUserID:      ownerUserID,
		Name:             in.Name,
		Species:          Species(in.Species),
		Sex:              sex,
		BirthDate:        in.BirthDate,
		WeightKg:         in.WeightKg,
		Neutered:         in.Neutered,
		FeedingTime:      in.FeedingTime,
		FeedingFrequency: in.FeedingFrequency,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	if strings.TrimSpace(id) == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// Delete es owner-only; para cualquier otro usuario la mascota "no existe".
func (s *Service) Delete(ctx context.Context, petID, ownerUserID string) error {
	if _, err := s.OwnedPet(ctx, petID, ownerUserID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, petID)
}

package assist

import (
	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/ports/flavor"
)

const (
	ModelFallback = "fallback"

	MaxSpeciesLen   = 50
	MaxNameLen      = 50
	MaxMessageLen   = 500
	MaxHistoryTurns = 2
	MaxSuggestions  = 5
	MaxBreedLen     = 50
	MaxSummaryLen   = 300
)

type NamesInput struct {
	Species string
	Sex     string
}

type Names struct {
	Names     []string `json:"names"`
	ModelUsed string   `json:"model_used"`
}

// CarePlan es el plan que el dueño propone antes de crear la mascota.
type CarePlan struct {
	Name             string   `json:"name"`
	Species          string   `json:"species"`
	Sex              string   `json:"sex"`
	WeightKg         *float64 `json:"weight_kg"`
	Neutered         bool     `json:"neutered"`
	FeedingTime      int      `json:"feeding_time"`
	FeedingFrequency int      `json:"feeding_frequency"`
	BrushPerWeek     int      `json:"brush_per_week"`
	LitterEveryDays  int      `json:"litter_every_days"`
}

type Verdict string

const (
	VerdictExcellent Verdict = "EXCELLENT"
	VerdictGood      Verdict = "GOOD"
	VerdictNeedsWork Verdict = "NEEDS_WORK"
	VerdictTerrible  Verdict = "TERRIBLE"
	VerdictWarning   Verdict = "WARNING"
	VerdictDanger    Verdict = "DANGER"
)

type Review struct {
	Verdict   Verdict `json:"verdict"`
	Result    string  `json:"result"`
	ModelUsed string  `json:"model_used"`
}

type ChatInput struct {
	PetName string
	Species string
	Message string
	History []flavor.Message

	// Status del día; nil si no se pudo leer.
	Status *care.PetStatus
}

type ChatReply struct {
	Reply     string           `json:"response"`
	History   []flavor.Message `json:"conversation"`
	ModelUsed string           `json:"model_used"`
}

// Profile es el perfil (completo o a medio cargar) que se resume en una frase.
type Profile struct {
	Name             string   `json:"name"`
	Species          string   `json:"species"`
	Breed            string   `json:"breed"`
	Sex              string   `json:"sex"`
	BirthDate        string   `json:"birth_date" example:"2021-05-14"`
	WeightKg         *float64 `json:"weight_kg"`
	Neutered         bool     `json:"neutered"`
	FeedingTime      *int     `json:"feeding_time"`
	FeedingFrequency *int     `json:"feeding_frequency"`
}

type Summary struct {
	Summary   string `json:"summary"`
	ModelUsed string `json:"model_used"`
}

package pets

import (
	"time"

	"pet-care-tracker/internal/domain/care"
)

// Species define las razas de gato soportadas.
// @Enum RAGDOLL, SIAMESE, BRITISH_SHORTHAIR, PERSIAN, SCOTTISH_FOLD, SPHYNX, RUSSIAN_BLUE, BIRMAN, BENGAL, ORANGE_TABBY
type Species string

const (
	SpeciesRagdoll          Species = "RAGDOLL"
	SpeciesSiamese          Species = "SIAMESE"
	SpeciesBritishShorthair Species = "BRITISH_SHORTHAIR"
	SpeciesPersian          Species = "PERSIAN"
	SpeciesScottishFold     Species = "SCOTTISH_FOLD"
	SpeciesSphynx           Species = "SPHYNX"
	SpeciesRussianBlue      Species = "RUSSIAN_BLUE"
	SpeciesBirman           Species = "BIRMAN"
	SpeciesBengal           Species = "BENGAL"
	SpeciesOrangeTabby      Species = "ORANGE_TABBY"
)

var AllSpecies = []Species{
	SpeciesRagdoll,
	SpeciesSiamese,
	SpeciesBritishShorthair,
	SpeciesPersian,
	SpeciesScottishFold,
	SpeciesSphynx,
	SpeciesRussianBlue,
	SpeciesBirman,
	SpeciesBengal,
	SpeciesOrangeTabby,
}

// Sex define el sexo de la mascota.
// @Enum MALE, FEMALE, UNKNOWN
type Sex string

const (
	SexMale    Sex = "MALE"
	SexFemale  Sex = "FEMALE"
	SexUnknown Sex = "UNKNOWN"
)

var AllSexes = []Sex{SexMale, SexFemale, SexUnknown}

// Pet representa el perfil de una mascota, incluida su configuración de alimentación.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species Species
	Sex     Sex

	BirthDate *time.Time
	WeightKg  *float64
	Neutered  bool

	// Comidas por día y horas entre comidas. nil = defaults del motor.
	FeedingTime      *int
	FeedingFrequency *int

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CareConfig traduce la configuración de alimentación al motor de cuidados.
func (p Pet) CareConfig() care.PetConfig {
	var cfg care.PetConfig
	if p.FeedingTime != nil {
		cfg.FeedingTime = *p.FeedingTime
	}
	if p.FeedingFrequency != nil {
		cfg.FeedingFrequency = *p.FeedingFrequency
	}
	return cfg
}

func speciesValues() []string {
	out := make([]string, 0, len(AllSpecies))
	for _, s := range AllSpecies {
		out = append(out, string(s))
	}
	return out
}

func sexValues() []string {
	out := make([]string, 0, len(AllSexes))
	for _, s := range AllSexes {
		out = append(out, string(s))
	}
	return out
}

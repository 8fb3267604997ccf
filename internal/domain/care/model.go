package care

import "time"

// CareEvent es inmutable: se crea una vez y nunca se edita ni se borra.
type CareEvent struct {
	ID    string
	PetID string

	Type CareType
	At   time.Time

	AmountG *float64
	Note    string

	// IdempotencyKey es opcional; lo provee el cliente para reintentos seguros.
	IdempotencyKey string
}

// MoodRecord: uno por (pet, día calendario). Date va en formato YYYY-MM-DD.
type MoodRecord struct {
	ID    string
	PetID string
	Date  string

	Score float64
	Note  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PetConfig es la configuración de alimentación de la mascota.
// Cero significa "no configurado" y el motor usa sus defaults.
type PetConfig struct {
	FeedingTime      int // max comidas por día
	FeedingFrequency int // horas mínimas entre comidas
}

const (
	DefaultFeedingTime      = 2
	DefaultFeedingFrequency = 6
)

func (c PetConfig) feedingTime() int {
	if c.FeedingTime > 0 {
		return c.FeedingTime
	}
	return DefaultFeedingTime
}

func (c PetConfig) feedingFrequency() time.Duration {
	h := c.FeedingFrequency
	if h <= 0 {
		h = DefaultFeedingFrequency
	}
	return time.Duration(h) * time.Hour
}

const dayLayout = "2006-01-02"

// DayKey devuelve la fecha calendario de t en su propia zona horaria.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDayKey interpreta YYYY-MM-DD en loc.
func ParseDayKey(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dayLayout, s, loc)
}

package care

import "time"

const (
	day = 24 * time.Hour

	WeekWindow  = 7 * day
	MonthWindow = 30 * day
	YearWindow  = 365 * day
)

// Policy declara las restricciones de un CareType. Cero = sin restricción.
type Policy struct {
	Interval time.Duration // separación mínima entre dos eventos del tipo

	MaxPerDay int
	MinPerDay int // solo levanta "need", nunca bloquea

	MaxPerWeek  int // ventana móvil de 7 días
	MaxPerMonth int // ventana móvil de 30 días
	MaxPerYear  int // ventana móvil de 365 días

	// NeedWindow > 0 marca un tipo periódico: se necesita cuando no hubo
	// eventos dentro de la ventana. Cero = cadencia diaria.
	NeedWindow time.Duration

	MoodDelta float64
}

// Periodic indica si la necesidad se mide por ventana y no por día.
func (p Policy) Periodic() bool { return p.NeedWindow > 0 }

// needThreshold es el conteo diario por debajo del cual el tipo se necesita.
func (p Policy) needThreshold() int {
	if p.MinPerDay > 0 {
		return p.MinPerDay
	}
	return p.MaxPerDay
}

type windowCap struct {
	window time.Duration
	max    int
}

func (p Policy) windowCaps() []windowCap {
	out := make([]windowCap, 0, 3)
	if p.MaxPerWeek > 0 {
		out = append(out, windowCap{window: WeekWindow, max: p.MaxPerWeek})
	}
	if p.MaxPerMonth > 0 {
		out = append(out, windowCap{window: MonthWindow, max: p.MaxPerMonth})
	}
	if p.MaxPerYear > 0 {
		out = append(out, windowCap{window: YearWindow, max: p.MaxPerYear})
	}
	return out
}

// Policies es la tabla estática por tipo.
type Policies map[CareType]Policy

// DefaultPolicies es el set canónico. FEED se sobreescribe con la
// configuración de la mascota (ver PolicyFor).
func DefaultPolicies() Policies {
	return Policies{
		CareTypeFeed: {
			Interval:  DefaultFeedingFrequency * time.Hour,
			MaxPerDay: DefaultFeedingTime,
			MoodDelta: 0.2,
		},
		CareTypeWater: {
			Interval:  24 * time.Hour,
			MaxPerDay: 1,
		},
		CareTypeTreat: {
			MaxPerDay: 5,
			MoodDelta: 1,
		},
		CareTypePlay: {
			MaxPerDay: 2,
			MinPerDay: 1,
			MoodDelta: 1,
		},
		CareTypeLitter: {
			Interval:  8 * time.Hour,
			MaxPerDay: 3,
			MinPerDay: 1,
		},
		CareTypeNails: {
			Interval:   7 * day,
			MaxPerDay:  1,
			MaxPerWeek: 1,
			NeedWindow: WeekWindow,
		},
		CareTypeBrush: {
			Interval:   2 * day,
			MaxPerDay:  1,
			NeedWindow: 2 * day,
			MoodDelta:  0.5,
		},
		CareTypeVaccine: {
			Interval:   365 * day,
			MaxPerDay:  1,
			MaxPerYear: 1,
			NeedWindow: YearWindow,
		},
	}
}

// PolicyFor aplica la configuración de la mascota sobre la tabla.
func (ps Policies) PolicyFor(t CareType, cfg PetConfig) Policy {
	p := ps[t]
	if t == CareTypeFeed {
		p.MaxPerDay = cfg.feedingTime()
		p.Interval = cfg.feedingFrequency()
	}
	return p
}

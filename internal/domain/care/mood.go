package care

import (
	"fmt"
	"sort"
	"time"
)

const (
	MoodMin     = 1.0
	MoodMax     = 5.0
	MoodNeutral = 3.0
)

func ClampMood(v float64) float64 {
	if v < MoodMin {
		return MoodMin
	}
	if v > MoodMax {
		return MoodMax
	}
	return v
}

// MoodDelta devuelve el efecto de t sobre el ánimo (0 = no toca el MoodStore).
func (e *Engine) MoodDelta(t CareType) float64 {
	return e.policies[t].MoodDelta
}

// ApplyMood aplica delta sobre el registro del día. Si existing es nil se
// crea uno nuevo sembrado en neutral. El resultado siempre queda en [1, 5].
func ApplyMood(existing *MoodRecord, petID string, t CareType, delta float64, now time.Time) MoodRecord {
	if existing == nil {
		return MoodRecord{
			PetID:     petID,
			Date:      DayKey(now),
			Score:     ClampMood(MoodNeutral + delta),
			Note:      fmt.Sprintf("Care activity: %s", t),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	m := *existing
	m.Score = ClampMood(m.Score + delta)
	m.UpdatedAt = now
	return m
}

// ReplayMood recalcula el score de un día desde el log: neutral + deltas en
// orden temporal, acotado en cada paso. ok=false si ningún evento aporta.
func (e *Engine) ReplayMood(events []CareEvent) (float64, bool) {
	sorted := make([]CareEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	score := MoodNeutral
	touched := false
	for _, ev := range sorted {
		d := e.MoodDelta(ev.Type)
		if d <= 0 {
			continue
		}
		score = ClampMood(score + d)
		touched = true
	}
	return score, touched
}

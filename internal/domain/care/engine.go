package care

import (
	"sort"
	"time"
)

// Engine evalúa la tabla de políticas sobre un historial de eventos.
// No guarda estado: todo sale de (eventos, now, config).
type Engine struct {
	policies Policies
}

func NewEngine(policies Policies) *Engine {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Engine{policies: policies}
}

func (e *Engine) Policy(t CareType, cfg PetConfig) Policy {
	return e.policies.PolicyFor(t, cfg)
}

// StartOfDay usa la zona horaria de t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TodayCounts cuenta eventos con At en [StartOfDay(now), now].
func TodayCounts(events []CareEvent, now time.Time) Counts {
	start := StartOfDay(now)

	var c Counts
	for _, ev := range events {
		if ev.At.Before(start) || ev.At.After(now) {
			continue
		}
		c.Inc(ev.Type)
	}
	return c
}

// WindowCounts cuenta, para cada tipo periódico, los eventos dentro de su
// NeedWindow. Los tipos de cadencia diaria quedan en 0.
func (e *Engine) WindowCounts(events []CareEvent, now time.Time) Counts {
	var c Counts
	for _, t := range AllCareTypes {
		p := e.policies[t]
		if !p.Periodic() {
			continue
		}
		for i := countInWindow(events, t, p.NeedWindow, now); i > 0; i-- {
			c.Inc(t)
		}
	}
	return c
}

// IsAllowedNow exige que pasen todas las restricciones aplicables.
func (e *Engine) IsAllowedNow(t CareType, events []CareEvent, today Counts, cfg PetConfig, now time.Time) bool {
	_, blocked := e.blockedUntil(t, events, today, cfg, now)
	return !blocked
}

// NextAllowedAt devuelve el primer instante en que todas las restricciones
// que hoy bloquean quedan satisfechas. Si el tipo ya está permitido devuelve now.
func (e *Engine) NextAllowedAt(t CareType, events []CareEvent, today Counts, cfg PetConfig, now time.Time) time.Time {
	until, blocked := e.blockedUntil(t, events, today, cfg, now)
	if !blocked {
		return now
	}
	return until
}

func (e *Engine) blockedUntil(t CareType, events []CareEvent, today Counts, cfg PetConfig, now time.Time) (time.Time, bool) {
	p := e.policies.PolicyFor(t, cfg)

	var until time.Time
	blocked := false
	push := func(at time.Time) {
		blocked = true
		if at.After(until) {
			until = at
		}
	}

	// Tope diario
	if p.MaxPerDay > 0 && today.Get(t) >= p.MaxPerDay {
		push(StartOfDay(now).AddDate(0, 0, 1))
	}

	// Cooldown respecto del último evento con At <= now. Un evento en el
	// mismo instante cuenta como elapsed=0 y bloquea el reenvío.
	if p.Interval > 0 {
		if last, ok := lastAtOrBefore(events, t, now); ok && now.Sub(last) < p.Interval {
			push(last.Add(p.Interval))
		}
	}

	// Topes semanales / mensuales / anuales
	for _, wc := range p.windowCaps() {
		in := eventsInWindow(events, t, wc.window, now)
		if len(in) >= wc.max {
			// Tiene que expirar el evento en la posición len-max (orden ascendente).
			push(in[len(in)-wc.max].Add(wc.window))
		}
	}

	return until, blocked
}

// ComputeNeeds es consultivo: un tipo puede necesitarse y a la vez estar bloqueado.
func (e *Engine) ComputeNeeds(today, window Counts, cfg PetConfig) Flags {
	var f Flags
	for _, t := range AllCareTypes {
		p := e.policies.PolicyFor(t, cfg)
		if p.Periodic() {
			f.Set(t, window.Get(t) == 0)
			continue
		}
		if th := p.needThreshold(); th > 0 {
			f.Set(t, today.Get(t) < th)
		}
	}
	return f
}

// Status agrupa lo que la UI necesita para un pet en un instante.
type Status struct {
	Now           time.Time
	Counts        Counts
	Needs         Flags
	Allowed       Flags
	NextAllowedAt map[CareType]time.Time // solo tipos bloqueados
	Urgent        CareType               // vacío si no hay urgencia
}

func (e *Engine) Evaluate(events []CareEvent, cfg PetConfig, now time.Time) Status {
	today := TodayCounts(events, now)
	window := e.WindowCounts(events, now)

	st := Status{
		Now:           now,
		Counts:        today,
		Needs:         e.ComputeNeeds(today, window, cfg),
		NextAllowedAt: map[CareType]time.Time{},
	}
	for _, t := range AllCareTypes {
		until, blocked := e.blockedUntil(t, events, today, cfg, now)
		st.Allowed.Set(t, !blocked)
		if blocked {
			st.NextAllowedAt[t] = until
		}
	}
	if t, ok := SelectUrgent(st.Needs, st.Allowed); ok {
		st.Urgent = t
	}
	return st
}

func lastAtOrBefore(events []CareEvent, t CareType, now time.Time) (time.Time, bool) {
	var last time.Time
	found := false
	for _, ev := range events {
		if ev.Type != t || ev.At.After(now) {
			continue
		}
		if !found || ev.At.After(last) {
			last = ev.At
			found = true
		}
	}
	return last, found
}

// eventsInWindow devuelve los instantes en (now-window, now], ascendente.
func eventsInWindow(events []CareEvent, t CareType, window time.Duration, now time.Time) []time.Time {
	from := now.Add(-window)
	out := make([]time.Time, 0)
	for _, ev := range events {
		if ev.Type != t || !ev.At.After(from) || ev.At.After(now) {
			continue
		}
		out = append(out, ev.At)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func countInWindow(events []CareEvent, t CareType, window time.Duration, now time.Time) int {
	from := now.Add(-window)
	n := 0
	for _, ev := range events {
		if ev.Type == t && ev.At.After(from) && !ev.At.After(now) {
			n++
		}
	}
	return n
}

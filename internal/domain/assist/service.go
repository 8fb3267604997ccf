package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-care-tracker/internal/domain/validation"
	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/ports/flavor"
)

var ErrInvalidInput = errors.New("invalid input")

const defaultTimeout = 10 * time.Second

// Service arma prompts, llama al generador y cae a texto fijo si falla.
// Nunca devuelve error por el proveedor; solo por input inválido.
type Service struct {
	gen     flavor.Generator
	log     logger.Logger
	timeout time.Duration
}

func NewService(gen flavor.Generator, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		gen:     gen,
		log:     log.With(map[string]any{"component": "assist"}),
		timeout: defaultTimeout,
	}
}

func (s *Service) generate(ctx context.Context, op string, req flavor.Request) (flavor.Result, bool) {
	if s.gen == nil {
		return flavor.Result{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.gen.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, flavor.ErrUnavailable) {
			s.log.Debug("generator unavailable", map[string]any{"op": op})
		} else {
			s.log.Warn("generator failed", map[string]any{"op": op, "err": err})
		}
		return flavor.Result{}, false
	}
	return res, true
}

func (s *Service) SuggestNames(ctx context.Context, in NamesInput) (Names, error) {
	in.Species = strings.ToUpper(validation.PlainText(in.Species))
	in.Sex = strings.ToUpper(strings.TrimSpace(in.Sex))

	var r validation.Result
	if r.Required("species", in.Species) {
		r.MaxLen("species", in.Species, MaxSpeciesLen)
	}
	r.OneOf("sex", in.Sex, []string{"MALE", "FEMALE", "UNKNOWN"})
	if !r.OK() {
		return Names{}, errors.Join(ErrInvalidInput, r)
	}

	res, ok := s.generate(ctx, "names", flavor.Request{
		System:      namesPrompt(in),
		MaxTokens:   60,
		Temperature: 0.8,
	})
	if ok {
		if names := parseNames(res.Text); len(names) > 0 {
			return Names{Names: names, ModelUsed: res.Model}, nil
		}
	}

	return Names{Names: fallbackNames(in.Sex), ModelUsed: ModelFallback}, nil
}

// parseNames acepta "Luna, Bella" o una lista por líneas; descarta numeración.
func parseNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	out := make([]string, 0, MaxSuggestions)
	seen := map[string]bool{}
	for _, f := range fields {
		name := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(f), "0123456789.-*) "))
		name = strings.Trim(name, `"'.`)
		if name == "" || len([]rune(name)) > MaxNameLen || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, name)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

func fallbackNames(sex string) []string {
	switch sex {
	case "FEMALE":
		return []string{"Luna", "Bella", "Nala", "Coco", "Daisy"}
	case "MALE":
		return []string{"Max", "Charlie", "Oliver", "Leo", "Milo"}
	default:
		return []string{"Whiskers", "Shadow", "Sunny", "Paws", "Snowball"}
	}
}

func (p CarePlan) Validate() validation.Result {
	var r validation.Result
	if r.Required("name", p.Name) {
		r.MaxLen("name", p.Name, MaxNameLen)
	}
	r.MaxLen("species", p.Species, MaxSpeciesLen)
	if p.FeedingTime < 1 {
		r.Add("feeding_time", validation.CodeOutOfRange)
	}
	if p.FeedingFrequency < 1 {
		r.Add("feeding_frequency", validation.CodeOutOfRange)
	}
	if p.BrushPerWeek < 0 {
		r.Add("brush_per_week", validation.CodeOutOfRange)
	}
	if p.LitterEveryDays < 0 {
		r.Add("litter_every_days", validation.CodeOutOfRange)
	}
	return r
}

// hardRules corta antes de consultar al modelo cuando el plan es claramente malo.
func hardRules(p CarePlan) (Review, bool) {
	switch {
	case p.FeedingTime > 4:
		return Review{Verdict: VerdictDanger, Result: fmt.Sprintf(
			"DANGER: %d meals per day is way too many! Cats should eat 2-3 times per day maximum. This will make %s sick and obese.",
			p.FeedingTime, p.Name)}, true
	case p.FeedingFrequency < 4:
		return Review{Verdict: VerdictDanger, Result: fmt.Sprintf(
			"DANGER: Feeding every %d hour(s) is too frequent! Cats need at least 4-6 hours between meals to digest properly.",
			p.FeedingFrequency)}, true
	case p.BrushPerWeek > 7:
		return Review{Verdict: VerdictWarning, Result: fmt.Sprintf(
			"WARNING: Brushing %d times per week might stress %s. 2-4 times per week is plenty for most cats.",
			p.BrushPerWeek, p.Name)}, true
	case p.LitterEveryDays > 4:
		return Review{Verdict: VerdictWarning, Result: fmt.Sprintf(
			"WARNING: Changing litter every %d days is too infrequent! %s needs clean litter every 1-2 days for health and hygiene.",
			p.LitterEveryDays, p.Name)}, true
	}
	return Review{}, false
}

func (s *Service) ReviewCarePlan(ctx context.Context, p CarePlan) (Review, error) {
	p.Name = validation.PlainText(p.Name)
	p.Species = validation.PlainText(p.Species)
	p.Sex = validation.PlainText(p.Sex)

	if r := p.Validate(); !r.OK() {
		return Review{}, errors.Join(ErrInvalidInput, r)
	}

	if rv, hit := hardRules(p); hit {
		rv.ModelUsed = "rules"
		return rv, nil
	}

	res, ok := s.generate(ctx, "care_plan", flavor.Request{
		System:      carePlanPrompt(p),
		MaxTokens:   120,
		Temperature: 0.1,
	})
	if ok {
		return Review{Verdict: parseVerdict(res.Text), Result: res.Text, ModelUsed: res.Model}, nil
	}

	return Review{
		Verdict:   VerdictGood,
		Result:    "GOOD: Your care plan looks reasonable. Make sure to monitor your cat's health and adjust as needed.",
		ModelUsed: ModelFallback,
	}, nil
}

func parseVerdict(text string) Verdict {
	head := strings.ToUpper(text)
	if len(head) > 40 {
		head = head[:40]
	}
	switch {
	case strings.Contains(head, "EXCELLENT"):
		return VerdictExcellent
	case strings.Contains(head, "NEEDS WORK"), strings.Contains(head, "NEEDS_WORK"):
		return VerdictNeedsWork
	case strings.Contains(head, "TERRIBLE"):
		return VerdictTerrible
	case strings.Contains(head, "GOOD"):
		return VerdictGood
	default:
		return VerdictNeedsWork
	}
}

func (p Profile) Validate() validation.Result {
	var r validation.Result
	r.MaxLen("name", p.Name, MaxNameLen)
	r.MaxLen("species", p.Species, MaxSpeciesLen)
	r.MaxLen("breed", p.Breed, MaxBreedLen)
	r.OneOf("sex", p.Sex, []string{"MALE", "FEMALE", "UNKNOWN"})
	r.MaxLen("birth_date", p.BirthDate, 30)
	r.PositiveFloatMax("weight_kg", p.WeightKg, 30)
	r.IntRange("feeding_time", p.FeedingTime, 1, 24)
	r.IntRange("feeding_frequency", p.FeedingFrequency, 1, 24)
	return r
}

// Summarize arma una frase corta sobre el perfil; todos los campos son opcionales.
func (s *Service) Summarize(ctx context.Context, p Profile) (Summary, error) {
	p.Name = validation.PlainText(p.Name)
	p.Species = validation.PlainText(p.Species)
	p.Breed = validation.PlainText(p.Breed)
	p.Sex = strings.ToUpper(validation.PlainText(p.Sex))
	p.BirthDate = validation.PlainText(p.BirthDate)

	if r := p.Validate(); !r.OK() {
		return Summary{}, errors.Join(ErrInvalidInput, r)
	}

	res, ok := s.generate(ctx, "summary", flavor.Request{
		System:      summaryPrompt(p),
		MaxTokens:   120,
		Temperature: 0.8,
	})
	if ok {
		if text := oneLine(res.Text); text != "" {
			return Summary{Summary: text, ModelUsed: res.Model}, nil
		}
	}

	return Summary{Summary: fallbackSummary(p), ModelUsed: ModelFallback}, nil
}

// oneLine junta la respuesta en una línea, sin comillas envolventes, y la corta en MaxSummaryLen runas.
func oneLine(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = strings.TrimSpace(strings.Trim(text, `"`))
	if r := []rune(text); len(r) > MaxSummaryLen {
		text = strings.TrimSpace(string(r[:MaxSummaryLen]))
	}
	return text
}

func fallbackSummary(p Profile) string {
	species := humanSpecies(p.Species) + " cat"
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Sprintf("A sweet %s full of personality. You'll love spending time with this furry friend!", species)
	}
	return fmt.Sprintf("%s is a lovely %s, sure to bring joy and purrs!", p.Name, species)
}

func (s *Service) Chat(ctx context.Context, in ChatInput) (ChatReply, error) {
	in.Message = validation.PlainText(in.Message)

	var r validation.Result
	if r.Required("message", in.Message) {
		r.MaxLen("message", in.Message, MaxMessageLen)
	}
	if !r.OK() {
		return ChatReply{}, errors.Join(ErrInvalidInput, r)
	}

	recent := lastTurns(in.History, MaxHistoryTurns)
	msgs := append(recent, flavor.Message{Role: flavor.RoleUser, Text: in.Message})

	reply, model := "", ModelFallback
	if res, ok := s.generate(ctx, "chat", flavor.Request{
		System:      chatPrompt(in),
		Messages:    msgs,
		MaxTokens:   200,
		Temperature: 0.7,
	}); ok {
		reply, model = res.Text, res.Model
	} else {
		reply = catAdvice(in)
	}

	history := make([]flavor.Message, 0, len(in.History)+2)
	history = append(history, in.History...)
	history = append(history,
		flavor.Message{Role: flavor.RoleUser, Text: in.Message},
		flavor.Message{Role: flavor.RoleAssistant, Text: reply},
	)

	return ChatReply{Reply: reply, History: history, ModelUsed: model}, nil
}

// lastTurns copia para no pisar el backing array del caller en el append.
func lastTurns(h []flavor.Message, n int) []flavor.Message {
	valid := make([]flavor.Message, 0, len(h))
	for _, m := range h {
		if m.Role != flavor.RoleUser && m.Role != flavor.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		valid = append(valid, m)
	}
	if len(valid) > n {
		valid = valid[len(valid)-n:]
	}
	out := make([]flavor.Message, len(valid), len(valid)+1)
	copy(out, valid)
	return out
}

func catAdvice(in ChatInput) string {
	msg := strings.ToLower(in.Message)
	name := in.PetName
	if strings.TrimSpace(name) == "" {
		name = "your cat"
	}
	species := humanSpecies(in.Species)

	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}

	var advice string
	switch {
	case has("feed", "food"):
		advice = fmt.Sprintf("For %s, feed 2-3 times daily with high-quality %s food. Always provide fresh water!", name, species)
	case has("play", "toy"):
		advice = fmt.Sprintf("%s needs 10-15 minutes of active play several times daily. Try feather wands or laser pointers for your %s!", name, species)
	case has("water", "drink"):
		advice = fmt.Sprintf("Fresh water should be available 24/7 for %s. Many %s cats prefer running water from fountains.", name, species)
	case has("litter", "box"):
		advice = fmt.Sprintf("Clean %s's litter box daily. Most %s cats prefer unscented, clumping litter.", name, species)
	case has("brush", "groom"):
		advice = fmt.Sprintf("For %s, brush daily if long-haired, or 2-3 times per week if short-haired to prevent matting.", name)
	case has("sick", "health"):
		advice = fmt.Sprintf("Watch %s for changes in eating, drinking, or bathroom habits. When in doubt, contact your vet about your %s!", name, species)
	default:
		advice = fmt.Sprintf("I'm here to help with %s's care! Ask me about feeding, grooming, play time, litter boxes, or health concerns for your %s.", name, species)
	}

	if in.Status != nil && in.Status.Urgent != "" {
		advice += fmt.Sprintf(" Right now %s could use: %s.", name, strings.ToLower(string(in.Status.Urgent)))
	}
	return advice
}

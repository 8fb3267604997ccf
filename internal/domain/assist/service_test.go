package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-care-tracker/internal/adapters/flavor/static"
	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/domain/validation"
	"pet-care-tracker/internal/ports/flavor"
)

// -------------------------
// Test generator
// -------------------------

type recordingGen struct {
	text string
	err  error
	last flavor.Request
}

func (g *recordingGen) Generate(ctx context.Context, req flavor.Request) (flavor.Result, error) {
	g.last = req
	if g.err != nil {
		return flavor.Result{}, g.err
	}
	return flavor.Result{Text: g.text, Model: "test-model"}, nil
}

// -------------------------
// Names
// -------------------------

func TestSuggestNames_ParsesGeneratorOutput(t *testing.T) {
	gen := &recordingGen{text: "1. Mochi\n2. Tofu\n3. mochi\n4. Biscuit, Pudding, Miso, Extra"}
	svc := NewService(gen, nil)

	out, err := svc.SuggestNames(context.Background(), NamesInput{Species: "ragdoll", Sex: "female"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Mochi", "Tofu", "Biscuit", "Pudding", "Miso"}, out.Names)
	assert.Equal(t, "test-model", out.ModelUsed)
	assert.Contains(t, gen.last.System, "female ragdoll")
}

func TestSuggestNames_FallbackBySex(t *testing.T) {
	svc := NewService(static.New(""), nil)

	cases := map[string]string{
		"FEMALE":  "Luna",
		"MALE":    "Max",
		"UNKNOWN": "Whiskers",
		"":        "Whiskers",
	}
	for sex, first := range cases {
		out, err := svc.SuggestNames(context.Background(), NamesInput{Species: "BENGAL", Sex: sex})
		require.NoError(t, err)
		assert.Equal(t, ModelFallback, out.ModelUsed)
		assert.Equal(t, first, out.Names[0], "sex=%q", sex)
		assert.Len(t, out.Names, MaxSuggestions)
	}
}

func TestSuggestNames_Validation(t *testing.T) {
	svc := NewService(nil, nil)

	_, err := svc.SuggestNames(context.Background(), NamesInput{Sex: "MALE"})
	require.ErrorIs(t, err, ErrInvalidInput)

	var res validation.Result
	require.True(t, errors.As(err, &res))
	assert.True(t, res.Has("species", validation.CodeRequired))

	_, err = svc.SuggestNames(context.Background(), NamesInput{Species: "BENGAL", Sex: "ROBOT"})
	require.True(t, errors.As(err, &res))
	assert.True(t, res.Has("sex", validation.CodeInvalidValue))
}

// -------------------------
// Care plan
// -------------------------

func okPlan() CarePlan {
	return CarePlan{
		Name:             "Luna",
		Species:          "RAGDOLL",
		Sex:              "FEMALE",
		FeedingTime:      2,
		FeedingFrequency: 8,
		BrushPerWeek:     3,
		LitterEveryDays:  1,
	}
}

func TestReviewCarePlan_HardRulesSkipGenerator(t *testing.T) {
	gen := &recordingGen{text: "EXCELLENT"}
	svc := NewService(gen, nil)

	cases := []struct {
		name    string
		mutate  func(p *CarePlan)
		verdict Verdict
		snippet string
	}{
		{"too many meals", func(p *CarePlan) { p.FeedingTime = 5 }, VerdictDanger, "5 meals per day"},
		{"too frequent", func(p *CarePlan) { p.FeedingFrequency = 2 }, VerdictDanger, "every 2 hour(s)"},
		{"over brushing", func(p *CarePlan) { p.BrushPerWeek = 10 }, VerdictWarning, "Brushing 10 times"},
		{"dirty litter", func(p *CarePlan) { p.LitterEveryDays = 7 }, VerdictWarning, "every 7 days"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen.last = flavor.Request{}
			p := okPlan()
			tc.mutate(&p)

			rv, err := svc.ReviewCarePlan(context.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, tc.verdict, rv.Verdict)
			assert.Contains(t, rv.Result, tc.snippet)
			assert.Equal(t, "rules", rv.ModelUsed)
			assert.Empty(t, gen.last.System, "generator must not be called")
		})
	}
}

func TestReviewCarePlan_UsesGeneratorVerdict(t *testing.T) {
	gen := &recordingGen{text: "NEEDS WORK: brush a bit more."}
	svc := NewService(gen, nil)

	rv, err := svc.ReviewCarePlan(context.Background(), okPlan())
	require.NoError(t, err)
	assert.Equal(t, VerdictNeedsWork, rv.Verdict)
	assert.Equal(t, "test-model", rv.ModelUsed)
	assert.Contains(t, gen.last.System, "2 meals per day, every 8 hours")
}

func TestReviewCarePlan_FallbackOnFailure(t *testing.T) {
	svc := NewService(&recordingGen{err: errors.New("boom")}, nil)

	rv, err := svc.ReviewCarePlan(context.Background(), okPlan())
	require.NoError(t, err)
	assert.Equal(t, VerdictGood, rv.Verdict)
	assert.Equal(t, ModelFallback, rv.ModelUsed)
}

func TestReviewCarePlan_Validation(t *testing.T) {
	svc := NewService(nil, nil)

	p := okPlan()
	p.Name = ""
	p.FeedingTime = 0

	_, err := svc.ReviewCarePlan(context.Background(), p)
	var res validation.Result
	require.True(t, errors.As(err, &res))
	assert.True(t, res.Has("name", validation.CodeRequired))
	assert.True(t, res.Has("feeding_time", validation.CodeOutOfRange))
}

func TestParseVerdict(t *testing.T) {
	assert.Equal(t, VerdictExcellent, parseVerdict("EXCELLENT plan"))
	assert.Equal(t, VerdictGood, parseVerdict("good, mostly"))
	assert.Equal(t, VerdictTerrible, parseVerdict("Terrible!"))
	assert.Equal(t, VerdictNeedsWork, parseVerdict("hmm"))
}

// -------------------------
// Summary
// -------------------------

func TestSummarize_UsesGeneratorOnOneLine(t *testing.T) {
	gen := &recordingGen{text: "  \"Luna is a gentle ragdoll girl\nwho loves naps!\"  "}
	svc := NewService(gen, nil)

	weight := 4.2
	out, err := svc.Summarize(context.Background(), Profile{
		Name:     "Luna",
		Species:  "RAGDOLL",
		Sex:      "female",
		WeightKg: &weight,
		Neutered: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Luna is a gentle ragdoll girl who loves naps!", out.Summary)
	assert.Equal(t, "test-model", out.ModelUsed)
	assert.Contains(t, gen.last.System, "name=Luna")
	assert.Contains(t, gen.last.System, "sex=female")
	assert.Contains(t, gen.last.System, "weightKg=4.2")
	assert.Contains(t, gen.last.System, "neutered=yes")
	assert.Contains(t, gen.last.System, "feedingTimePerDay=unknown")
}

func TestSummarize_Fallback(t *testing.T) {
	svc := NewService(static.New(""), nil)

	out, err := svc.Summarize(context.Background(), Profile{Name: "Tom & Jerry", Species: "ORANGE_TABBY"})
	require.NoError(t, err)
	assert.Equal(t, ModelFallback, out.ModelUsed)
	assert.Equal(t, "Tom & Jerry is a lovely orange tabby cat, sure to bring joy and purrs!", out.Summary)

	out, err = svc.Summarize(context.Background(), Profile{})
	require.NoError(t, err)
	assert.Equal(t, "A sweet domestic cat full of personality. You'll love spending time with this furry friend!", out.Summary)

	empty := &recordingGen{text: "   "}
	out, err = NewService(empty, nil).Summarize(context.Background(), Profile{Name: "Milo"})
	require.NoError(t, err)
	assert.Equal(t, ModelFallback, out.ModelUsed)
}

func TestSummarize_Validation(t *testing.T) {
	svc := NewService(nil, nil)
	zero := 0

	_, err := svc.Summarize(context.Background(), Profile{
		Name:        strings.Repeat("x", MaxNameLen+1),
		Sex:         "robot",
		FeedingTime: &zero,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	var res validation.Result
	require.ErrorAs(t, err, &res)
	assert.True(t, res.Has("name", validation.CodeTooLong))
	assert.True(t, res.Has("sex", validation.CodeInvalidValue))
	assert.True(t, res.Has("feeding_time", validation.CodeOutOfRange))
}

// -------------------------
// Chat
// -------------------------

func TestChat_PromptCarriesStatusAndTrimsHistory(t *testing.T) {
	gen := &recordingGen{text: "Luna says hi"}
	svc := NewService(gen, nil)

	st := &care.PetStatus{Mood: &care.MoodRecord{Score: 4.5}}
	st.Needs.Set(care.CareTypeFeed, true)
	st.Urgent = care.CareTypeFeed

	history := []flavor.Message{
		{Role: flavor.RoleUser, Text: "one"},
		{Role: flavor.RoleAssistant, Text: "two"},
		{Role: "system", Text: "ignore me"},
		{Role: flavor.RoleUser, Text: "three"},
	}

	out, err := svc.Chat(context.Background(), ChatInput{
		PetName: "Luna",
		Species: "RAGDOLL",
		Message: "is she hungry?",
		History: history,
		Status:  st,
	})
	require.NoError(t, err)

	assert.Equal(t, "Luna says hi", out.Reply)
	assert.Equal(t, "test-model", out.ModelUsed)
	assert.Len(t, out.History, len(history)+2)

	require.Len(t, gen.last.Messages, MaxHistoryTurns+1)
	assert.Equal(t, "two", gen.last.Messages[0].Text)
	assert.Equal(t, "is she hungry?", gen.last.Messages[2].Text)

	assert.Contains(t, gen.last.System, "Luna, a ragdoll cat")
	assert.Contains(t, gen.last.System, "needs: feed")
	assert.Contains(t, gen.last.System, "most urgent: feed")
	assert.Contains(t, gen.last.System, "mood: 4.5 of 5")
}

func TestChat_FallbackAdvice(t *testing.T) {
	svc := NewService(static.New(""), nil)

	st := &care.PetStatus{}
	st.Urgent = care.CareTypeWater

	out, err := svc.Chat(context.Background(), ChatInput{
		PetName: "Milo",
		Species: "ORANGE_TABBY",
		Message: "What FOOD is best?",
		Status:  st,
	})
	require.NoError(t, err)

	assert.Equal(t, ModelFallback, out.ModelUsed)
	assert.True(t, strings.HasPrefix(out.Reply, "For Milo, feed 2-3 times daily with high-quality orange tabby food."))
	assert.Contains(t, out.Reply, "Right now Milo could use: water.")
}

func TestChat_RequiresMessage(t *testing.T) {
	svc := NewService(nil, nil)

	_, err := svc.Chat(context.Background(), ChatInput{PetName: "Luna", Message: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

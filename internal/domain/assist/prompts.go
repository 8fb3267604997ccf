package assist

import (
	"fmt"
	"strings"

	"pet-care-tracker/internal/domain/care"
)

func namesPrompt(in NamesInput) string {
	sex := strings.ToLower(in.Sex)
	if sex == "unknown" {
		sex = ""
	}
	return fmt.Sprintf("You are HappyCat AI. Generate %d cute %s %s cat names.\n"+
		"Return only the names separated by commas, no numbers or text.",
		MaxSuggestions, sex, humanSpecies(in.Species))
}

func carePlanPrompt(p CarePlan) string {
	neutered := "not neutered"
	if p.Neutered {
		neutered = "neutered"
	}
	weight := "unknown weight"
	if p.WeightKg != nil {
		weight = fmt.Sprintf("%gkg", *p.WeightKg)
	}

	var sb strings.Builder
	sb.WriteString("Evaluate this cat care plan. Be critical and honest.\n\n")
	fmt.Fprintf(&sb, "%s (%s, %s, %s, %s):\n", p.Name, humanSpecies(p.Species), strings.ToLower(p.Sex), weight, neutered)
	fmt.Fprintf(&sb, "- %d meals per day, every %d hours\n", p.FeedingTime, p.FeedingFrequency)
	fmt.Fprintf(&sb, "- Brushing %dx per week\n", p.BrushPerWeek)
	fmt.Fprintf(&sb, "- Litter changed every %d days\n\n", p.LitterEveryDays)
	sb.WriteString("NORMAL RANGES:\n- Feeding: 2-3 meals, 6-12 hours apart\n- Brushing: 2-4x per week\n- Litter: 1-2 days\n\n")
	sb.WriteString("Start the response with exactly one of: EXCELLENT, GOOD, NEEDS WORK, TERRIBLE.\n")
	sb.WriteString("Keep under 100 words.")
	return sb.String()
}

func summaryPrompt(p Profile) string {
	unknown := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return "unknown"
		}
		return v
	}
	neutered := "no"
	if p.Neutered {
		neutered = "yes"
	}
	weight, meals, every := "unknown", "unknown", "unknown"
	if p.WeightKg != nil {
		weight = fmt.Sprintf("%g", *p.WeightKg)
	}
	if p.FeedingTime != nil {
		meals = fmt.Sprint(*p.FeedingTime)
	}
	if p.FeedingFrequency != nil {
		every = fmt.Sprint(*p.FeedingFrequency)
	}

	var sb strings.Builder
	sb.WriteString("You are HappyCat AI, a friendly cat assistant.\n")
	sb.WriteString("Summarize this cat in one warm, short sentence (under 25 words). ")
	sb.WriteString("Mention its name (if given), sex, and species. ")
	sb.WriteString("End with something encouraging or affectionate. Avoid technical language.\n\n")
	sb.WriteString("Data:\n")
	fmt.Fprintf(&sb, "name=%s\n", petName(p.Name))
	fmt.Fprintf(&sb, "species=%s\n", humanSpecies(p.Species))
	fmt.Fprintf(&sb, "breed=%s\n", unknown(p.Breed))
	fmt.Fprintf(&sb, "sex=%s\n", unknown(strings.ToLower(p.Sex)))
	fmt.Fprintf(&sb, "birthdate=%s\n", unknown(p.BirthDate))
	fmt.Fprintf(&sb, "weightKg=%s\n", weight)
	fmt.Fprintf(&sb, "neutered=%s\n", neutered)
	fmt.Fprintf(&sb, "feedingTimePerDay=%s\n", meals)
	fmt.Fprintf(&sb, "feedingFrequencyHours=%s", every)
	return sb.String()
}

func chatPrompt(in ChatInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a helpful cat care assistant for %s, a %s cat.\n\n", petName(in.PetName), humanSpecies(in.Species))
	sb.WriteString("Give brief, practical advice about cat care, behavior, and health specific to this pet. ")
	sb.WriteString("Always mention the cat's name when giving advice. Do not give veterinary medical advice; ")
	sb.WriteString(`always say "contact your vet" for health concerns.`)
	sb.WriteString("\n\nKeep responses under 50 words and be friendly and encouraging.")

	if in.Status != nil {
		sb.WriteString("\n\nToday's care status:\n")
		sb.WriteString(statusSummary(in.Status))
	}
	return sb.String()
}

func statusSummary(st *care.PetStatus) string {
	var sb strings.Builder

	needs := make([]string, 0, len(care.AllCareTypes))
	for _, t := range care.AllCareTypes {
		if st.Needs.Get(t) {
			needs = append(needs, strings.ToLower(string(t)))
		}
	}
	if len(needs) == 0 {
		sb.WriteString("- needs: none\n")
	} else {
		fmt.Fprintf(&sb, "- needs: %s\n", strings.Join(needs, ", "))
	}
	if st.Urgent != "" {
		fmt.Fprintf(&sb, "- most urgent: %s\n", strings.ToLower(string(st.Urgent)))
	}
	if st.Mood != nil {
		fmt.Fprintf(&sb, "- mood: %.1f of %.0f\n", st.Mood.Score, care.MoodMax)
	}
	return sb.String()
}

func humanSpecies(s string) string {
	s = strings.TrimSpace(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
	if s == "" {
		return "domestic"
	}
	return s
}

func petName(s string) string {
	if strings.TrimSpace(s) == "" {
		return "this cat"
	}
	return s
}

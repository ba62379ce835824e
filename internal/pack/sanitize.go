package pack

// Generated is an AI-produced pack draft in the client-facing field naming.
// It is the shape the LLM is instructed to emit and the shape returned by
// the proxy's pack mode.
type Generated struct {
	Title               string   `json:"title"`
	Category            Umbrella `json:"category"`
	Urgency             Urgency  `json:"urgency"`
	OneLiner            string   `json:"oneLiner"`
	DetailedDescription string   `json:"detailedDescription"`
	CTA                 string   `json:"cta"`
	EtaMin              int      `json:"etaMin"`
	Steps               []Step   `json:"steps"`
}

// genericSteps substitutes for a draft with no usable steps.
func genericSteps() []Step {
	return []Step{
		{Title: "Assess the situation", Desc: "Quickly evaluate what needs to be done and ensure safety first."},
		{Title: "Take appropriate action", Desc: "Follow the proper procedure for your specific situation."},
	}
}

// Sanitize clamps arbitrary decoded JSON into an in-contract Generated.
// It is total: any input, including missing fields, wrong types and
// out-of-range values, yields a draft satisfying every field constraint.
// The prompt supplies placeholder text for missing title and oneLiner.
func Sanitize(data map[string]any, prompt string) Generated {
	g := Generated{
		Title:               truncate(strField(data, "title"), MaxTitleLen),
		OneLiner:            truncate(strField(data, "oneLiner"), MaxOneLinerLen),
		DetailedDescription: truncate(strField(data, "detailedDescription"), MaxDescriptionLen),
		CTA:                 truncate(strField(data, "cta"), MaxCTALen),
		EtaMin:              clampInt(intField(data, "etaMin"), MinEtaMin, MaxEtaMin, DefaultEtaMin),
	}

	if g.Title == "" {
		g.Title = truncate(prompt, MaxTitleLen)
	}
	if g.Title == "" {
		g.Title = "Emergency Pack"
	}
	if g.OneLiner == "" {
		g.OneLiner = truncate("Guide for "+prompt, MaxOneLinerLen)
	}
	if g.DetailedDescription == "" {
		g.DetailedDescription = "Detailed emergency instructions"
	}
	if g.CTA == "" {
		g.CTA = "Get Started"
	}

	g.Category = Umbrella(strField(data, "category"))
	if !g.Category.Valid() {
		g.Category = UmbrellaHealth
	}
	g.Urgency = Urgency(strField(data, "urgency"))
	if !g.Urgency.Valid() {
		g.Urgency = UrgencyInfo
	}

	if rawSteps, ok := data["steps"].([]any); ok && len(rawSteps) > 0 {
		if len(rawSteps) > MaxSteps {
			rawSteps = rawSteps[:MaxSteps]
		}
		for _, raw := range rawSteps {
			m, _ := raw.(map[string]any)
			step := Step{
				Title: truncate(strField(m, "title"), MaxStepTitleLen),
				Desc:  truncate(strField(m, "desc"), MaxStepDescLen),
			}
			if step.Title == "" {
				step.Title = "Step"
			}
			if step.Desc == "" {
				step.Desc = "Follow this step carefully"
			}
			if sec := intField(m, "timerSec"); sec > 0 {
				if sec > MaxTimerSec {
					sec = MaxTimerSec
				}
				step.TimerSec = sec
			}
			g.Steps = append(g.Steps, step)
		}
	}
	if len(g.Steps) == 0 {
		g.Steps = genericSteps()
	}
	return g
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func clampInt(v, min, max, def int) int {
	if v == 0 {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func strField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) int {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

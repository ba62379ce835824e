package pack

import (
	"strings"
	"unicode"
)

// Fallback deterministically generates a pack draft from prompt text alone.
// Used whenever the AI provider is unconfigured, unavailable, or returned
// unusable output; the result always satisfies the draft's field contract.
func Fallback(prompt string) Generated {
	umbrella, urgency := Infer(prompt)

	lower := strings.ToLower(prompt)
	cta := "Get Started"
	etaMin := DefaultEtaMin
	if urgency == UrgencyEmergency {
		cta = "Help Now"
		etaMin = 3
	}

	return Generated{
		Title:               capitalize(truncate(prompt, MaxTitleLen)),
		Category:            umbrella,
		Urgency:             urgency,
		OneLiner:            truncate("Step-by-step guide for "+lower, MaxOneLinerLen),
		DetailedDescription: truncate("This pack provides detailed instructions to help you handle "+lower+" safely and effectively.", MaxDescriptionLen),
		CTA:                 cta,
		EtaMin:              etaMin,
		Steps: []Step{
			{Title: "Assess the situation", Desc: "Quickly evaluate what needs to be done and ensure safety first."},
			{Title: "Gather necessary items", Desc: "Collect all tools or materials you'll need for this procedure."},
			{Title: "Take action", Desc: "Follow the specific steps for your situation carefully and methodically."},
		},
	}
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

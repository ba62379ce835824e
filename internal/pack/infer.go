package pack

import "strings"

// keywordGroups drive the heuristic category inference used by every
// fallback generation path. One table, checked in order; first hit wins.
var keywordGroups = []struct {
	umbrella Umbrella
	urgency  Urgency
	words    []string
}{
	{UmbrellaHealth, UrgencyEmergency, []string{"bleed", "wound", "injury", "medical", "cpr", "heart"}},
	{UmbrellaSurvive, UrgencyEmergency, []string{"fire", "survival", "emergency", "escape", "earthquake", "flood"}},
	{UmbrellaFix, UrgencyInfo, []string{"repair", "fix", "broken", "maintenance", "car", "plumbing"}},
	{UmbrellaSpeak, UrgencyInfo, []string{"language", "speak", "communicate", "translate", "spanish", "french"}},
}

// Infer guesses a pack's umbrella and urgency from free-form prompt text.
// Prompts matching no keyword group default to HEALTH/info.
func Infer(prompt string) (Umbrella, Urgency) {
	lower := strings.ToLower(prompt)
	for _, g := range keywordGroups {
		for _, w := range g.words {
			if strings.Contains(lower, w) {
				return g.umbrella, g.urgency
			}
		}
	}
	return UmbrellaHealth, UrgencyInfo
}

package pack

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertInContract checks every field constraint the draft must satisfy.
func assertInContract(t *testing.T, g Generated) {
	t.Helper()
	assert.NotEmpty(t, g.Title)
	assert.LessOrEqual(t, len([]rune(g.Title)), MaxTitleLen)
	assert.LessOrEqual(t, len([]rune(g.OneLiner)), MaxOneLinerLen)
	assert.LessOrEqual(t, len([]rune(g.DetailedDescription)), MaxDescriptionLen)
	assert.LessOrEqual(t, len([]rune(g.CTA)), MaxCTALen)
	assert.True(t, g.Category.Valid(), "category %q out of contract", g.Category)
	assert.True(t, g.Urgency.Valid(), "urgency %q out of contract", g.Urgency)
	assert.GreaterOrEqual(t, g.EtaMin, MinEtaMin)
	assert.LessOrEqual(t, g.EtaMin, MaxEtaMin)
	require.NotEmpty(t, g.Steps)
	assert.LessOrEqual(t, len(g.Steps), MaxSteps)
	for _, s := range g.Steps {
		assert.NotEmpty(t, s.Title)
		assert.LessOrEqual(t, len([]rune(s.Title)), MaxStepTitleLen)
		assert.LessOrEqual(t, len([]rune(s.Desc)), MaxStepDescLen)
		assert.GreaterOrEqual(t, s.TimerSec, 0)
		assert.LessOrEqual(t, s.TimerSec, MaxTimerSec)
	}
}

func TestSanitizeMalformedInputs(t *testing.T) {
	huge := strings.Repeat("x", 10000)
	hugeSteps := make([]any, 50)
	for i := range hugeSteps {
		hugeSteps[i] = map[string]any{"title": huge, "desc": huge, "timerSec": float64(999999)}
	}

	tests := []struct {
		name string
		data map[string]any
	}{
		{"nil map", nil},
		{"empty map", map[string]any{}},
		{"wrong types", map[string]any{
			"title":    42.0,
			"category": []any{"HEALTH"},
			"urgency":  true,
			"etaMin":   "ten",
			"steps":    "not an array",
		}},
		{"oversized strings", map[string]any{
			"title":               huge,
			"oneLiner":            huge,
			"detailedDescription": huge,
			"cta":                 huge,
		}},
		{"out of range numbers", map[string]any{
			"etaMin": float64(-5),
			"steps":  []any{map[string]any{"timerSec": float64(-1)}},
		}},
		{"huge step array", map[string]any{"steps": hugeSteps}},
		{"steps with non-object entries", map[string]any{
			"steps": []any{"one", 2.0, nil, map[string]any{"title": "ok", "desc": "fine"}},
		}},
		{"unknown enums", map[string]any{"category": "WIZARDRY", "urgency": "panic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertInContract(t, Sanitize(tt.data, "test prompt"))
		})
	}
}

func TestSanitizeFromRawJSON(t *testing.T) {
	raws := []string{
		`{}`,
		`{"title":null,"steps":null}`,
		`{"etaMin":1e9,"steps":[{"timerSec":1e9}]}`,
		`{"category":"SURVIVE","urgency":"warning","etaMin":30,"steps":[{"title":"Go","desc":"Now","timerSec":60}]}`,
	}
	for _, raw := range raws {
		var data map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &data))
		assertInContract(t, Sanitize(data, "raw json"))
	}
}

func TestSanitizePreservesValidDraft(t *testing.T) {
	data := map[string]any{
		"title":               "House Fire Escape",
		"category":            "SURVIVE",
		"urgency":             "emergency",
		"oneLiner":            "Get out fast",
		"detailedDescription": "Escape a burning building safely.",
		"cta":                 "Escape Now",
		"etaMin":              float64(3),
		"steps": []any{
			map[string]any{"title": "Stay low", "desc": "Crawl below smoke.", "timerSec": float64(30)},
		},
	}

	g := Sanitize(data, "house fire")
	assert.Equal(t, "House Fire Escape", g.Title)
	assert.Equal(t, UmbrellaSurvive, g.Category)
	assert.Equal(t, UrgencyEmergency, g.Urgency)
	assert.Equal(t, 3, g.EtaMin)
	require.Len(t, g.Steps, 1)
	assert.Equal(t, 30, g.Steps[0].TimerSec)
}

func TestSanitizeSubstitutesGenericSteps(t *testing.T) {
	g := Sanitize(map[string]any{"steps": []any{}}, "anything")
	require.Len(t, g.Steps, 2)
	assert.Equal(t, "Assess the situation", g.Steps[0].Title)
}

func FuzzSanitize(f *testing.F) {
	f.Add(`{"title":"x","category":"HEALTH","steps":[{"title":"a","desc":"b"}]}`, "bleeding")
	f.Add(`{"title":123,"urgency":"panic","etaMin":-5,"steps":"nope"}`, "")
	f.Add(`{"steps":[{"timerSec":99999}]}`, "house fire")
	f.Add(`[]`, "flat tire")
	f.Fuzz(func(t *testing.T, raw, prompt string) {
		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return
		}
		assertInContract(t, Sanitize(data, prompt))
	})
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/pack"
)

// ErrAllEndpointsFailed indicates every configured AI endpoint was tried
// and none produced a usable answer.
var ErrAllEndpointsFailed = errors.New("all AI endpoints failed")

// Answer is the normalized result of an AI call, regardless of which
// endpoint shape produced it.
type Answer struct {
	Type string
	Text string
	Pack *pack.Generated
}

// AIClient calls the server's AI endpoints. Endpoints are tried in order;
// the two deployed shapes (nested result envelope and flat response) are
// both normalized into Answer.
type AIClient struct {
	endpoints []string
	httpc     *http.Client
	logger    *zap.Logger
}

// NewAIClient creates an AI client for the given server base URL.
func NewAIClient(baseURL string, logger *zap.Logger) *AIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(baseURL, "/")
	return &AIClient{
		endpoints: []string{base + "/gptoss", base + "/generate-pack"},
		httpc:     &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

type aiRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode"`
	Lang   string `json:"lang,omitempty"`
}

// Chat sends a free-form prompt and returns the assistant's text.
func (c *AIClient) Chat(ctx context.Context, prompt, lang string) (string, error) {
	answer, err := c.ask(ctx, aiRequest{Prompt: prompt, Mode: "chat", Lang: lang})
	if err != nil {
		return "", err
	}
	if answer.Text == "" {
		return "", fmt.Errorf("%w: empty chat answer", ErrAllEndpointsFailed)
	}
	return answer.Text, nil
}

// ChatWithPackContext asks a question about a specific pack. The pack's
// content and the user's current step are folded into the prompt so the
// model answers in context. currentStep is 1-based; 0 means no step focus.
func (c *AIClient) ChatWithPackContext(ctx context.Context, prompt string, p pack.Pack, steps []pack.Step, currentStep int, lang string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "The user is following the guide %q (%s).\n", p.Title, p.OneLiner)
	for i, s := range steps {
		fmt.Fprintf(&b, "Step %d: %s - %s\n", i+1, s.Title, s.Desc)
	}
	if currentStep >= 1 && currentStep <= len(steps) {
		fmt.Fprintf(&b, "The user is currently on step %d (%s).\n", currentStep, steps[currentStep-1].Title)
	}
	b.WriteString("\nUser question: ")
	b.WriteString(prompt)
	return c.Chat(ctx, b.String(), lang)
}

// GeneratePack asks for a pack draft for the given prompt.
func (c *AIClient) GeneratePack(ctx context.Context, prompt, lang string) (pack.Generated, error) {
	answer, err := c.ask(ctx, aiRequest{Prompt: prompt, Mode: "pack", Lang: lang})
	if err != nil {
		return pack.Generated{}, err
	}
	if answer.Pack == nil {
		return pack.Generated{}, fmt.Errorf("%w: no pack in answer", ErrAllEndpointsFailed)
	}
	return *answer.Pack, nil
}

// ask tries each endpoint until one yields a normalizable answer.
func (c *AIClient) ask(ctx context.Context, req aiRequest) (Answer, error) {
	var lastErr error
	for _, endpoint := range c.endpoints {
		answer, err := c.call(ctx, endpoint, req)
		if err != nil {
			c.logger.Warn("AI endpoint failed, trying next",
				zap.String("endpoint", endpoint), zap.Error(err))
			lastErr = err
			continue
		}
		return answer, nil
	}
	return Answer{}, fmt.Errorf("%w: %w", ErrAllEndpointsFailed, lastErr)
}

func (c *AIClient) call(ctx context.Context, endpoint string, req aiRequest) (Answer, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return Answer{}, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return Answer{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return Answer{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Answer{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Answer{}, fmt.Errorf("reading response: %w", err)
	}
	return normalize(body)
}

// normalize maps any deployed response shape into Answer:
//
//	nested: {"result": {"type": "...", "text": "...", "pack": {...}}}
//	flat:   {"ok": true, "mode": "...", "text": "...", "pack": {...}}
//	legacy: {"pack": {...}}
func normalize(body []byte) (Answer, error) {
	var probe struct {
		Result *struct {
			Type string          `json:"type"`
			Text string          `json:"text"`
			Pack json.RawMessage `json:"pack"`
		} `json:"result"`
		OK   *bool           `json:"ok"`
		Mode string          `json:"mode"`
		Text string          `json:"text"`
		Pack json.RawMessage `json:"pack"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return Answer{}, fmt.Errorf("decoding response: %w", err)
	}

	if probe.Result != nil {
		return Answer{Type: probe.Result.Type, Text: probe.Result.Text, Pack: decodeDraft(probe.Result.Pack)}, nil
	}
	if probe.OK != nil {
		if !*probe.OK {
			return Answer{}, errors.New("endpoint answered ok=false")
		}
		return Answer{Type: probe.Mode, Text: probe.Text, Pack: decodeDraft(probe.Pack)}, nil
	}
	if len(probe.Pack) > 0 {
		return Answer{Type: "pack", Pack: decodeDraft(probe.Pack)}, nil
	}
	return Answer{}, errors.New("unrecognized response shape")
}

// decodeDraft maps a pack payload into a draft regardless of which field
// and enum casing the server used: the draft shape (category "HEALTH",
// etaMin, step desc/timerSec) or the database shape (category "Health",
// estMinutes, step description/timerSeconds). The mapping is total; missing
// fields pick up defaults.
func decodeDraft(raw json.RawMessage) *pack.Generated {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}

	g := pack.Generated{
		Title:               jsonStr(data, "title"),
		OneLiner:            jsonStr(data, "oneLiner"),
		DetailedDescription: jsonStr(data, "detailedDescription"),
		CTA:                 jsonStr(data, "cta"),
	}
	if g.Title == "" {
		g.Title = "Emergency Pack"
	}
	if g.OneLiner == "" {
		g.OneLiner = g.DetailedDescription
	}
	if g.OneLiner == "" {
		g.OneLiner = "Emergency guide"
	}

	g.Category = pack.Umbrella(strings.ToUpper(jsonStr(data, "category")))
	if !g.Category.Valid() {
		g.Category = pack.UmbrellaHealth
	}
	g.Urgency = pack.Urgency(strings.ToLower(jsonStr(data, "urgency")))
	if !g.Urgency.Valid() {
		g.Urgency = pack.UrgencyInfo
	}

	g.EtaMin = jsonInt(data, "etaMin")
	if g.EtaMin == 0 {
		g.EtaMin = jsonInt(data, "estMinutes")
	}
	if g.EtaMin == 0 {
		g.EtaMin = 10
	}

	if rawSteps, ok := data["steps"].([]any); ok {
		for _, rs := range rawSteps {
			m, _ := rs.(map[string]any)
			step := pack.Step{
				Title: jsonStr(m, "title"),
				Desc:  jsonStr(m, "desc"),
			}
			if step.Title == "" {
				step.Title = "Step"
			}
			if step.Desc == "" {
				step.Desc = jsonStr(m, "description")
			}
			if step.Desc == "" {
				step.Desc = "Follow this step"
			}
			step.TimerSec = jsonInt(m, "timerSec")
			if step.TimerSec == 0 {
				step.TimerSec = jsonInt(m, "timerSeconds")
			}
			g.Steps = append(g.Steps, step)
		}
	}
	return &g
}

func jsonStr(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func jsonInt(m map[string]any, key string) int {
	f, ok := m[key].(float64)
	if !ok {
		return 0
	}
	return int(f)
}

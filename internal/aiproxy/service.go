// Package aiproxy brokers prompt requests to an OpenAI-compatible model
// and shapes the output into the client contract. Ask never surfaces
// upstream failures: a missing key or network error degrades to a locally
// generated response, and an unparseable pack completion is returned as
// raw text, so callers always get something renderable.
package aiproxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/pack"
)

// Mode selects the generation behavior.
type Mode string

const (
	// ModeChat returns free-form assistant text.
	ModeChat Mode = "chat"
	// ModePack returns a sanitized pack draft.
	ModePack Mode = "pack"
)

const (
	packMaxTokens = 1000
	chatMaxTokens = 1500
	temperature   = 0.7
)

// ErrInvalidConfig indicates invalid configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrNotConfigured indicates no upstream provider is wired.
var ErrNotConfigured = errors.New("AI provider not configured")

// Config holds configuration for the AI proxy.
type Config struct {
	// BaseURL is the OpenAI-compatible endpoint base URL.
	BaseURL string

	// Model is the completion model name.
	Model string

	// APIKey authenticates against the upstream. When empty the proxy
	// runs in fallback-only mode.
	APIKey string
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// Request is a single proxy call.
type Request struct {
	Prompt string `json:"prompt"`
	Mode   Mode   `json:"mode"`
	// Lang is an optional ISO language code for the response.
	Lang string `json:"lang,omitempty"`
}

// Response is the proxy's answer. OK is true even for fallback responses;
// it only reports whether the caller got usable content.
type Response struct {
	OK   bool            `json:"ok"`
	Mode Mode            `json:"mode"`
	Text string          `json:"text,omitempty"`
	Pack *pack.Generated `json:"pack,omitempty"`
	// Fallback reports that the content was generated locally rather than
	// by the upstream model. Not part of the wire contract.
	Fallback bool `json:"-"`
}

// Service proxies prompts to a completion model.
type Service struct {
	model  llms.Model
	config Config
	logger *zap.Logger
}

// NewService creates an AI proxy from the given configuration. With an
// empty API key no upstream client is built and every request takes the
// fallback path.
func NewService(config Config, logger *zap.Logger) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{config: config, logger: logger}
	if config.APIKey == "" {
		logger.Warn("no AI API key configured, serving fallback responses only")
		return s, nil
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithModel(config.Model),
		openai.WithToken(config.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	s.model = llm
	return s, nil
}

// NewServiceWithModel creates a proxy over an existing model. Used by tests
// and by callers that already hold a configured client.
func NewServiceWithModel(model llms.Model, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{model: model, logger: logger}
}

// Configured reports whether an upstream model is wired. When false every
// Ask degrades to the heuristic fallback.
func (s *Service) Configured() bool {
	return s.model != nil
}

// Ask handles one prompt. Unknown modes are treated as chat. The returned
// response always has OK set and content filled; errors are reserved for
// programmer mistakes, not upstream weather.
func (s *Service) Ask(ctx context.Context, req Request) Response {
	if req.Mode != ModePack {
		req.Mode = ModeChat
	}

	if s.model == nil {
		return s.fallback(req)
	}

	completion, err := s.complete(ctx, req)
	if err != nil {
		s.logger.Warn("upstream completion failed, using fallback",
			zap.String("mode", string(req.Mode)), zap.Error(err))
		return s.fallback(req)
	}

	if req.Mode == ModeChat {
		return Response{OK: true, Mode: ModeChat, Text: completion}
	}

	draft, ok := parseDraft(completion, req.Prompt)
	if !ok {
		// Degraded but still ok: the caller gets the raw completion and
		// decides whether to run its own fallback.
		s.logger.Warn("completion was not valid pack JSON, returning raw text")
		return Response{OK: true, Mode: ModePack, Text: completion}
	}
	return Response{OK: true, Mode: ModePack, Text: "Generated pack: " + draft.Title, Pack: &draft}
}

// GeneratePackDraft serves the single-purpose legacy endpoint. Unlike Ask
// it surfaces a missing provider and upstream failures as errors; only an
// unparseable completion degrades to the heuristic draft.
func (s *Service) GeneratePackDraft(ctx context.Context, prompt string) (pack.Generated, error) {
	if s.model == nil {
		return pack.Generated{}, ErrNotConfigured
	}
	completion, err := s.complete(ctx, Request{Prompt: prompt, Mode: ModePack})
	if err != nil {
		return pack.Generated{}, err
	}
	draft, ok := parseDraft(completion, prompt)
	if !ok {
		s.logger.Warn("completion was not valid pack JSON, using heuristic draft")
		draft = pack.Fallback(prompt)
	}
	return draft, nil
}

func (s *Service) complete(ctx context.Context, req Request) (string, error) {
	system := chatSystemPrompt
	maxTokens := chatMaxTokens
	if req.Mode == ModePack {
		system = packSystemPrompt
		maxTokens = packMaxTokens
	}
	if req.Lang != "" {
		system += "\n" + langInstruction + req.Lang
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}

	resp, err := s.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Content, nil
}

func (s *Service) fallback(req Request) Response {
	if req.Mode == ModePack {
		draft := pack.Fallback(req.Prompt)
		return Response{OK: true, Mode: ModePack, Text: "Generated pack: " + draft.Title, Pack: &draft, Fallback: true}
	}
	return Response{
		OK:       true,
		Fallback: true,
		Mode:     ModeChat,
		Text: "I can't reach the assistant right now. If this is a life-threatening emergency, call your local emergency number immediately. Otherwise, try the built-in guides for step-by-step help.",
	}
}

// parseDraft extracts the first JSON object from the completion and
// sanitizes it into a pack draft. Models wrap JSON in fences or prose
// often enough that a plain unmarshal is not good enough.
func parseDraft(completion, prompt string) (pack.Generated, bool) {
	raw := extractJSON(completion)
	if raw == "" {
		return pack.Generated{}, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return pack.Generated{}, false
	}
	return pack.Sanitize(data, prompt), true
}

// extractJSON returns the substring from the first '{' to the last '}',
// or "" when no object is present.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

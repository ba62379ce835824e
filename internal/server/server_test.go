package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/aiproxy"
	"github.com/everaidhq/everaid/internal/config"
	"github.com/everaidhq/everaid/internal/kvstore"
	"github.com/everaidhq/everaid/internal/pack"
	"github.com/everaidhq/everaid/internal/packsvc"
)

const testAnonKey = "test-anon-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	packs := packsvc.NewService(kvstore.NewMemoryStore(), zap.NewNop())
	ai, err := aiproxy.NewService(aiproxy.Config{
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	}, zap.NewNop())
	require.NoError(t, err)

	srv, err := NewServer(packs, ai, zap.NewNop(), config.ServerConfig{
		Host:    "127.0.0.1",
		Port:    0,
		AnonKey: config.Secret(testAnonKey),
	})
	require.NoError(t, err)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testAnonKey)
		req.Header.Set("apikey", testAnonKey)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPackRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	t.Run("no credentials", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/packs", "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/packs", nil)
		req.Header.Set("Authorization", "Bearer "+testAnonKey)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/packs", nil)
		req.Header.Set("Authorization", "Bearer nope")
		req.Header.Set("apikey", "nope")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("both headers", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/packs", "", true)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	packs := packsvc.NewService(kvstore.NewMemoryStore(), zap.NewNop())
	ai, err := aiproxy.NewService(aiproxy.Config{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"}, zap.NewNop())
	require.NoError(t, err)
	srv, err := NewServer(packs, ai, zap.NewNop(), config.ServerConfig{})
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodGet, "/packs", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPackCRUDOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	body := `{"title":"Test Pack","oneLiner":"a test","category":"Health","urgency":"INFO","estMinutes":5,"cta":"Go","steps":[{"title":"One","description":"do it"}]}`
	rec := doRequest(t, srv, http.MethodPost, "/packs", body, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created CreatePackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	require.NotEmpty(t, created.ID)

	t.Run("get by id", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/packs/"+created.ID, "", true)
		require.Equal(t, http.StatusOK, rec.Code)

		var got pack.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Test Pack", got.Title)
		assert.Len(t, got.Steps, 1)
	})

	t.Run("list", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/packs", "", true)
		require.Equal(t, http.StatusOK, rec.Code)

		var records []pack.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		assert.Len(t, records, 1)
	})

	t.Run("filter by category", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/packs?category=Fix", "", true)
		require.Equal(t, http.StatusOK, rec.Code)

		var records []pack.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		assert.Empty(t, records)
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/packs?category=Bogus", "", true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPut, "/packs/"+created.ID, `{"title":"Renamed"}`, true)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, srv, http.MethodGet, "/packs/"+created.ID, "", true)
		var got pack.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, "a test", got.OneLiner)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/packs/"+created.ID, "", true)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, srv, http.MethodGet, "/packs/"+created.ID, "", true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreatePackValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/packs", `{"title":"No Steps","category":"Health"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeedEndpointIdempotent(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/packs/seed", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var first packsvc.SeedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.True(t, first.Success)
	assert.Equal(t, 16, first.Count)

	rec = doRequest(t, srv, http.MethodPost, "/packs/seed", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var second packsvc.SeedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Contains(t, second.Message, "already contains")
}

func TestDebugCategories(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/packs/seed", "", true)
	rec := doRequest(t, srv, http.MethodGet, "/packs/debug/categories", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var debug packsvc.CategoryDebug
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &debug))
	assert.Equal(t, 16, debug.Total)
	assert.Len(t, debug.Categories, 4)
}

func TestSearchPacks(t *testing.T) {
	srv := newTestServer(t)
	doRequest(t, srv, http.MethodPost, "/packs/seed", "", true)

	rec := doRequest(t, srv, http.MethodGet, "/packs/search?q=flat+tire", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []struct {
		Record pack.Record `json:"record"`
		Score  float32     `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "Flat Tire Change", results[0].Record.Title)

	t.Run("missing query", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/packs/search", "", true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no matches is empty array", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/packs/search?q=zzzzzz", "", true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestGptossPackMode(t *testing.T) {
	// no API key configured, so the proxy serves its local fallback
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/gptoss", `{"prompt":"bleeding wound","mode":"pack"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK   bool            `json:"ok"`
		Mode string          `json:"mode"`
		Text string          `json:"text"`
		Pack *pack.Generated `json:"pack"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "pack", resp.Mode)
	assert.NotEmpty(t, resp.Text)
	require.NotNil(t, resp.Pack)
	assert.Equal(t, pack.UmbrellaHealth, resp.Pack.Category)
	assert.Equal(t, pack.UrgencyEmergency, resp.Pack.Urgency)
}

func TestGptossChatMode(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/gptoss", `{"prompt":"hello"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK   bool   `json:"ok"`
		Mode string `json:"mode"`
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "chat", resp.Mode)
	assert.NotEmpty(t, resp.Text)
}

// staticModel answers every completion with a fixed string.
type staticModel struct {
	reply string
}

func (m *staticModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *staticModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return m.reply, nil
}

func TestGeneratePackFlatShape(t *testing.T) {
	packs := packsvc.NewService(kvstore.NewMemoryStore(), zap.NewNop())
	ai := aiproxy.NewServiceWithModel(&staticModel{reply: `{
		"title": "House Fire Escape",
		"oneLiner": "Get everyone out fast",
		"category": "SURVIVE",
		"urgency": "emergency",
		"steps": [{"title": "Stay low", "desc": "Crawl under the smoke"}]
	}`}, zap.NewNop())

	srv, err := NewServer(packs, ai, zap.NewNop(), config.ServerConfig{
		Host:    "127.0.0.1",
		Port:    0,
		AnonKey: config.Secret(testAnonKey),
	})
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodPost, "/generate-pack", `{"prompt":"house fire"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Pack *pack.Generated `json:"pack"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Pack)
	assert.Equal(t, pack.UmbrellaSurvive, resp.Pack.Category)
	assert.Equal(t, "House Fire Escape", resp.Pack.Title)
}

func TestGeneratePackNoProvider(t *testing.T) {
	// Unlike /gptoss, the legacy endpoint reports a missing provider.
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/generate-pack", `{"prompt":"house fire"}`, false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestGptossUnparseablePackReturnsText(t *testing.T) {
	packs := packsvc.NewService(kvstore.NewMemoryStore(), zap.NewNop())
	ai := aiproxy.NewServiceWithModel(&staticModel{reply: "Sorry, I cannot produce JSON for that request."}, zap.NewNop())

	srv, err := NewServer(packs, ai, zap.NewNop(), config.ServerConfig{Host: "127.0.0.1", Port: 0})
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodPost, "/gptoss", `{"prompt":"fix my bike","mode":"pack"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK   bool            `json:"ok"`
		Text string          `json:"text"`
		Pack *pack.Generated `json:"pack"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "Sorry, I cannot produce JSON for that request.", resp.Text)
	assert.Nil(t, resp.Pack)
}

func TestAIEndpointsRejectEmptyPrompt(t *testing.T) {
	srv := newTestServer(t)

	t.Run("/gptoss", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/gptoss", `{"prompt":"  "}`, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ok":false`)
	})
	t.Run("/generate-pack", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/generate-pack", `{"prompt":"  "}`, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Prompt is required")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodGet, "/health", "", false)
	rec := doRequest(t, srv, http.MethodGet, "/metrics", "", false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "everaid_http_requests_total")
}

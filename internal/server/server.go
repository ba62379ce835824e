// Package server provides the HTTP API for everaidd: pack CRUD, the AI
// proxy endpoints, health, and Prometheus metrics.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/aiproxy"
	"github.com/everaidhq/everaid/internal/config"
	"github.com/everaidhq/everaid/internal/pack"
	"github.com/everaidhq/everaid/internal/packsearch"
	"github.com/everaidhq/everaid/internal/packsvc"
)

// Server provides HTTP endpoints for everaidd.
type Server struct {
	echo    *echo.Echo
	packs   *packsvc.Service
	ai      *aiproxy.Service
	logger  *zap.Logger
	config  config.ServerConfig
	metrics *Metrics
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(packs *packsvc.Service, ai *aiproxy.Service, logger *zap.Logger, cfg config.ServerConfig) (*Server, error) {
	if packs == nil {
		return nil, fmt.Errorf("pack service cannot be nil")
	}
	if ai == nil {
		return nil, fmt.Errorf("ai service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		packs:   packs,
		ai:      ai,
		logger:  logger,
		config:  cfg,
		metrics: NewMetrics(),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(s.metrics.Middleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// AI proxy endpoints. /gptoss answers {ok,mode,text,pack?};
	// /generate-pack is the legacy {pack}-or-{error} shape.
	s.echo.POST("/gptoss", s.handleGptoss)
	s.echo.POST("/generate-pack", s.handleGeneratePack)

	packs := s.echo.Group("/packs", s.requireAuth)
	packs.GET("", s.handleListPacks)
	packs.GET("/category/:category", s.handleListByCategory)
	packs.POST("", s.handleCreatePack)
	packs.GET("/search", s.handleSearchPacks)
	packs.GET("/debug/categories", s.handleDebugCategories)
	packs.POST("/seed", s.handleSeed)
	packs.POST("/reseed", s.handleReseed)
	packs.GET("/:id", s.handleGetPack)
	packs.PUT("/:id", s.handleUpdatePack)
	packs.DELETE("/:id", s.handleDeletePack)
}

// requireAuth checks the anon key on pack routes. Clients must present the
// key both as a bearer token and in the apikey header. An empty configured
// key disables the check for local development.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := s.config.AnonKey.Value()
		if key == "" {
			return next(c)
		}

		bearer := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		apikey := c.Request().Header.Get("apikey")
		bearerOK := subtle.ConstantTimeCompare([]byte(bearer), []byte(key)) == 1
		apikeyOK := subtle.ConstantTimeCompare([]byte(apikey), []byte(key)) == 1
		if !bearerOK || !apikeyOK {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing credentials")
		}
		return next(c)
	}
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// ProxyRequest is the request body shared by both AI endpoints.
type ProxyRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode"`
	Lang   string `json:"lang"`
}

// proxyError is the /gptoss validation failure body.
type proxyError struct {
	OK    bool   `json:"ok"`
	Mode  string `json:"mode"`
	Text  string `json:"text"`
	Error string `json:"error"`
}

func (s *Server) handleGptoss(c echo.Context) error {
	var req ProxyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		mode := req.Mode
		if mode == "" {
			mode = string(aiproxy.ModeChat)
		}
		return c.JSON(http.StatusBadRequest, proxyError{
			Mode:  mode,
			Text:  "Prompt is required",
			Error: "Prompt is required",
		})
	}

	resp := s.ask(c.Request().Context(), req, aiproxy.Mode(req.Mode))
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGeneratePack(c echo.Context) error {
	var req ProxyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Prompt is required"})
	}

	// Legacy endpoint: a bare {pack} on success; unlike /gptoss, a missing
	// provider or upstream failure is an {error}, not a fallback.
	draft, err := s.ai.GeneratePackDraft(c.Request().Context(), req.Prompt)
	if err != nil {
		s.metrics.AIRequestsTotal.WithLabelValues(string(aiproxy.ModePack), "error").Inc()
		if errors.Is(err, aiproxy.ErrNotConfigured) {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "AI provider not configured"})
		}
		s.logger.Warn("pack generation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "AI service temporarily unavailable"})
	}
	s.metrics.AIRequestsTotal.WithLabelValues(string(aiproxy.ModePack), "upstream").Inc()
	return c.JSON(http.StatusOK, map[string]*pack.Generated{"pack": &draft})
}

func (s *Server) ask(ctx context.Context, req ProxyRequest, mode aiproxy.Mode) aiproxy.Response {
	resp := s.ai.Ask(ctx, aiproxy.Request{
		Prompt: req.Prompt,
		Mode:   mode,
		Lang:   req.Lang,
	})

	outcome := "upstream"
	if resp.Fallback {
		outcome = "fallback"
	}
	s.metrics.AIRequestsTotal.WithLabelValues(string(resp.Mode), outcome).Inc()
	return resp
}

func (s *Server) handleListPacks(c echo.Context) error {
	var (
		records []pack.Record
		err     error
	)
	if category := c.QueryParam("category"); category != "" {
		cat := pack.Category(category)
		if !cat.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown category %q", category))
		}
		records, err = s.packs.GetByCategory(c.Request().Context(), cat)
	} else {
		records, err = s.packs.GetAll(c.Request().Context())
		if err == nil {
			s.metrics.PackCount.Set(float64(len(records)))
		}
	}
	if err != nil {
		s.logger.Error("listing packs failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list packs")
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleListByCategory(c echo.Context) error {
	cat := pack.Category(c.Param("category"))
	if !cat.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown category %q", c.Param("category")))
	}
	records, err := s.packs.GetByCategory(c.Request().Context(), cat)
	if err != nil {
		s.logger.Error("listing packs failed", zap.Error(err), zap.String("category", string(cat)))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list packs")
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleSearchPacks(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	records, err := s.packs.GetAll(c.Request().Context())
	if err != nil {
		s.logger.Error("searching packs failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to search packs")
	}

	results := packsearch.Search(records, query, limit)
	if results == nil {
		results = []packsearch.Result{}
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleGetPack(c echo.Context) error {
	rec, err := s.packs.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, packsvc.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "pack not found")
	}
	if err != nil {
		s.logger.Error("fetching pack failed", zap.String("id", c.Param("id")), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch pack")
	}
	return c.JSON(http.StatusOK, rec)
}

// CreatePackResponse is the response body for POST /packs.
type CreatePackResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func (s *Server) handleCreatePack(c echo.Context) error {
	var rec pack.Record
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	id, err := s.packs.Save(c.Request().Context(), rec)
	if errors.Is(err, packsvc.ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		s.logger.Error("saving pack failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save pack")
	}
	return c.JSON(http.StatusCreated, CreatePackResponse{Success: true, ID: id})
}

// StatusResponse is the generic success body for update and delete.
type StatusResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleUpdatePack(c echo.Context) error {
	var patch packsvc.Patch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err := s.packs.Update(c.Request().Context(), c.Param("id"), patch)
	if errors.Is(err, packsvc.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "pack not found")
	}
	if err != nil {
		s.logger.Error("updating pack failed", zap.String("id", c.Param("id")), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update pack")
	}
	return c.JSON(http.StatusOK, StatusResponse{Success: true})
}

func (s *Server) handleDeletePack(c echo.Context) error {
	err := s.packs.Delete(c.Request().Context(), c.Param("id"))
	if errors.Is(err, packsvc.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "pack not found")
	}
	if err != nil {
		s.logger.Error("deleting pack failed", zap.String("id", c.Param("id")), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete pack")
	}
	return c.JSON(http.StatusOK, StatusResponse{Success: true})
}

func (s *Server) handleSeed(c echo.Context) error {
	result, err := s.packs.Seed(c.Request().Context())
	if err != nil {
		s.logger.Error("seeding failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "seeding failed")
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleReseed(c echo.Context) error {
	result, err := s.packs.ForceReseed(c.Request().Context())
	if err != nil {
		s.logger.Error("force reseed failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "force reseed failed")
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleDebugCategories(c echo.Context) error {
	debug, err := s.packs.CategoryCounts(c.Request().Context())
	if err != nil {
		s.logger.Error("category debug failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute category counts")
	}
	return c.JSON(http.StatusOK, debug)
}

// Handler exposes the root handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/factbase/factbase/internal/database"
	"github.com/factbase/factbase/internal/search"
)

// Controller wires the read API handlers to storage and search.
type Controller struct {
	store  *database.Store
	engine *search.Engine
	logger *slog.Logger
}

// NewController creates a Controller over the given store.
func NewController(store *database.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:  store,
		engine: search.New(store.DB()),
		logger: logger,
	}
}

// Register attaches all routes to the echo instance.
func (c *Controller) Register(e *echo.Echo) {
	e.GET("/health", c.Health)
	e.GET("/api/transcripts", c.ListTranscripts)
	e.GET("/api/transcript/:id", c.GetTranscript)
	e.GET("/api/search", c.Search)
	e.GET("/api/speakers", c.ListSpeakers)
}

// Server runs the read API over HTTP.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

// New builds a Server listening on host:port.
func New(store *database.Store, host string, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	NewController(store, logger).Register(e)

	return &Server{
		echo:   e,
		addr:   fmt.Sprintf("%s:%d", host, port),
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown or a listener failure.
func (s *Server) Start() error {
	s.logger.Info("read API listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// Health reports liveness and the stored transcript count.
func (c *Controller) Health(ec echo.Context) error {
	count, err := c.store.CountTranscripts(ec.Request().Context())
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, errorBody{Error: "storage unavailable"})
	}
	return ec.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"transcripts": count,
	})
}

// ListTranscripts returns a page of transcript summaries.
func (c *Controller) ListTranscripts(ec echo.Context) error {
	page := intParam(ec, "page", 1)
	perPage := intParam(ec, "page_size", search.DefaultPerPage)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = search.DefaultPerPage
	}
	if perPage > search.MaxPerPage {
		perPage = search.MaxPerPage
	}

	items, total, err := c.store.ListTranscripts(ec.Request().Context(), perPage, (page-1)*perPage)
	if err != nil {
		c.logger.Error("list transcripts failed", "error", err)
		return ec.JSON(http.StatusInternalServerError, errorBody{Error: "storage failure"})
	}

	return ec.JSON(http.StatusOK, map[string]interface{}{
		"total":     total,
		"page":      page,
		"page_size": perPage,
		"items":     items,
	})
}

// GetTranscript returns one transcript with its segments and speaker
// aggregates. An id ending in ".txt" renders the plain-text transcript
// instead of JSON. Unknown ids produce a 404 JSON body.
func (c *Controller) GetTranscript(ec echo.Context) error {
	id := ec.Param("id")
	asText := strings.HasSuffix(id, ".txt")
	if asText {
		id = strings.TrimSuffix(id, ".txt")
	}

	tr, err := c.store.GetTranscript(ec.Request().Context(), id)
	if err != nil {
		c.logger.Error("get transcript failed", "id", id, "error", err)
		return ec.JSON(http.StatusInternalServerError, errorBody{Error: "storage failure"})
	}
	if tr == nil {
		return ec.JSON(http.StatusNotFound, errorBody{Error: "transcript not found"})
	}

	if asText {
		return ec.String(http.StatusOK, tr.RenderText())
	}
	return ec.JSON(http.StatusOK, tr)
}

// Search runs a full-text query with filters.
func (c *Controller) Search(ec echo.Context) error {
	req := search.Request{
		Query:       ec.QueryParam("q"),
		DateFrom:    ec.QueryParam("date_from"),
		DateTo:      ec.QueryParam("date_to"),
		Topic:       ec.QueryParam("topic"),
		Entity:      ec.QueryParam("entity"),
		MinDuration: intParam(ec, "min_duration", 0),
		Sort:        ec.QueryParam("sort"),
		Page:        intParam(ec, "page", 1),
		PerPage:     intParam(ec, "page_size", search.DefaultPerPage),
	}
	if speakers := ec.QueryParam("speakers"); speakers != "" {
		req.Speakers = strings.Split(speakers, ",")
	}

	resp, err := c.engine.Search(ec.Request().Context(), req)
	if err != nil {
		if errors.Is(err, search.ErrBadQuery) {
			return ec.JSON(http.StatusBadRequest, errorBody{Error: "unparsable query"})
		}
		c.logger.Error("search failed", "query", req.Query, "error", err)
		return ec.JSON(http.StatusInternalServerError, errorBody{Error: "search failure"})
	}
	return ec.JSON(http.StatusOK, resp)
}

// ListSpeakers returns corpus-wide speaker totals.
func (c *Controller) ListSpeakers(ec echo.Context) error {
	totals, err := c.store.ListSpeakers(ec.Request().Context())
	if err != nil {
		c.logger.Error("list speakers failed", "error", err)
		return ec.JSON(http.StatusInternalServerError, errorBody{Error: "storage failure"})
	}
	return ec.JSON(http.StatusOK, map[string]interface{}{
		"speakers": totals,
	})
}

// intParam reads an integer query parameter with a default.
func intParam(ec echo.Context, name string, def int) int {
	raw := ec.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// Package nsstub is an in-memory Nightscout v3 API used by tests.
package nsstub

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

const (
	AccessToken = "stub-access-token"
	JWT         = "stub-jwt"
)

type Handler struct {
	storage *Storage

	mu        sync.Mutex
	failures  []int
	authCalls atomic.Int64
	calls     atomic.Int64
}

func NewHandler(storage *Storage) *Handler {
	return &Handler{storage: storage}
}

// FailNext makes the next len(statuses) API calls answer with the given statuses.
func (h *Handler) FailNext(statuses ...int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = append(h.failures, statuses...)
}

func (h *Handler) AuthCalls() int {
	return int(h.authCalls.Load())
}

// Calls counts requests to the v3 endpoints, failed ones included.
func (h *Handler) Calls() int {
	return int(h.calls.Load())
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/api/v2/authorization/request/:token", h.HandleAuthorize)

	v3 := r.Group("/api/v3", h.requireJWT)
	v3.GET("/profile", h.HandleGetProfiles)
	v3.GET("/treatments", h.HandleGetTreatments)
	v3.GET("/entries", h.HandleGetEntries)
}

// GET /api/v2/authorization/request/:token
func (h *Handler) HandleAuthorize(c *gin.Context) {
	h.authCalls.Add(1)

	if c.Param("token") != AccessToken {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "message": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": JWT,
		"sub":   "stub",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(8 * time.Hour).Unix(),
	})
}

func (h *Handler) requireJWT(c *gin.Context) {
	h.calls.Add(1)

	h.mu.Lock()
	if len(h.failures) > 0 {
		status := h.failures[0]
		h.failures = h.failures[1:]
		h.mu.Unlock()
		c.AbortWithStatusJSON(status, gin.H{"status": status})
		return
	}
	h.mu.Unlock()

	if c.GetHeader("Authorization") != "Bearer "+JWT {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized})
		return
	}
	c.Next()
}

// GET /api/v3/profile?sort$desc=date&limit=1
func (h *Handler) HandleGetProfiles(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	profiles := h.storage.LatestProfiles(limit)

	slog.Debug("get profiles", slog.Int("count", len(profiles)))

	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "result": profiles})
}

// GET /api/v3/treatments?date$gte=...&date$lt=...&sort=date&limit=...
func (h *Handler) HandleGetTreatments(c *gin.Context) {
	h.handleDateRange(c, "treatments", h.storage.TreatmentsInRange)
}

// GET /api/v3/entries?date$gte=...&date$lt=...&sort=date&limit=...
func (h *Handler) HandleGetEntries(c *gin.Context) {
	h.handleDateRange(c, "entries", h.storage.EntriesInRange)
}

func (h *Handler) handleDateRange(c *gin.Context, name string, query func(from, to int64, limit int) []json.RawMessage) {
	from := int64(queryInt(c, "date$gte", 0))
	to := int64(queryInt(c, "date$lt", math.MaxInt))
	limit := queryInt(c, "limit", 100)

	if sort := c.Query("sort"); sort != "" && !strings.EqualFold(sort, "date") {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": "unsupported sort"})
		return
	}

	records := query(from, to, limit)

	slog.Debug("get "+name,
		slog.Int64("from", from),
		slog.Int64("to", to),
		slog.Int("count", len(records)),
	)

	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "result": records})
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// Server is a running stub with its storage and handler exposed for seeding
// and fault injection.
type Server struct {
	URL     string
	Storage *Storage
	Handler *Handler
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage := NewStorage()
	handler := NewHandler(storage)

	r := gin.New()
	handler.Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &Server{URL: srv.URL, Storage: storage, Handler: handler}
}

// Seed adds a profile and treatments to the stub.
func (s *Server) Seed(profile domain.Profile, treatments ...domain.Treatment) {
	s.Storage.AddProfiles(profile)
	s.Storage.AddTreatments(treatments...)
}

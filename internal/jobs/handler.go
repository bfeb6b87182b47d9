package jobs

// Routes:
//
//	GET    /api/jobs        → list postings (limit, offset, location, job_type, days_ago)
//	POST   /api/jobs/scrape → start a scrape in the background
//	GET    /api/jobs/stats  → aggregate statistics
//	DELETE /api/jobs/{id}   → hard-delete one posting
//	GET    /api/health      → liveness and scheduler state

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// Scheduler is the part of the scrape scheduler the API drives.
type Scheduler interface {
	// Trigger starts a scrape in the background. It returns false when one
	// is already running.
	Trigger() bool
	// Running reports whether the periodic schedule is active.
	Running() bool
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	svc   *Service
	sched Scheduler
	now   func() time.Time
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, sched Scheduler) *Handler {
	return &Handler{svc: svc, sched: sched, now: time.Now}
}

// RegisterRoutes mounts all aggregator routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/jobs", h.handleJobs)
	mux.HandleFunc("/api/jobs/scrape", h.handleScrape)
	mux.HandleFunc("/api/jobs/stats", h.handleStats)
	mux.HandleFunc("/api/jobs/", h.handleJobByID)
	mux.HandleFunc("/api/health", h.handleHealth)
}

// Routes returns the API mounted on a fresh mux, with response compression.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return Compress(mux)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleJobs handles GET /api/jobs
func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	params, err := parseListParams(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// A failed read is logged by the service and served as an empty list.
	views, _ := h.svc.List(r.Context(), params)
	jsonOK(w, views)
}

// handleScrape handles POST /api/jobs/scrape
func (h *Handler) handleScrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	msg := "Job scraping started in background"
	if !h.sched.Trigger() {
		msg = "Job scraping already in progress"
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": msg})
}

// handleStats handles GET /api/jobs/stats
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stats, _ := h.svc.Stats(r.Context())
	jsonOK(w, stats)
}

// handleJobByID handles DELETE /api/jobs/{id}
func (h *Handler) handleJobByID(w http.ResponseWriter, r *http.Request) {
	// Parse /api/jobs/{id}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		jsonError(w, fmt.Sprintf("invalid job id %q", parts[2]), http.StatusBadRequest)
		return
	}

	removed, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	if !removed {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jsonOK(w, map[string]string{"message": "Job deleted successfully"})
}

// handleHealth handles GET /api/health
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	jsonOK(w, map[string]any{
		"status":            "healthy",
		"timestamp":         h.now().UTC().Format(time.RFC3339),
		"scheduler_running": h.sched.Running(),
	})
}

// ─── Query parsing ───────────────────────────────────────────────────────────

func parseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	p := ListParams{
		Limit:    DefaultLimit,
		Location: strings.TrimSpace(q.Get("location")),
		JobType:  strings.TrimSpace(q.Get("job_type")),
		DaysAgo:  DaysAgo(DefaultDaysAgo),
	}

	var err error
	if v := q.Get("limit"); v != "" {
		if p.Limit, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("limit must be an integer")
		}
	}
	if v := q.Get("offset"); v != "" {
		if p.Offset, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("offset must be an integer")
		}
	}
	switch v := q.Get("days_ago"); v {
	case "":
	case "all", "none":
		p.DaysAgo = nil
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, fmt.Errorf("days_ago must be a non-negative integer or \"all\"")
		}
		p.DaysAgo = &n
	}
	return p, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// Compress negotiates brotli or gzip response compression with the client.
func Compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cw := brotli.HTTPCompressor(w, r)
		defer func() {
			if err := cw.Close(); err != nil {
				slog.Warn("http: closing compressor failed", "path", r.URL.Path, "err", err)
			}
		}()
		next.ServeHTTP(&compressedWriter{ResponseWriter: w, body: cw}, r)
	})
}

type compressedWriter struct {
	http.ResponseWriter
	body io.Writer
}

func (c *compressedWriter) Write(p []byte) (int, error) { return c.body.Write(p) }

func jsonOK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/nsac-scraper/internal/model"
	"github.com/nsac-scraper/internal/scheduler"
	"github.com/nsac-scraper/internal/storage"
)

// ScrapeRunner is the part of *scheduler.Runner the API drives.
type ScrapeRunner interface {
	Trigger(triggeredBy string) (*model.Run, error)
	Status() model.StatusReport
	RecentRuns(ctx context.Context, limit int) ([]model.Run, error)
}

// Handler contains all API handlers
type Handler struct {
	history   storage.HistoryStore
	runner    ScrapeRunner
	scheduler *scheduler.Scheduler
	logger    *log.Logger
}

// NewHandler creates a new API handler
func NewHandler(history storage.HistoryStore, runner ScrapeRunner, sched *scheduler.Scheduler, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		history:   history,
		runner:    runner,
		scheduler: sched,
		logger:    logger.WithPrefix("api"),
	}
}

const (
	msgHistoryNotFound = "history not found, run the scraper first"
	msgScraperStarted  = "Scraper started successfully in the background."
	msgAlreadyRunning  = "Scraper is already running."
)

// TriggerResponse acknowledges a scrape request.
type TriggerResponse struct {
	Message string             `json:"message"`
	Status  model.RunnerStatus `json:"status"`
	RunID   string             `json:"run_id,omitempty"`
	Run     *model.Run         `json:"run,omitempty"`
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// readHistory maps store errors to responses; ok is false when a response was already written.
func (h *Handler) readHistory(w http.ResponseWriter, r *http.Request) (model.HistoryLog, bool) {
	history, err := h.history.ReadAll(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrHistoryNotFound) {
			respondError(w, http.StatusNotFound, msgHistoryNotFound)
			return nil, false
		}
		h.logger.Error("failed to read history", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to read history")
		return nil, false
	}
	return history, true
}

// GetHistory godoc
// @Summary Get scrape history
// @Description Every snapshot recorded so far, oldest first
// @Tags History
// @Produce json
// @Success 200 {array} model.Snapshot
// @Failure 404 {object} map[string]string "Scraper has never run"
// @Failure 500 {object} map[string]string "Server error"
// @Router /data [get]
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, ok := h.readHistory(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// GetLatest godoc
// @Summary Get the latest snapshot
// @Description Team counts from the most recent successful scrape
// @Tags History
// @Produce json
// @Success 200 {object} model.Snapshot
// @Failure 404 {object} map[string]string "Scraper has never run"
// @Failure 500 {object} map[string]string "Server error"
// @Router /latest [get]
func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.history.ReadLatest(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrHistoryNotFound) {
			respondError(w, http.StatusNotFound, msgHistoryNotFound)
			return
		}
		h.logger.Error("failed to read latest snapshot", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to read latest snapshot")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// ExportCSV godoc
// @Summary Download history as CSV
// @Description Wide form has one row per snapshot and one column per challenge; long form has one row per challenge per snapshot
// @Tags History
// @Produce text/csv
// @Param format query string false "wide or long" default(wide)
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} map[string]string "Unknown format"
// @Failure 404 {object} map[string]string "No history"
// @Failure 500 {object} map[string]string "Server error"
// @Router /history-to-csv [get]
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatWide
	}
	if format != formatWide && format != formatLong {
		respondError(w, http.StatusBadRequest, "format must be wide or long")
		return
	}

	history, ok := h.readHistory(w, r)
	if !ok {
		return
	}
	if len(history) == 0 {
		respondError(w, http.StatusNotFound, "no data in history to convert")
		return
	}

	var buf bytes.Buffer
	var err error
	if format == formatLong {
		err = writeLongCSV(&buf, history)
	} else {
		err = writeWideCSV(&buf, history)
	}
	if err != nil {
		h.logger.Error("failed to build csv", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to build csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// RunScraper godoc
// @Summary Start a scrape
// @Description Starts a scrape in the background. Only one scrape runs at a time.
// @Tags Scraper
// @Produce json
// @Success 202 {object} TriggerResponse
// @Failure 409 {object} TriggerResponse "A scrape is already running"
// @Failure 500 {object} map[string]string "Scrape could not be started"
// @Router /run-scraper [post]
func (h *Handler) RunScraper(w http.ResponseWriter, r *http.Request) {
	run, err := h.runner.Trigger("api")
	switch {
	case errors.Is(err, scheduler.ErrAlreadyRunning):
		respondJSON(w, http.StatusConflict, newTriggerResponse(msgAlreadyRunning, run))
	case err != nil:
		h.logger.Error("failed to start scraper", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to start scraper: "+err.Error())
	default:
		respondJSON(w, http.StatusAccepted, newTriggerResponse(msgScraperStarted, run))
	}
}

func newTriggerResponse(message string, run *model.Run) TriggerResponse {
	resp := TriggerResponse{Message: message, Status: model.RunnerStatusRunning, Run: run}
	if run != nil {
		resp.RunID = run.ID
	}
	return resp
}

// ScraperStatus godoc
// @Summary Scraper status
// @Description Whether a scrape is running, with the current and last finished run
// @Tags Scraper
// @Produce json
// @Success 200 {object} model.StatusReport
// @Router /scraper-status [get]
func (h *Handler) ScraperStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.runner.Status())
}

// RecentRuns godoc
// @Summary Recent scrape runs
// @Description Most recent runs, newest first
// @Tags Scraper
// @Produce json
// @Param limit query int false "Number of runs to return" default(20)
// @Success 200 {object} map[string]interface{} "Runs list"
// @Failure 500 {object} map[string]string "Server error"
// @Router /runs [get]
func (h *Handler) RecentRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	runs, err := h.runner.RecentRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"limit": limit,
	})
}

// Health godoc
// @Summary Health check
// @Description Check if the API is running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"scraper": h.runner.Status().Status,
	}
	if h.scheduler != nil {
		resp["scheduler"] = h.scheduler.IsRunning()
		if next := h.scheduler.NextRun(); next != nil {
			resp["next_run"] = next
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

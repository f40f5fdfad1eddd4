package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/nsac-scraper/internal/middleware"
)

// NewRouter creates a new HTTP router with all routes
func NewRouter(h *Handler, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	mux.HandleFunc("GET /api/health", h.Health)

	// History
	mux.HandleFunc("GET /api/data", h.GetHistory)
	mux.HandleFunc("GET /api/latest", h.GetLatest)
	mux.HandleFunc("GET /api/history-to-csv", h.ExportCSV)

	// Scraper
	mux.HandleFunc("GET /api/run-scraper", h.RunScraper)
	mux.HandleFunc("POST /api/run-scraper", h.RunScraper)
	mux.HandleFunc("GET /api/scraper-status", h.ScraperStatus)
	mux.HandleFunc("GET /api/runs", h.RecentRuns)

	if logger == nil {
		logger = log.Default()
	}
	return middleware.Chain(mux, logger.WithPrefix("http"))
}

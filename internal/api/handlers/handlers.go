package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dvloznov/sheet-to-bq/internal/api/middleware"
	"github.com/dvloznov/sheet-to-bq/internal/config"
	"github.com/dvloznov/sheet-to-bq/internal/ingest"
	"github.com/dvloznov/sheet-to-bq/internal/logger"
	"github.com/rs/zerolog"
)

// RunFunc performs one ingestion.
type RunFunc func(ctx context.Context) ingest.Result

// RunWithConfig returns a RunFunc bound to cfg.
func RunWithConfig(cfg config.Config) RunFunc {
	return func(ctx context.Context) ingest.Result {
		return ingest.Run(ctx, cfg)
	}
}

// IngestHandler triggers an ingestion on every request.
type IngestHandler struct {
	run RunFunc
	log zerolog.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(run RunFunc, log zerolog.Logger) *IngestHandler {
	return &IngestHandler{run: run, log: log}
}

// ServeHTTP ignores the request body and answers 200 with the status string,
// whether the run succeeded or not.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Value(logger.LoggerKey).(zerolog.Logger); !ok {
		ctx = logger.WithContext(ctx, h.log)
	}

	result := h.run(ctx)
	if !result.OK() {
		log := logger.FromContext(ctx)
		log.Warn().Str("run_id", result.RunID).Msg("Ingestion reported an error")
	}

	middleware.WriteText(w, http.StatusOK, result.Message())
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteText(w, http.StatusOK, "healthy "+time.Now().Format(time.RFC3339))
}

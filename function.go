// Package sheettobq is the Cloud Functions entry point.
//
// Deploy with:
//
//	gcloud functions deploy hello_http --gen2 --runtime=go124 \
//	  --trigger-http --entry-point=hello_http --source=.
package sheettobq

import (
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/dvloznov/sheet-to-bq/internal/api/handlers"
	"github.com/dvloznov/sheet-to-bq/internal/api/middleware"
	"github.com/dvloznov/sheet-to-bq/internal/config"
	"github.com/dvloznov/sheet-to-bq/internal/ingest"
	"github.com/dvloznov/sheet-to-bq/internal/logger"
)

// EntryPoint is the registered function name, kept from the first deployment.
const EntryPoint = "hello_http"

var handler http.Handler

func init() {
	handler = newHandler()
	functions.HTTP(EntryPoint, HelloHTTP)
}

// HelloHTTP loads the first sheet row into BigQuery and writes the status string.
func HelloHTTP(w http.ResponseWriter, r *http.Request) {
	handler.ServeHTTP(w, r)
}

// newHandler builds the request handler from the environment. A bad
// configuration is reported to every caller as an error status.
func newHandler() http.Handler {
	cfg, err := config.Load()
	if err != nil {
		log := logger.NewWithOptions("info", logger.FormatJSON)
		log.Error().Err(err).Msg("Invalid configuration")
		msg := ingest.ErrorPrefix + err.Error()
		return middleware.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middleware.WriteText(w, http.StatusOK, msg)
		}), log)
	}

	log := logger.NewWithOptions(cfg.LogLevel, cfg.LogFormat)
	return middleware.Chain(handlers.NewIngestHandler(handlers.RunWithConfig(cfg), log), log)
}

package extractsvc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phanxgames/peel"
)

// MaxImageBytes caps the request body accepted by the handler.
const MaxImageBytes = 32 << 20

// NewHandler serves ex over HTTP:
//
//	POST /extract   raw image bytes in, ExtractResponse JSON out
//	GET  /healthz   liveness
func NewHandler(ex peel.Extractor, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	r.Post("/extract", func(w http.ResponseWriter, req *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, MaxImageBytes))
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(data) == 0 {
			http.Error(w, "empty image", http.StatusBadRequest)
			return
		}

		resp, err := ex.Extract(req.Context(), data)
		if err != nil {
			logger.Warn("extract failed", "request_id", middleware.GetReqID(req.Context()), "err", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		logger.Info("extract", "request_id", middleware.GetReqID(req.Context()),
			"bytes", len(data), "elements", len(resp.Elements))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("encode response", "err", err)
		}
	})
	return r
}

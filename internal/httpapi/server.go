package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"surrogated/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Predict(ctx context.Context, payload map[string]any) (types.PredictResponse, error)
	Sweep(ctx context.Context, req types.SweepRequest) (types.SweepResponse, error)
	ListConfigurations() []types.ConfigurationStatus
	Status() types.StatusResponse
	Ready() bool
}

const msgInvalidJSON = "Invalid JSON body"

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Log-Level", "X-Request-Id"},
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/predict", inflight("/predict", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)
		payload, ok := decodeObject(w, r)
		if !ok {
			logEnd(r, lvl, "predict end", http.StatusBadRequest, start, nil)
			return
		}
		ctx, cancel := requestContext(r.Context())
		defer cancel()
		resp, err := svc.Predict(ctx, payload)
		if r.Context().Err() != nil {
			return
		}
		if shuttingDown() {
			writeJSONError(w, http.StatusServiceUnavailable, "server shutting down")
			return
		}
		if err != nil {
			status := statusFor(err)
			incRejected(rejectReason(status))
			writeJSONError(w, status, err.Error())
			logEnd(r, lvl, "predict end", status, start, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		logEnd(r, lvl, "predict end", http.StatusOK, start, nil)
	}))

	r.Post("/sweep", inflight("/sweep", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)
		if !jsonContentType(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.SweepRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			incRejected("invalid_json")
			writeJSONError(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}
		ctx, cancel := requestContext(r.Context())
		defer cancel()
		resp, err := svc.Sweep(ctx, req)
		if r.Context().Err() != nil {
			return
		}
		if err != nil {
			status := statusFor(err)
			if ctx.Err() != nil {
				status = http.StatusServiceUnavailable
			}
			writeJSONError(w, status, err.Error())
			logEnd(r, lvl, "sweep end", status, start, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		logEnd(r, lvl, "sweep end", http.StatusOK, start, nil)
	}))

	r.Get("/configurations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ConfigurationsResponse{Configurations: svc.ListConfigurations()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("no models loaded"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	if staticDir != "" {
		r.NotFound(spaHandler(staticDir))
	}
	return r
}

// jsonContentType rejects bodies declared as something other than JSON.
// A missing Content-Type is accepted, since the browser frontend and curl
// users often omit it.
func jsonContentType(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return true
	}
	incRejected("content_type")
	writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
	return false
}

// decodeObject reads a JSON object body. On failure it writes the error
// response and returns false.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	if !jsonContentType(w, r) {
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		incRejected("invalid_json")
		writeJSONError(w, http.StatusBadRequest, msgInvalidJSON)
		return nil, false
	}
	return payload, true
}

func rejectReason(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_inputs"
	case http.StatusServiceUnavailable:
		return "emissions_unavailable"
	default:
		return "internal"
	}
}

// spaHandler serves files from dir and falls back to index.html for any
// path that is not a file, so client-side routes resolve.
func spaHandler(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		p := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		if _, err := os.Stat(index); err != nil {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		http.ServeFile(w, r, index)
	}
}

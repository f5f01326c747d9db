package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kindredlab/kintree/pkg/cache"
	"github.com/kindredlab/kintree/pkg/chart"
	kerrors "github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/gen"
	"github.com/kindredlab/kintree/pkg/pipeline"
)

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		redisURL string
		stores   storeFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [people.json]",
		Short: "Serve the chart pipeline over HTTP",
		Long: `Serve the chart pipeline over HTTP.

The serve command loads a relationship store (a people file or a MongoDB
collection) and exposes the pipeline as a small JSON API:

  POST /api/v1/charts       run the pipeline, body is the pipeline options
  GET  /api/v1/people/{id}  look up a person in the store
  GET  /healthz             liveness probe

Layouts are cached per graph hash and options, so repeated chart requests
for unchanged data are served from the cache.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peopleFile := ""
			if len(args) > 0 {
				peopleFile = args[0]
			}
			return c.runServe(cmd.Context(), peopleFile, stores, addr, redisURL, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "use a redis cache instead of the file cache")
	stores.register(cmd)

	return cmd
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, peopleFile string, stores storeFlags, addr, redisURL string, noCache bool) error {
	store, closeStore, err := stores.open(ctx, peopleFile)
	if err != nil {
		return err
	}
	defer closeStore()

	var cch cache.Cache
	switch {
	case noCache:
		cch = cache.NewNullCache()
	case redisURL != "":
		cch, err = cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
	default:
		cch, err = newCache(false)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}

	runner := pipeline.NewRunner(store, cch, nil, c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           c.routes(runner, store),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// routes builds the router with middleware and API handlers.
func (c *CLI) routes(runner *pipeline.Runner, store gen.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(c.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/charts", c.handleChart(runner))
		r.Get("/people/{id}", c.handlePerson(store))
	})

	return r
}

// chartResponse is the body of a successful chart request.
type chartResponse struct {
	GraphHash string       `json:"graph_hash"`
	Layout    chart.Layout `json:"layout"`
	Stats     statsBody    `json:"stats"`
}

type statsBody struct {
	People     int    `json:"people"`
	Edges      int    `json:"edges"`
	Rebuilds   int    `json:"rebuilds,omitempty"`
	BuildTime  string `json:"build_time"`
	LayoutTime string `json:"layout_time"`
	BuildHit   bool   `json:"build_cache_hit"`
	LayoutHit  bool   `json:"layout_cache_hit"`
}

// handleChart runs the full pipeline for the posted options.
func (c *CLI) handleChart(runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts pipeline.Options
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeError(w, kerrors.New(kerrors.ErrCodeInvalidInput, "decode request: %v", err))
			return
		}
		opts.Logger = loggerFromContext(r.Context())

		res, err := runner.Execute(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, chartResponse{
			GraphHash: res.GraphHash,
			Layout:    res.Layout,
			Stats: statsBody{
				People:     res.Stats.NodeCount,
				Edges:      res.Stats.EdgeCount,
				Rebuilds:   res.Stats.Rebuilds,
				BuildTime:  res.Stats.BuildTime.String(),
				LayoutTime: res.Stats.LayoutTime.String(),
				BuildHit:   res.CacheInfo.BuildHit,
				LayoutHit:  res.CacheInfo.LayoutHit,
			},
		})
	}
}

// handlePerson looks up a single person in the store.
func (c *CLI) handlePerson(store gen.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := store.PersonByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if p == nil {
			writeError(w, kerrors.New(kerrors.ErrCodePersonNotFound, "person %q not in store", id))
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// =============================================================================
// Middleware
// =============================================================================

// requestIDHeader carries the per-request id in responses.
const requestIDHeader = "X-Request-Id"

// requestID assigns each request a UUID, echoed in the response header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// requestIDKey is the context key for the request id.
const requestIDKey ctxKey = 1

// logRequests logs one line per request with a request-scoped logger in the
// context, so pipeline log output carries the request id.
func (c *CLI) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(requestIDKey).(string)
		reqLogger := c.Logger.With("request_id", id)
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), reqLogger)))

		reqLogger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// =============================================================================
// Responses
// =============================================================================

// errorBody is the JSON shape of error responses.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an engine error to an HTTP status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	code := kerrors.GetCode(err)
	writeJSON(w, statusFor(code), errorBody{Code: string(code), Message: err.Error()})
}

// statusFor maps engine error codes onto HTTP statuses.
func statusFor(code kerrors.Code) int {
	switch code {
	case kerrors.ErrCodeInvalidInput, kerrors.ErrCodeInvalidChart,
		kerrors.ErrCodeInvalidPage, kerrors.ErrCodeUnsupportedConfiguration:
		return http.StatusBadRequest
	case kerrors.ErrCodeNotFound, kerrors.ErrCodePersonNotFound, kerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

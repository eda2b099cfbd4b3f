package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/services"
)

// serveCommand creates the serve command exposing the gallery over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the gallery over HTTP",
		Long: `Expose the gallery over HTTP.

Endpoints:

  GET /api/search?q=<query>&size=&from=&sort=&exact=
  GET /api/packages/<name>?version=
  GET /api/packages/<name>/versions
  GET /api/sources
  GET /api/project

Package names may contain slashes (npm scopes, Go module paths); the
path after /api/packages/ is taken verbatim. Source pinning via
--source and project override via --project apply to every request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8477", "listen address")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, addr string) error {
	container, err := c.newContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(container, c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-cmd.Context().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	c.Logger.Infof("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newRouter builds the chi router over the service container.
func newRouter(container *services.Container, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", handleSearch(container))
		r.Get("/sources", handleSources(container))
		r.Get("/project", handleProject(container))
		r.Get("/packages/*", handlePackage(container))
	})

	return r
}

// requestLogger assigns each request an ID and logs method, path, and
// duration.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			start := time.Now()
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger.With("request_id", id))))
			logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).Round(time.Millisecond))
		})
	}
}

func handleSearch(container *services.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := gallery.SearchOptions{
			Query:  q.Get("q"),
			SortBy: q.Get("sort"),
		}
		opts.Size, _ = strconv.Atoi(q.Get("size"))
		opts.From, _ = strconv.Atoi(q.Get("from"))
		if q.Get("exact") == "true" {
			opts.ExactName = opts.Query
		}

		res, err := container.Search().Search(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handlePackage(container *services.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tail := chi.URLParam(r, "*")

		// A trailing /versions segment selects the version listing;
		// everything before it is the package name, slashes included.
		if name, ok := strings.CutSuffix(tail, "/versions"); ok {
			versions, err := container.Packages().Versions(r.Context(), name)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"name": name, "versions": versions})
			return
		}

		details, err := container.Packages().Details(r.Context(), tail, r.URL.Query().Get("version"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

func handleSources(container *services.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, container.AvailableSources())
	}
}

func handleProject(container *services.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, err := container.CurrentSourceType()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"project":  container.CurrentProjectType(),
			"source":   source,
			"detected": container.DetectedProjects(),
		})
	}
}

// apiError is the JSON error envelope.
type apiError struct {
	Code    pkgerrors.Code `json:"code"`
	Message string         `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := pkgerrors.GetCode(err)
	writeJSON(w, statusFromCode(code), apiError{Code: code, Message: pkgerrors.UserMessage(err)})
}

// statusFromCode maps the error taxonomy onto HTTP status codes.
func statusFromCode(code pkgerrors.Code) int {
	switch code {
	case pkgerrors.ErrCodeInvalidInput, pkgerrors.ErrCodeInvalidPackage,
		pkgerrors.ErrCodeInvalidSource, pkgerrors.ErrCodeInvalidProject:
		return http.StatusBadRequest
	case pkgerrors.ErrCodeNotFound, pkgerrors.ErrCodePackageNotFound, pkgerrors.ErrCodeVersionNotFound:
		return http.StatusNotFound
	case pkgerrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case pkgerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case pkgerrors.ErrCodeNetwork, pkgerrors.ErrCodeAllSourcesFailed:
		return http.StatusBadGateway
	case pkgerrors.ErrCodeCapabilityMissing, pkgerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, `{"code":"INTERNAL_ERROR","message":"encode response"}`)
	}
}

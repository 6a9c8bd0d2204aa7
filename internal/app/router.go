package app

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/recicla-soft/recicla/internal/assistant"
	"github.com/recicla-soft/recicla/internal/auth"
	"github.com/recicla-soft/recicla/internal/catalog"
	"github.com/recicla-soft/recicla/internal/ledger"
	"github.com/recicla-soft/recicla/internal/report"
	"github.com/recicla-soft/recicla/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	TokenStore       *auth.TokenStore
	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	LedgerHandler    *ledger.Handler
	ReportHandler    *report.Handler
	AssistantHandler *assistant.Handler
}

// NewRouter constructs the chi.Router serving the JSON API and the static
// frontend.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAccount(params.TokenStore))

			r.Route("/materials", params.CatalogHandler.MountRoutes)
			r.Route("/transactions", params.LedgerHandler.MountRoutes)
			params.ReportHandler.MountRoutes(r)
			r.Route("/assistant", params.AssistantHandler.MountRoutes)
		})
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			f, err := staticFS.Open("index.html")
			if err != nil {
				http.NotFound(w, req)
				return
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			var modtime time.Time
			if info, err := f.Stat(); err == nil {
				modtime = info.ModTime()
			}
			http.ServeContent(w, req, "index.html", modtime, bytes.NewReader(data))
		})
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

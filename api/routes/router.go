package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/wishboard-backend/api/controllers"
	"github.com/angelmondragon/wishboard-backend/api/middleware"
	"github.com/angelmondragon/wishboard-backend/internal/auth"
	"github.com/angelmondragon/wishboard-backend/internal/uploads"
	"github.com/angelmondragon/wishboard-backend/internal/users"
	"github.com/angelmondragon/wishboard-backend/internal/wishboards"
	"github.com/angelmondragon/wishboard-backend/pkg/auth/session"
	"github.com/angelmondragon/wishboard-backend/pkg/config"
	"github.com/angelmondragon/wishboard-backend/pkg/logger"
	"github.com/angelmondragon/wishboard-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// cacheStore is the redis surface shared by idempotency and rate limiting.
type cacheStore interface {
	redis.IdempotencyStore
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(parts ...string) string
}

type requestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Params bundles everything the router needs. Nil collaborators degrade the
// matching endpoints to 500 rather than panicking.
type Params struct {
	Config        *config.Config
	Logger        *logger.Logger
	Readiness     map[string]controllers.Pinger
	Cache         cacheStore
	Sessions      sessionManager
	Metrics       requestObserver
	Gatherer      prometheus.Gatherer
	AuthService   auth.Service
	UsersService  users.Service
	UploadService uploads.Service
	BoardsService wishboards.Service
	UploadDir     string
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	signInPolicy := middleware.NewRateLimitPolicy(
		"signin",
		cfg.RateLimit.SignInWindow,
		cfg.RateLimit.SignInIPLimit,
		0,
	)
	uploadPolicy := middleware.NewRateLimitPolicy(
		"upload",
		cfg.RateLimit.UploadWindow,
		0,
		cfg.RateLimit.UploadUserLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, p.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, p.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Readiness, logg))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	if p.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", staticFiles(p.UploadDir)))
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(signInPolicy, p.Cache, logg)).Post("/google", controllers.AuthGoogle(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Sessions, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(p.Sessions, cfg.JWT, logg))
		r.With(requireAuth).Get("/me", controllers.AuthMe(p.UsersService, logg))
	})

	r.With(requireAuth, middleware.RateLimit(uploadPolicy, p.Cache, logg)).
		Post("/upload", controllers.Upload(p.UploadService, cfg.Uploads.MaxBytes(), logg))

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.Idempotency(p.Cache, logg))
		r.Get("/wishboards", controllers.WishboardsList(p.BoardsService, logg))
		r.Post("/wishboards", controllers.WishboardsCreate(p.BoardsService, logg))
		r.Patch("/wishboards/{id}", controllers.WishboardsUpdate(p.BoardsService, logg))
		r.Delete("/wishboards/{id}", controllers.WishboardsDelete(p.BoardsService, logg))
	})
	r.With(optionalAuth).Get("/wishboards/{id}", controllers.WishboardsGet(p.BoardsService, logg))

	return r
}

// staticFiles serves uploaded files without directory listings or dotfiles.
func staticFiles(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if name == "" || strings.HasSuffix(name, "/") || strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

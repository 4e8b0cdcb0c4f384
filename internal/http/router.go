package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fitstack/fitlog/internal/cache"
	"github.com/fitstack/fitlog/internal/config"
	"github.com/fitstack/fitlog/internal/http/handlers"
	"github.com/fitstack/fitlog/internal/http/middlewares"
	"github.com/fitstack/fitlog/internal/observability"
	"github.com/fitstack/fitlog/internal/repo/memory"
	"github.com/fitstack/fitlog/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

type Deps struct {
	Log     *slog.Logger
	Pool    *pgxpool.Pool // nil means in-memory storage
	Prom    *observability.Prom
	Metrics http.Handler
	Cache   cache.Store
	Cfg     config.Config
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("fitlog"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	if d.Cfg.RateLimitRPS > 0 {
		limiter := middlewares.NewRateLimiter(rate.Limit(d.Cfg.RateLimitRPS), d.Cfg.RateLimitBurst)
		r.Use(limiter.Middleware())
	}

	// health
	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	// wire up repositories; the store is chosen once at startup
	var usersRepo interface {
		handlers.UsersDirectory
		handlers.ExerciseStore
	}

	if d.Pool != nil {
		usersRepo = postgres.NewUsersRepo(d.Pool, d.Prom)
	} else {
		usersRepo = memory.NewUsersRepo()
	}

	usersHandler := handlers.NewUsersHandlerWithCache(usersRepo, d.Cache, d.Cfg.CacheTTL)
	exercisesHandler := handlers.NewExercisesHandlerWithCache(usersRepo, d.Cache)

	api := r.Group("/api/exercise")
	api.POST("/new-user", usersHandler.CreateUser)
	api.GET("/users", usersHandler.ListUsers)
	api.POST("/add", exercisesHandler.AddExercise)
	api.GET("/log", exercisesHandler.GetLog)

	// bundled front end
	r.StaticFile("/", d.Cfg.IndexFile)
	r.Static("/public", d.Cfg.StaticDir)

	return r
}

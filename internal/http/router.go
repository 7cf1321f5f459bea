package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/bkbadhon/elearning/internal/cache"
	"github.com/bkbadhon/elearning/internal/config"
	"github.com/bkbadhon/elearning/internal/http/handlers"
	"github.com/bkbadhon/elearning/internal/http/middlewares"
	"github.com/bkbadhon/elearning/internal/observability"
	"github.com/bkbadhon/elearning/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(
	log *slog.Logger,
	pool *pgxpool.Pool,
	cfg config.Config,
	prom *observability.Prom,
	promRegistry *prometheus.Registry,
	courseCache *cache.CoursesCache,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware("elearning-api"))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if promRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	coursesRepo := postgres.NewCoursesRepo(pool, prom)
	enrollmentsRepo := postgres.NewEnrollmentsRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)

	// wire up handlers
	usersHandler := handlers.NewUsersHandler(usersRepo)
	coursesHandler := handlers.NewCoursesHandler(coursesRepo, courseCache)
	enrollmentsHandler := handlers.NewEnrollmentsHandler(enrollmentsRepo, jobsRepo)

	// the unauthenticated write endpoints get a per-IP limiter
	authLimiter := middlewares.NewRateLimiter(10, time.Minute)

	r.GET("/", handlers.Root)

	r.POST("/register", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), usersHandler.Register)
	r.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), usersHandler.Login)

	r.GET("/courses", coursesHandler.List)

	r.POST("/enroll", enrollmentsHandler.Enroll)
	r.GET("/enrollments", enrollmentsHandler.ListForUser)

	return r
}

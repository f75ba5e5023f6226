package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"pomodoro/internal/api/handlers"
	"pomodoro/internal/api/middleware"
	"pomodoro/internal/api/respond"
	"pomodoro/internal/apperror"
	"pomodoro/internal/metrics"
	"pomodoro/internal/services/auth"
	"pomodoro/pkg/config"
	"pomodoro/pkg/logger"

	gh "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(fx.Invoke(Init))

type Params struct {
	fx.In
	Lifecycle   fx.Lifecycle
	Configs     config.Configs
	Logger      logger.Logger
	Metrics     metrics.Metrics
	Handlers    handlers.Handlers
	AuthService auth.Service
	Redis       *redis.Client
}

// Router holds what NewRouter needs. Limiter may be nil to serve without rate
// limiting.
type Router struct {
	Handlers       handlers.Handlers
	AuthService    auth.Service
	Logger         *zap.Logger
	Metrics        metrics.Metrics
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
}

func NewRouter(rt Router) http.Handler {
	h := rt.Handlers

	observe := middleware.Observe(rt.Logger, rt.Metrics)
	// mux skips r.Use middleware when no route matches, so the fallback
	// handlers get the same chain applied directly.
	chain := func(next http.Handler) http.Handler {
		if rt.Limiter != nil {
			next = rt.Limiter.Middleware()(next)
		}
		return observe(next)
	}

	r := mux.NewRouter()
	r.NotFoundHandler = chain(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respond.Error(w, req, rt.Logger, apperror.New(http.StatusNotFound, apperror.CodeNotFound, "Not found"))
	}))
	r.MethodNotAllowedHandler = chain(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respond.Error(w, req, rt.Logger, apperror.New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"))
	}))

	r.Use(observe)
	if rt.Limiter != nil {
		r.Use(rt.Limiter.Middleware())
	}

	r.HandleFunc("/", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", rt.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/openapi.json", h.OpenAPI).Methods(http.MethodGet)
	r.HandleFunc("/docs", h.SwaggerUI).Methods(http.MethodGet)
	r.HandleFunc("/redoc", h.ReDoc).Methods(http.MethodGet)

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	authRouter.HandleFunc("/login/access-token", h.RefreshAccessToken).Methods(http.MethodPost)
	authRouter.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Authenticate(rt.AuthService, rt.Logger))

	api.HandleFunc("/user", h.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/user", h.UpdateUser).Methods(http.MethodPut)
	api.HandleFunc("/user", h.DeleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/tasks", h.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", h.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", h.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", h.DeleteTask).Methods(http.MethodDelete)

	api.HandleFunc("/pomodoro", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/pomodoro/today", h.TodaySession).Methods(http.MethodGet)
	api.HandleFunc("/pomodoro/round/{id}", h.UpdateRound).Methods(http.MethodPut)
	api.HandleFunc("/pomodoro/session/{id}", h.UpdateSession).Methods(http.MethodPut)
	api.HandleFunc("/pomodoro/session/{id}", h.DeleteSession).Methods(http.MethodDelete)

	api.HandleFunc("/time-blocks", h.ListTimeBlocks).Methods(http.MethodGet)
	api.HandleFunc("/time-blocks", h.CreateTimeBlock).Methods(http.MethodPost)
	// registered before {id} so the literal segment wins
	api.HandleFunc("/time-blocks/update-order", h.UpdateTimeBlockOrder).Methods(http.MethodPut)
	api.HandleFunc("/time-blocks/{id}", h.UpdateTimeBlock).Methods(http.MethodPut)
	api.HandleFunc("/time-blocks/{id}", h.DeleteTimeBlock).Methods(http.MethodDelete)

	api.HandleFunc("/ws", h.HandleWebsocket).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests are answered before route
	// matching rejects the OPTIONS method.
	var handler http.Handler = r
	handler = gh.CORS(corsOptions(rt.AllowedOrigins)...)(handler)
	handler = gh.ProxyHeaders(handler)
	handler = middleware.Recover(rt.Logger)(handler)

	return handler
}

func corsOptions(origins []string) []gh.CORSOption {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	opts := []gh.CORSOption{
		gh.AllowedOrigins(origins),
		gh.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gh.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gh.ExposedHeaders([]string{"Retry-After"}),
	}
	// credentialed requests need an explicit origin list
	if origins[0] != "*" {
		opts = append(opts, gh.AllowCredentials())
	}

	return opts
}

func Init(p Params) {
	cfg := p.Configs.Peek()

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(p.Redis, cfg.RateLimit.Limit, cfg.RateLimit.Window,
			p.Logger, p.Metrics, "/", "/metrics")
	}

	server := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: NewRouter(Router{
			Handlers:       p.Handlers,
			AuthService:    p.AuthService,
			Logger:         p.Logger,
			Metrics:        p.Metrics,
			Limiter:        limiter,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		ErrorLog:     zap.NewStdLog(p.Logger.Named("http")),
	}

	p.Lifecycle.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", server.Addr)
				if err != nil {
					return err
				}

				p.Logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
				go func() {
					if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						p.Logger.Error("http server stopped", zap.Error(err))
					}
				}()

				return nil
			},
			OnStop: func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
				defer cancel()

				return server.Shutdown(ctx)
			},
		},
	)
}

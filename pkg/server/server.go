package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	authhandlers "github.com/de-tools/revenuecast/pkg/handlers/auth"
	"github.com/de-tools/revenuecast/pkg/handlers/pages"
	"github.com/de-tools/revenuecast/pkg/handlers/prediction"
	"github.com/de-tools/revenuecast/pkg/handlers/predictions"
	"github.com/de-tools/revenuecast/pkg/metrics"
	revenuecastmiddleware "github.com/de-tools/revenuecast/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router  http.Handler
	logger  *zerolog.Logger
	server  *http.Server
	timeout time.Duration
}

// Authenticator covers every session operation the router needs.
type Authenticator interface {
	revenuecastmiddleware.Authenticator
	authhandlers.Authenticator
}

type Predictor interface {
	prediction.Predictor
	pages.Predictor
}

type History interface {
	predictions.History
}

type Dependencies struct {
	Predictor     Predictor
	History       History
	Exporter      predictions.Exporter
	Authenticator Authenticator
	Metrics       *metrics.Metrics
	SignInLimiter *revenuecastmiddleware.RateLimiter
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	SecureCookies   bool
	Dependencies    Dependencies
}

// ConfigureRouter builds the full route table. It is separate from
// NewWebAPI so tests can drive the router without a listener.
func ConfigureRouter(logger *zerolog.Logger, config Config) (http.Handler, error) {
	deps := config.Dependencies

	pageHandler, err := pages.NewHandler(deps.Predictor, deps.History, deps.Authenticator, config.SecureCookies)
	if err != nil {
		return nil, err
	}
	predictHandler := prediction.NewHandler(deps.Predictor)
	historyHandler := predictions.NewHandler(deps.History)
	if deps.Exporter != nil {
		historyHandler.WithExporter(deps.Exporter)
	}
	authHandler := authhandlers.NewHandler(deps.Authenticator, config.SecureCookies)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(revenuecastmiddleware.Logger(logger))
	router.Use(middleware.Recoverer)
	if len(config.CORSOrigins) > 0 {
		router.Use(cors.Handler(corsOptions(config.CORSOrigins)))
	}
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
	}
	router.Use(revenuecastmiddleware.Authenticate(deps.Authenticator))

	signInLimit := func(next http.Handler) http.Handler { return next }
	if deps.SignInLimiter != nil {
		signInLimit = deps.SignInLimiter.Middleware
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/predict", predictHandler.Describe)
		r.Post("/predict", predictHandler.Predict)
		r.Post("/batch-predict", predictHandler.BatchPredict)
		r.Get("/model-info", predictHandler.ModelInfo)

		r.Get("/predictions", historyHandler.List)
		r.Post("/predictions", historyHandler.Save)
		r.Delete("/predictions", historyHandler.Delete)
		r.Get("/predictions/summary", historyHandler.Summary)
		r.Get("/predictions/export", historyHandler.Download)
		r.Post("/predictions/export", historyHandler.Upload)

		r.With(signInLimit).Post("/auth/signin", authHandler.SignIn)
		r.Post("/auth/signout", authHandler.SignOut)
		r.Get("/auth/session", authHandler.Session)
	})

	router.Get("/health", predictHandler.Health)
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler())
	}

	router.Get("/", pageHandler.Home)
	router.Get("/about", pageHandler.About)
	router.Get("/predict", pageHandler.PredictForm)
	router.Post("/predict", pageHandler.Predict)
	router.Post("/predictions/save", pageHandler.SavePrediction)
	router.Get("/auth/signin", pageHandler.SignInForm)
	router.With(signInLimit).Post("/auth/signin", pageHandler.SignIn)
	router.Post("/auth/signout", pageHandler.SignOut)
	router.Get("/dashboard", pageHandler.Dashboard)
	router.Get("/dashboard/history", pageHandler.History)
	router.Post("/dashboard/history/delete", pageHandler.DeletePrediction)
	router.NotFound(pageHandler.NotFound)

	return router, nil
}

// corsOptions allows credentialed requests only from listed origins. A
// wildcard origin gets bearer-token access without cookies.
func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}
}

func NewWebAPI(logger zerolog.Logger, config Config) (*WebAPI, error) {
	router, err := ConfigureRouter(&logger, config)
	if err != nil {
		return nil, err
	}

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:  router,
		logger:  &logger,
		timeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

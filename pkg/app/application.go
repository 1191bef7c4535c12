package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// Routes is implemented by the bookings and hotels handlers; the health
// handler uses the same shape.
type Routes interface {
	RegisterRoutes(router *httprouter.Router)
}

// Option toggles parts of the application middleware stack.
type Option func(*options)

type options struct {
	rateLimit bool
	jsonBody  bool
}

// WithRateLimit limits requests per caller id.
func WithRateLimit() Option {
	return func(o *options) { o.rateLimit = true }
}

// WithJSONBody requires application/json on requests that carry a body.
func WithJSONBody() Option {
	return func(o *options) { o.jsonBody = true }
}

type worker struct {
	name string
	run  func(ctx context.Context) error
}

type closer struct {
	name  string
	close func() error
}

type Application struct {
	cfg            *config.Config
	server         *http.Server
	rateLimiter    *middleware.RateLimiter
	healthHandler  http.Handler
	appHttpHandler http.Handler
	workers        []worker
	closers        []closer
	wg             sync.WaitGroup
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(appHandler Routes, opts ...Option) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a.setHealthHandler()
	a.setAppHandler(appHandler, o)
	a.setAppServer()
}

// Go registers a background worker started by Run and cancelled on shutdown.
func (a *Application) Go(name string, run func(ctx context.Context) error) {
	a.workers = append(a.workers, worker{name: name, run: run})
}

// OnShutdown registers a resource closed after the HTTP server stopped, in
// reverse registration order.
func (a *Application) OnShutdown(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

// Handler exposes the composed handler, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	var db Pinger
	if a.cfg.Client != nil && a.cfg.Client.Mongo != nil {
		db = a.cfg.Client.Mongo
	}
	NewHealthHandler(db, a.cfg.Log).RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
}

func (a *Application) setAppHandler(appHandler Routes, o *options) {
	appRouter := httprouter.New()
	appRouter.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, apperrors.NotFound("Route not found"))
	})
	appRouter.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, apperrors.New("METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed))
	})
	appHandler.RegisterRoutes(appRouter)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHttpHandler)
	if o.rateLimit {
		a.rateLimiter = middleware.NewRateLimiter(
			a.cfg.RateLimitRequests,
			a.cfg.RateLimitWindow,
			middleware.UserIDExtractor,
			a.cfg.Log,
		)
		appHttpHandler = middleware.RateLimit(a.rateLimiter)(appHttpHandler)
	}
	if o.jsonBody {
		appHttpHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHttpHandler)
	}
	appHttpHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(a.cfg.Log)(appHttpHandler)
	a.appHttpHandler = appHttpHandler

	a.cfg.Log.Info("Application endpoints configured",
		"rate_limit", o.rateLimit,
		"json_body", o.jsonBody,
	)
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	for _, w := range a.workers {
		a.wg.Add(1)
		go func(w worker) {
			defer a.wg.Done()
			a.cfg.Log.Info("Starting background worker", "worker", w.name)
			if err := w.run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.cfg.Log.Error("Background worker stopped", "worker", w.name, "error", err)
			}
		}(w)
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown(stopWorkers)
	}
}

func (a *Application) gracefulShutdown(stopWorkers context.CancelFunc) {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}

	stopWorkers()
	a.wg.Wait()

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.cfg.Log.Error("Failed to close resource", "resource", c.name, "error", err)
		}
	}

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}

package strut

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Config configures New. Controllers is the only required field; everything
// else has a working default.
type Config struct {
	// Router is the engine adapter to bind routes onto. Required; the
	// adapters package provides implementations.
	Router Router

	// Controllers are the controller types to bind, in order, given as
	// pointers (e.g. &UserController{}). A pre-built instance seeds the
	// singleton container.
	Controllers []any

	// PreMiddlewares run before any controller route.
	PreMiddlewares []MiddlewareFunc

	// PostMiddlewares run after controller routing is set up.
	PostMiddlewares []MiddlewareFunc

	// DisableBodyParsing rejects declared body bindings at bind time.
	// Body parsing is on by default.
	DisableBodyParsing bool

	// DisableErrorHandling skips installing the error translator and the
	// not-found terminal handler. Error handling is on by default.
	DisableErrorHandling bool

	// GlobalRoutePrefix mounts all controllers under one shared prefix.
	// A missing leading slash is inserted.
	GlobalRoutePrefix string

	// Registry is the declaration registry to read, DefaultRegistry when nil.
	Registry *Registry

	// Container holds the controller singletons, a fresh one when nil.
	Container *Container

	// Parsers supplies typed path parameter parsers, the default registry
	// when nil.
	Parsers *ParserRegistry

	// Logger receives binder and translator logging, slog.Default when nil.
	Logger *slog.Logger

	// Host and Port form the listen address for Start. Port falls back to
	// the PORT environment variable, then "8080".
	Host string
	Port string

	// ShutdownTimeout bounds graceful shutdown (default: 30s).
	ShutdownTimeout time.Duration
}

func (cfg *Config) withDefaults() {
	if cfg.Port == "" {
		cfg.Port = os.Getenv("PORT")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// App is a bound application: all controllers registered, terminal handlers
// installed, ready to serve.
type App struct {
	router     Router
	binder     *Binder
	translator *Translator
	config     Config
	logger     *slog.Logger
}

// New builds the application in the fixed order: pre-middlewares, controller
// routing, post-middlewares, then error handlers last so they observe every
// prior failure. Configuration problems terminate the process.
func New(cfg Config) *App {
	cfg.withDefaults()

	binder := NewBinder(cfg.Registry, cfg.Container, cfg.Parsers, cfg.Logger)
	binder.disableBody = cfg.DisableBodyParsing
	app := &App{
		router:     cfg.Router,
		binder:     binder,
		translator: NewTranslator(cfg.Logger),
		config:     cfg,
		logger:     cfg.Logger,
	}

	if cfg.Router == nil {
		binder.fatal(&StartupError{Message: "no router configured; pass an adapter from the adapters package"})
		return app
	}
	if len(cfg.Controllers) == 0 {
		binder.fatal(&StartupError{Message: "no controllers configured"})
		return app
	}

	for _, mw := range cfg.PreMiddlewares {
		cfg.Router.Use(mw)
	}

	binder.Bind(cfg.Router, cfg.Controllers, cfg.GlobalRoutePrefix)

	for _, mw := range cfg.PostMiddlewares {
		cfg.Router.Use(mw)
	}

	if !cfg.DisableErrorHandling {
		cfg.Router.OnError(app.translator.Translate)
		cfg.Router.NotFound(app.translator.NotFoundHandler())
	}
	return app
}

// Router returns the underlying router adapter.
func (a *App) Router() Router {
	return a.router
}

// Routes returns every bound route.
func (a *App) Routes() []RouteInfo {
	return a.binder.Routes().All()
}

// Container returns the controller singleton container.
func (a *App) Container() *Container {
	return a.binder.Container()
}

// Translator returns the error translator, for configuring sanitization.
func (a *App) Translator() *Translator {
	return a.translator
}

// Start serves until an interrupt or termination signal arrives, then shuts
// down gracefully within the configured timeout.
func (a *App) Start() error {
	addr := fmt.Sprintf("%s:%s", a.config.Host, a.config.Port)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", addr, "engine", a.router.Name())
		if err := a.router.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	a.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()
	if err := a.router.Stop(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.logger.Info("server shutdown complete")
	return nil
}

// Stop shuts the server down without waiting for a signal.
func (a *App) Stop(ctx context.Context) error {
	return a.router.Stop(ctx)
}

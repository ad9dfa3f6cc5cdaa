package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"wiki_quiz_client/internal/config"
	"wiki_quiz_client/internal/controller"
	"wiki_quiz_client/internal/history"
	"wiki_quiz_client/internal/httpclient"
	"wiki_quiz_client/internal/service"
	"wiki_quiz_client/pkg/configwatcher"
	"wiki_quiz_client/pkg/logger"
	"wiki_quiz_client/pkg/monitoring"
	"wiki_quiz_client/pkg/throttle"
	"wiki_quiz_client/pkg/tracing"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	mu     sync.RWMutex
	config *config.Config

	Client  *httpclient.Client
	Quizzes *service.QuizService
	Browser *history.Browser
	Router  *gin.Engine

	controllers     *controllers
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type controllers struct {
	quiz    *controller.QuizController
	history *controller.HistoryController
	health  *controller.HealthController
}

// RunOptions selects what the console session does.
type RunOptions struct {
	GenerateURL  string
	Force        bool
	History      bool
	QuizID       int64
	Review       bool
	SubmitRemote bool
}

func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	a.configCallbacks = append(a.configCallbacks, callback)
	a.mu.Unlock()
}

// reload swaps in cfg and runs every registered callback with it.
func (a *App) reload(cfg *config.Config) {
	a.mu.Lock()
	a.config = cfg
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

// applyAPIConfig pushes the hot-reloadable backend settings into the client.
// Requests already in flight keep the settings they started with.
func (a *App) applyAPIConfig(cfg *config.Config) {
	a.Client.SetBaseURL(cfg.API.BaseURL)
	a.Client.SetTimeout(cfg.API.Timeout)
	a.Client.SetLimiter(throttle.New(cfg.API.RateLimit.MaxRequests, cfg.API.RateLimit.Window()))
	logger.Log.Info("Backend settings updated",
		zap.String("base_url", cfg.API.BaseURL),
		zap.Duration("timeout", cfg.API.Timeout),
	)
}

func (a *App) initControllers() *controllers {
	quiz := controller.NewQuizController(a.Quizzes)
	return &controllers{
		quiz:    quiz,
		history: controller.NewHistoryController(a.Browser, quiz),
		health:  controller.NewHealthController(a.Quizzes),
	}
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	// 监控初始化
	monitoring.Init()

	app := &App{config: cfg}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("wiki-quiz-client", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			return nil, err
		}
		app.tracerProvider = tp
	}

	app.Client = httpclient.New(cfg.API)
	app.Quizzes = service.NewQuizService(app.Client)
	app.Browser = history.NewBrowser(app.Quizzes)
	app.controllers = app.initControllers()
	app.RegisterConfigCallback(app.applyAPIConfig)

	if cfg.Metrics.Enabled {
		if cfg.Server.Mode != gin.DebugMode {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.New()
		router.Use(gin.Recovery())
		app.registerRoutes(router, app.controllers.health)
		app.Router = router
	}

	logger.Log.Info("Quiz client ready", zap.String("base_url", cfg.API.BaseURL))
	return app, nil
}

// Run drives one console session and returns when it ends or the process is
// interrupted. Background helpers are stopped before it returns.
func (a *App) Run(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := a.Config()
	var srv *http.Server
	if a.Router != nil {
		srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: a.Router}
		go func() {
			logger.Log.Info("Metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	if cfg.ConfigFile != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, cfg.ConfigFile, a.reload); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	console := controller.NewConsole(in, out)
	done := make(chan error, 1)
	go func() {
		done <- a.dispatch(ctx, console, opts)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		console.Println("\nInterrupted.")
		err = ctx.Err()
	}

	a.shutdown(srv)
	return err
}

func (a *App) dispatch(ctx context.Context, c *controller.Console, opts RunOptions) error {
	take := controller.TakeOptions{ReadOnly: opts.Review, SubmitRemote: opts.SubmitRemote}
	switch {
	case opts.GenerateURL != "":
		return a.controllers.quiz.Generate(ctx, c, opts.GenerateURL, opts.Force, take)
	case opts.QuizID > 0:
		return a.controllers.quiz.Open(ctx, c, opts.QuizID, take)
	case opts.History:
		return a.controllers.history.Run(ctx, c)
	}
	return a.menu(ctx, c, opts)
}

// menu is the default interactive loop. Errors from a screen are already
// printed by its controller, so the loop just carries on.
func (a *App) menu(ctx context.Context, c *controller.Console, opts RunOptions) error {
	take := controller.TakeOptions{SubmitRemote: opts.SubmitRemote}
	for {
		c.Println("\n1) Generate quiz\n2) Past quizzes\nq) Quit")
		choice, err := c.Prompt("> ")
		if err != nil {
			if errors.Is(err, controller.ErrQuit) {
				return nil
			}
			return err
		}
		switch choice {
		case "1":
			url, err := c.Prompt("Wikipedia URL: ")
			if err != nil {
				continue
			}
			force := c.Confirm("Regenerate even if a stored quiz exists?")
			_ = a.controllers.quiz.Generate(ctx, c, url, force, take)
		case "2":
			_ = a.controllers.history.Run(ctx, c)
		default:
			c.Println("Please choose 1, 2 or q.")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (a *App) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Log.Error("Metrics server forced to shutdown", zap.Error(err))
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	a.Browser.Close()
	logger.Log.Info("Quiz client exiting")
}

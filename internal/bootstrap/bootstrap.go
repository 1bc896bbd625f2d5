// Package bootstrap wires configuration, logging, storage, providers
// and transports into a running service.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/aryanarora07/podlyze/internal/app/services"
	domainauth "github.com/aryanarora07/podlyze/internal/domain/auth"
	"github.com/aryanarora07/podlyze/internal/domain/eventbus"
	"github.com/aryanarora07/podlyze/internal/domain/job"
	domainllm "github.com/aryanarora07/podlyze/internal/domain/llm"
	llminter "github.com/aryanarora07/podlyze/internal/domain/llm/inter"
	"github.com/aryanarora07/podlyze/internal/domain/transcribe"
	asrinter "github.com/aryanarora07/podlyze/internal/domain/transcribe/inter"
	platformconfig "github.com/aryanarora07/podlyze/internal/platform/config"
	platformerrors "github.com/aryanarora07/podlyze/internal/platform/errors"
	platformlogging "github.com/aryanarora07/podlyze/internal/platform/logging"
	platformstorage "github.com/aryanarora07/podlyze/internal/platform/storage"
	httptransport "github.com/aryanarora07/podlyze/internal/transport/http"
	httpapi "github.com/aryanarora07/podlyze/internal/transport/http/api"
	"github.com/aryanarora07/podlyze/internal/utils"

	// Provider adapters register themselves with their registries.
	_ "github.com/aryanarora07/podlyze/internal/domain/llm/adapters/openai"
	_ "github.com/aryanarora07/podlyze/internal/domain/transcribe/adapters/speechmatics"
	_ "github.com/aryanarora07/podlyze/internal/domain/transcribe/adapters/whisper"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config      *platformconfig.Config
	configPath  string
	logProvider *platformlogging.Logger
	logger      *utils.Logger
	slogger     *slog.Logger

	db          *gorm.DB
	redisClient *redis.Client
	tracker     *job.Tracker

	asrProvider asrinter.Provider
	llmProvider llminter.Provider

	summaryService   *services.SummaryService
	chatService      *services.ChatService
	translateService *services.TranslateService
	accountService   *domainauth.Service
}

// Run starts the whole service lifecycle: init graph, HTTP transport
// and graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}

	logBootstrapGraph(InitGraph(), logger)

	defer func() {
		if state.redisClient != nil {
			if closeErr := state.redisClient.Close(); closeErr != nil {
				logger.WarnTag("BOOT", "redis client close: %v", closeErr)
			}
		}
	}()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "service stopped cleanly")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *utils.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("BOOT", "initialisation order")
	for _, step := range steps {
		logger.InfoTag("BOOT", "  %s", step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "eventbus:init-handlers",
			Title:     "Register event bus handlers",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initEventHandlersStep,
		},
		{
			ID:        "storage:init-database",
			Title:     "Initialise database",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   initDatabaseStep,
		},
		{
			ID:        "job:init-tracker",
			Title:     "Initialise job tracker",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   initTrackerStep,
		},
		{
			ID:        "providers:init",
			Title:     "Initialise recognition and language providers",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initProvidersStep,
		},
		{
			ID:        "services:init",
			Title:     "Initialise application services",
			DependsOn: []string{"storage:init-database", "job:init-tracker", "providers:init"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initServicesStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logProvider, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}

	state.logProvider = logProvider
	state.logger = logProvider.Tagged()
	state.slogger = logProvider.Slog()
	utils.DefaultLogger = state.logger

	state.logger.InfoTag("BOOT", "logging ready [%s] %s", state.config.Log.Level, state.configPath)
	return nil
}

func initEventHandlersStep(_ context.Context, state *appState) error {
	if err := eventbus.SetupHandlers(state.logger); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "eventbus:init-handlers", "failed to register event handlers", err)
	}
	return nil
}

func initDatabaseStep(_ context.Context, state *appState) error {
	db, err := platformstorage.Open(state.config.Database.DSN)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage:init-database", "failed to open database", err)
	}
	state.db = db
	state.logger.InfoTag("DB", "database ready at %s", state.config.Database.DSN)
	return nil
}

func initTrackerStep(_ context.Context, state *appState) error {
	store, client, err := buildJobStore(state.config, state.logger)
	if err != nil {
		return err
	}
	state.redisClient = client
	state.tracker = job.NewTracker(store, state.logger)
	return nil
}

// buildJobStore selects the progress store driver from configuration.
func buildJobStore(config *platformconfig.Config, logger *utils.Logger) (job.Store, *redis.Client, error) {
	driver := strings.ToLower(strings.TrimSpace(config.Progress.Store))
	switch driver {
	case "", "memory":
		return job.NewMemoryStore(), nil, nil
	case "redis":
		if config.Progress.Redis.Addr == "" {
			return nil, nil, platformerrors.New(
				platformerrors.KindConfig,
				"job:init-tracker",
				"redis progress store requires an addr",
			)
		}
		client := redis.NewClient(&redis.Options{
			Addr:     config.Progress.Redis.Addr,
			Username: config.Progress.Redis.Username,
			Password: config.Progress.Redis.Password,
			DB:       config.Progress.Redis.DB,
		})
		return job.NewRedisStore(client), client, nil
	default:
		logger.WarnTag("BOOT", "unknown progress store %q, falling back to memory", driver)
		return job.NewMemoryStore(), nil, nil
	}
}

func initProvidersStep(_ context.Context, state *appState) error {
	config := state.config

	asrName := config.Selected.ASR
	asrCfg, ok := config.ASR[asrName]
	if !ok {
		return platformerrors.New(
			platformerrors.KindConfig,
			"providers:init",
			fmt.Sprintf("selected ASR block %q not found", asrName),
		)
	}
	asrProvider, err := transcribe.Create(asrCfg.Type, &asrinter.Config{
		APIKey:     asrCfg.APIKey,
		BaseURL:    asrCfg.BaseURL,
		ModelName:  asrCfg.ModelName,
		Language:   asrCfg.Language,
		SampleRate: asrCfg.SampleRate,
		ChunkMS:    asrCfg.ChunkMS,
	}, state.logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "providers:init", "failed to create ASR provider", err)
	}
	state.asrProvider = asrProvider

	llmName := config.Selected.LLM
	llmCfg, ok := config.LLM[llmName]
	if !ok {
		return platformerrors.New(
			platformerrors.KindConfig,
			"providers:init",
			fmt.Sprintf("selected LLM block %q not found", llmName),
		)
	}
	llmProvider, err := domainllm.Create(llmCfg.Type, &llminter.Config{
		APIKey:      llmCfg.APIKey,
		BaseURL:     llmCfg.BaseURL,
		ModelName:   llmCfg.ModelName,
		Temperature: llmCfg.Temperature,
		MaxTokens:   llmCfg.MaxTokens,
	}, state.logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "providers:init", "failed to create LLM provider", err)
	}
	state.llmProvider = llmProvider

	state.logger.InfoTag("BOOT", "providers ready: asr=%s llm=%s", asrCfg.Type, llmCfg.Type)
	return nil
}

func initServicesStep(_ context.Context, state *appState) error {
	summaries := platformstorage.NewSummaryRepository(state.db)
	users := platformstorage.NewUserRepository(state.db)

	state.summaryService = services.NewSummaryService(
		state.config,
		state.logProvider,
		state.asrProvider,
		state.llmProvider,
		state.tracker,
		summaries,
	)
	state.chatService = services.NewChatService(state.config, state.logProvider, state.llmProvider, summaries)
	state.translateService = services.NewTranslateService(state.config, state.logProvider, state.llmProvider)
	state.accountService = domainauth.NewService(
		users,
		state.config.Server.Auth.JWTSecret,
		state.config.Server.Auth.TokenTTL,
		state.logger,
	)
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{},
				Message: "api not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.File(config.Web.StaticDir + "/index.html")
	})

	apiService, err := httpapi.NewService(
		config,
		logger,
		state.summaryService,
		state.chatService,
		state.translateService,
		state.accountService,
	)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "api:new-service", "failed to create api service", err)
	}
	if err := apiService.Register(groupCtx, httpRouter.API); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "api:register-routes", "failed to register api routes", err)
	}

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "listening on http://%s", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "shutdown: %v", err)
			} else {
				logger.InfoTag("HTTP", "server stopped gracefully")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "serve: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *utils.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("BOOT", "signal received (%v), shutting down", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "shutdown finished with error: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		timeoutErr := errors.New("shutdown timed out")
		logger.ErrorTag("BOOT", "shutdown timed out, forcing exit")
		return timeoutErr
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/authguard"
	"github.com/akshayks13/genai-frontend-sub000/internal/compile"
	"github.com/akshayks13/genai-frontend-sub000/internal/config"
	"github.com/akshayks13/genai-frontend-sub000/internal/dashboard"
	"github.com/akshayks13/genai-frontend-sub000/internal/explore"
	"github.com/akshayks13/genai-frontend-sub000/internal/listings"
	"github.com/akshayks13/genai-frontend-sub000/internal/llm"
	"github.com/akshayks13/genai-frontend-sub000/internal/observability"
	"github.com/akshayks13/genai-frontend-sub000/internal/resume"
	"github.com/akshayks13/genai-frontend-sub000/internal/roadmap"
	"github.com/akshayks13/genai-frontend-sub000/internal/server"
	"github.com/akshayks13/genai-frontend-sub000/internal/server/ratelimit"
	"github.com/akshayks13/genai-frontend-sub000/internal/services"
	"github.com/akshayks13/genai-frontend-sub000/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort   int
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway HTTP server",
	Long:  `Start an HTTP server that fronts the backend API for the career guidance UI.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to a YAML config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(server.Config{
		Port:               cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SessionTTL:         cfg.SessionTTL,
		CookieSecure:       cfg.CookieSecure,
	}, deps)
	return srv.Run(ctx)
}

// buildDeps wires the backend client, session store, compile chain and
// page services. cleanup releases what Run does not.
func buildDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger) (server.Deps, func(), error) {
	cleanup := func() {}

	client := apiclient.New(apiclient.Options{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout})
	auth := services.NewAuth(client)
	profile := services.NewProfile(client)
	exploreAPI := services.NewExplore(client)
	trends := services.NewTrends(client)

	store, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return server.Deps{}, cleanup, err
	}

	compiler := newCompiler(cfg, logger)

	prompter, closePrompter, err := newPrompter(ctx, cfg, exploreAPI)
	if err != nil {
		_ = store.Close()
		return server.Deps{}, cleanup, err
	}
	cleanup = closePrompter

	var translator services.Translator
	if cfg.TranslateAPIKey != "" {
		gt, err := services.NewGoogleTranslator(ctx, cfg.TranslateAPIKey)
		if err != nil {
			_ = store.Close()
			return server.Deps{}, cleanup, fmt.Errorf("failed to create translator: %w", err)
		}
		translator = gt
	} else {
		logger.Info("translation disabled, chat runs in English only")
	}

	workspace := services.NewWorkspace()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	limiter := ratelimit.NewLimiter(ratelimit.NewConfig(ratelimit.Settings{
		Enabled:         cfg.RateLimitEnabled,
		DefaultLimit:    cfg.RateLimitDefaultLimit,
		DefaultWindow:   cfg.RateLimitDefaultWindow,
		CleanupInterval: cfg.RateLimitCleanupInterval,
		Whitelist:       cfg.RateLimitWhitelist,
		Blacklist:       cfg.RateLimitBlacklist,
	}))

	return server.Deps{
		Auth:      auth,
		Profile:   profile,
		Sessions:  store,
		Guard:     authguard.New(profile, auth),
		Compiler:  compiler,
		Explore:   explore.New(store, prompter, translator, logger),
		Resume:    resume.New(profile, compiler),
		Listings:  listings.New(exploreAPI, trends),
		Dashboard: dashboard.New(profile, trends, workspace, logger.Named("dashboard")),
		Roadmaps:  roadmap.New(services.NewRoadmap(client), workspace),
		Limiter:   limiter,
		Metrics:   metrics,
		Gatherer:  reg,
		Logger:    logger,
	}, cleanup, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(cfg.SessionTTL), nil
	}

	store, err := session.NewRedisStore(ctx, session.RedisConfig{
		Address:  cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect session store: %w", err)
	}
	logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
	return store, nil
}

func newCompiler(cfg *config.Config, logger *zap.Logger) *compile.Compiler {
	opts := []compile.Option{compile.WithLogger(logger)}
	if cfg.CompileURL != "" {
		opts = append(opts, compile.WithRemote(compile.NewForwarder(cfg.CompileURL, cfg.CompileTimeout)))
	}
	if cfg.PDFLatexEnabled {
		local := compile.NewLocalCompiler(cfg.CompileTimeout)
		if local.Available() {
			opts = append(opts, compile.WithLocal(local))
		} else {
			logger.Warn("pdflatex enabled but not found in PATH")
		}
	}
	return compile.New(opts...)
}

func newPrompter(ctx context.Context, cfg *config.Config, api *services.Explore) (explore.Prompter, func(), error) {
	provider, err := llm.ParseProvider(cfg.PromptProvider)
	if err != nil {
		return nil, nil, err
	}
	if provider == llm.ProviderAPI {
		return explore.NewAPIPrompter(api), func() {}, nil
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

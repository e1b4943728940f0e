// askdeskd serves the knowledge-base assistant over HTTP. It runs the same
// agent as askdesk but keeps named sessions so clients can hold
// conversations across requests.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nmoreau/askdesk/internal/agent"
	"github.com/nmoreau/askdesk/internal/api"
	"github.com/nmoreau/askdesk/internal/config"
	"github.com/nmoreau/askdesk/internal/llmfactory"
	"github.com/nmoreau/askdesk/internal/logging"
	"github.com/nmoreau/askdesk/internal/observability"
	"github.com/nmoreau/askdesk/internal/session"
	"github.com/nmoreau/askdesk/internal/toolhost"
	"github.com/nmoreau/askdesk/internal/tools"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.askdesk/config.yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("askdeskd failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.SetupLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	shutdownObs, err := observability.Setup(ctx, observability.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to set up observability: %w", err)
	}
	defer shutdownObs(ctx)

	modelCfg, err := cfg.LLM.CurrentModel()
	if err != nil {
		return err
	}
	if err := config.ValidateAPIKeys(modelCfg); err != nil {
		return err
	}

	adapter, err := llmfactory.NewInstrumentedAdapter(ctx, modelCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM adapter: %w", err)
	}

	process, err := toolhost.StartProcess(logger, cfg.ToolHost.Command, cfg.ToolHost.Args...)
	if err != nil {
		return fmt.Errorf("failed to start tool host %q: %w", cfg.ToolHost.Command, err)
	}
	host := toolhost.NewClient(process)
	defer host.Close()

	registry, err := tools.NewHostRegistry(ctx, host)
	if err != nil {
		return fmt.Errorf("failed to discover tools: %w", err)
	}
	logger.Info("tool host ready", "command", cfg.ToolHost.Command, "tools", registry.Names())

	a := agent.New(adapter, tools.NewExecutor(registry), registry,
		agent.WithLogger(logger),
		agent.WithCurrentModelName(cfg.LLM.Current),
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithSampling(cfg.Agent.MaxTokens, cfg.Agent.Temperature),
	)

	addr := cfg.Server.Address
	if addr == "" {
		addr = "localhost:7777"
	}

	mux := http.NewServeMux()
	apiServer := api.New(a, session.NewManager(), logger)
	apiServer.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // LLM round-trips can be slow
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("askdeskd starting", "addr", addr, "model", cfg.LLM.Current)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("askdeskd stopped")
	return nil
}

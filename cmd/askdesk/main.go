// askdesk is the interactive knowledge-base assistant. It starts the
// configured tool host as a child process, discovers its tools, and answers
// questions through the configured LLM, either in a REPL or as a one-shot
// query. With -server it talks to a running askdeskd instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nmoreau/askdesk/internal/agent"
	"github.com/nmoreau/askdesk/internal/client"
	"github.com/nmoreau/askdesk/internal/config"
	"github.com/nmoreau/askdesk/internal/llm"
	"github.com/nmoreau/askdesk/internal/llmfactory"
	"github.com/nmoreau/askdesk/internal/logging"
	"github.com/nmoreau/askdesk/internal/observability"
	"github.com/nmoreau/askdesk/internal/repl"
	"github.com/nmoreau/askdesk/internal/toolhost"
	"github.com/nmoreau/askdesk/internal/tools"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.askdesk/config.yaml)")
	query := flag.String("q", "", "ask a single question and exit")
	serverAddr := flag.String("server", "", "address of a running askdeskd (e.g. localhost:7777)")
	flag.Parse()

	if err := run(*configPath, *query, *serverAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, query, serverAddr string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if serverAddr != "" {
		return runRemote(ctx, serverAddr, query)
	}

	// Log to a file (or nowhere) so the prompt stays clean.
	logger, cleanup := logging.SetupLoggerWithFile(cfg.Logging.Level, cfg.Logging.File)
	defer cleanup()

	shutdown, err := observability.Setup(ctx, observability.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to set up observability: %w", err)
	}
	defer shutdown(ctx)

	modelCfg, err := cfg.LLM.CurrentModel()
	if err != nil {
		return err
	}
	if err := config.ValidateAPIKeysWithUserMessage(modelCfg); err != nil {
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
		agent.WithAdapterFactory(func(ctx context.Context, provider, model string) (llm.Adapter, error) {
			mc := config.ModelConfig{Provider: provider, Model: model}
			if err := config.ValidateAPIKeysWithUserMessage(mc); err != nil {
				return nil, err
			}
			return llmfactory.NewInstrumentedAdapter(ctx, mc, logger)
		}),
	)

	if query != "" {
		answer, err := a.Run(ctx, agent.NewSession(), query)
		if err != nil {
			return err
		}
		fmt.Println(answer.Text)
		return nil
	}

	return repl.New(a, cfg).Run(ctx)
}

// runRemote sends the query to an askdeskd instance instead of running the
// agent locally.
func runRemote(ctx context.Context, addr, query string) error {
	if query == "" {
		return fmt.Errorf("-server requires -q (remote REPL is not supported)")
	}

	c := client.New("http://" + addr)
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("askdeskd not reachable at %s: %w", addr, err)
	}

	answer, err := c.Ask(ctx, query, "")
	if err != nil {
		return err
	}
	fmt.Println(answer.Answer)
	return nil
}

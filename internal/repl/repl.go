// Package repl implements the interactive prompt for askdesk.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nmoreau/askdesk/internal/agent"
	"github.com/nmoreau/askdesk/internal/config"
)

var ErrExit = errors.New("exit requested")

// REPL implements the read-eval-print loop for interactive mode.
type REPL struct {
	agent   *agent.Agent
	config  *config.Config
	session *agent.Session
	in      io.Reader
	out     io.Writer
}

// New creates a REPL with the given agent and config.
func New(a *agent.Agent, cfg *config.Config) *REPL {
	return &REPL{
		agent:   a,
		config:  cfg,
		session: agent.NewSession(),
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// Run starts the loop. Exits on /exit, /quit, or Ctrl+D.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintf(r.out, "askdesk is ready. Model: %s\n\n", r.agent.CurrentModelName())

	scanner := bufio.NewScanner(r.in)

	for {
		fmt.Fprint(r.out, "> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := r.handleCommand(ctx, input); err != nil {
				if errors.Is(err, ErrExit) {
					fmt.Fprintln(r.out, "Goodbye.")
					break
				}
				fmt.Fprintf(r.out, "Error: %v\n", err)
			}
			fmt.Fprintln(r.out)
			continue
		}

		answer, err := r.agent.Run(ctx, r.session, input)
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n\n", err)
			continue
		}

		if answer.Match != nil {
			fmt.Fprintf(r.out, "[knowledge base Q%d, score %d] %s\n", answer.Match.Index, answer.Match.Score, answer.Match.Question)
		}
		fmt.Fprintln(r.out, answer.Text)
		fmt.Fprintln(r.out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

func (r *REPL) handleCommand(ctx context.Context, input string) error {
	cmd := strings.TrimPrefix(input, "/")
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return nil
	}

	switch parts[0] {
	case "model":
		return r.handleModelCommand(ctx)
	case "stats":
		return r.handleStatsCommand()
	case "clear":
		r.session.Clear()
		fmt.Fprintln(r.out, "Conversation cleared.")
		return nil
	case "help":
		return r.handleHelpCommand()
	case "exit", "quit":
		return ErrExit
	default:
		return fmt.Errorf("unknown command: /%s. Type /help for available commands", parts[0])
	}
}

// handleModelCommand shows an interactive model selector and switches models.
func (r *REPL) handleModelCommand(ctx context.Context) error {
	models := r.config.LLM.ModelNames()
	current := r.config.LLM.Current

	if len(models) == 0 {
		fmt.Fprintln(r.out, "No models configured in config.yaml")
		return nil
	}
	if len(models) == 1 {
		fmt.Fprintf(r.out, "Only one model configured: %s\n", current)
		return nil
	}

	selected, err := RunModelSelector(models, current)
	if err != nil {
		return fmt.Errorf("failed to run selector: %w", err)
	}
	if selected == "" {
		fmt.Fprintln(r.out, "Cancelled")
		return nil
	}
	if selected == current {
		fmt.Fprintf(r.out, "Already using %s\n", current)
		return nil
	}

	modelCfg, ok := r.config.LLM.Available[selected]
	if !ok {
		return fmt.Errorf("model %s not found in config", selected)
	}

	if err := r.agent.SwitchModel(ctx, modelCfg.Provider, modelCfg.Model, selected); err != nil {
		return fmt.Errorf("failed to switch model: %w", err)
	}
	r.config.LLM.Current = selected

	fmt.Fprintf(r.out, "\nSwitched to %s (%s/%s)\n", selected, modelCfg.Provider, modelCfg.Model)
	return nil
}

func (r *REPL) handleStatsCommand() error {
	fmt.Fprintf(r.out, "Messages in conversation: %d\n", len(r.session.Messages))
	fmt.Fprintf(r.out, "Tokens this session: %d in / %d out / %d total\n",
		r.session.TotalInputTokens, r.session.TotalOutputTokens, r.session.TotalTokens)
	return nil
}

func (r *REPL) handleHelpCommand() error {
	help := `Available commands:
  /model    - Switch LLM model
  /stats    - Show conversation and token stats
  /clear    - Clear the conversation history
  /help     - Show this help
  /exit     - Exit askdesk (or use Ctrl+D)
`
	fmt.Fprint(r.out, help)
	return nil
}

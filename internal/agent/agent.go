// Package agent runs the query loop: send the user's question plus the tool
// catalog to the model, execute the tool calls it makes, and when a tool
// returns knowledge-base text, ground the final answer in the entry that best
// matches the question.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nmoreau/askdesk/internal/kb"
	"github.com/nmoreau/askdesk/internal/llm"
	"github.com/nmoreau/askdesk/internal/tools"
)

// DefaultSystemPrompt steers the model toward the knowledge-base tools.
const DefaultSystemPrompt = `You are a helpful assistant with access to company knowledge base tools.
When asked about company policies, procedures, or information, you MUST use the available tools to retrieve the most current information.
Always use the get_knowledge_base tool when answering questions about company policies.`

// AdapterFactory creates an adapter for a provider/model pair. Used by
// SwitchModel to hot-swap the model without restarting.
type AdapterFactory func(ctx context.Context, provider, model string) (llm.Adapter, error)

// Option configures optional Agent settings.
type Option func(*Agent)

// WithAdapterFactory enables model hot-swapping.
func WithAdapterFactory(f AdapterFactory) Option {
	return func(a *Agent) { a.adapterFactory = f }
}

// WithCurrentModelName sets the display name of the active model.
func WithCurrentModelName(name string) Option {
	return func(a *Agent) { a.currentModel = name }
}

// WithLogger sets the agent's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithMaxIterations bounds the tool-call loop.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithSampling sets the token limit and temperature for model calls.
func WithSampling(maxTokens int, temperature float32) Option {
	return func(a *Agent) {
		a.maxTokens = maxTokens
		a.temperature = temperature
	}
}

// Agent drives the model/tool loop for user questions.
type Agent struct {
	mu             sync.RWMutex // protects llm and currentModel
	llm            llm.Adapter
	executor       *tools.Executor
	registry       *tools.Registry
	logger         *slog.Logger
	systemPrompt   string
	maxIterations  int
	maxTokens      int
	temperature    float32
	adapterFactory AdapterFactory
	currentModel   string
}

// Answer is the agent's reply to one question.
type Answer struct {
	Text  string    // the model's final response
	Match *kb.Match // the knowledge-base entry the answer was grounded in, if any
}

// New creates an agent. Options are applied after defaults.
func New(adapter llm.Adapter, executor *tools.Executor, registry *tools.Registry, opts ...Option) *Agent {
	a := &Agent{
		llm:           adapter,
		executor:      executor,
		registry:      registry,
		logger:        slog.Default(),
		systemPrompt:  DefaultSystemPrompt,
		maxIterations: 10,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SwitchModel hot-swaps the adapter to a different provider/model. Requires
// WithAdapterFactory.
func (a *Agent) SwitchModel(ctx context.Context, provider, model, displayName string) error {
	if a.adapterFactory == nil {
		return fmt.Errorf("no adapter factory configured; cannot switch models")
	}
	newAdapter, err := a.adapterFactory(ctx, provider, model)
	if err != nil {
		return fmt.Errorf("failed to create adapter for %s/%s: %w", provider, model, err)
	}
	a.mu.Lock()
	a.llm = newAdapter
	a.currentModel = displayName
	a.mu.Unlock()
	return nil
}

// CurrentModelName returns the display name of the active model.
func (a *Agent) CurrentModelName() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentModel
}

// Run answers one user question. The loop:
//  1. Add the question to the session history.
//  2. Call the model with the system prompt, tool catalog, and history.
//  3. Execute any tool calls. A result that is knowledge-base text short-
//     circuits into a grounded final call (no tools) using the best-matching
//     entry for the question.
//  4. Otherwise feed the results back and loop.
func (a *Agent) Run(ctx context.Context, session *Session, userMessage string) (*Answer, error) {
	session.ResetRunStats()
	session.AddMessage(llm.Message{Role: "user", Content: userMessage})

	toolDefs := a.registry.ToDefinitions()

	for i := 0; i < a.maxIterations; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := a.chat(ctx, llm.ChatRequest{
			SystemPrompt: a.systemPrompt,
			Messages:     session.Messages,
			Tools:        toolDefs,
			MaxTokens:    a.maxTokens,
			Temperature:  a.temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("llm chat failed: %w", err)
		}
		session.AddTokenUsage(resp.Usage)

		if len(resp.ToolCalls) == 0 {
			if resp.Content != "" {
				session.AddMessage(llm.Message{Role: "assistant", Content: resp.Content})
			}
			return &Answer{Text: resp.Content}, nil
		}

		session.AddMessage(llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		results, err := a.executor.ExecuteBatch(ctx, resp.ToolCalls)
		if err != nil && !errors.Is(err, tools.ErrAllToolsFailed) {
			return nil, fmt.Errorf("tool execution failed: %w", err)
		}
		// Tool failures stay in the conversation so the model can react.

		for _, result := range results {
			session.AddMessage(result.Message())
		}

		// A knowledge-base result ends the loop with a grounded answer.
		for _, result := range results {
			if result.Err != nil {
				continue
			}
			if answer, ok, err := a.groundInKnowledgeBase(ctx, session, userMessage, result.Text); ok || err != nil {
				return answer, err
			}
		}
	}

	return nil, fmt.Errorf("max iterations (%d) reached without final response", a.maxIterations)
}

// groundInKnowledgeBase runs the matcher over a tool result and, when the
// result is knowledge-base text, asks the model for a final answer grounded
// in it. Returns ok=false when the text is not a knowledge base.
func (a *Agent) groundInKnowledgeBase(ctx context.Context, session *Session, userMessage, kbText string) (*Answer, bool, error) {
	match, err := kb.FindMatchingQuestion(kbText, userMessage)
	if err != nil {
		// Not knowledge-base text; let the loop continue.
		return nil, false, nil
	}

	a.logger.Info("matched knowledge base entry",
		"index", match.Index,
		"question", match.Question,
		"score", match.Score,
	)

	prompt := fmt.Sprintf(`Original question: %s

Knowledge base information retrieved:
%s

The most relevant entry is Q%d: %s`, userMessage, kbText, match.Index, match.Question)

	if answer, ok := kb.ExtractAnswer(kbText, match.Index); ok && answer != "" {
		prompt += fmt.Sprintf("\nA%d: %s", match.Index, answer)
	}

	prompt += "\n\nBased on this information from our company knowledge base, please provide a comprehensive answer to the original question."

	session.AddMessage(llm.Message{Role: "user", Content: prompt})

	// Final call without tools so the model answers instead of re-querying.
	resp, err := a.chat(ctx, llm.ChatRequest{
		SystemPrompt: a.systemPrompt,
		Messages:     session.Messages,
		MaxTokens:    a.maxTokens,
		Temperature:  a.temperature,
	})
	if err != nil {
		return nil, true, fmt.Errorf("grounded llm chat failed: %w", err)
	}
	session.AddTokenUsage(resp.Usage)

	if resp.Content != "" {
		session.AddMessage(llm.Message{Role: "assistant", Content: resp.Content})
	}

	m := match
	return &Answer{Text: resp.Content, Match: &m}, true, nil
}

// chat calls the model under a read lock so SwitchModel cannot swap the
// adapter mid-call.
func (a *Agent) chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.llm.Chat(ctx, req)
}

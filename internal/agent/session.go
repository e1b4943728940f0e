package agent

import "github.com/nmoreau/askdesk/internal/llm"

// Session holds the conversation history and token accounting for one
// ongoing interaction.
type Session struct {
	Messages []llm.Message

	// Totals across the session.
	TotalInputTokens  int
	TotalOutputTokens int
	TotalTokens       int

	// Per-run tracking, reset at the start of each Run.
	RunInputTokens  int
	RunOutputTokens int
	RunTokens       int
	RunLLMCalls     int

	// MaxMessages bounds history growth. 0 means unlimited.
	MaxMessages int
}

// NewSession creates a session with empty history.
func NewSession() *Session {
	return &Session{Messages: make([]llm.Message, 0)}
}

// AddMessage appends to the history, pruning the oldest messages once
// MaxMessages is exceeded.
func (s *Session) AddMessage(message llm.Message) {
	s.Messages = append(s.Messages, message)

	if s.MaxMessages > 0 && len(s.Messages) > s.MaxMessages {
		keep := s.MaxMessages / 2
		if keep < 10 {
			keep = 10
		}
		s.Messages = s.Messages[len(s.Messages)-keep:]
	}
}

// AddMessages appends multiple messages.
func (s *Session) AddMessages(messages []llm.Message) {
	for _, m := range messages {
		s.AddMessage(m)
	}
}

// Clear drops the conversation history.
func (s *Session) Clear() {
	s.Messages = make([]llm.Message, 0)
}

// ResetRunStats zeroes the per-run counters.
func (s *Session) ResetRunStats() {
	s.RunInputTokens = 0
	s.RunOutputTokens = 0
	s.RunTokens = 0
	s.RunLLMCalls = 0
}

// AddTokenUsage records usage from one LLM response.
func (s *Session) AddTokenUsage(usage llm.TokenUsage) {
	s.RunInputTokens += usage.InputTokens
	s.RunOutputTokens += usage.OutputTokens
	s.RunTokens += usage.TotalTokens
	s.RunLLMCalls++

	s.TotalInputTokens += usage.InputTokens
	s.TotalOutputTokens += usage.OutputTokens
	s.TotalTokens += usage.TotalTokens
}

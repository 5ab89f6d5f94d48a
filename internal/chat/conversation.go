// Package chat maintains conversation state between a front end and a
// provider: the ordered message history, the per-user session store used by
// the bridges, and the plain-text transcript file.
package chat

import (
	"sync"

	"github.com/butcheralt/ariabot/internal/provider"
)

// Conversation is an ordered, append-only message history for one session.
// The system instruction is never stored in the history; it is injected at
// assembly time by BuildRequest. History grows without bound — there is no
// token-budget trimming.
type Conversation struct {
	instruction string
	history     []provider.Message
}

// New creates an empty conversation carrying the system instruction.
func New(instruction string) *Conversation {
	return &Conversation{instruction: instruction}
}

// AppendUser records a user turn.
func (c *Conversation) AppendUser(text string) {
	c.history = append(c.history, provider.Message{Role: provider.RoleUser, Content: text})
}

// AppendAssistant records an assistant turn.
func (c *Conversation) AppendAssistant(text string) {
	c.history = append(c.history, provider.Message{Role: provider.RoleAssistant, Content: text})
}

// BuildRequest assembles the full message list for a provider call: the
// system instruction first (if non-empty), then the history in insertion
// order. The returned slice is owned by the caller.
func (c *Conversation) BuildRequest() []provider.Message {
	messages := make([]provider.Message, 0, len(c.history)+1)
	if c.instruction != "" {
		messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: c.instruction})
	}
	return append(messages, c.history...)
}

// History returns a copy of the recorded turns (no system instruction).
func (c *Conversation) History() []provider.Message {
	out := make([]provider.Message, len(c.history))
	copy(out, c.history)
	return out
}

// Len reports the number of recorded turns.
func (c *Conversation) Len() int { return len(c.history) }

// Clear discards the history. The instruction is kept.
func (c *Conversation) Clear() { c.history = nil }

// Sessions is a concurrency-safe store of one Conversation per user,
// used by the multi-user bridges. Each user's conversation is only ever
// touched by the handler processing that user's current update; the store
// itself just guards the map.
type Sessions struct {
	mu          sync.Mutex
	instruction string
	byUser      map[string]*Conversation
}

// NewSessions creates an empty store. Every conversation it hands out
// carries the given system instruction.
func NewSessions(instruction string) *Sessions {
	return &Sessions{
		instruction: instruction,
		byUser:      make(map[string]*Conversation),
	}
}

// Get returns the user's conversation, creating it on first contact.
func (s *Sessions) Get(userID string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.byUser[userID]
	if !ok {
		conv = New(s.instruction)
		s.byUser[userID] = conv
	}
	return conv
}

// Reset drops the user's history.
func (s *Sessions) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
}

// Package enrich implements the optional LLM community-enrichment
// collaborator: given a community's heuristic label and a
// truncated member list, ask an external model for a better
// {name, keywords, description}, falling back to the heuristic on any
// failure.
package enrich

import (
	"context"
	"fmt"
	"time"
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// ChatRequest is a single-turn or multi-turn completion request.
type ChatRequest struct {
	Messages    []Message
	Model       string
	MaxTokens   int
	Temperature float64
}

// ChatResponse is the collaborator's reply.
type ChatResponse struct {
	Message Message
	Model   string
	Done    bool
}

// Collaborator is the narrow interface GitNexus needs from an LLM backend
// for community enrichment.
type Collaborator interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Name() string
}

// MockCollaborator is a deterministic collaborator for tests and offline
// runs.
type MockCollaborator struct {
	// ChatFunc overrides the default canned response when set.
	ChatFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

func (m *MockCollaborator) Name() string { return "mock" }

func (m *MockCollaborator) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	last := ""
	if len(req.Messages) > 0 {
		last = req.Messages[len(req.Messages)-1].Content
	}
	return &ChatResponse{
		Message: Message{Role: "assistant", Content: fmt.Sprintf("[mock] %.40s", last)},
		Model:   "mock-model",
		Done:    true,
	}, nil
}

// within10s is the per-batch deadline applied when the caller's context
// carries no deadline of its own, keeping one slow collaborator from
// stalling an entire ingestion run indefinitely.
const within10s = 10 * time.Second

// Package llmtest provides a scriptable llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/quick-apply/internal/llm"
)

// MockClient implements llm.Client. CompleteFunc decides the response; calls are recorded.
type MockClient struct {
	CompleteFunc func(ctx context.Context, req llm.Request, tier llm.ModelTier) (string, error)

	mu       sync.Mutex
	requests []llm.Request
}

var _ llm.Client = (*MockClient)(nil)

// Respond returns a mock that always answers with resp.
func Respond(resp string) *MockClient {
	return &MockClient{CompleteFunc: func(context.Context, llm.Request, llm.ModelTier) (string, error) {
		return resp, nil
	}}
}

func (m *MockClient) Complete(ctx context.Context, req llm.Request, tier llm.ModelTier) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.CompleteFunc == nil {
		return "", fmt.Errorf("mock: CompleteFunc not set")
	}
	return m.CompleteFunc(ctx, req, tier)
}

func (m *MockClient) GetModel(tier llm.ModelTier) string {
	return "mock-" + string(tier)
}

func (m *MockClient) Close() error {
	return nil
}

// Calls returns how many completions were requested.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request seen.
func (m *MockClient) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

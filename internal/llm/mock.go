package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

const mockModelID = "mock"

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider. It returns canned responses in
// FIFO order and records every request. A provider built with
// NewDemoProvider answers schema requests from the schema itself once the
// queue is empty, which lets the app run offline.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	demo      bool
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewDemoProvider creates a MockProvider that synthesizes schema-shaped
// placeholder output when it has nothing queued.
func NewDemoProvider() *MockProvider {
	return &MockProvider{demo: true}
}

// Generate returns the next canned response. An empty queue yields
// ErrProviderUnavailable unless the provider is in demo mode.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		if !m.demo {
			return nil, &ErrProviderUnavailable{}
		}
		return m.synthesize(req)
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      mockModelID,
		StopReason: StopEnd,
	}, nil
}

func (m *MockProvider) synthesize(req Request) (*Response, error) {
	var v any = "mock response"
	if req.Schema != nil {
		v = exampleFor("", req.Schema.Definition)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("synthesize mock response: %w", err)
	}
	return &Response{Content: raw, Model: mockModelID, StopReason: StopEnd}, nil
}

// exampleFor builds the smallest value that satisfies a simple JSON Schema
// definition: first enum value, minItems array entries, every property.
func exampleFor(name string, def map[string]any) any {
	if enums, ok := def["enum"].([]any); ok && len(enums) > 0 {
		return enums[0]
	}
	if enums, ok := def["enum"].([]string); ok && len(enums) > 0 {
		return enums[0]
	}
	switch def["type"] {
	case "object":
		out := map[string]any{}
		if props, ok := def["properties"].(map[string]any); ok {
			for k, v := range props {
				if pd, ok := v.(map[string]any); ok {
					out[k] = exampleFor(k, pd)
				}
			}
		}
		return out
	case "array":
		n := 1
		switch mi := def["minItems"].(type) {
		case int:
			n = max(mi, 1)
		case float64:
			n = max(int(mi), 1)
		}
		items, _ := def["items"].(map[string]any)
		out := make([]any, n)
		for i := range out {
			out[i] = exampleFor(name, items)
		}
		return out
	case "integer", "number":
		return 0
	case "boolean":
		return false
	default:
		if name == "" {
			return "sample"
		}
		return "sample " + name
	}
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return mockModelID
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

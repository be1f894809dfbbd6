package intelligence

import (
	"context"
	"sync"

	"github.com/alexanderramin/draftboard/internal/llm"
)

// taskMockClient answers each task with a canned response.
type taskMockClient struct {
	mu        sync.Mutex
	responses map[llm.TaskType][]string
	errs      map[llm.TaskType]error
	requests  []llm.GenerateRequest
}

func (m *taskMockClient) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.errs[req.Task]; err != nil {
		return nil, err
	}
	queue := m.responses[req.Task]
	if len(queue) == 0 {
		return nil, llm.ErrInvalidOutput
	}
	text := queue[0]
	if len(queue) > 1 {
		m.responses[req.Task] = queue[1:]
	}
	return &llm.GenerateResponse{Text: text, Model: "mock"}, nil
}

func (m *taskMockClient) Available(context.Context) bool { return true }

func (m *taskMockClient) requestsFor(task llm.TaskType) []llm.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []llm.GenerateRequest
	for _, r := range m.requests {
		if r.Task == task {
			out = append(out, r)
		}
	}
	return out
}

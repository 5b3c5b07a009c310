package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider returns canned results for tests. It records every
// request so tests can assert on dispatch counts and inferred modes.
type MockProvider struct {
	id ID

	mu       sync.Mutex
	requests []Request

	// Images is returned per request; when nil, one synthetic payload
	// per requested image is fabricated.
	Images        []string
	RevisedPrompt string
	Err           error
}

// NewMockProvider creates a mock for the given family ID.
func NewMockProvider(id ID) *MockProvider {
	return &MockProvider{id: id}
}

func (p *MockProvider) ID() ID {
	return p.id
}

func (p *MockProvider) Generate(ctx context.Context, req Request) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.Err != nil {
		return Result{}, p.Err
	}

	images := p.Images
	if images == nil {
		for i := 0; i < req.N; i++ {
			images = append(images, fmt.Sprintf("data:image/png;base64,bW9jay0lZA==%d", i))
		}
	}
	return Result{Images: images, RevisedPrompt: p.RevisedPrompt}, nil
}

// Requests returns a copy of every recorded request.
func (p *MockProvider) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Request, len(p.requests))
	copy(out, p.requests)
	return out
}

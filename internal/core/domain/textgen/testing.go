package textgen

import (
	"context"
	"sync"
	"time"
)

type FakeGenerator struct {
	Text      string
	Error     error
	Delay     time.Duration
	Requested []Request
	lock      sync.Mutex
}

func NewFakeGenerator(text string) *FakeGenerator {
	return &FakeGenerator{Text: text}
}

func (g *FakeGenerator) Generate(ctx context.Context, request Request) (string, error) {
	g.lock.Lock()
	g.Requested = append(g.Requested, request)
	g.lock.Unlock()
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.Error != nil {
		return "", g.Error
	}
	return g.Text, nil
}

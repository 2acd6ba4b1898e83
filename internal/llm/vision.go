package llm

import (
	"context"

	"github.com/raine/chadorchud-bot/internal/intake"
	"github.com/raine/chadorchud-bot/internal/rating"
)

// Usage contains token usage and cost information.
type Usage struct {
	Calls        int
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

func (u *Usage) add(o Usage) {
	u.Calls += o.Calls
	u.InputTokens += o.InputTokens
	u.OutputTokens += o.OutputTokens
	u.TotalTokens += o.TotalTokens
	u.CostUSD += o.CostUSD
}

// UsageReporter is implemented by analyzers that track cumulative usage.
type UsageReporter interface {
	Usage() Usage
}

// Unconfigured stands in for the analyzer when no API key is set. The bot
// still starts; every submission ends in the Error state.
type Unconfigured struct{}

var _ rating.Analyzer = Unconfigured{}

func (Unconfigured) Analyze(ctx context.Context, payload intake.Payload) (*rating.Analysis, error) {
	return nil, rating.ErrNotConfigured
}

func (Unconfigured) Ready() error {
	return rating.ErrNotConfigured
}

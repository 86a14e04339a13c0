package workflow

import "sync/atomic"

// Iteration limits for the keyword gated round robin.
const (
	DefaultMaxIterations = 5
	// ReducedMaxIterations applies after a conversation was cut off by the limit.
	ReducedMaxIterations = 3
)

// IterationBudget is the turn limit shared by every conversation in the
// process. A run that hits the limit lowers it for the runs that follow; a
// run that mentions the future of AI raises it again.
type IterationBudget struct {
	max atomic.Int32
}

func NewIterationBudget() *IterationBudget {
	b := &IterationBudget{}
	b.Set(DefaultMaxIterations)
	return b
}

func (b *IterationBudget) Max() int { return int(b.max.Load()) }

func (b *IterationBudget) Set(n int) {
	b.max.Store(int32(n))
	budgetGauge.Set(float64(n))
}

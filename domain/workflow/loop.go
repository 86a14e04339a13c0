package workflow

import "github.com/drewby/chackgpt/pkg/llm"

type loopAction int

const (
	loopNone loopAction = iota
	loopWarn
	loopStop

	// Consecutive identical tool calls before warning and before ending the turn.
	loopWarnThreshold = 3
	loopStopThreshold = 5
)

// loopDetector tracks consecutive identical tool calls within one turn.
type loopDetector struct {
	lastName string
	lastArgs string
	count    int
}

func (d *loopDetector) record(call llm.ToolCall) loopAction {
	if call.Name == d.lastName && call.Arguments == d.lastArgs {
		d.count++
	} else {
		d.lastName = call.Name
		d.lastArgs = call.Arguments
		d.count = 1
	}

	switch {
	case d.count >= loopStopThreshold:
		return loopStop
	case d.count >= loopWarnThreshold:
		return loopWarn
	}
	return loopNone
}

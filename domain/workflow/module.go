package workflow

import "go.uber.org/fx"

// Module provides the group chat workflow and its shared iteration budget.
var Module = fx.Module("workflow",
	fx.Provide(NewIterationBudget),
	fx.Provide(NewWorkflow),
)

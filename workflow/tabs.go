package workflow

import "go.uber.org/zap"

// TabController owns workflow selection.
type TabController struct {
	state  *State
	logger *zap.Logger
}

// Select makes id the active workflow and resets both workflows to their
// initial state, even when id is already active.
func (t *TabController) Select(id WorkflowID) {
	t.state.reset(id)
	t.logger.Debug("Workflow selected", zap.Stringer("workflow", id))
}

// Active returns the selected workflow.
func (t *TabController) Active() WorkflowID {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	return t.state.active
}

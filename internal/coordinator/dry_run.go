package coordinator

import (
	"fmt"
	"strings"
)

// PlannedAction is one mutation a dry run skipped.
type PlannedAction struct {
	// System is the external system the action would touch: "git",
	// "github" or "params".
	System string
	// Description is the human-readable "would do X" trace.
	Description string
}

func (a PlannedAction) String() string {
	return fmt.Sprintf("[%s] %s", a.System, a.Description)
}

// Recorder collects the mutations a dry run skips so the operator can review
// the projected plan. Read-only calls still run against live systems, so the
// plan reflects what a real run would do.
type Recorder struct {
	actions []PlannedAction
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one planned action.
func (r *Recorder) Record(system, format string, args ...any) {
	r.actions = append(r.actions, PlannedAction{
		System:      system,
		Description: fmt.Sprintf(format, args...),
	})
}

// Actions returns the planned actions in recorded order.
func (r *Recorder) Actions() []PlannedAction {
	return r.actions
}

// Summary renders the plan, one action per line.
func (r *Recorder) Summary() string {
	if len(r.actions) == 0 {
		return "Dry-run: nothing to do"
	}
	lines := make([]string, 0, len(r.actions)+1)
	lines = append(lines, "Dry-run plan:")
	for _, a := range r.actions {
		lines = append(lines, "  "+a.String())
	}
	return strings.Join(lines, "\n")
}

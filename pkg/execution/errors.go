package execution

import (
	"errors"
	"fmt"
)

// ErrChannelClosed is returned to a waiting run when the execution
// channel drops before a terminal event arrives.
var ErrChannelClosed = errors.New("execution channel closed before the run finished")

// RunError is a terminal error event from the executor. NodeID is empty
// for run-scoped errors.
type RunError struct {
	NodeID  string
	Message string
}

func (e *RunError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("node %s failed: %s", e.NodeID, e.Message)
	}

	return fmt.Sprintf("run failed: %s", e.Message)
}

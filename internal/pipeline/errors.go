package pipeline

import "fmt"

// Phase names the two hooked build phases.
type Phase string

const (
	PhaseContent  Phase = "content"
	PhaseDocument Phase = "document"
)

// PhaseError wraps a phase failure with its cycle for the host build tool's
// failure-reporting path. Failures abort the cycle; there are no retries and a
// failed cycle's documents must be treated as invalid output.
type PhaseError struct {
	Phase Phase
	Cycle string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase (cycle %s): %v", e.Phase, e.Cycle, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

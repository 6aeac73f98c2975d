// internal/session/stage.go
//
// Stage ordering for the case analysis workflow. Every case walks the same
// fixed sequence; progression is strictly forward and the only way back is a
// full session reset.

package session

// Stage represents a step in the analysis workflow.
type Stage int

const (
	StageUpload Stage = iota
	StageProcess
	StageProcessed
	StageSimulated
	StageAudited
)

// String returns a human-readable name for the stage
func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "Upload"
	case StageProcess:
		return "Process"
	case StageProcessed:
		return "Processed"
	case StageSimulated:
		return "Simulated"
	case StageAudited:
		return "Audited"
	default:
		return "Unknown"
	}
}

// FriendlyName returns a short description suitable for the stage panel
func (s Stage) FriendlyName() string {
	switch s {
	case StageUpload:
		return "Select Document"
	case StageProcess:
		return "Extract Case Details"
	case StageProcessed:
		return "Ready to Simulate"
	case StageSimulated:
		return "Verdict Rendered"
	case StageAudited:
		return "Audit Complete"
	default:
		return s.String()
	}
}

// Next returns the stage that follows this one
func (s Stage) Next() Stage {
	if s >= StageAudited {
		return StageAudited
	}
	return s + 1
}

// IsTerminal returns true once only a reset remains
func (s Stage) IsTerminal() bool {
	return s == StageAudited
}

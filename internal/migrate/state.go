package migrate

// State represents a stage in the migration workflow lifecycle.
type State int

const (
	StateIdle State = iota
	StateCheckingPreconditions
	StateAwaitingConfirmation
	StateBackingUp
	StateValidatingConfig
	StateRewriting
	StateTesting
	StateReporting
	StateDone
	StateAborted
)

// String returns the snake_case name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCheckingPreconditions:
		return "checking_preconditions"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateBackingUp:
		return "backing_up"
	case StateValidatingConfig:
		return "validating_config"
	case StateRewriting:
		return "rewriting"
	case StateTesting:
		return "testing"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

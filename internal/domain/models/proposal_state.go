package models

// ProposalState is the lifecycle state shown for a proposal
type ProposalState string

const (
	// ProposalStateUnknown means the state could not be determined yet (data still loading)
	ProposalStateUnknown ProposalState = ""

	ProposalStateActive       ProposalState = "ACTIVE"
	ProposalStateTimelocked   ProposalState = "TIMELOCKED"
	ProposalStateExecutable   ProposalState = "EXECUTABLE"
	ProposalStateExecuted     ProposalState = "EXECUTED"
	ProposalStateExpired      ProposalState = "EXPIRED"
	ProposalStateFailed       ProposalState = "FAILED"
	ProposalStateRejected     ProposalState = "REJECTED"
	ProposalStateTimelockable ProposalState = "TIMELOCKABLE"
	ProposalStateModule       ProposalState = "MODULE"
	ProposalStatePending      ProposalState = "PENDING"
	ProposalStateClosed       ProposalState = "CLOSED"
)

// AllProposalStates returns every concrete state in display order
func AllProposalStates() []ProposalState {
	return []ProposalState{
		ProposalStateActive,
		ProposalStateTimelocked,
		ProposalStateExecutable,
		ProposalStateExecuted,
		ProposalStateExpired,
		ProposalStateFailed,
		ProposalStateRejected,
		ProposalStateTimelockable,
		ProposalStateModule,
		ProposalStatePending,
		ProposalStateClosed,
	}
}

// IsDetermined reports whether the state holds a concrete value
func (s ProposalState) IsDetermined() bool {
	return s != ProposalStateUnknown
}

// IsTerminal reports whether a proposal in this state can no longer change
func (s ProposalState) IsTerminal() bool {
	switch s {
	case ProposalStateExecuted,
		ProposalStateExpired,
		ProposalStateFailed,
		ProposalStateRejected,
		ProposalStateClosed,
		ProposalStateModule:
		return true
	}
	return false
}

// ParseProposalState converts a user supplied string into a state
func ParseProposalState(s string) (ProposalState, bool) {
	for _, state := range AllProposalStates() {
		if string(state) == s {
			return state, true
		}
	}
	return ProposalStateUnknown, false
}

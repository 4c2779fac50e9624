package models

// ActionKind is the user action available on a proposal
type ActionKind string

const (
	ActionNone            ActionKind = "none"
	ActionAwaitSignatures ActionKind = "await_signatures"
	ActionTimelock        ActionKind = "timelock"
	ActionExecute         ActionKind = "execute"
	ActionVote            ActionKind = "vote"
)

// ExecutionAction is the action to present for a proposal and whether it can run now
type ExecutionAction struct {
	Kind    ActionKind `json:"kind" yaml:"kind"`
	Enabled bool       `json:"enabled" yaml:"enabled"`
	Pending bool       `json:"pending" yaml:"pending"`
	Reason  string     `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Visible reports whether the action should be shown at all
func (a ExecutionAction) Visible() bool {
	return a.Kind != "" && a.Kind != ActionNone
}

// VoteChoice is a token-voting ballot choice
type VoteChoice uint8

const (
	VoteNo      VoteChoice = 0
	VoteYes     VoteChoice = 1
	VoteAbstain VoteChoice = 2
)

// ParseVoteChoice converts yes/no/abstain into a VoteChoice
func ParseVoteChoice(s string) (VoteChoice, bool) {
	switch s {
	case "no":
		return VoteNo, true
	case "yes":
		return VoteYes, true
	case "abstain":
		return VoteAbstain, true
	}
	return 0, false
}

func (c VoteChoice) String() string {
	switch c {
	case VoteNo:
		return "no"
	case VoteYes:
		return "yes"
	case VoteAbstain:
		return "abstain"
	}
	return "unknown"
}

package models

// ContractEventKind names a governance contract event that invalidates proposal state
type ContractEventKind string

const (
	EventExecutionSuccess      ContractEventKind = "ExecutionSuccess"
	EventExecutionFailure      ContractEventKind = "ExecutionFailure"
	EventTransactionTimelocked ContractEventKind = "TransactionTimelocked"
	EventFreezeVoteCast        ContractEventKind = "FreezeVoteCast"
	EventFreezeProposalCreated ContractEventKind = "FreezeProposalCreated"
	EventProposalCreated       ContractEventKind = "ProposalCreated"
	EventProposalExecuted      ContractEventKind = "ProposalExecuted"
	EventVoted                 ContractEventKind = "Voted"
)

// ContractEvent is a decoded log emitted by one of a DAO's contracts
type ContractEvent struct {
	Kind        ContractEventKind `json:"kind"`
	DAO         DAOKey            `json:"dao"`
	Contract    string            `json:"contract"`
	BlockNumber uint64            `json:"blockNumber"`
	TxHash      string            `json:"txHash"`
}

// AffectsFreezeGuard reports whether the event changes freeze guard state
func (e ContractEvent) AffectsFreezeGuard() bool {
	switch e.Kind {
	case EventFreezeVoteCast, EventFreezeProposalCreated, EventTransactionTimelocked:
		return true
	}
	return false
}

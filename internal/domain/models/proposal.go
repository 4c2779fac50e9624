package models

import (
	"math/big"
	"time"
)

// ProposalKind discriminates the payload carried by a Proposal
type ProposalKind string

const (
	ProposalKindMultisig ProposalKind = "multisig"
	ProposalKindAzorius  ProposalKind = "azorius"
	ProposalKindSnapshot ProposalKind = "snapshot"
	ProposalKindModule   ProposalKind = "module"
)

// Proposal is a governance proposal of any kind. Exactly one payload
// matching Kind is populated.
type Proposal struct {
	ID        string        `json:"id" yaml:"id"`
	Kind      ProposalKind  `json:"kind" yaml:"kind"`
	DAO       DAOKey        `json:"dao" yaml:"dao"`
	State     ProposalState `json:"state" yaml:"state"`
	Title     string        `json:"title,omitempty" yaml:"title,omitempty"`
	Proposer  string        `json:"proposer,omitempty" yaml:"proposer,omitempty"`
	CreatedAt time.Time     `json:"createdAt" yaml:"createdAt"`

	Multisig *MultisigPayload `json:"multisig,omitempty" yaml:"multisig,omitempty"`
	Azorius  *AzoriusPayload  `json:"azorius,omitempty" yaml:"azorius,omitempty"`
	Snapshot *SnapshotPayload `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	Module   *ModulePayload   `json:"module,omitempty" yaml:"module,omitempty"`
}

// MultisigPayload holds the Safe transaction backing a multisig proposal
type MultisigPayload struct {
	SafeTxHash       string         `json:"safeTxHash" yaml:"safeTxHash"`
	Nonce            uint64         `json:"nonce" yaml:"nonce"`
	Transaction      SafeTxData     `json:"transaction" yaml:"transaction"`
	Confirmations    []Confirmation `json:"confirmations" yaml:"confirmations"`
	SignersThreshold int            `json:"signersThreshold" yaml:"signersThreshold"`
	IsExecuted       bool           `json:"isExecuted" yaml:"isExecuted"`
	ExecutionTxHash  string         `json:"executionTxHash,omitempty" yaml:"executionTxHash,omitempty"`
	ExecutedAt       *time.Time     `json:"executedAt,omitempty" yaml:"executedAt,omitempty"`

	// TimelockedAt is read from the freeze guard. Nil means it has not been
	// read; the zero time means the transaction was never timelocked.
	TimelockedAt *time.Time `json:"timelockedAt,omitempty" yaml:"timelockedAt,omitempty"`

	// Rejection is the most confirmed rejection proposal sharing this nonce
	Rejection *Proposal `json:"rejection,omitempty" yaml:"rejection,omitempty"`
}

// AzoriusPayload holds a token-voting proposal read from the Azorius module
type AzoriusPayload struct {
	ProposalID   uint32       `json:"proposalId" yaml:"proposalId"`
	Azorius      string       `json:"azorius" yaml:"azorius"`
	Strategy     string       `json:"strategy" yaml:"strategy"`
	Transactions []SafeTxData `json:"transactions" yaml:"transactions"`
	Metadata     string       `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	RawState     uint8        `json:"rawState" yaml:"rawState"`
	Votes        VoteTally    `json:"votes" yaml:"votes"`
	StartBlock   uint64       `json:"startBlock" yaml:"startBlock"`
	EndBlock     uint64       `json:"endBlock" yaml:"endBlock"`
	CreatedBlock uint64       `json:"createdBlock" yaml:"createdBlock"`
	CreatedTx    string       `json:"createdTx,omitempty" yaml:"createdTx,omitempty"`
}

// VoteTally holds token-weighted vote totals
type VoteTally struct {
	Yes          *big.Int `json:"yes,omitempty" yaml:"yes,omitempty"`
	No           *big.Int `json:"no,omitempty" yaml:"no,omitempty"`
	Abstain      *big.Int `json:"abstain,omitempty" yaml:"abstain,omitempty"`
	VotingSupply *big.Int `json:"votingSupply,omitempty" yaml:"votingSupply,omitempty"`
}

// SnapshotPayload holds an off-chain Snapshot proposal
type SnapshotPayload struct {
	Space    string    `json:"space" yaml:"space"`
	RawState string    `json:"rawState" yaml:"rawState"`
	Start    time.Time `json:"start" yaml:"start"`
	End      time.Time `json:"end" yaml:"end"`
}

// ModulePayload holds a transaction executed through a Safe module
type ModulePayload struct {
	Module          string     `json:"module" yaml:"module"`
	Transaction     SafeTxData `json:"transaction" yaml:"transaction"`
	ExecutionTxHash string     `json:"executionTxHash,omitempty" yaml:"executionTxHash,omitempty"`
	ExecutedAt      *time.Time `json:"executedAt,omitempty" yaml:"executedAt,omitempty"`
}

// ConfirmationCount returns the number of signer confirmations on a multisig proposal
func (p *Proposal) ConfirmationCount() int {
	if p == nil || p.Multisig == nil {
		return 0
	}
	return len(p.Multisig.Confirmations)
}

// Nonce returns the Safe nonce of a multisig proposal
func (p *Proposal) Nonce() (uint64, bool) {
	if p == nil || p.Multisig == nil {
		return 0, false
	}
	return p.Multisig.Nonce, true
}

package models

import (
	"math/big"
	"time"
)

// FreezeGuard describes the optional freeze guard and freeze voting
// contracts attached to a Safe
type FreezeGuard struct {
	GuardAddress        string `json:"guardAddress" yaml:"guardAddress"`
	FreezeVotingAddress string `json:"freezeVotingAddress,omitempty" yaml:"freezeVotingAddress,omitempty"`

	TimelockPeriod  time.Duration `json:"timelockPeriod" yaml:"timelockPeriod"`
	ExecutionPeriod time.Duration `json:"executionPeriod" yaml:"executionPeriod"`

	FreezeVotesThreshold    *big.Int      `json:"freezeVotesThreshold,omitempty" yaml:"freezeVotesThreshold,omitempty"`
	FreezeProposalVoteCount *big.Int      `json:"freezeProposalVoteCount,omitempty" yaml:"freezeProposalVoteCount,omitempty"`
	FreezeProposalCreatedAt time.Time     `json:"freezeProposalCreatedAt" yaml:"freezeProposalCreatedAt"`
	FreezeProposalPeriod    time.Duration `json:"freezeProposalPeriod" yaml:"freezeProposalPeriod"`
	FreezePeriod            time.Duration `json:"freezePeriod" yaml:"freezePeriod"`

	UserHasFreezeVoted bool `json:"userHasFreezeVoted" yaml:"userHasFreezeVoted"`
	IsFrozen           bool `json:"isFrozen" yaml:"isFrozen"`
}

package blockchain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal ABIs of the contracts a DAO is made of. Only the members read or
// written here are included.

const safeABIJSON = `[
	{"type":"function","name":"nonce","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"execTransaction","stateMutability":"payable","inputs":[
		{"name":"to","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"},
		{"name":"operation","type":"uint8"},{"name":"safeTxGas","type":"uint256"},{"name":"baseGas","type":"uint256"},
		{"name":"gasPrice","type":"uint256"},{"name":"gasToken","type":"address"},{"name":"refundReceiver","type":"address"},
		{"name":"signatures","type":"bytes"}],"outputs":[{"name":"success","type":"bool"}]},
	{"type":"event","name":"ExecutionSuccess","anonymous":false,"inputs":[
		{"name":"txHash","type":"bytes32","indexed":false},{"name":"payment","type":"uint256","indexed":false}]},
	{"type":"event","name":"ExecutionFailure","anonymous":false,"inputs":[
		{"name":"txHash","type":"bytes32","indexed":false},{"name":"payment","type":"uint256","indexed":false}]}
]`

const freezeGuardABIJSON = `[
	{"type":"function","name":"timelockPeriod","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"executionPeriod","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"getTransactionTimelockedTimestamp","stateMutability":"view","inputs":[
		{"name":"_signaturesHash","type":"bytes32"}],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"timelockTransaction","stateMutability":"nonpayable","inputs":[
		{"name":"to","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"},
		{"name":"operation","type":"uint8"},{"name":"safeTxGas","type":"uint256"},{"name":"baseGas","type":"uint256"},
		{"name":"gasPrice","type":"uint256"},{"name":"gasToken","type":"address"},{"name":"refundReceiver","type":"address"},
		{"name":"signatures","type":"bytes"},{"name":"nonce","type":"uint32"}],"outputs":[]},
	{"type":"event","name":"TransactionTimelocked","anonymous":false,"inputs":[
		{"name":"timelocker","type":"address","indexed":true},{"name":"transactionHash","type":"bytes32","indexed":true},
		{"name":"signatures","type":"bytes","indexed":true}]}
]`

const freezeVotingABIJSON = `[
	{"type":"function","name":"freezeVotesThreshold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"freezeProposalCreatedTimestamp","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"freezeProposalPeriod","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"freezePeriod","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"freezeProposalVoteCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"userHasFreezeVoted","stateMutability":"view","inputs":[
		{"name":"","type":"address"},{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isFrozen","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"castFreezeVote","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"event","name":"FreezeVoteCast","anonymous":false,"inputs":[
		{"name":"voter","type":"address","indexed":true},{"name":"votesCast","type":"uint256","indexed":false}]},
	{"type":"event","name":"FreezeProposalCreated","anonymous":false,"inputs":[
		{"name":"creator","type":"address","indexed":true}]}
]`

const azoriusABIJSON = `[
	{"type":"function","name":"proposalState","stateMutability":"view","inputs":[
		{"name":"_proposalId","type":"uint32"}],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"getProposal","stateMutability":"view","inputs":[
		{"name":"_proposalId","type":"uint32"}],"outputs":[
		{"name":"_strategy","type":"address"},{"name":"_txHashes","type":"bytes32[]"},
		{"name":"_timelockPeriod","type":"uint32"},{"name":"_executionPeriod","type":"uint32"},
		{"name":"_executionCounter","type":"uint32"}]},
	{"type":"function","name":"executeProposal","stateMutability":"nonpayable","inputs":[
		{"name":"_proposalId","type":"uint32"},{"name":"_targets","type":"address[]"},{"name":"_values","type":"uint256[]"},
		{"name":"_data","type":"bytes[]"},{"name":"_operations","type":"uint8[]"}],"outputs":[]},
	{"type":"event","name":"ProposalCreated","anonymous":false,"inputs":[
		{"name":"strategy","type":"address","indexed":false},{"name":"proposalId","type":"uint256","indexed":false},
		{"name":"proposer","type":"address","indexed":false},
		{"name":"transactions","type":"tuple[]","indexed":false,"components":[
			{"name":"to","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"},{"name":"operation","type":"uint8"}]},
		{"name":"metadata","type":"string","indexed":false}]},
	{"type":"event","name":"ProposalExecuted","anonymous":false,"inputs":[
		{"name":"proposalId","type":"uint32","indexed":false},{"name":"txHashes","type":"bytes32[]","indexed":false}]}
]`

const strategyABIJSON = `[
	{"type":"function","name":"getProposalVotes","stateMutability":"view","inputs":[
		{"name":"_proposalId","type":"uint32"}],"outputs":[
		{"name":"noVotes","type":"uint256"},{"name":"yesVotes","type":"uint256"},{"name":"abstainVotes","type":"uint256"},
		{"name":"startBlock","type":"uint32"},{"name":"endBlock","type":"uint32"},{"name":"votingSupply","type":"uint256"}]},
	{"type":"function","name":"vote","stateMutability":"nonpayable","inputs":[
		{"name":"_proposalId","type":"uint32"},{"name":"_voteType","type":"uint8"}],"outputs":[]},
	{"type":"function","name":"hasVoted","stateMutability":"view","inputs":[
		{"name":"_proposalId","type":"uint32"},{"name":"_address","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Voted","anonymous":false,"inputs":[
		{"name":"voter","type":"address","indexed":false},{"name":"proposalId","type":"uint32","indexed":false},
		{"name":"voteType","type":"uint8","indexed":false},{"name":"weight","type":"uint256","indexed":false}]}
]`

var (
	SafeABI         = mustParseABI(safeABIJSON)
	FreezeGuardABI  = mustParseABI(freezeGuardABIJSON)
	FreezeVotingABI = mustParseABI(freezeVotingABIJSON)
	AzoriusABI      = mustParseABI(azoriusABIJSON)
	StrategyABI     = mustParseABI(strategyABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("invalid embedded ABI: " + err.Error())
	}
	return parsed
}

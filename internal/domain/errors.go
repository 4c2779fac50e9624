package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidChainID is returned when a chain ID is invalid
	ErrInvalidChainID = errors.New("invalid chain ID")

	// ErrUnsupportedChain is returned when no Safe Transaction Service is known for a chain
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrActionPending is returned when the same action is already in flight for a proposal
	ErrActionPending = errors.New("action already pending")

	// ErrMissingPrerequisite marks data that is still loading or not configured
	// (wallet, guard, RPC). Callers treat it as a no-op, not a failure.
	ErrMissingPrerequisite = errors.New("missing prerequisite")

	// ErrTruncated is returned with the partial results of a listing that was cut short
	ErrTruncated = errors.New("listing truncated")

	// ErrTransactionReverted is returned when a submitted transaction was mined but reverted
	ErrTransactionReverted = errors.New("transaction reverted")
)

// MalformedSignatureError is returned when a confirmation signature is not valid hex
type MalformedSignatureError struct {
	Signer    string
	Signature string
}

func (e MalformedSignatureError) Error() string {
	return fmt.Sprintf("malformed signature from %s: %q is not valid hex", e.Signer, e.Signature)
}

// ActionUnavailableError is returned when the requested action is not the one
// selected for the proposal, or it is disabled
type ActionUnavailableError struct {
	ProposalID string
	Requested  models.ActionKind
	Available  models.ExecutionAction
}

func (e ActionUnavailableError) Error() string {
	if e.Available.Kind != e.Requested {
		return fmt.Sprintf("cannot %s proposal %s: available action is %s", e.Requested, e.ProposalID, e.Available.Kind)
	}
	return fmt.Sprintf("cannot %s proposal %s: %s", e.Requested, e.ProposalID, e.Available.Reason)
}

// UnknownProposalKindError is returned when a proposal carries an unrecognised kind
type UnknownProposalKindError struct {
	Kind models.ProposalKind
}

func (e UnknownProposalKindError) Error() string {
	return fmt.Sprintf("unknown proposal kind %q", e.Kind)
}

// NoDAOsMatchErr is returned when a DAO reference resolves to nothing
type NoDAOsMatchErr struct {
	Query string
}

func (e NoDAOsMatchErr) Error() string {
	return fmt.Sprintf("no DAOs match %q", e.Query)
}

// AmbiguousDAOError is returned when a DAO reference matches several configured DAOs
type AmbiguousDAOError struct {
	Query   string
	Matches []*models.DAO
}

func (e AmbiguousDAOError) Error() string {
	names := make([]string, 0, len(e.Matches))
	for _, dao := range e.Matches {
		names = append(names, fmt.Sprintf("  - %s (%s)", dao.Name, dao.Key))
	}
	sort.Strings(names)

	return fmt.Sprintf("multiple DAOs match %q - use the full name:\n%s",
		e.Query, strings.Join(names, "\n"))
}

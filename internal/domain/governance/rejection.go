package governance

import (
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// IsMultisigRejection reports whether candidate is a rejection proposal for
// the given Safe and nonce: same nonce, no calldata, sent to the Safe itself,
// zero value.
func IsMultisigRejection(safe string, nonce uint64, candidate *models.Proposal) bool {
	if candidate == nil || candidate.Kind != models.ProposalKindMultisig || candidate.Multisig == nil {
		return false
	}
	tx := candidate.Multisig.Transaction
	return candidate.Multisig.Nonce == nonce &&
		isEmptyCalldata(tx.Data) &&
		sameAddress(tx.To, safe) &&
		isZeroValue(tx.Value)
}

// FindMostConfirmedMultisigRejectionProposal returns the qualifying rejection
// proposal with the most confirmations, or nil. Equal counts keep input order.
func FindMostConfirmedMultisigRejectionProposal(safe string, nonce uint64, proposals []*models.Proposal) *models.Proposal {
	if proposals == nil {
		return nil
	}

	candidates := lo.Filter(proposals, func(p *models.Proposal, _ int) bool {
		return IsMultisigRejection(safe, nonce, p)
	})
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ConfirmationCount() > candidates[j].ConfirmationCount()
	})
	return candidates[0]
}

// AttachRejections links every non-rejection multisig proposal to its most
// confirmed rejection sibling.
func AttachRejections(safe string, proposals []*models.Proposal) {
	for _, p := range proposals {
		if p.Kind != models.ProposalKindMultisig || p.Multisig == nil {
			continue
		}
		if IsMultisigRejection(safe, p.Multisig.Nonce, p) {
			continue
		}
		p.Multisig.Rejection = FindMostConfirmedMultisigRejectionProposal(safe, p.Multisig.Nonce, proposals)
	}
}

func isEmptyCalldata(data string) bool {
	data = strings.TrimSpace(data)
	return data == "" || strings.EqualFold(data, "0x")
}

func sameAddress(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return false
	}
	return common.HexToAddress(a) == common.HexToAddress(b)
}

func isZeroValue(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	v, ok := new(big.Int).SetString(value, 0)
	if !ok {
		return false
	}
	return v.Sign() == 0
}

package governance

import (
	"bytes"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// BuildSignatureBytes concatenates confirmation signatures in ascending signer
// order, the layout Safe.execTransaction expects.
func BuildSignatureBytes(confirmations []models.Confirmation) ([]byte, error) {
	sorted := make([]models.Confirmation, len(confirmations))
	copy(sorted, confirmations)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := common.HexToAddress(sorted[i].Signer)
		b := common.HexToAddress(sorted[j].Signer)
		return bytes.Compare(a.Bytes(), b.Bytes()) < 0
	})

	var out []byte
	for _, c := range sorted {
		sig, err := decodeSignature(c.Signature)
		if err != nil {
			return nil, domain.MalformedSignatureError{Signer: c.Signer, Signature: c.Signature}
		}
		out = append(out, sig...)
	}
	return out, nil
}

// SignaturesHash is the key the freeze guard stores timelock timestamps under
func SignaturesHash(signatures []byte) common.Hash {
	return crypto.Keccak256Hash(signatures)
}

func decodeSignature(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	sig, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(sig) == 0 {
		return nil, hexutil.ErrEmptyNumber
	}
	return sig, nil
}

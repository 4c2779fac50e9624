package safe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// maxPages bounds pagination so a misbehaving service cannot loop forever
const maxPages = 50

// ErrTruncated is returned alongside the results read so far when a listing
// has more than maxPages pages
var ErrTruncated = errors.New("listing truncated")

// FlexString accepts a JSON string or number and keeps its textual form.
// The service has returned gas fields and nonces as either over time.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*s = FlexString(num.String())
	return nil
}

// Uint64 parses the value, treating an empty string as zero
func (s FlexString) Uint64() (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(string(s), 10, 64)
}

// SafeInfo is the response of /api/v1/safes/{address}/
type SafeInfo struct {
	Address   string     `json:"address"`
	Nonce     FlexString `json:"nonce"`
	Threshold int        `json:"threshold"`
	Owners    []string   `json:"owners"`
	Modules   []string   `json:"modules"`
	Guard     string     `json:"guard"`
	Version   string     `json:"version"`
}

// MultisigTransaction represents a Safe multisig transaction
type MultisigTransaction struct {
	Safe                  string         `json:"safe"`
	To                    string         `json:"to"`
	Value                 string         `json:"value"`
	Data                  *string        `json:"data"`
	Operation             int            `json:"operation"`
	SafeTxGas             FlexString     `json:"safeTxGas"`
	BaseGas               FlexString     `json:"baseGas"`
	GasPrice              FlexString     `json:"gasPrice"`
	GasToken              string         `json:"gasToken"`
	RefundReceiver        string         `json:"refundReceiver"`
	Nonce                 FlexString     `json:"nonce"`
	ExecutionDate         *time.Time     `json:"executionDate"`
	SubmissionDate        time.Time      `json:"submissionDate"`
	Modified              time.Time      `json:"modified"`
	BlockNumber           *int64         `json:"blockNumber"`
	TransactionHash       *string        `json:"transactionHash"`
	SafeTxHash            string         `json:"safeTxHash"`
	Proposer              string         `json:"proposer"`
	Executor              *string        `json:"executor"`
	IsExecuted            bool           `json:"isExecuted"`
	IsSuccessful          *bool          `json:"isSuccessful"`
	Origin                string         `json:"origin"`
	DataDecoded           *DataDecoded   `json:"dataDecoded"`
	ConfirmationsRequired int            `json:"confirmationsRequired"`
	Confirmations         []Confirmation `json:"confirmations"`
	Trusted               bool           `json:"trusted"`
	Signatures            *string        `json:"signatures"`
}

// DataDecoded is the service's decoding of the transaction calldata
type DataDecoded struct {
	Method string `json:"method"`
}

// Confirmation represents a confirmation on a Safe transaction
type Confirmation struct {
	Owner           string    `json:"owner"`
	SubmissionDate  time.Time `json:"submissionDate"`
	TransactionHash *string   `json:"transactionHash"`
	Signature       string    `json:"signature"`
	SignatureType   string    `json:"signatureType"`
}

// ModuleTransaction represents a transaction executed through a Safe module
type ModuleTransaction struct {
	Safe                string       `json:"safe"`
	Module              string       `json:"module"`
	To                  string       `json:"to"`
	Value               string       `json:"value"`
	Data                *string      `json:"data"`
	Operation           int          `json:"operation"`
	Created             time.Time    `json:"created"`
	ExecutionDate       *time.Time   `json:"executionDate"`
	BlockNumber         *int64       `json:"blockNumber"`
	TransactionHash     string       `json:"transactionHash"`
	IsSuccessful        bool         `json:"isSuccessful"`
	ModuleTransactionID string       `json:"moduleTransactionId"`
	DataDecoded         *DataDecoded `json:"dataDecoded"`
}

type page[T any] struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// GetSafeInfo retrieves the current configuration of a Safe
func (c *SafeClient) GetSafeInfo(ctx context.Context, safeAddress common.Address) (*SafeInfo, error) {
	url := fmt.Sprintf("%s/api/v1/safes/%s/", c.serviceURL, safeAddress.Hex())

	var info SafeInfo
	if err := c.getJSON(ctx, url, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetTransaction retrieves a Safe transaction by its hash
func (c *SafeClient) GetTransaction(ctx context.Context, safeTxHash common.Hash) (*MultisigTransaction, error) {
	url := fmt.Sprintf("%s/api/v1/multisig-transactions/%s/", c.serviceURL, safeTxHash.Hex())

	var tx MultisigTransaction
	if err := c.getJSON(ctx, url, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListMultisigTransactions retrieves every multisig transaction of a Safe, newest nonce first.
// A listing cut short returns the transactions read so far with ErrTruncated.
func (c *SafeClient) ListMultisigTransactions(ctx context.Context, safeAddress common.Address) ([]*MultisigTransaction, error) {
	url := fmt.Sprintf("%s/api/v1/safes/%s/multisig-transactions/?ordering=-nonce&limit=100",
		c.serviceURL, safeAddress.Hex())
	return collectPages[*MultisigTransaction](ctx, c, url)
}

// ListModuleTransactions retrieves transactions executed through the Safe's modules
func (c *SafeClient) ListModuleTransactions(ctx context.Context, safeAddress common.Address) ([]*ModuleTransaction, error) {
	url := fmt.Sprintf("%s/api/v1/safes/%s/module-transactions/?limit=100",
		c.serviceURL, safeAddress.Hex())
	return collectPages[*ModuleTransaction](ctx, c, url)
}

func collectPages[T any](ctx context.Context, c *SafeClient, url string) ([]T, error) {
	var all []T
	for i := 0; url != ""; i++ {
		if i == maxPages {
			return all, fmt.Errorf("%w: stopped after %d pages with %d results", ErrTruncated, maxPages, len(all))
		}

		var p page[T]
		if err := c.getJSON(ctx, url, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Results...)

		url = ""
		if p.Next != nil {
			url = *p.Next
		}
	}
	return all, nil
}

package models

import "time"

// Operation is the Safe call type
type Operation uint8

const (
	OperationCall         Operation = 0
	OperationDelegateCall Operation = 1
)

// SafeTxData is the transaction a Safe proposal would execute
type SafeTxData struct {
	To             string    `json:"to" yaml:"to"`
	Value          string    `json:"value" yaml:"value"`
	Data           string    `json:"data,omitempty" yaml:"data,omitempty"`
	Operation      Operation `json:"operation" yaml:"operation"`
	SafeTxGas      string    `json:"safeTxGas,omitempty" yaml:"safeTxGas,omitempty"`
	BaseGas        string    `json:"baseGas,omitempty" yaml:"baseGas,omitempty"`
	GasPrice       string    `json:"gasPrice,omitempty" yaml:"gasPrice,omitempty"`
	GasToken       string    `json:"gasToken,omitempty" yaml:"gasToken,omitempty"`
	RefundReceiver string    `json:"refundReceiver,omitempty" yaml:"refundReceiver,omitempty"`
}

// Confirmation represents a signer confirmation on a Safe transaction
type Confirmation struct {
	Signer      string    `json:"signer" yaml:"signer"`
	Signature   string    `json:"signature" yaml:"signature"`
	ConfirmedAt time.Time `json:"confirmedAt" yaml:"confirmedAt"`
}

// SafeInfo is the current on-chain configuration of a Safe
type SafeInfo struct {
	Address   string   `json:"address" yaml:"address"`
	Nonce     uint64   `json:"nonce" yaml:"nonce"`
	Threshold int      `json:"threshold" yaml:"threshold"`
	Owners    []string `json:"owners" yaml:"owners"`
	Modules   []string `json:"modules,omitempty" yaml:"modules,omitempty"`
	Guard     string   `json:"guard,omitempty" yaml:"guard,omitempty"`
	Version   string   `json:"version,omitempty" yaml:"version,omitempty"`
}

package types

import "loyaltyledger/crypto"

const (
	ReceiptStatusSuccess = "success"
	ReceiptStatusFailed  = "failed"
)

// Receipt records the outcome of an executed transaction. Failed operations
// carry the error text and no events.
type Receipt struct {
	TxHash    string         `json:"txHash"`
	Type      string         `json:"type"`
	Caller    crypto.Address `json:"caller"`
	Nonce     uint64         `json:"nonce"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Events    []Event        `json:"events"`
	StateRoot string         `json:"stateRoot"`
	Version   uint64         `json:"version"`
}

// Succeeded reports whether the operation committed.
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == ReceiptStatusSuccess
}

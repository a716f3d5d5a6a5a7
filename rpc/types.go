package rpc

import (
	"encoding/json"

	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/loyalty"
)

const jsonRPCVersion = "2.0"

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AddressParams selects a single account or asset.
type AddressParams struct {
	Address crypto.Address `json:"address"`
}

// BalanceParams selects one owner's holding of one asset. An empty asset
// selects the payment asset.
type BalanceParams struct {
	Owner crypto.Address  `json:"owner"`
	Asset *crypto.Address `json:"asset,omitempty"`
}

// DeriveParams names the merchant authority and, optionally, a customer.
type DeriveParams struct {
	Authority crypto.Address  `json:"authority"`
	Customer  *crypto.Address `json:"customer,omitempty"`
}

// ReceiptParams selects a receipt by transaction hash.
type ReceiptParams struct {
	Hash string `json:"hash"`
}

// MerchantResult is the JSON rendering of a merchant record.
type MerchantResult struct {
	Address                    crypto.Address `json:"address"`
	Authority                  crypto.Address `json:"authority"`
	PaymentDestination         crypto.Address `json:"paymentDestination"`
	RewardPointsAsset          crypto.Address `json:"rewardPointsAsset"`
	RewardPointsBasisPoints    uint16         `json:"rewardPointsBasisPoints"`
	LoyaltyCollectionAsset     crypto.Address `json:"loyaltyCollectionAsset"`
	LoyaltyDiscountBasisPoints uint16         `json:"loyaltyDiscountBasisPoints"`
}

func merchantResult(addr crypto.Address, m *loyalty.MerchantAccount) MerchantResult {
	return MerchantResult{
		Address:                    addr,
		Authority:                  m.Authority,
		PaymentDestination:         m.PaymentDestination,
		RewardPointsAsset:          m.RewardPointsAsset,
		RewardPointsBasisPoints:    m.RewardPointsBasisPoints,
		LoyaltyCollectionAsset:     m.LoyaltyCollectionAsset,
		LoyaltyDiscountBasisPoints: m.LoyaltyDiscountBasisPoints,
	}
}

// BalanceResult reports a holding balance.
type BalanceResult struct {
	Owner   crypto.Address `json:"owner"`
	Asset   crypto.Address `json:"asset"`
	Balance uint64         `json:"balance"`
}

// NonceResult reports the nonce the next transaction must carry.
type NonceResult struct {
	Address crypto.Address `json:"address"`
	Nonce   uint64         `json:"nonce"`
}

// HeadResult reports the committed state head.
type HeadResult struct {
	ChainID      uint64         `json:"chainId"`
	PaymentAsset crypto.Address `json:"paymentAsset"`
	StateRoot    string         `json:"stateRoot"`
	Version      uint64         `json:"version"`
}

// SendTransactionResult is returned for an executed transaction.
type SendTransactionResult struct {
	Receipt *types.Receipt `json:"receipt"`
}

package types

import "loyaltyledger/crypto"

// InitRewardPointsParams configures a merchant's reward-point asset.
type InitRewardPointsParams struct {
	Merchant    crypto.Address `json:"merchant"`
	BasisPoints uint16         `json:"basisPoints"`
	URI         string         `json:"uri"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
}

// TransactionParams describes a customer payment to a merchant.
type TransactionParams struct {
	Merchant crypto.Address `json:"merchant"`
	Amount   uint64         `json:"amount"`
}

// CreateCollectionParams creates the merchant's loyalty collection badge.
type CreateCollectionParams struct {
	Merchant                   crypto.Address `json:"merchant"`
	LoyaltyDiscountBasisPoints uint16         `json:"loyaltyDiscountBasisPoints"`
	URI                        string         `json:"uri"`
	Name                       string         `json:"name"`
	Symbol                     string         `json:"symbol"`
}

// CreateItemParams issues a loyalty badge to the signing customer.
type CreateItemParams struct {
	Merchant crypto.Address `json:"merchant"`
	Customer crypto.Address `json:"customer"`
	URI      string         `json:"uri"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
}

// UpdateBasisPointsParams overwrites one of the merchant's rates.
type UpdateBasisPointsParams struct {
	Merchant    crypto.Address `json:"merchant"`
	BasisPoints uint16         `json:"basisPoints"`
}

// MintRewardPointsParams grants points to a customer manually.
type MintRewardPointsParams struct {
	Merchant crypto.Address `json:"merchant"`
	Customer crypto.Address `json:"customer"`
	Amount   uint64         `json:"amount"`
}

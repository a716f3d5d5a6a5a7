package ledger

import "loyaltyledger/crypto"

// Asset is a fungible or unique balance asset. A zero SupplyCap means the
// supply is unbounded.
type Asset struct {
	Address         crypto.Address
	MintAuthority   crypto.Address
	FreezeAuthority crypto.Address
	Decimals        uint8
	Supply          uint64
	SupplyCap       uint64
}

// Capped reports whether the asset supply is bounded.
func (a *Asset) Capped() bool {
	return a != nil && a.SupplyCap > 0
}

// HoldingAccount stores one owner's balance of one asset. Its address is
// HoldingAddress(Owner, Asset).
type HoldingAccount struct {
	Address crypto.Address
	Asset   crypto.Address
	Owner   crypto.Address
	Amount  uint64
}

// AssetSpec describes an asset to create.
type AssetSpec struct {
	Address         crypto.Address
	MintAuthority   crypto.Address
	FreezeAuthority crypto.Address
	Decimals        uint8
	SupplyCap       uint64
}

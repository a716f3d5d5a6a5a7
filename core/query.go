package core

import (
	"fmt"

	coreerrors "loyaltyledger/core/errors"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/ledger"
	"loyaltyledger/native/loyalty"
	"loyaltyledger/native/metadata"
)

// ErrReceiptsDisabled indicates the host was built without a receipt store.
var ErrReceiptsDisabled = fmt.Errorf("query: receipts %w", coreerrors.ErrNotFound)

// AssetMetadata bundles the descriptive record of an asset with its edition.
type AssetMetadata struct {
	Metadata *metadata.Metadata `json:"metadata"`
	Edition  *metadata.Edition  `json:"edition,omitempty"`
}

// Merchant returns the merchant record stored at addr.
func (h *Host) Merchant(addr crypto.Address) (*loyalty.MerchantAccount, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok, err := h.engine.Merchant(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", loyalty.ErrMerchantNotFound, addr)
	}
	return m, nil
}

// Asset returns the ledger asset at addr.
func (h *Host) Asset(addr crypto.Address) (*ledger.Asset, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	asset, ok, err := h.ledger.Asset(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAssetNotFound, addr)
	}
	return asset, nil
}

// Balance returns owner's holding of asset. Missing holdings read as zero.
func (h *Host) Balance(owner, asset crypto.Address) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ledger.Balance(owner, asset)
}

// Metadata returns the descriptive record and edition of asset.
func (h *Host) Metadata(asset crypto.Address) (*AssetMetadata, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	md, ok, err := h.registry.Metadata(asset)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", metadata.ErrMetadataNotFound, asset)
	}
	out := &AssetMetadata{Metadata: md}
	edition, ok, err := h.registry.Edition(asset)
	if err != nil {
		return nil, err
	}
	if ok {
		out.Edition = edition
	}
	return out, nil
}

// Nonce returns the nonce the next transaction of addr must carry.
func (h *Host) Nonce(addr crypto.Address) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.manager.Nonce(addr)
}

// Receipt returns the receipt of the transaction with the given hash.
func (h *Host) Receipt(hash string) (*types.Receipt, error) {
	if h.receipts == nil {
		return nil, ErrReceiptsDisabled
	}
	return h.receipts.Get(hash)
}

// DeriveAddresses computes the addresses owned by authority's merchant.
func (h *Host) DeriveAddresses(authority crypto.Address, customer *crypto.Address) loyalty.Addresses {
	return loyalty.DeriveAddresses(authority, customer)
}

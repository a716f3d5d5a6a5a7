package core

import (
	"fmt"

	coreerrors "loyaltyledger/core/errors"
	"loyaltyledger/core/state"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/ledger"
)

// DefaultPaymentAsset is the address of the payment asset when the genesis
// does not name one.
var DefaultPaymentAsset = crypto.ProgramID("payment-asset")

// Allocation credits an identity with payment asset units at genesis.
type Allocation struct {
	Owner  crypto.Address
	Amount uint64
}

// Genesis describes the payment asset and its initial distribution.
type Genesis struct {
	PaymentAsset  crypto.Address
	MintAuthority crypto.Address
	Decimals      uint8
	Allocations   []Allocation
}

func (g Genesis) paymentAsset() crypto.Address {
	if g.PaymentAsset.IsZero() {
		return DefaultPaymentAsset
	}
	return g.PaymentAsset
}

func (g Genesis) validate() error {
	if g.MintAuthority.IsZero() {
		return fmt.Errorf("genesis: mint authority required: %w", coreerrors.ErrInvalidArgument)
	}
	seen := make(map[crypto.Address]struct{}, len(g.Allocations))
	for i, alloc := range g.Allocations {
		if alloc.Owner.IsZero() {
			return fmt.Errorf("genesis: allocation %d: owner required: %w", i, coreerrors.ErrInvalidArgument)
		}
		if _, dup := seen[alloc.Owner]; dup {
			return fmt.Errorf("genesis: allocation %d: duplicate owner %s: %w", i, alloc.Owner, coreerrors.ErrInvalidArgument)
		}
		seen[alloc.Owner] = struct{}{}
	}
	return nil
}

// Bootstrap creates the payment asset and credits the genesis allocations.
// Bootstrapping state that already holds the asset is a no-op.
func (h *Host) Bootstrap(genesis Genesis) error {
	if err := genesis.validate(); err != nil {
		return err
	}
	asset := genesis.paymentAsset()
	if asset != h.engine.PaymentAsset() {
		return fmt.Errorf("genesis: payment asset %s does not match host asset %s: %w", asset, h.engine.PaymentAsset(), coreerrors.ErrAddressMismatch)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok, err := h.ledger.Asset(asset); err != nil {
		return err
	} else if ok {
		return nil
	}
	res, err := h.apply(func() error {
		signers := types.NewSigners(asset, genesis.MintAuthority)
		if _, err := h.ledger.CreateAsset(ledger.AssetSpec{
			Address:       asset,
			MintAuthority: genesis.MintAuthority,
			Decimals:      genesis.Decimals,
		}, signers); err != nil {
			return err
		}
		for _, alloc := range genesis.Allocations {
			account, _, err := h.ledger.CreateHoldingAccountIfAbsent(alloc.Owner, asset)
			if err != nil {
				return err
			}
			if alloc.Amount == 0 {
				continue
			}
			if err := h.ledger.Mint(asset, account, alloc.Amount, signers); err != nil {
				return err
			}
		}
		return h.manager.SetStateVersion(state.StateVersion)
	})
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	h.logger.Info("genesis applied",
		"paymentAsset", asset.String(),
		"allocations", len(genesis.Allocations),
		"root", res.root.Hex(),
		"version", res.version,
	)
	return nil
}

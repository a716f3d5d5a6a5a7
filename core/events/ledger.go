package events

import (
	"strconv"

	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
)

const (
	TypeLedgerAssetCreated   = "ledger.asset.created"
	TypeLedgerAccountCreated = "ledger.account.created"
	TypeLedgerMint           = "ledger.mint"
	TypeLedgerTransfer       = "ledger.transfer"
	TypeLedgerSupplyCapped   = "ledger.supply.capped"
)

type LedgerAssetCreated struct {
	Asset         crypto.Address
	MintAuthority crypto.Address
	Decimals      uint8
}

func (LedgerAssetCreated) EventType() string { return TypeLedgerAssetCreated }

func (e LedgerAssetCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeLedgerAssetCreated,
		Attributes: map[string]string{
			"asset":         e.Asset.String(),
			"mintAuthority": e.MintAuthority.String(),
			"decimals":      strconv.FormatUint(uint64(e.Decimals), 10),
		},
	}
}

type LedgerAccountCreated struct {
	Account crypto.Address
	Asset   crypto.Address
	Owner   crypto.Address
}

func (LedgerAccountCreated) EventType() string { return TypeLedgerAccountCreated }

func (e LedgerAccountCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeLedgerAccountCreated,
		Attributes: map[string]string{
			"account": e.Account.String(),
			"asset":   e.Asset.String(),
			"owner":   e.Owner.String(),
		},
	}
}

type LedgerMint struct {
	Asset   crypto.Address
	Account crypto.Address
	Amount  uint64
	Supply  uint64
}

func (LedgerMint) EventType() string { return TypeLedgerMint }

func (e LedgerMint) Event() *types.Event {
	return &types.Event{
		Type: TypeLedgerMint,
		Attributes: map[string]string{
			"asset":   e.Asset.String(),
			"account": e.Account.String(),
			"amount":  strconv.FormatUint(e.Amount, 10),
			"supply":  strconv.FormatUint(e.Supply, 10),
		},
	}
}

type LedgerTransfer struct {
	Asset  crypto.Address
	From   crypto.Address
	To     crypto.Address
	Amount uint64
}

func (LedgerTransfer) EventType() string { return TypeLedgerTransfer }

func (e LedgerTransfer) Event() *types.Event {
	return &types.Event{
		Type: TypeLedgerTransfer,
		Attributes: map[string]string{
			"asset":  e.Asset.String(),
			"from":   e.From.String(),
			"to":     e.To.String(),
			"amount": strconv.FormatUint(e.Amount, 10),
		},
	}
}

type LedgerSupplyCapped struct {
	Asset crypto.Address
	Cap   uint64
}

func (LedgerSupplyCapped) EventType() string { return TypeLedgerSupplyCapped }

func (e LedgerSupplyCapped) Event() *types.Event {
	return &types.Event{
		Type: TypeLedgerSupplyCapped,
		Attributes: map[string]string{
			"asset": e.Asset.String(),
			"cap":   strconv.FormatUint(e.Cap, 10),
		},
	}
}

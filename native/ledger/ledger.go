package ledger

import (
	"fmt"
	"math/bits"

	"loyaltyledger/core/events"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
)

type ledgerState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	PutDerivation(addr crypto.Address, capability crypto.Capability) error
}

// Ledger holds assets and per-owner holding accounts. Every mutation is
// authorised against the signer set handed in by the calling program.
type Ledger struct {
	st      ledgerState
	emitter events.Emitter
}

// New creates a ledger backed by the provided state manager.
func New(st ledgerState) *Ledger {
	return &Ledger{st: st, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets the emitter to a
// no-op implementation.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// Asset returns the asset stored at addr.
func (l *Ledger) Asset(addr crypto.Address) (*Asset, bool, error) {
	asset := new(Asset)
	ok, err := l.st.KVGet(assetKey(addr), asset)
	if err != nil || !ok {
		return nil, ok, err
	}
	return asset, true, nil
}

// Account returns the holding account stored at addr.
func (l *Ledger) Account(addr crypto.Address) (*HoldingAccount, bool, error) {
	account := new(HoldingAccount)
	ok, err := l.st.KVGet(accountKey(addr), account)
	if err != nil || !ok {
		return nil, ok, err
	}
	return account, true, nil
}

// Balance returns owner's balance of asset. Missing accounts hold zero.
func (l *Ledger) Balance(owner, asset crypto.Address) (uint64, error) {
	account, ok, err := l.Account(HoldingAddress(owner, asset))
	if err != nil || !ok {
		return 0, err
	}
	return account.Amount, nil
}

// CreateAsset registers a new asset. The asset address itself must be among
// the signers, which for derived addresses means the creating program
// presented the asset's capability.
func (l *Ledger) CreateAsset(spec AssetSpec, signers types.Signers) (*Asset, error) {
	if spec.Address.IsZero() || spec.MintAuthority.IsZero() {
		return nil, ErrZeroAddress
	}
	if !signers.Contains(spec.Address) {
		return nil, fmt.Errorf("%w: asset %s", ErrMissingSigner, spec.Address)
	}
	_, exists, err := l.Asset(spec.Address)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAssetExists, spec.Address)
	}
	asset := &Asset{
		Address:         spec.Address,
		MintAuthority:   spec.MintAuthority,
		FreezeAuthority: spec.FreezeAuthority,
		Decimals:        spec.Decimals,
		SupplyCap:       spec.SupplyCap,
	}
	if err := l.st.KVPut(assetKey(asset.Address), asset); err != nil {
		return nil, err
	}
	l.emitter.Emit(events.LedgerAssetCreated{
		Asset:         asset.Address,
		MintAuthority: asset.MintAuthority,
		Decimals:      asset.Decimals,
	})
	return asset, nil
}

// CreateHoldingAccountIfAbsent ensures owner has a holding account for asset
// and returns its address. The boolean reports whether it was created.
func (l *Ledger) CreateHoldingAccountIfAbsent(owner, asset crypto.Address) (crypto.Address, bool, error) {
	if owner.IsZero() {
		return crypto.Address{}, false, ErrZeroAddress
	}
	if _, ok, err := l.Asset(asset); err != nil {
		return crypto.Address{}, false, err
	} else if !ok {
		return crypto.Address{}, false, fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}
	capability := HoldingCapability(owner, asset)
	addr, err := capability.Address()
	if err != nil {
		return crypto.Address{}, false, err
	}
	_, exists, err := l.Account(addr)
	if err != nil {
		return crypto.Address{}, false, err
	}
	if exists {
		return addr, false, nil
	}
	account := &HoldingAccount{Address: addr, Asset: asset, Owner: owner}
	if err := l.st.KVPut(accountKey(addr), account); err != nil {
		return crypto.Address{}, false, err
	}
	if err := l.st.PutDerivation(addr, capability); err != nil {
		return crypto.Address{}, false, err
	}
	l.emitter.Emit(events.LedgerAccountCreated{Account: addr, Asset: asset, Owner: owner})
	return addr, true, nil
}

func (l *Ledger) loadAccount(addr, asset crypto.Address) (*HoldingAccount, error) {
	account, ok, err := l.Account(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if account.Asset != asset {
		return nil, fmt.Errorf("%w: account %s holds %s", ErrAccountAsset, addr, account.Asset)
	}
	return account, nil
}

// Mint creates amount new units of asset in the holding account to. The
// asset's mint authority must sign.
func (l *Ledger) Mint(assetAddr, to crypto.Address, amount uint64, signers types.Signers) error {
	asset, ok, err := l.Asset(assetAddr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, assetAddr)
	}
	if !signers.Contains(asset.MintAuthority) {
		return fmt.Errorf("%w: mint authority %s", ErrMissingSigner, asset.MintAuthority)
	}
	account, err := l.loadAccount(to, assetAddr)
	if err != nil {
		return err
	}
	supply, carry := bits.Add64(asset.Supply, amount, 0)
	if carry != 0 {
		return ErrSupplyOverflow
	}
	if asset.Capped() && supply > asset.SupplyCap {
		return fmt.Errorf("%w: supply %d cap %d", ErrSupplyCapExceeded, supply, asset.SupplyCap)
	}
	balance, carry := bits.Add64(account.Amount, amount, 0)
	if carry != 0 {
		return ErrBalanceOverflow
	}
	asset.Supply = supply
	account.Amount = balance
	if err := l.st.KVPut(assetKey(asset.Address), asset); err != nil {
		return err
	}
	if err := l.st.KVPut(accountKey(account.Address), account); err != nil {
		return err
	}
	l.emitter.Emit(events.LedgerMint{Asset: asset.Address, Account: account.Address, Amount: amount, Supply: supply})
	return nil
}

// Transfer moves amount of asset between two holding accounts. The owner of
// the source account must sign.
func (l *Ledger) Transfer(assetAddr, from, to crypto.Address, amount uint64, signers types.Signers) error {
	source, err := l.loadAccount(from, assetAddr)
	if err != nil {
		return err
	}
	if !signers.Contains(source.Owner) {
		return fmt.Errorf("%w: owner %s", ErrMissingSigner, source.Owner)
	}
	dest, err := l.loadAccount(to, assetAddr)
	if err != nil {
		return err
	}
	if source.Amount < amount {
		return fmt.Errorf("%w: have %d need %d", ErrInsufficientBalance, source.Amount, amount)
	}
	if from == to {
		l.emitter.Emit(events.LedgerTransfer{Asset: assetAddr, From: from, To: to, Amount: amount})
		return nil
	}
	credited, carry := bits.Add64(dest.Amount, amount, 0)
	if carry != 0 {
		return ErrBalanceOverflow
	}
	source.Amount -= amount
	dest.Amount = credited
	if err := l.st.KVPut(accountKey(source.Address), source); err != nil {
		return err
	}
	if err := l.st.KVPut(accountKey(dest.Address), dest); err != nil {
		return err
	}
	l.emitter.Emit(events.LedgerTransfer{Asset: assetAddr, From: from, To: to, Amount: amount})
	return nil
}

// SetSupplyCap bounds the supply of asset. The mint authority must sign and
// the cap may not fall below the current supply.
func (l *Ledger) SetSupplyCap(assetAddr crypto.Address, supplyCap uint64, signers types.Signers) error {
	asset, ok, err := l.Asset(assetAddr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, assetAddr)
	}
	if !signers.Contains(asset.MintAuthority) {
		return fmt.Errorf("%w: mint authority %s", ErrMissingSigner, asset.MintAuthority)
	}
	if supplyCap > 0 && supplyCap < asset.Supply {
		return fmt.Errorf("%w: cap %d supply %d", ErrInvalidSupplyCap, supplyCap, asset.Supply)
	}
	asset.SupplyCap = supplyCap
	if err := l.st.KVPut(assetKey(asset.Address), asset); err != nil {
		return err
	}
	l.emitter.Emit(events.LedgerSupplyCapped{Asset: asset.Address, Cap: supplyCap})
	return nil
}

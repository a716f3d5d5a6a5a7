package loyalty

import (
	"fmt"

	"loyaltyledger/core/events"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	nativecommon "loyaltyledger/native/common"
	"loyaltyledger/native/ledger"
	"loyaltyledger/native/metadata"
)

type engineState interface {
	KVGetBytes(key []byte) ([]byte, error)
	KVPutBytes(key []byte, value []byte) error
	PutDerivation(addr crypto.Address, capability crypto.Capability) error
}

type assetLedger interface {
	Asset(addr crypto.Address) (*ledger.Asset, bool, error)
	CreateAsset(spec ledger.AssetSpec, signers types.Signers) (*ledger.Asset, error)
	CreateHoldingAccountIfAbsent(owner, asset crypto.Address) (crypto.Address, bool, error)
	Mint(asset, to crypto.Address, amount uint64, signers types.Signers) error
	Transfer(asset, from, to crypto.Address, amount uint64, signers types.Signers) error
}

type metadataRegistry interface {
	RegisterMetadata(asset, updateAuthority crypto.Address, data metadata.Data, isCollection bool, signers types.Signers) (*metadata.Metadata, error)
	MarkUniqueSupply(asset crypto.Address, maxPrints uint64, signers types.Signers) (*metadata.Edition, error)
	VerifyCreator(asset, creator crypto.Address, signers types.Signers) error
	SetCollection(asset, collection crypto.Address, signers types.Signers) error
	VerifyCollectionMembership(asset, collection crypto.Address, signers types.Signers) error
}

// Metadata is the descriptive content supplied for reward and badge assets.
type Metadata struct {
	URI    string
	Name   string
	Symbol string
}

func (m Metadata) data(creators ...metadata.Creator) metadata.Data {
	return metadata.Data{Name: m.Name, Symbol: m.Symbol, URI: m.URI, Creators: creators}
}

// Engine executes the loyalty program's operations against the ledger and
// metadata registry. Every operation assumes the host rolls back all state on
// error.
type Engine struct {
	st           engineState
	ledger       assetLedger
	registry     metadataRegistry
	paymentAsset crypto.Address
	emitter      events.Emitter
	pauses       nativecommon.PauseView
}

// NewEngine creates an engine settling payments in paymentAsset.
func NewEngine(st engineState, l assetLedger, registry metadataRegistry, paymentAsset crypto.Address) *Engine {
	return &Engine{
		st:           st,
		ledger:       l,
		registry:     registry,
		paymentAsset: paymentAsset,
		emitter:      events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter used to broadcast engine updates.
// Passing nil resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses configures the pause switches consulted before every operation.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// PaymentAsset returns the asset customers pay merchants in.
func (e *Engine) PaymentAsset() crypto.Address {
	return e.paymentAsset
}

func (e *Engine) guard() error {
	return nativecommon.Guard(e.pauses, moduleName)
}

// Merchant returns the merchant record stored at addr.
func (e *Engine) Merchant(addr crypto.Address) (*MerchantAccount, bool, error) {
	data, err := e.st.KVGetBytes(merchantKey(addr))
	if err != nil {
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	m := new(MerchantAccount)
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (e *Engine) putMerchant(addr crypto.Address, m *MerchantAccount) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return e.st.KVPutBytes(merchantKey(addr), data)
}

// loadMerchant fetches the record stored at addr. Callers check the address
// against the authority with checkMerchantAddress.
func (e *Engine) loadMerchant(addr crypto.Address) (*MerchantAccount, error) {
	m, ok, err := e.Merchant(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMerchantNotFound, addr)
	}
	return m, nil
}

// loadOwnedMerchant additionally requires the caller to be the record's
// authority.
func (e *Engine) loadOwnedMerchant(inv *types.Invocation, addr crypto.Address) (*MerchantAccount, error) {
	m, err := e.loadMerchant(addr)
	if err != nil {
		return nil, err
	}
	if inv.Caller() != m.Authority {
		return nil, fmt.Errorf("%w: caller %s is not the merchant authority", ErrUnauthorized, inv.Caller())
	}
	if err := checkMerchantAddress(m, addr); err != nil {
		return nil, err
	}
	return m, nil
}

func checkMerchantAddress(m *MerchantAccount, addr crypto.Address) error {
	if expected := MerchantAddress(m.Authority); expected != addr {
		return fmt.Errorf("%w: got %s want %s", ErrMerchantAddress, addr, expected)
	}
	return nil
}

func (e *Engine) assetExists(addr crypto.Address) (bool, error) {
	_, ok, err := e.ledger.Asset(addr)
	return ok, err
}

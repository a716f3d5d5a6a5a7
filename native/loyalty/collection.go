package loyalty

import (
	"fmt"

	"loyaltyledger/core/events"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/ledger"
	"loyaltyledger/native/metadata"
)

// CreateCollection issues the merchant's loyalty collection badge to the
// authority and records the loyalty discount rate.
func (e *Engine) CreateCollection(inv *types.Invocation, merchant crypto.Address, bps uint16, md Metadata) (crypto.Address, error) {
	if err := e.guard(); err != nil {
		return crypto.Address{}, err
	}
	m, err := e.loadOwnedMerchant(inv, merchant)
	if err != nil {
		return crypto.Address{}, err
	}
	if err := checkBasisPoints(bps); err != nil {
		return crypto.Address{}, err
	}
	c := collectionCapability(merchant)
	collection := address(c)
	if m.CollectionInitialized() {
		return crypto.Address{}, fmt.Errorf("%w: %s", ErrCollectionInitialized, m.LoyaltyCollectionAsset)
	}
	if exists, err := e.assetExists(collection); err != nil {
		return crypto.Address{}, err
	} else if exists {
		return crypto.Address{}, fmt.Errorf("%w: %s", ErrCollectionInitialized, collection)
	}
	signers, err := inv.Sign(c)
	if err != nil {
		return crypto.Address{}, err
	}
	if _, err := e.ledger.CreateAsset(ledger.AssetSpec{
		Address:         collection,
		MintAuthority:   collection,
		FreezeAuthority: collection,
		Decimals:        badgeDecimals,
	}, signers); err != nil {
		return crypto.Address{}, err
	}
	holding, _, err := e.ledger.CreateHoldingAccountIfAbsent(m.Authority, collection)
	if err != nil {
		return crypto.Address{}, err
	}
	if err := e.ledger.Mint(collection, holding, 1, signers); err != nil {
		return crypto.Address{}, err
	}
	creator := metadata.Creator{Address: m.Authority, Share: metadata.CreatorShareTotal}
	if _, err := e.registry.RegisterMetadata(collection, collection, md.data(creator), true, signers); err != nil {
		return crypto.Address{}, err
	}
	if _, err := e.registry.MarkUniqueSupply(collection, 1, signers); err != nil {
		return crypto.Address{}, err
	}
	// The creator is verified with the caller's own signing context.
	if err := e.registry.VerifyCreator(collection, m.Authority, inv.Signers()); err != nil {
		return crypto.Address{}, err
	}
	m.LoyaltyCollectionAsset = collection
	m.LoyaltyDiscountBasisPoints = bps
	if err := e.putMerchant(merchant, m); err != nil {
		return crypto.Address{}, err
	}
	if err := e.st.PutDerivation(collection, c); err != nil {
		return crypto.Address{}, err
	}
	e.emitter.Emit(events.LoyaltyCollectionCreated{
		Merchant:    merchant,
		Collection:  collection,
		BasisPoints: bps,
	})
	return collection, nil
}

// CreateItemInCollection issues the calling customer a badge that is a
// verified member of the merchant's collection. The membership passes through
// pending verification within the same operation and is never left pending.
func (e *Engine) CreateItemInCollection(inv *types.Invocation, merchant, customer crypto.Address, md Metadata) (crypto.Address, error) {
	if err := e.guard(); err != nil {
		return crypto.Address{}, err
	}
	if inv.Caller() != customer {
		return crypto.Address{}, fmt.Errorf("%w: caller %s is not the customer", ErrUnauthorized, inv.Caller())
	}
	m, err := e.loadMerchant(merchant)
	if err != nil {
		return crypto.Address{}, err
	}
	if err := checkMerchantAddress(m, merchant); err != nil {
		return crypto.Address{}, err
	}
	if !m.CollectionInitialized() {
		return crypto.Address{}, fmt.Errorf("%w: merchant %s", ErrCollectionNotInitialized, merchant)
	}
	collection := m.LoyaltyCollectionAsset
	ic := itemCapability(merchant, customer)
	item := address(ic)
	if exists, err := e.assetExists(item); err != nil {
		return crypto.Address{}, err
	} else if exists {
		return crypto.Address{}, fmt.Errorf("%w: %s", ErrItemExists, item)
	}
	signers, err := inv.Sign(ic, collectionCapability(merchant))
	if err != nil {
		return crypto.Address{}, err
	}
	if _, err := e.ledger.CreateAsset(ledger.AssetSpec{
		Address:         item,
		MintAuthority:   collection,
		FreezeAuthority: collection,
		Decimals:        badgeDecimals,
	}, signers); err != nil {
		return crypto.Address{}, err
	}
	holding, _, err := e.ledger.CreateHoldingAccountIfAbsent(customer, item)
	if err != nil {
		return crypto.Address{}, err
	}
	if err := e.ledger.Mint(item, holding, 1, signers); err != nil {
		return crypto.Address{}, err
	}
	if _, err := e.registry.RegisterMetadata(item, collection, md.data(), false, signers); err != nil {
		return crypto.Address{}, err
	}
	if _, err := e.registry.MarkUniqueSupply(item, metadata.UnlimitedPrints, signers); err != nil {
		return crypto.Address{}, err
	}
	if err := e.registry.SetCollection(item, collection, signers); err != nil {
		return crypto.Address{}, err
	}
	if err := e.registry.VerifyCollectionMembership(item, collection, signers); err != nil {
		return crypto.Address{}, err
	}
	if err := e.st.PutDerivation(item, ic); err != nil {
		return crypto.Address{}, err
	}
	e.emitter.Emit(events.LoyaltyItemCreated{
		Merchant:   merchant,
		Collection: collection,
		Item:       item,
		Customer:   customer,
	})
	return item, nil
}

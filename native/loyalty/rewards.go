package loyalty

import (
	"fmt"

	"loyaltyledger/core/events"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/ledger"
)

// InitRewardPoints creates the merchant's reward point asset. The asset is its
// own mint authority, so only this program can issue points.
func (e *Engine) InitRewardPoints(inv *types.Invocation, merchant crypto.Address, bps uint16, md Metadata) (crypto.Address, error) {
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
	c := rewardPointsCapability(merchant)
	asset := address(c)
	if m.RewardPointsInitialized() {
		return crypto.Address{}, fmt.Errorf("%w: %s", ErrRewardsInitialized, m.RewardPointsAsset)
	}
	if exists, err := e.assetExists(asset); err != nil {
		return crypto.Address{}, err
	} else if exists {
		return crypto.Address{}, fmt.Errorf("%w: %s", ErrRewardsInitialized, asset)
	}
	signers, err := inv.Sign(c)
	if err != nil {
		return crypto.Address{}, err
	}
	if _, err := e.ledger.CreateAsset(ledger.AssetSpec{
		Address:         asset,
		MintAuthority:   asset,
		FreezeAuthority: asset,
		Decimals:        RewardPointsDecimals,
	}, signers); err != nil {
		return crypto.Address{}, err
	}
	if _, err := e.registry.RegisterMetadata(asset, asset, md.data(), false, signers); err != nil {
		return crypto.Address{}, err
	}
	m.RewardPointsAsset = asset
	m.RewardPointsBasisPoints = bps
	if err := e.putMerchant(merchant, m); err != nil {
		return crypto.Address{}, err
	}
	if err := e.st.PutDerivation(asset, c); err != nil {
		return crypto.Address{}, err
	}
	e.emitter.Emit(events.LoyaltyRewardsInitialized{
		Merchant:    merchant,
		Asset:       asset,
		BasisPoints: bps,
		Symbol:      md.Symbol,
	})
	return asset, nil
}

// MintRewardPoints grants amount reward points to customer on the merchant's
// behalf.
func (e *Engine) MintRewardPoints(inv *types.Invocation, merchant, customer crypto.Address, amount uint64) error {
	if err := e.guard(); err != nil {
		return err
	}
	m, err := e.loadOwnedMerchant(inv, merchant)
	if err != nil {
		return err
	}
	if !m.RewardPointsInitialized() {
		return fmt.Errorf("%w: merchant %s", ErrRewardsNotInitialized, merchant)
	}
	if err := e.mintReward(inv, merchant, m.RewardPointsAsset, customer, amount); err != nil {
		return err
	}
	e.emitter.Emit(events.LoyaltyRewardsMinted{
		Merchant: merchant,
		Customer: customer,
		Asset:    m.RewardPointsAsset,
		Amount:   amount,
	})
	return nil
}

func (e *Engine) mintReward(inv *types.Invocation, merchant, asset, customer crypto.Address, amount uint64) error {
	account, _, err := e.ledger.CreateHoldingAccountIfAbsent(customer, asset)
	if err != nil {
		return err
	}
	signers, err := inv.Sign(rewardPointsCapability(merchant))
	if err != nil {
		return err
	}
	return e.ledger.Mint(asset, account, amount, signers)
}

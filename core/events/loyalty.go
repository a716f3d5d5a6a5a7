package events

import (
	"strconv"

	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
)

const (
	// TypeLoyaltyMerchantInitialized is emitted when an authority registers its
	// merchant record.
	TypeLoyaltyMerchantInitialized = "loyalty.merchant.initialized"
	// TypeLoyaltyRateUpdated is emitted when a merchant overwrites one of its
	// basis point rates.
	TypeLoyaltyRateUpdated = "loyalty.rate.updated"
	// TypeLoyaltyRewardsInitialized is emitted once the reward point asset of a
	// merchant exists.
	TypeLoyaltyRewardsInitialized = "loyalty.rewards.initialized"
	// TypeLoyaltyRewardsMinted is emitted for manual reward grants.
	TypeLoyaltyRewardsMinted = "loyalty.rewards.minted"
	// TypeLoyaltyCollectionCreated is emitted when the merchant's collection
	// badge is issued.
	TypeLoyaltyCollectionCreated = "loyalty.collection.created"
	// TypeLoyaltyItemCreated is emitted when a customer receives a verified
	// member badge.
	TypeLoyaltyItemCreated = "loyalty.item.created"
	// TypeLoyaltyPaymentProcessed is emitted for every settled customer
	// payment.
	TypeLoyaltyPaymentProcessed = "loyalty.payment.processed"
)

const (
	RateRewardPoints    = "rewardPoints"
	RateLoyaltyDiscount = "loyaltyDiscount"
)

// LoyaltyMerchantInitialized captures a newly registered merchant.
type LoyaltyMerchantInitialized struct {
	Merchant           crypto.Address
	Authority          crypto.Address
	PaymentDestination crypto.Address
}

// EventType implements the Event interface.
func (LoyaltyMerchantInitialized) EventType() string { return TypeLoyaltyMerchantInitialized }

// Event converts the registration to the generic event payload.
func (e LoyaltyMerchantInitialized) Event() *types.Event {
	return &types.Event{
		Type: TypeLoyaltyMerchantInitialized,
		Attributes: map[string]string{
			"merchant":           e.Merchant.String(),
			"authority":          e.Authority.String(),
			"paymentDestination": e.PaymentDestination.String(),
		},
	}
}

// LoyaltyRateUpdated captures a basis point overwrite.
type LoyaltyRateUpdated struct {
	Merchant    crypto.Address
	Rate        string
	Previous    uint16
	BasisPoints uint16
}

// EventType implements the Event interface.
func (LoyaltyRateUpdated) EventType() string { return TypeLoyaltyRateUpdated }

// Event converts the update to the generic event payload.
func (e LoyaltyRateUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeLoyaltyRateUpdated,
		Attributes: map[string]string{
			"merchant":    e.Merchant.String(),
			"rate":        e.Rate,
			"previousBps": strconv.FormatUint(uint64(e.Previous), 10),
			"bps":         strconv.FormatUint(uint64(e.BasisPoints), 10),
		},
	}
}

// LoyaltyRewardsInitialized captures the creation of a reward point asset.
type LoyaltyRewardsInitialized struct {
	Merchant    crypto.Address
	Asset       crypto.Address
	BasisPoints uint16
	Symbol      string
}

// EventType implements the Event interface.
func (LoyaltyRewardsInitialized) EventType() string { return TypeLoyaltyRewardsInitialized }

// Event converts the initialisation to the generic event payload.
func (e LoyaltyRewardsInitialized) Event() *types.Event {
	return &types.Event{
		Type: TypeLoyaltyRewardsInitialized,
		Attributes: map[string]string{
			"merchant": e.Merchant.String(),
			"asset":    e.Asset.String(),
			"bps":      strconv.FormatUint(uint64(e.BasisPoints), 10),
			"symbol":   e.Symbol,
		},
	}
}

// LoyaltyRewardsMinted captures a manual reward grant by the merchant.
type LoyaltyRewardsMinted struct {
	Merchant crypto.Address
	Customer crypto.Address
	Asset    crypto.Address
	Amount   uint64
}

// EventType implements the Event interface.
func (LoyaltyRewardsMinted) EventType() string { return TypeLoyaltyRewardsMinted }

// Event converts the grant to the generic event payload.
func (e LoyaltyRewardsMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeLoyaltyRewardsMinted,
		Attributes: map[string]string{
			"merchant": e.Merchant.String(),
			"customer": e.Customer.String(),
			"asset":    e.Asset.String(),
			"amount":   strconv.FormatUint(e.Amount, 10),
		},
	}
}

// LoyaltyCollectionCreated captures the issue of a merchant's collection badge.
type LoyaltyCollectionCreated struct {
	Merchant    crypto.Address
	Collection  crypto.Address
	BasisPoints uint16
}

// EventType implements the Event interface.
func (LoyaltyCollectionCreated) EventType() string { return TypeLoyaltyCollectionCreated }

// Event converts the collection creation to the generic event payload.
func (e LoyaltyCollectionCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeLoyaltyCollectionCreated,
		Attributes: map[string]string{
			"merchant":   e.Merchant.String(),
			"collection": e.Collection.String(),
			"bps":        strconv.FormatUint(uint64(e.BasisPoints), 10),
		},
	}
}

// LoyaltyItemCreated captures a verified member badge.
type LoyaltyItemCreated struct {
	Merchant   crypto.Address
	Collection crypto.Address
	Item       crypto.Address
	Customer   crypto.Address
}

// EventType implements the Event interface.
func (LoyaltyItemCreated) EventType() string { return TypeLoyaltyItemCreated }

// Event converts the item creation to the generic event payload.
func (e LoyaltyItemCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeLoyaltyItemCreated,
		Attributes: map[string]string{
			"merchant":   e.Merchant.String(),
			"collection": e.Collection.String(),
			"item":       e.Item.String(),
			"customer":   e.Customer.String(),
		},
	}
}

// LoyaltyPaymentProcessed captures a settled payment and the reward it earned.
type LoyaltyPaymentProcessed struct {
	Merchant     crypto.Address
	Customer     crypto.Address
	PaymentAsset crypto.Address
	Amount       uint64
	RewardAsset  crypto.Address
	Reward       uint64
	BasisPoints  uint16
}

// EventType implements the Event interface.
func (LoyaltyPaymentProcessed) EventType() string { return TypeLoyaltyPaymentProcessed }

// Event converts the payment to the generic event payload.
func (e LoyaltyPaymentProcessed) Event() *types.Event {
	return &types.Event{
		Type: TypeLoyaltyPaymentProcessed,
		Attributes: map[string]string{
			"merchant":     e.Merchant.String(),
			"customer":     e.Customer.String(),
			"paymentAsset": e.PaymentAsset.String(),
			"amount":       strconv.FormatUint(e.Amount, 10),
			"rewardAsset":  e.RewardAsset.String(),
			"reward":       strconv.FormatUint(e.Reward, 10),
			"bps":          strconv.FormatUint(uint64(e.BasisPoints), 10),
		},
	}
}

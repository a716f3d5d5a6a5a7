package loyalty

import (
	"fmt"

	"loyaltyledger/core/events"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
)

// InitMerchant registers the caller as a merchant authority. The payment
// destination is the caller's holding account of the payment asset, created
// if absent.
func (e *Engine) InitMerchant(inv *types.Invocation) (crypto.Address, *MerchantAccount, error) {
	if err := e.guard(); err != nil {
		return crypto.Address{}, nil, err
	}
	authority := inv.Caller()
	c := merchantCapability(authority)
	addr := address(c)
	if _, exists, err := e.Merchant(addr); err != nil {
		return crypto.Address{}, nil, err
	} else if exists {
		return crypto.Address{}, nil, fmt.Errorf("%w: %s", ErrMerchantExists, addr)
	}
	destination, _, err := e.ledger.CreateHoldingAccountIfAbsent(authority, e.paymentAsset)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	m := &MerchantAccount{
		Authority:          authority,
		PaymentDestination: destination,
	}
	if err := e.putMerchant(addr, m); err != nil {
		return crypto.Address{}, nil, err
	}
	if err := e.st.PutDerivation(addr, c); err != nil {
		return crypto.Address{}, nil, err
	}
	e.emitter.Emit(events.LoyaltyMerchantInitialized{
		Merchant:           addr,
		Authority:          authority,
		PaymentDestination: destination,
	})
	return addr, m, nil
}

// UpdateRewardBasisPoints overwrites the merchant's reward rebate rate.
func (e *Engine) UpdateRewardBasisPoints(inv *types.Invocation, merchant crypto.Address, bps uint16) error {
	return e.updateRate(inv, merchant, bps, events.RateRewardPoints, func(m *MerchantAccount) *uint16 {
		return &m.RewardPointsBasisPoints
	})
}

// UpdateLoyaltyBasisPoints overwrites the merchant's loyalty discount rate.
func (e *Engine) UpdateLoyaltyBasisPoints(inv *types.Invocation, merchant crypto.Address, bps uint16) error {
	return e.updateRate(inv, merchant, bps, events.RateLoyaltyDiscount, func(m *MerchantAccount) *uint16 {
		return &m.LoyaltyDiscountBasisPoints
	})
}

func (e *Engine) updateRate(inv *types.Invocation, merchant crypto.Address, bps uint16, rate string, field func(*MerchantAccount) *uint16) error {
	if err := e.guard(); err != nil {
		return err
	}
	m, err := e.loadOwnedMerchant(inv, merchant)
	if err != nil {
		return err
	}
	if err := checkBasisPoints(bps); err != nil {
		return err
	}
	target := field(m)
	previous := *target
	*target = bps
	if err := e.putMerchant(merchant, m); err != nil {
		return err
	}
	e.emitter.Emit(events.LoyaltyRateUpdated{
		Merchant:    merchant,
		Rate:        rate,
		Previous:    previous,
		BasisPoints: bps,
	})
	return nil
}

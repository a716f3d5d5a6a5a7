package loyalty

import (
	"fmt"

	"loyaltyledger/core/events"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/ledger"
)

// Payment summarises a processed customer payment.
type Payment struct {
	Merchant crypto.Address `json:"merchant"`
	Customer crypto.Address `json:"customer"`
	Amount   uint64         `json:"amount"`
	Reward   uint64         `json:"reward"`
}

// ProcessPayment moves amount of the payment asset from the calling customer
// to the merchant's payment destination and mints the earned reward points to
// the customer.
func (e *Engine) ProcessPayment(inv *types.Invocation, merchant crypto.Address, amount uint64) (*Payment, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	m, err := e.loadMerchant(merchant)
	if err != nil {
		return nil, err
	}
	if err := checkMerchantAddress(m, merchant); err != nil {
		return nil, err
	}
	if !m.RewardPointsInitialized() {
		return nil, fmt.Errorf("%w: merchant %s", ErrRewardsNotInitialized, merchant)
	}
	reward, err := ComputeReward(amount, m.RewardPointsBasisPoints)
	if err != nil {
		return nil, err
	}
	customer := inv.Caller()
	source := ledger.HoldingAddress(customer, e.paymentAsset)
	if err := e.ledger.Transfer(e.paymentAsset, source, m.PaymentDestination, amount, inv.Signers()); err != nil {
		return nil, err
	}
	if err := e.mintReward(inv, merchant, m.RewardPointsAsset, customer, reward); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.LoyaltyPaymentProcessed{
		Merchant:     merchant,
		Customer:     customer,
		PaymentAsset: e.paymentAsset,
		Amount:       amount,
		RewardAsset:  m.RewardPointsAsset,
		Reward:       reward,
		BasisPoints:  m.RewardPointsBasisPoints,
	})
	return &Payment{Merchant: merchant, Customer: customer, Amount: amount, Reward: reward}, nil
}

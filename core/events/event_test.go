package events

import (
	"testing"

	"loyaltyledger/crypto"
)

func TestPaymentProcessedEvent(t *testing.T) {
	merchant := crypto.ProgramID("merchant")
	evt := LoyaltyPaymentProcessed{
		Merchant:    merchant,
		Amount:      10_000,
		Reward:      250,
		BasisPoints: 250,
	}.Event()
	if evt.Type != TypeLoyaltyPaymentProcessed {
		t.Fatalf("unexpected type: %s", evt.Type)
	}
	if evt.Attributes["amount"] != "10000" || evt.Attributes["reward"] != "250" {
		t.Fatalf("unexpected attrs: %+v", evt.Attributes)
	}
	if evt.Attributes["merchant"] != merchant.String() {
		t.Fatalf("unexpected merchant attr: %s", evt.Attributes["merchant"])
	}
}

type bareEvent struct{}

func (bareEvent) EventType() string { return "bare" }

func TestBufferDrainAndDiscard(t *testing.T) {
	var buf Buffer
	buf.Emit(LedgerTransfer{Amount: 5})
	buf.Emit(bareEvent{})
	buf.Emit(nil)
	if buf.Len() != 2 {
		t.Fatalf("expected 2 buffered events, got %d", buf.Len())
	}

	drained := buf.Drain()
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained events, got %d", len(drained))
	}
	if drained[0].Type != TypeLedgerTransfer || drained[0].Attributes["amount"] != "5" {
		t.Fatalf("unexpected first event: %+v", drained[0])
	}
	if drained[1].Type != "bare" || drained[1].Attributes == nil {
		t.Fatalf("unexpected fallback conversion: %+v", drained[1])
	}
	if buf.Len() != 0 {
		t.Fatalf("drain should empty the buffer")
	}

	buf.Emit(bareEvent{})
	buf.Discard()
	if got := buf.Drain(); len(got) != 0 {
		t.Fatalf("discarded events resurfaced: %+v", got)
	}
}

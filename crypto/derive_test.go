package crypto

import (
	"errors"
	"strings"
	"testing"
)

func testIdentity(t *testing.T) Address {
	t.Helper()
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key.Address()
}

func TestDeriveDeterministic(t *testing.T) {
	program := ProgramID("loyalty")
	authority := testIdentity(t)

	first, firstBump, err := Derive(program, "MERCHANT", authority)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, secondBump, err := Derive(program, "MERCHANT", authority)
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	if first != second || firstBump != secondBump {
		t.Fatalf("derivation not deterministic: %s/%d vs %s/%d", first, firstBump, second, secondBump)
	}
	if IsIdentityKey(first) {
		t.Fatalf("derived address must not be an identity key")
	}
}

func TestDeriveReproducesWithStoredBump(t *testing.T) {
	program := ProgramID("loyalty")
	merchant, _ := MustDerive(program, "MERCHANT", testIdentity(t))
	customer := testIdentity(t)

	addr, bump, err := Derive(program, "LOYALTY_NFT", merchant, customer)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	again, err := CreateAddress(program, "LOYALTY_NFT", []Address{merchant, customer}, bump)
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	if again != addr {
		t.Fatalf("stored bump did not reproduce address")
	}
}

func TestDeriveIsParentScoped(t *testing.T) {
	program := ProgramID("loyalty")
	merchant, _ := MustDerive(program, "MERCHANT", testIdentity(t))
	customer := testIdentity(t)

	collection, _ := MustDerive(program, "LOYALTY_NFT", merchant)
	item, _ := MustDerive(program, "LOYALTY_NFT", merchant, customer)
	rewards, _ := MustDerive(program, "REWARD_POINTS", merchant)
	foreign, _ := MustDerive(ProgramID("ledger"), "LOYALTY_NFT", merchant)

	seen := map[Address]string{}
	for name, addr := range map[string]Address{
		"collection": collection,
		"item":       item,
		"rewards":    rewards,
		"foreign":    foreign,
	} {
		if prev, dup := seen[addr]; dup {
			t.Fatalf("%s collides with %s", name, prev)
		}
		seen[addr] = name
	}
}

func TestCapabilityAddress(t *testing.T) {
	program := ProgramID("loyalty")
	merchant, _ := MustDerive(program, "MERCHANT", testIdentity(t))

	cap, err := NewCapability(program, "REWARD_POINTS", merchant)
	if err != nil {
		t.Fatalf("capability: %v", err)
	}
	addr, err := cap.Address()
	if err != nil {
		t.Fatalf("capability address: %v", err)
	}
	want, _ := MustDerive(program, "REWARD_POINTS", merchant)
	if addr != want {
		t.Fatalf("capability resolved to %s, want %s", addr, want)
	}

	tampered := cap
	tampered.Tag = "MERCHANT"
	if other, err := tampered.Address(); err == nil && other == want {
		t.Fatalf("tampered capability must not resolve to the same address")
	}
}

func TestIdentityKeysAreOnCurve(t *testing.T) {
	for i := 0; i < 8; i++ {
		if !IsIdentityKey(testIdentity(t)) {
			t.Fatalf("generated identity must lie on the curve")
		}
	}
}

func TestDeriveSeedLimits(t *testing.T) {
	program := ProgramID("loyalty")
	if _, _, err := Derive(program, strings.Repeat("x", MaxSeedLength+1)); !errors.Is(err, ErrSeedTooLong) {
		t.Fatalf("expected ErrSeedTooLong, got %v", err)
	}
	parents := make([]Address, MaxSeeds)
	if _, _, err := Derive(program, "TAG", parents...); !errors.Is(err, ErrTooManySeeds) {
		t.Fatalf("expected ErrTooManySeeds, got %v", err)
	}
}

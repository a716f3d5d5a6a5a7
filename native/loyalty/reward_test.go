package loyalty_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	coreerrors "loyaltyledger/core/errors"
	loyalty "loyaltyledger/native/loyalty"
)

func TestComputeReward(t *testing.T) {
	cases := []struct {
		amount uint64
		bps    uint16
		want   uint64
	}{
		{10_000, 250, 250},
		{10_000, 100, 100},
		{1, 1, 0},
		{2_000, 700, 140},
		{9_999, 1, 0},
		{123_456, 10_000, 123_456},
		{math.MaxUint64, 0, 0},
	}
	for _, tc := range cases {
		got, err := loyalty.ComputeReward(tc.amount, tc.bps)
		if err != nil {
			t.Fatalf("reward(%d, %d): %v", tc.amount, tc.bps, err)
		}
		if got != tc.want {
			t.Fatalf("reward(%d, %d) = %d, want %d", tc.amount, tc.bps, got, tc.want)
		}
	}
}

func TestComputeRewardOverflow(t *testing.T) {
	_, err := loyalty.ComputeReward(math.MaxUint64, 2)
	if !errors.Is(err, coreerrors.ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := loyalty.ComputeReward(math.MaxUint64/10_000, 10_000); err != nil {
		t.Fatalf("largest exact product should fit: %v", err)
	}
}

func TestComputeRewardFloorBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		amount := uint64(rng.Int63n(1 << 40))
		bps := uint16(rng.Intn(loyalty.MaxBasisPoints + 1))
		reward, err := loyalty.ComputeReward(amount, bps)
		if err != nil {
			t.Fatalf("reward(%d, %d): %v", amount, bps, err)
		}
		product := amount * uint64(bps)
		if reward*10_000 > product || (reward+1)*10_000 <= product {
			t.Fatalf("reward(%d, %d) = %d violates floor bounds", amount, bps, reward)
		}
	}
}

package config

import (
	"fmt"
	"math/bits"
	"strings"

	"loyaltyledger/crypto"
)

// Validate checks the configuration for values the node cannot start with.
func (c *Config) Validate() error {
	if c.ChainID == 0 {
		return fmt.Errorf("config: ChainID must be non-zero")
	}
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir required")
	}
	if c.RPC.RequestsPerMinute < 0 || c.RPC.Burst < 0 {
		return fmt.Errorf("config: rpc rate limit must not be negative")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("config: telemetry SampleRatio must be within [0,1]")
	}
	if _, _, err := c.PaymentAsset.Addresses(); err != nil {
		return err
	}
	if _, err := c.Genesis.Parse(); err != nil {
		return err
	}
	return nil
}

// Addresses decodes the payment asset and mint authority. A zero asset
// address means the default asset.
func (p PaymentAsset) Addresses() (crypto.Address, crypto.Address, error) {
	var asset crypto.Address
	if raw := strings.TrimSpace(p.Address); raw != "" {
		decoded, err := crypto.DecodeAddress(raw)
		if err != nil {
			return crypto.Address{}, crypto.Address{}, fmt.Errorf("config: PaymentAsset.Address: %w", err)
		}
		asset = decoded
	}
	raw := strings.TrimSpace(p.MintAuthority)
	if raw == "" {
		return crypto.Address{}, crypto.Address{}, fmt.Errorf("config: PaymentAsset.MintAuthority required")
	}
	authority, err := crypto.DecodeAddress(raw)
	if err != nil {
		return crypto.Address{}, crypto.Address{}, fmt.Errorf("config: PaymentAsset.MintAuthority: %w", err)
	}
	return asset, authority, nil
}

// ParsedAllocation is a decoded genesis allocation.
type ParsedAllocation struct {
	Owner  crypto.Address
	Amount uint64
}

// Parse decodes the allocations, rejecting duplicate owners and totals that
// overflow the asset supply.
func (g Genesis) Parse() ([]ParsedAllocation, error) {
	out := make([]ParsedAllocation, 0, len(g.Allocations))
	seen := make(map[crypto.Address]struct{}, len(g.Allocations))
	var total uint64
	for i, alloc := range g.Allocations {
		owner, err := crypto.DecodeAddress(strings.TrimSpace(alloc.Owner))
		if err != nil {
			return nil, fmt.Errorf("config: Genesis.Allocations[%d].Owner: %w", i, err)
		}
		if _, dup := seen[owner]; dup {
			return nil, fmt.Errorf("config: Genesis.Allocations[%d]: duplicate owner %s", i, owner)
		}
		seen[owner] = struct{}{}
		var carry uint64
		total, carry = bits.Add64(total, alloc.Amount, 0)
		if carry != 0 {
			return nil, fmt.Errorf("config: genesis allocations overflow the asset supply")
		}
		out = append(out, ParsedAllocation{Owner: owner, Amount: alloc.Amount})
	}
	return out, nil
}

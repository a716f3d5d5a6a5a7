package metadata

import (
	"math"

	"loyaltyledger/crypto"
)

const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200

	// CreatorShareTotal is the sum creator shares must reach when creators
	// are listed.
	CreatorShareTotal = 100

	// UnlimitedPrints marks an edition whose print count is not bounded.
	UnlimitedPrints uint64 = math.MaxUint64
)

// CollectionStatus tracks an item's membership in a collection.
type CollectionStatus uint8

const (
	CollectionUnset CollectionStatus = iota
	CollectionPendingVerification
	CollectionVerified
)

func (s CollectionStatus) String() string {
	switch s {
	case CollectionUnset:
		return "unset"
	case CollectionPendingVerification:
		return "pendingVerification"
	case CollectionVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// Creator credits an identity with a share of the asset. Verified is set only
// when the creator itself signs.
type Creator struct {
	Address  crypto.Address
	Verified bool
	Share    uint8
}

// Data is the descriptive content supplied when registering metadata.
type Data struct {
	Name     string
	Symbol   string
	URI      string
	Creators []Creator
}

// Metadata describes an asset. CollectionSize counts verified members and is
// only meaningful when IsCollection is set.
type Metadata struct {
	Address          crypto.Address
	Asset            crypto.Address
	UpdateAuthority  crypto.Address
	Name             string
	Symbol           string
	URI              string
	Creators         []Creator
	CollectionKey    crypto.Address
	CollectionStatus CollectionStatus
	IsCollection     bool
	CollectionSize   uint64
}

// Creator returns the listed creator entry for addr.
func (m *Metadata) Creator(addr crypto.Address) (*Creator, bool) {
	for i := range m.Creators {
		if m.Creators[i].Address == addr {
			return &m.Creators[i], true
		}
	}
	return nil, false
}

// Edition marks an asset as unique. Supply counts prints made from it.
type Edition struct {
	Address   crypto.Address
	Asset     crypto.Address
	Supply    uint64
	MaxSupply uint64
}

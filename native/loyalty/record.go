package loyalty

import (
	"bytes"
	"encoding/binary"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"loyaltyledger/crypto"
)

const (
	// MaxBasisPoints is 100%.
	MaxBasisPoints = 10_000

	kindTagLength = 8
	// MerchantAccountSize is the persisted width of a merchant record.
	MerchantAccountSize = kindTagLength + 4*crypto.AddressLength + 2*2
)

var merchantKindTag = ethcrypto.Keccak256([]byte("account:MerchantAccount"))[:kindTagLength]

// MerchantAccount is the registry entry of one merchant authority. Linked
// asset fields are zero until initialised and never change afterwards.
type MerchantAccount struct {
	Authority                  crypto.Address
	PaymentDestination         crypto.Address
	RewardPointsAsset          crypto.Address
	RewardPointsBasisPoints    uint16
	LoyaltyCollectionAsset     crypto.Address
	LoyaltyDiscountBasisPoints uint16
}

// RewardPointsInitialized reports whether the reward point asset is linked.
func (m *MerchantAccount) RewardPointsInitialized() bool {
	return !m.RewardPointsAsset.IsZero()
}

// CollectionInitialized reports whether the loyalty collection is linked.
func (m *MerchantAccount) CollectionInitialized() bool {
	return !m.LoyaltyCollectionAsset.IsZero()
}

// MarshalBinary encodes the record in its fixed big-endian layout behind the
// account kind tag.
func (m *MerchantAccount) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, MerchantAccountSize)
	buf = append(buf, merchantKindTag...)
	buf = append(buf, m.Authority[:]...)
	buf = append(buf, m.PaymentDestination[:]...)
	buf = append(buf, m.RewardPointsAsset[:]...)
	buf = binary.BigEndian.AppendUint16(buf, m.RewardPointsBasisPoints)
	buf = append(buf, m.LoyaltyCollectionAsset[:]...)
	buf = binary.BigEndian.AppendUint16(buf, m.LoyaltyDiscountBasisPoints)
	return buf, nil
}

// UnmarshalBinary decodes a record, rejecting foreign kind tags and truncated
// or oversized input.
func (m *MerchantAccount) UnmarshalBinary(data []byte) error {
	if len(data) != MerchantAccountSize {
		return fmt.Errorf("%w: length %d", ErrInvalidMerchantRecord, len(data))
	}
	if !bytes.Equal(data[:kindTagLength], merchantKindTag) {
		return fmt.Errorf("%w: kind tag %x", ErrInvalidMerchantRecord, data[:kindTagLength])
	}
	rest := data[kindTagLength:]
	take := func(n int) []byte {
		out := rest[:n]
		rest = rest[n:]
		return out
	}
	copy(m.Authority[:], take(crypto.AddressLength))
	copy(m.PaymentDestination[:], take(crypto.AddressLength))
	copy(m.RewardPointsAsset[:], take(crypto.AddressLength))
	m.RewardPointsBasisPoints = binary.BigEndian.Uint16(take(2))
	copy(m.LoyaltyCollectionAsset[:], take(crypto.AddressLength))
	m.LoyaltyDiscountBasisPoints = binary.BigEndian.Uint16(take(2))
	return nil
}

package state

import (
	"loyaltyledger/crypto"
)

var (
	noncePrefix      = []byte("identity/nonce/")
	derivationPrefix = []byte("derived/record/")
)

// NonceKey returns the state key holding the next expected transaction nonce
// of an identity.
func NonceKey(addr crypto.Address) []byte {
	return append(append([]byte(nil), noncePrefix...), addr[:]...)
}

// DerivationKey returns the state key of a derived address' derivation record.
func DerivationKey(addr crypto.Address) []byte {
	return append(append([]byte(nil), derivationPrefix...), addr[:]...)
}

// Nonce returns the next nonce the identity must use. Unknown identities start
// at zero.
func (m *Manager) Nonce(addr crypto.Address) (uint64, error) {
	var nonce uint64
	if _, err := m.KVGet(NonceKey(addr), &nonce); err != nil {
		return 0, err
	}
	return nonce, nil
}

// SetNonce stores the next expected nonce.
func (m *Manager) SetNonce(addr crypto.Address, nonce uint64) error {
	return m.KVPut(NonceKey(addr), nonce)
}

// DerivationRecord is the persisted derivation path of an address created by
// a program. Storing it lets callers re-derive with the canonical bump instead
// of searching again.
type DerivationRecord struct {
	Address crypto.Address
	Program crypto.Address
	Tag     string
	Parents []crypto.Address
	Bump    uint8
}

// Capability rebuilds the signing capability for the recorded path.
func (r *DerivationRecord) Capability() crypto.Capability {
	return crypto.Capability{
		Program: r.Program,
		Tag:     r.Tag,
		Parents: append([]crypto.Address(nil), r.Parents...),
		Bump:    r.Bump,
	}
}

// PutDerivation records how addr was derived. The first record wins; later
// writes for the same address are ignored.
func (m *Manager) PutDerivation(addr crypto.Address, capability crypto.Capability) error {
	exists, err := m.KVHas(DerivationKey(addr))
	if err != nil || exists {
		return err
	}
	record := &DerivationRecord{
		Address: addr,
		Program: capability.Program,
		Tag:     capability.Tag,
		Parents: append([]crypto.Address(nil), capability.Parents...),
		Bump:    capability.Bump,
	}
	return m.KVPut(DerivationKey(addr), record)
}

// Derivation returns the recorded derivation of addr.
func (m *Manager) Derivation(addr crypto.Address) (*DerivationRecord, bool, error) {
	record := new(DerivationRecord)
	ok, err := m.KVGet(DerivationKey(addr), record)
	if err != nil || !ok {
		return nil, ok, err
	}
	return record, true, nil
}

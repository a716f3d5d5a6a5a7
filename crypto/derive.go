package crypto

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// MaxSeeds bounds the number of seeds (tag, parents and bump) hashed into
	// a derived address.
	MaxSeeds = 16
	// MaxSeedLength bounds the width of a single seed.
	MaxSeedLength = 32
)

var derivationDomain = []byte("loyaltyledger/derived-address")

var (
	ErrOnCurve      = errors.New("derive: candidate is a valid identity key")
	ErrNoViableBump = errors.New("derive: no viable bump seed")
	ErrTooManySeeds = errors.New("derive: too many seeds")
	ErrSeedTooLong  = errors.New("derive: seed exceeds maximum length")
)

// ProgramID returns the identifier of a named native program. Program ids
// domain-separate the address spaces of the programs sharing one ledger.
func ProgramID(name string) Address {
	var id Address
	copy(id[:], crypto.Keccak256([]byte("program:"+name)))
	return id
}

// Derive searches the bump space from 255 downwards for the first candidate
// address that is not an identity key. The returned bump is canonical and must
// be persisted with the address so later callers can re-derive it cheaply.
func Derive(program Address, tag string, parents ...Address) (Address, uint8, error) {
	if err := checkSeeds(tag, parents); err != nil {
		return Address{}, 0, err
	}
	for bump := 255; bump >= 0; bump-- {
		addr, err := CreateAddress(program, tag, parents, uint8(bump))
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return Address{}, 0, err
		}
		return addr, uint8(bump), nil
	}
	return Address{}, 0, ErrNoViableBump
}

// MustDerive is Derive for callers whose seeds are known to be valid.
func MustDerive(program Address, tag string, parents ...Address) (Address, uint8) {
	addr, bump, err := Derive(program, tag, parents...)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

// CreateAddress hashes the derivation path with an explicit bump. It fails
// with ErrOnCurve when the result could be controlled by a private key.
func CreateAddress(program Address, tag string, parents []Address, bump uint8) (Address, error) {
	if err := checkSeeds(tag, parents); err != nil {
		return Address{}, err
	}
	buf := make([]byte, 0, len(derivationDomain)+AddressLength+2+len(tag)+len(parents)*(AddressLength+1)+2)
	buf = append(buf, derivationDomain...)
	buf = append(buf, program[:]...)
	buf = appendSeed(buf, []byte(tag))
	for _, parent := range parents {
		buf = appendSeed(buf, parent[:])
	}
	buf = appendSeed(buf, []byte{bump})

	var candidate Address
	copy(candidate[:], crypto.Keccak256(buf))
	if IsIdentityKey(candidate) {
		return Address{}, ErrOnCurve
	}
	return candidate, nil
}

func appendSeed(buf, seed []byte) []byte {
	buf = append(buf, byte(len(seed)))
	return append(buf, seed...)
}

func checkSeeds(tag string, parents []Address) error {
	if len(parents)+2 > MaxSeeds {
		return fmt.Errorf("%w: %d", ErrTooManySeeds, len(parents)+2)
	}
	if len(tag) > MaxSeedLength {
		return fmt.Errorf("%w: tag %q", ErrSeedTooLong, tag)
	}
	return nil
}

// Capability is the proof of authority over a derived address: the exact
// derivation path. The host accepts it in place of a signature for operations
// executed by the program named in Program.
type Capability struct {
	Program Address
	Tag     string
	Parents []Address
	Bump    uint8
}

// NewCapability derives the canonical capability for a tag and parents.
func NewCapability(program Address, tag string, parents ...Address) (Capability, error) {
	_, bump, err := Derive(program, tag, parents...)
	if err != nil {
		return Capability{}, err
	}
	return Capability{
		Program: program,
		Tag:     tag,
		Parents: append([]Address(nil), parents...),
		Bump:    bump,
	}, nil
}

// Address re-derives the address the capability speaks for.
func (c Capability) Address() (Address, error) {
	return CreateAddress(c.Program, c.Tag, c.Parents, c.Bump)
}

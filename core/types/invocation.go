package types

import (
	"fmt"

	coreerrors "loyaltyledger/core/errors"
	"loyaltyledger/crypto"
)

// Signers is the set of addresses that authorised a call into the ledger or
// the metadata registry.
type Signers map[crypto.Address]struct{}

// NewSigners builds a signer set.
func NewSigners(addrs ...crypto.Address) Signers {
	set := make(Signers, len(addrs))
	for _, addr := range addrs {
		set[addr] = struct{}{}
	}
	return set
}

// Contains reports whether addr signed.
func (s Signers) Contains(addr crypto.Address) bool {
	_, ok := s[addr]
	return ok
}

// With returns a copy of the set extended with addr.
func (s Signers) With(addr crypto.Address) Signers {
	out := make(Signers, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[addr] = struct{}{}
	return out
}

// Invocation is the host-granted context of a single operation: the
// authenticated caller and the program being executed. Only the host
// constructs invocations.
type Invocation struct {
	program crypto.Address
	caller  crypto.Address
}

// NewInvocation binds a caller to the program it invokes.
func NewInvocation(program, caller crypto.Address) *Invocation {
	return &Invocation{program: program, caller: caller}
}

func (inv *Invocation) Caller() crypto.Address  { return inv.caller }
func (inv *Invocation) Program() crypto.Address { return inv.program }

// Signers returns the caller's own signing context.
func (inv *Invocation) Signers() Signers {
	return NewSigners(inv.caller)
}

// Sign extends the caller's signing context with the addresses proven by the
// capabilities. Only capabilities derived under the invoked program are
// honoured.
func (inv *Invocation) Sign(caps ...crypto.Capability) (Signers, error) {
	signers := inv.Signers()
	for _, cap := range caps {
		if cap.Program != inv.program {
			return nil, fmt.Errorf("%w: capability for foreign program %s", coreerrors.ErrAuthorization, cap.Program)
		}
		addr, err := cap.Address()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", coreerrors.ErrAddressMismatch, err)
		}
		signers[addr] = struct{}{}
	}
	return signers, nil
}

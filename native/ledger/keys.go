package ledger

import "loyaltyledger/crypto"

const (
	moduleName = "ledger"
	holdingTag = "HOLDING"
)

// ProgramID identifies the ledger program. Holding account addresses are
// derived under it.
var ProgramID = crypto.ProgramID(moduleName)

var (
	assetPrefix   = []byte("ledger/asset/")
	accountPrefix = []byte("ledger/account/")
)

func assetKey(addr crypto.Address) []byte {
	return append(append([]byte(nil), assetPrefix...), addr[:]...)
}

func accountKey(addr crypto.Address) []byte {
	return append(append([]byte(nil), accountPrefix...), addr[:]...)
}

// HoldingCapability returns the derivation path of an owner's holding account
// for asset.
func HoldingCapability(owner, asset crypto.Address) crypto.Capability {
	capability, err := crypto.NewCapability(ProgramID, holdingTag, owner, asset)
	if err != nil {
		// two fixed-width parents and a short tag are always within limits
		panic(err)
	}
	return capability
}

// HoldingAddress returns the address of owner's holding account for asset.
// Anyone can compute it from public identifiers.
func HoldingAddress(owner, asset crypto.Address) crypto.Address {
	addr, _ := crypto.MustDerive(ProgramID, holdingTag, owner, asset)
	return addr
}

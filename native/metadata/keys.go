package metadata

import "loyaltyledger/crypto"

const (
	moduleName  = "metadata"
	metadataTag = "METADATA"
	editionTag  = "EDITION"
)

// ProgramID identifies the metadata registry program.
var ProgramID = crypto.ProgramID(moduleName)

var (
	recordPrefix  = []byte("metadata/record/")
	editionPrefix = []byte("metadata/edition/")
)

func recordKey(asset crypto.Address) []byte {
	return append(append([]byte(nil), recordPrefix...), asset[:]...)
}

func editionKey(asset crypto.Address) []byte {
	return append(append([]byte(nil), editionPrefix...), asset[:]...)
}

func capabilityFor(tag string, asset crypto.Address) crypto.Capability {
	capability, err := crypto.NewCapability(ProgramID, tag, asset)
	if err != nil {
		panic(err)
	}
	return capability
}

// MetadataAddress returns the derived address of an asset's metadata record.
func MetadataAddress(asset crypto.Address) crypto.Address {
	addr, _ := crypto.MustDerive(ProgramID, metadataTag, asset)
	return addr
}

// EditionAddress returns the derived address of an asset's edition marker.
func EditionAddress(asset crypto.Address) crypto.Address {
	addr, _ := crypto.MustDerive(ProgramID, editionTag, asset)
	return addr
}

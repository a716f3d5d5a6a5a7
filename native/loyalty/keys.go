package loyalty

import "loyaltyledger/crypto"

const (
	moduleName = "loyalty"

	merchantTag     = "MERCHANT"
	rewardPointsTag = "REWARD_POINTS"
	loyaltyNFTTag   = "LOYALTY_NFT"

	// RewardPointsDecimals is the precision of every reward point asset.
	RewardPointsDecimals = 6
	badgeDecimals        = 0
)

// ProgramID identifies the loyalty program. Every merchant, reward and badge
// address is derived under it.
var ProgramID = crypto.ProgramID(moduleName)

var merchantPrefix = []byte("loyalty/merchant/")

func merchantKey(addr crypto.Address) []byte {
	return append(append([]byte(nil), merchantPrefix...), addr[:]...)
}

func capability(tag string, parents ...crypto.Address) crypto.Capability {
	c, err := crypto.NewCapability(ProgramID, tag, parents...)
	if err != nil {
		// tags are short constants and parents are fixed width
		panic(err)
	}
	return c
}

func address(c crypto.Capability) crypto.Address {
	addr, err := c.Address()
	if err != nil {
		panic(err)
	}
	return addr
}

func merchantCapability(authority crypto.Address) crypto.Capability {
	return capability(merchantTag, authority)
}

func rewardPointsCapability(merchant crypto.Address) crypto.Capability {
	return capability(rewardPointsTag, merchant)
}

func collectionCapability(merchant crypto.Address) crypto.Capability {
	return capability(loyaltyNFTTag, merchant)
}

func itemCapability(merchant, customer crypto.Address) crypto.Capability {
	return capability(loyaltyNFTTag, merchant, customer)
}

// MerchantAddress returns the registry address of authority's merchant record.
func MerchantAddress(authority crypto.Address) crypto.Address {
	return address(merchantCapability(authority))
}

// RewardPointsAddress returns the reward point asset address of a merchant.
func RewardPointsAddress(merchant crypto.Address) crypto.Address {
	return address(rewardPointsCapability(merchant))
}

// CollectionAddress returns the loyalty collection asset address of a
// merchant.
func CollectionAddress(merchant crypto.Address) crypto.Address {
	return address(collectionCapability(merchant))
}

// ItemAddress returns the address of the loyalty badge issued by merchant to
// customer.
func ItemAddress(merchant, customer crypto.Address) crypto.Address {
	return address(itemCapability(merchant, customer))
}

// Addresses groups every address derivable for an authority and, optionally,
// a customer.
type Addresses struct {
	Merchant     crypto.Address  `json:"merchant"`
	RewardPoints crypto.Address  `json:"rewardPoints"`
	Collection   crypto.Address  `json:"collection"`
	Item         *crypto.Address `json:"item,omitempty"`
}

// DeriveAddresses computes the addresses of authority's merchant record and
// assets. When customer is non-nil the customer's badge address is included.
func DeriveAddresses(authority crypto.Address, customer *crypto.Address) Addresses {
	merchant := MerchantAddress(authority)
	out := Addresses{
		Merchant:     merchant,
		RewardPoints: RewardPointsAddress(merchant),
		Collection:   CollectionAddress(merchant),
	}
	if customer != nil {
		item := ItemAddress(merchant, *customer)
		out.Item = &item
	}
	return out
}

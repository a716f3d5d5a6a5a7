package loyalty

import (
	"fmt"

	"github.com/holiman/uint256"
)

var basisPointsDenominator = uint256.NewInt(MaxBasisPoints)

// ComputeReward returns floor(amount * bps / 10000). The intermediate product
// must fit in 64 bits.
func ComputeReward(amount uint64, bps uint16) (uint64, error) {
	product := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(uint64(bps)))
	if !product.IsUint64() {
		return 0, fmt.Errorf("%w: %d x %d", ErrRewardOverflow, amount, bps)
	}
	return product.Div(product, basisPointsDenominator).Uint64(), nil
}

func checkBasisPoints(bps uint16) error {
	if bps > MaxBasisPoints {
		return fmt.Errorf("%w: %d", ErrBasisPointsTooHigh, bps)
	}
	return nil
}

package loyalty

import (
	"fmt"

	coreerrors "loyaltyledger/core/errors"
)

var (
	ErrMerchantExists           = fmt.Errorf("loyalty: merchant %w", coreerrors.ErrAlreadyInitialized)
	ErrMerchantNotFound         = fmt.Errorf("loyalty: merchant %w", coreerrors.ErrNotFound)
	ErrUnauthorized             = fmt.Errorf("loyalty: %w", coreerrors.ErrAuthorization)
	ErrMerchantAddress          = fmt.Errorf("loyalty: merchant %w", coreerrors.ErrAddressMismatch)
	ErrBasisPointsTooHigh       = fmt.Errorf("loyalty: basis points above %d: %w", MaxBasisPoints, coreerrors.ErrInvalidArgument)
	ErrRewardsInitialized       = fmt.Errorf("loyalty: reward points %w", coreerrors.ErrAlreadyInitialized)
	ErrRewardsNotInitialized    = fmt.Errorf("loyalty: reward points %w", coreerrors.ErrNotFound)
	ErrCollectionInitialized    = fmt.Errorf("loyalty: loyalty collection %w", coreerrors.ErrAlreadyInitialized)
	ErrCollectionNotInitialized = fmt.Errorf("loyalty: loyalty collection %w", coreerrors.ErrNotFound)
	ErrItemExists               = fmt.Errorf("loyalty: loyalty badge %w", coreerrors.ErrAlreadyInitialized)
	ErrRewardOverflow           = fmt.Errorf("loyalty: reward %w", coreerrors.ErrArithmeticOverflow)
	ErrInvalidMerchantRecord    = fmt.Errorf("loyalty: malformed merchant record: %w", coreerrors.ErrInvalidArgument)
)

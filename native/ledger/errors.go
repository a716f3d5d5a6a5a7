package ledger

import (
	"fmt"

	coreerrors "loyaltyledger/core/errors"
)

var (
	ErrAssetExists         = fmt.Errorf("ledger: asset exists: %w", coreerrors.ErrAlreadyInitialized)
	ErrAssetNotFound       = fmt.Errorf("ledger: asset %w", coreerrors.ErrNotFound)
	ErrAccountNotFound     = fmt.Errorf("ledger: holding account %w", coreerrors.ErrNotFound)
	ErrAccountAsset        = fmt.Errorf("ledger: holding account asset %w", coreerrors.ErrAddressMismatch)
	ErrMissingSigner       = fmt.Errorf("ledger: missing signer: %w", coreerrors.ErrAuthorization)
	ErrInsufficientBalance = fmt.Errorf("ledger: %w", coreerrors.ErrInsufficientBalance)
	ErrSupplyOverflow      = fmt.Errorf("ledger: supply %w", coreerrors.ErrArithmeticOverflow)
	ErrBalanceOverflow     = fmt.Errorf("ledger: balance %w", coreerrors.ErrArithmeticOverflow)
	ErrSupplyCapExceeded   = fmt.Errorf("ledger: supply cap exceeded: %w", coreerrors.ErrInvalidArgument)
	ErrInvalidSupplyCap    = fmt.Errorf("ledger: supply cap below supply: %w", coreerrors.ErrInvalidArgument)
	ErrZeroAddress         = fmt.Errorf("ledger: zero address: %w", coreerrors.ErrInvalidArgument)
)

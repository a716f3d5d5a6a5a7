package metadata

import (
	"fmt"

	coreerrors "loyaltyledger/core/errors"
)

var (
	ErrMetadataExists      = fmt.Errorf("metadata: record exists: %w", coreerrors.ErrAlreadyInitialized)
	ErrEditionExists       = fmt.Errorf("metadata: edition exists: %w", coreerrors.ErrAlreadyInitialized)
	ErrCollectionSet       = fmt.Errorf("metadata: collection already set: %w", coreerrors.ErrAlreadyInitialized)
	ErrMetadataNotFound    = fmt.Errorf("metadata: record %w", coreerrors.ErrNotFound)
	ErrAssetNotFound       = fmt.Errorf("metadata: asset %w", coreerrors.ErrNotFound)
	ErrCreatorNotFound     = fmt.Errorf("metadata: creator %w", coreerrors.ErrNotFound)
	ErrUnauthorized        = fmt.Errorf("metadata: %w", coreerrors.ErrAuthorization)
	ErrNameTooLong         = fmt.Errorf("metadata: name too long: %w", coreerrors.ErrInvalidArgument)
	ErrSymbolTooLong       = fmt.Errorf("metadata: symbol too long: %w", coreerrors.ErrInvalidArgument)
	ErrInvalidText         = fmt.Errorf("metadata: text must be valid UTF-8: %w", coreerrors.ErrInvalidArgument)
	ErrURITooLong          = fmt.Errorf("metadata: uri too long: %w", coreerrors.ErrInvalidArgument)
	ErrInvalidShares       = fmt.Errorf("metadata: creator shares must total 100: %w", coreerrors.ErrInvalidArgument)
	ErrDuplicateCreator    = fmt.Errorf("metadata: duplicate creator: %w", coreerrors.ErrInvalidArgument)
	ErrNotUniqueSupply     = fmt.Errorf("metadata: asset supply must be exactly one: %w", coreerrors.ErrInvalidArgument)
	ErrNotCollection       = fmt.Errorf("metadata: asset is not a collection: %w", coreerrors.ErrInvalidArgument)
	ErrCollectionMismatch  = fmt.Errorf("metadata: collection %w", coreerrors.ErrAddressMismatch)
	ErrNotPending          = fmt.Errorf("metadata: membership not pending verification: %w", coreerrors.ErrInvalidArgument)
	ErrCollectionSizeLimit = fmt.Errorf("metadata: collection size %w", coreerrors.ErrArithmeticOverflow)
)

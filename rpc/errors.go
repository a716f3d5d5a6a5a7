package rpc

import (
	"errors"
	"net/http"

	coreerrors "loyaltyledger/core/errors"
	nativecommon "loyaltyledger/native/common"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeNotFound       = -32004
	codeConflict       = -32005
	codeAddressInvalid = -32006
	codeOverflow       = -32007
	codeInsufficient   = -32008
	codeModulePaused   = -32009
	codeRateLimited    = -32020
)

// classify maps an operation error onto an HTTP status and JSON-RPC code.
func classify(err error) (int, int) {
	if errors.Is(err, nativecommon.ErrModulePaused) {
		return http.StatusServiceUnavailable, codeModulePaused
	}
	switch {
	case errors.Is(err, coreerrors.ErrAuthorization):
		return http.StatusForbidden, codeUnauthorized
	case errors.Is(err, coreerrors.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, coreerrors.ErrAlreadyInitialized):
		return http.StatusConflict, codeConflict
	case errors.Is(err, coreerrors.ErrAddressMismatch):
		return http.StatusBadRequest, codeAddressInvalid
	case errors.Is(err, coreerrors.ErrArithmeticOverflow):
		return http.StatusConflict, codeOverflow
	case errors.Is(err, coreerrors.ErrInsufficientBalance):
		return http.StatusConflict, codeInsufficient
	case errors.Is(err, coreerrors.ErrInvalidArgument):
		return http.StatusBadRequest, codeInvalidParams
	default:
		return http.StatusInternalServerError, codeServerError
	}
}

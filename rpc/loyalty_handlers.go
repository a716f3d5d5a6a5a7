package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"loyaltyledger/core/types"
)

func (s *Server) handleSendTransaction(ctx context.Context, _ *http.Request, req *RPCRequest) (interface{}, *rpcFailure) {
	if len(req.Params) != 1 {
		return nil, failure(http.StatusBadRequest, codeInvalidParams, "transaction parameter required", nil)
	}
	var tx types.Transaction
	if err := json.Unmarshal(req.Params[0], &tx); err != nil {
		return nil, failure(http.StatusBadRequest, codeInvalidParams, "invalid transaction format", err.Error())
	}
	receipt, err := s.backend.Execute(ctx, &tx)
	if err != nil {
		var data interface{}
		if receipt != nil {
			data = receipt
		}
		return nil, failureFromError(err, data)
	}
	return SendTransactionResult{Receipt: receipt}, nil
}

func (s *Server) handleGetMerchant(_ context.Context, _ *http.Request, req *RPCRequest) (interface{}, *rpcFailure) {
	var params AddressParams
	if f := decodeParam(req, &params); f != nil {
		return nil, f
	}
	record, err := s.backend.Merchant(params.Address)
	if err != nil {
		return nil, failureFromError(err, nil)
	}
	return merchantResult(params.Address, record), nil
}

func (s *Server) handleDeriveAddresses(_ context.Context, _ *http.Request, req *RPCRequest) (interface{}, *rpcFailure) {
	var params DeriveParams
	if f := decodeParam(req, &params); f != nil {
		return nil, f
	}
	if params.Authority.IsZero() {
		return nil, failure(http.StatusBadRequest, codeInvalidParams, "authority required", nil)
	}
	return s.backend.DeriveAddresses(params.Authority, params.Customer), nil
}

func (s *Server) handleGetBalance(_ context.Context, _ *http.Request, req *RPCRequest) (interface{}, *rpcFailure) {
	var params BalanceParams
	if f := decodeParam(req, &params); f != nil {
		return nil, f
	}
	asset := s.backend.PaymentAsset()
	if params.Asset != nil {
		asset = *params.Asset
	}
	if _, err := s.backend.Asset(asset); err != nil {
		return nil, failureFromError(err, nil)
	}
	balance, err := s.backend.Balance(params.Owner, asset)
	if err != nil {
		return nil, failureFromError(err, nil)
	}
	return BalanceResult{Owner: params.Owner, Asset: asset, Balance: balance}, nil
}

func (s *Server) handleGetMetadata(_ context.Context, _ *http.Request, req *RPCRequest) (interface{}, *rpcFailure) {
	var params AddressParams
	if f := decodeParam(req, &params); f != nil {
		return nil, f
	}
	md, err := s.backend.Metadata(params.Address)
	if err != nil {
		return nil, failureFromError(err, nil)
	}
	return md, nil
}

func (s *Server) handleGetReceipt(_ context.Context, _ *http.Request, req *RPCRequest) (interface{}, *rpcFailure) {
	var params ReceiptParams
	if f := decodeParam(req, &params); f != nil {
		return nil, f
	}
	if strings.TrimSpace(params.Hash) == "" {
		return nil, failure(http.StatusBadRequest, codeInvalidParams, "hash required", nil)
	}
	receipt, err := s.backend.Receipt(params.Hash)
	if err != nil {
		return nil, failureFromError(err, nil)
	}
	return receipt, nil
}

func (s *Server) handleGetNonce(_ context.Context, _ *http.Request, req *RPCRequest) (interface{}, *rpcFailure) {
	var params AddressParams
	if f := decodeParam(req, &params); f != nil {
		return nil, f
	}
	nonce, err := s.backend.Nonce(params.Address)
	if err != nil {
		return nil, failureFromError(err, nil)
	}
	return NonceResult{Address: params.Address, Nonce: nonce}, nil
}

func (s *Server) handleGetHead(_ context.Context, _ *http.Request, _ *RPCRequest) (interface{}, *rpcFailure) {
	root, version := s.backend.Head()
	return HeadResult{
		ChainID:      s.backend.ChainID(),
		PaymentAsset: s.backend.PaymentAsset(),
		StateRoot:    root.Hex(),
		Version:      version,
	}, nil
}

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"loyaltyledger/core"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/ledger"
	"loyaltyledger/native/loyalty"
	"loyaltyledger/observability"
)

const (
	maxRequestBytes = 1 << 20 // 1 MiB
	metricsModule   = "loyalty"
	requestIDHeader = "X-Request-ID"
)

// Backend is the ledger the server exposes.
type Backend interface {
	Execute(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	Merchant(addr crypto.Address) (*loyalty.MerchantAccount, error)
	Asset(addr crypto.Address) (*ledger.Asset, error)
	Balance(owner, asset crypto.Address) (uint64, error)
	Metadata(asset crypto.Address) (*core.AssetMetadata, error)
	Nonce(addr crypto.Address) (uint64, error)
	Receipt(hash string) (*types.Receipt, error)
	DeriveAddresses(authority crypto.Address, customer *crypto.Address) loyalty.Addresses
	PaymentAsset() crypto.Address
	ChainID() uint64
	Head() (common.Hash, uint64)
}

// ServerConfig configures the JSON-RPC server.
type ServerConfig struct {
	Auth      AuthConfig
	RateLimit RateLimit
}

type handlerFunc func(ctx context.Context, r *http.Request, req *RPCRequest) (interface{}, *rpcFailure)

// rpcFailure is a JSON-RPC error together with the HTTP status it is sent
// with.
type rpcFailure struct {
	status int
	err    *RPCError
}

func failure(status, code int, message string, data interface{}) *rpcFailure {
	return &rpcFailure{status: status, err: &RPCError{Code: code, Message: message, Data: data}}
}

func failureFromError(err error, data interface{}) *rpcFailure {
	status, code := classify(err)
	return failure(status, code, err.Error(), data)
}

type Server struct {
	backend Backend
	logger  *slog.Logger
	auth    *authenticator
	limiter *rateLimiter
	methods map[string]handlerFunc
	writes  map[string]bool
}

func NewServer(backend Backend, logger *slog.Logger, cfg ServerConfig) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		backend: backend,
		logger:  logger.With("component", "rpc"),
		auth:    newAuthenticator(cfg.Auth),
		limiter: newRateLimiter(cfg.RateLimit),
	}
	s.methods = map[string]handlerFunc{
		"loyalty_sendTransaction": s.handleSendTransaction,
		"loyalty_getMerchant":     s.handleGetMerchant,
		"loyalty_deriveAddresses": s.handleDeriveAddresses,
		"loyalty_getBalance":      s.handleGetBalance,
		"loyalty_getMetadata":     s.handleGetMetadata,
		"loyalty_getReceipt":      s.handleGetReceipt,
		"loyalty_getNonce":        s.handleGetNonce,
		"loyalty_getHead":         s.handleGetHead,
	}
	s.writes = map[string]bool{"loyalty_sendTransaction": true}
	return s
}

// Handler returns the HTTP routes of the server wrapped in OpenTelemetry
// instrumentation.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/rpc", s.handle)
	return otelhttp.NewHandler(r, "loyaltyledger.rpc")
}

func writeError(w http.ResponseWriter, status int, id interface{}, rpcErr *RPCError) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: rpcErr}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, requestID)
	w.Header().Set("Content-Type", "application/json")

	method := ""
	status := http.StatusOK
	defer func() {
		observability.ModuleMetrics().Observe(metricsModule, method, status, time.Since(start))
	}()
	fail := func(id interface{}, f *rpcFailure) {
		status = f.status
		writeError(w, f.status, id, f.err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		f := failure(http.StatusBadRequest, codeInvalidRequest, "failed to read request body", err.Error())
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			f = failure(http.StatusRequestEntityTooLarge, codeInvalidRequest, fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes), nil)
		}
		fail(nil, f)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		fail(nil, failure(http.StatusBadRequest, codeInvalidRequest, "request body required", nil))
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		fail(nil, failure(http.StatusBadRequest, codeParseError, "invalid JSON payload", err.Error()))
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		fail(req.ID, failure(http.StatusBadRequest, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC))
		return
	}
	if req.Method == "" {
		fail(req.ID, failure(http.StatusBadRequest, codeInvalidRequest, "method required", nil))
		return
	}
	method = req.Method

	source := clientSource(r)
	if !s.limiter.allow(source) {
		observability.ModuleMetrics().RecordThrottle(metricsModule, "rate_limit")
		fail(req.ID, failure(http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded", source))
		return
	}

	handler, ok := s.methods[req.Method]
	if !ok {
		fail(req.ID, failure(http.StatusNotFound, codeMethodNotFound, "method not found", req.Method))
		return
	}
	if s.writes[req.Method] {
		if _, authErr := s.auth.authorize(r); authErr != nil {
			fail(req.ID, &rpcFailure{status: http.StatusUnauthorized, err: authErr})
			return
		}
	}

	ctx := core.WithRequestID(r.Context(), requestID)
	result, f := handler(ctx, r, req)
	if f != nil {
		s.logger.DebugContext(ctx, "rpc request failed",
			"requestId", requestID,
			"method", req.Method,
			"status", f.status,
			"error", f.err.Message,
		)
		fail(req.ID, f)
		return
	}
	writeResult(w, req.ID, result)
}

func decodeParam(req *RPCRequest, out interface{}) *rpcFailure {
	if len(req.Params) != 1 {
		return failure(http.StatusBadRequest, codeInvalidParams, "parameter object required", nil)
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return failure(http.StatusBadRequest, codeInvalidParams, "invalid parameter object", err.Error())
	}
	return nil
}

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	coreerrors "loyaltyledger/core/errors"
	"loyaltyledger/core/events"
	"loyaltyledger/core/state"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	nativecommon "loyaltyledger/native/common"
	"loyaltyledger/native/ledger"
	"loyaltyledger/native/loyalty"
	"loyaltyledger/native/metadata"
	"loyaltyledger/observability"
	"loyaltyledger/observability/logging"
	telemetry "loyaltyledger/observability/otel"
	"loyaltyledger/storage"
	"loyaltyledger/storage/trie"
)

var headKey = []byte("loyaltyledger/head")

var (
	ErrChainIDMismatch = fmt.Errorf("host: chain id %w", coreerrors.ErrInvalidArgument)
	ErrNonceMismatch   = fmt.Errorf("host: nonce %w", coreerrors.ErrInvalidArgument)
	ErrBadSignature    = fmt.Errorf("host: signature %w", coreerrors.ErrAuthorization)
)

// ReceiptStore persists the receipts of executed transactions.
type ReceiptStore interface {
	Put(*types.Receipt) error
	Get(hash string) (*types.Receipt, error)
}

// Options configures a Host.
type Options struct {
	ChainID      uint64
	PaymentAsset crypto.Address
	Receipts     ReceiptStore
	Pauses       nativecommon.PauseView
	Logger       *slog.Logger
}

type head struct {
	Root    common.Hash `json:"root"`
	Version uint64      `json:"version"`
}

type outcome struct {
	root    common.Hash
	version uint64
	events  []types.Event
}

// Host owns the ledger state and runs operations against it one at a time.
// Every operation either commits all of its writes and events or none.
type Host struct {
	mu sync.Mutex

	db       storage.Database
	trie     *trie.Trie
	manager  *state.Manager
	ledger   *ledger.Ledger
	registry *metadata.Registry
	engine   *loyalty.Engine
	buffer   *events.Buffer
	receipts ReceiptStore

	logger   *slog.Logger
	tracer   trace.Tracer
	executed metric.Int64Counter

	chainID uint64
	version uint64
}

// NewHost opens the ledger state at the last committed head of db.
func NewHost(db storage.Database, opts Options) (*Host, error) {
	if db == nil {
		return nil, fmt.Errorf("host: database required")
	}
	var current head
	if raw, err := db.Get(headKey); err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &current); err != nil {
			return nil, fmt.Errorf("host: decode head: %w", err)
		}
	}
	var root []byte
	if current.Version > 0 {
		root = current.Root.Bytes()
	}
	stateTrie, err := trie.NewTrie(db, root)
	if err != nil {
		return nil, fmt.Errorf("host: open state at %s: %w", current.Root, err)
	}
	if err := state.EnsureStateVersion(stateTrie); err != nil {
		return nil, err
	}

	paymentAsset := opts.PaymentAsset
	if paymentAsset.IsZero() {
		paymentAsset = DefaultPaymentAsset
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	manager := state.NewManager(stateTrie)
	buffer := &events.Buffer{}
	l := ledger.New(manager)
	l.SetEmitter(buffer)
	registry := metadata.NewRegistry(manager, l)
	registry.SetEmitter(buffer)
	engine := loyalty.NewEngine(manager, l, registry, paymentAsset)
	engine.SetEmitter(buffer)
	engine.SetPauses(opts.Pauses)

	executed, err := otel.Meter(telemetry.InstrumentationName).Int64Counter(
		"loyalty.operations",
		metric.WithDescription("Executed ledger operations by operation and outcome."),
	)
	if err != nil {
		return nil, fmt.Errorf("host: create operation counter: %w", err)
	}

	observability.LedgerMetrics().SetVersion(current.Version)
	return &Host{
		db:       db,
		trie:     stateTrie,
		manager:  manager,
		ledger:   l,
		registry: registry,
		engine:   engine,
		buffer:   buffer,
		receipts: opts.Receipts,
		logger:   logger.With("component", "host"),
		tracer:   otel.Tracer(telemetry.InstrumentationName),
		executed: executed,
		chainID:  opts.ChainID,
		version:  current.Version,
	}, nil
}

// ChainID returns the chain identifier transactions must carry.
func (h *Host) ChainID() uint64 { return h.chainID }

// PaymentAsset returns the asset customers pay merchants in.
func (h *Host) PaymentAsset() crypto.Address { return h.engine.PaymentAsset() }

// Head returns the last committed state root and its sequence number.
func (h *Host) Head() (common.Hash, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.trie.Root(), h.version
}

// apply runs fn against the state. On error every write and buffered event of
// fn is discarded; otherwise the writes are committed as the next version.
func (h *Host) apply(fn func() error) (*outcome, error) {
	parent := h.trie.Root()
	rollback := func(cause error) error {
		h.buffer.Discard()
		if err := h.trie.Reset(parent); err != nil {
			return fmt.Errorf("%w (rollback failed: %v)", cause, err)
		}
		return cause
	}
	if err := fn(); err != nil {
		return nil, rollback(err)
	}
	version := h.version + 1
	root, err := h.trie.Commit(parent, version)
	if err != nil {
		return nil, rollback(fmt.Errorf("host: commit state: %w", err))
	}
	raw, err := json.Marshal(head{Root: root, Version: version})
	if err != nil {
		return nil, err
	}
	if err := h.db.Put(headKey, raw); err != nil {
		return nil, fmt.Errorf("host: write head: %w", err)
	}
	h.version = version
	observability.LedgerMetrics().SetVersion(version)
	return &outcome{root: root, version: version, events: h.buffer.Drain()}, nil
}

// Execute verifies a signed transaction and runs its operation with the
// signer as caller. Transactions with a wrong chain id, a bad signature or an
// out-of-order nonce are rejected without touching state. Once accepted, the
// caller's nonce is consumed even when the operation fails; a failed
// operation returns its receipt together with the error.
func (h *Host) Execute(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if tx == nil {
		return nil, fmt.Errorf("host: nil transaction: %w", coreerrors.ErrInvalidArgument)
	}
	op := tx.Type.String()
	ctx, span := h.tracer.Start(ctx, "loyalty.execute", trace.WithAttributes(
		attribute.String("loyalty.operation", op),
		attribute.Int64("loyalty.nonce", int64(tx.Nonce)),
	))
	defer span.End()

	if tx.ChainID != h.chainID {
		return nil, h.reject(span, fmt.Errorf("%w: got %d want %d", ErrChainIDMismatch, tx.ChainID, h.chainID))
	}
	if !tx.Type.Valid() {
		return nil, h.reject(span, fmt.Errorf("%w: %s", coreerrors.ErrInvalidArgument, types.ErrUnknownTxType))
	}
	caller, err := tx.From()
	if err != nil {
		return nil, h.reject(span, fmt.Errorf("%w: %v", ErrBadSignature, err))
	}
	hash, err := tx.Hash()
	if err != nil {
		return nil, h.reject(span, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	nonce, err := h.manager.Nonce(caller)
	if err != nil {
		return nil, h.reject(span, err)
	}
	if tx.Nonce != nonce {
		return nil, h.reject(span, fmt.Errorf("%w: got %d want %d", ErrNonceMismatch, tx.Nonce, nonce))
	}

	receipt := &types.Receipt{
		TxHash: hexutil.Encode(hash),
		Type:   op,
		Caller: caller,
		Nonce:  tx.Nonce,
		Status: types.ReceiptStatusSuccess,
	}
	start := time.Now()
	var reward uint64
	res, execErr := h.apply(func() error {
		paid, err := h.dispatch(types.NewInvocation(loyalty.ProgramID, caller), tx)
		if err != nil {
			return err
		}
		reward = paid
		return h.manager.SetNonce(caller, nonce+1)
	})
	if execErr != nil {
		res, err = h.apply(func() error { return h.manager.SetNonce(caller, nonce+1) })
		if err != nil {
			return nil, h.reject(span, fmt.Errorf("host: consume nonce: %w", err))
		}
		receipt.Status = types.ReceiptStatusFailed
		receipt.Error = execErr.Error()
		span.RecordError(execErr)
		span.SetStatus(codes.Error, errorKind(execErr))
	} else {
		observability.LedgerMetrics().RecordReward(reward)
	}
	receipt.Events = res.events
	receipt.StateRoot = res.root.Hex()
	receipt.Version = res.version
	h.observe(ctx, op, receipt, execErr, time.Since(start))

	if h.receipts != nil {
		if err := h.receipts.Put(receipt); err != nil {
			h.logger.Error("store receipt", "txHash", receipt.TxHash, "error", err)
		}
	}
	return receipt, execErr
}

func (h *Host) reject(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, errorKind(err))
	return err
}

// dispatch runs the operation named by tx. It returns the reward points a
// payment earned.
func (h *Host) dispatch(inv *types.Invocation, tx *types.Transaction) (uint64, error) {
	switch tx.Type {
	case types.TxTypeInitMerchant:
		_, _, err := h.engine.InitMerchant(inv)
		return 0, err
	case types.TxTypeInitRewardPoints:
		var p types.InitRewardPointsParams
		if err := decodeParams(tx, &p); err != nil {
			return 0, err
		}
		_, err := h.engine.InitRewardPoints(inv, p.Merchant, p.BasisPoints, loyalty.Metadata{URI: p.URI, Name: p.Name, Symbol: p.Symbol})
		return 0, err
	case types.TxTypeTransaction:
		var p types.TransactionParams
		if err := decodeParams(tx, &p); err != nil {
			return 0, err
		}
		payment, err := h.engine.ProcessPayment(inv, p.Merchant, p.Amount)
		if err != nil {
			return 0, err
		}
		return payment.Reward, nil
	case types.TxTypeCreateCollectionNFT:
		var p types.CreateCollectionParams
		if err := decodeParams(tx, &p); err != nil {
			return 0, err
		}
		_, err := h.engine.CreateCollection(inv, p.Merchant, p.LoyaltyDiscountBasisPoints, loyalty.Metadata{URI: p.URI, Name: p.Name, Symbol: p.Symbol})
		return 0, err
	case types.TxTypeCreateNFTInCollection:
		var p types.CreateItemParams
		if err := decodeParams(tx, &p); err != nil {
			return 0, err
		}
		_, err := h.engine.CreateItemInCollection(inv, p.Merchant, p.Customer, loyalty.Metadata{URI: p.URI, Name: p.Name, Symbol: p.Symbol})
		return 0, err
	case types.TxTypeUpdateRewardPoints:
		var p types.UpdateBasisPointsParams
		if err := decodeParams(tx, &p); err != nil {
			return 0, err
		}
		return 0, h.engine.UpdateRewardBasisPoints(inv, p.Merchant, p.BasisPoints)
	case types.TxTypeUpdateLoyaltyPoints:
		var p types.UpdateBasisPointsParams
		if err := decodeParams(tx, &p); err != nil {
			return 0, err
		}
		return 0, h.engine.UpdateLoyaltyBasisPoints(inv, p.Merchant, p.BasisPoints)
	case types.TxTypeMintRewardPoints:
		var p types.MintRewardPointsParams
		if err := decodeParams(tx, &p); err != nil {
			return 0, err
		}
		return 0, h.engine.MintRewardPoints(inv, p.Merchant, p.Customer, p.Amount)
	default:
		return 0, fmt.Errorf("%w: %s", coreerrors.ErrInvalidArgument, types.ErrUnknownTxType)
	}
}

func decodeParams(tx *types.Transaction, out interface{}) error {
	if err := tx.DecodeParams(out); err != nil {
		return fmt.Errorf("%w: %v", coreerrors.ErrInvalidArgument, err)
	}
	return nil
}

func errorKind(err error) string {
	if errors.Is(err, nativecommon.ErrModulePaused) {
		return "paused"
	}
	return coreerrors.Kind(err)
}

type requestIDKey struct{}

// WithRequestID tags ctx with the id logged for the operations it runs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id carried by ctx, or a fresh one.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func (h *Host) observe(ctx context.Context, op string, receipt *types.Receipt, execErr error, elapsed time.Duration) {
	kind := errorKind(execErr)
	observability.LedgerMetrics().ObserveOperation(op, kind, elapsed)
	outcome := "committed"
	if execErr != nil {
		outcome = "rolled_back"
	}
	h.executed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))

	attrs := []any{
		slog.String("requestId", RequestID(ctx)),
		slog.String("txHash", receipt.TxHash),
		slog.String("operation", op),
		logging.MaskField("caller", receipt.Caller.String()),
		slog.Uint64("version", receipt.Version),
		slog.Duration("elapsed", elapsed),
	}
	if execErr != nil {
		h.logger.WarnContext(ctx, "operation rolled back", append(attrs, slog.String("kind", kind), slog.String("error", execErr.Error()))...)
		return
	}
	h.logger.InfoContext(ctx, "operation committed", append(attrs, slog.Int("events", len(receipt.Events)))...)
}

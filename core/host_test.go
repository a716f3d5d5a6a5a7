package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	coreerrors "loyaltyledger/core/errors"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/ledger"
	"loyaltyledger/native/loyalty"
	"loyaltyledger/storage"
	"loyaltyledger/storage/receipts"
)

const testChainID = 7

type testEnv struct {
	host     *Host
	treasury *crypto.PrivateKey
	merchant *crypto.PrivateKey
	customer *crypto.PrivateKey
}

func newKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func openHost(t *testing.T, db storage.Database) *Host {
	t.Helper()
	store, err := receipts.Open(filepath.Join(t.TempDir(), "receipts.db"), nil)
	if err != nil {
		t.Fatalf("open receipts: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	host, err := NewHost(db, Options{
		ChainID:  testChainID,
		Receipts: store,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("new host: %v", err)
	}
	return host
}

func newTestEnv(t *testing.T, db storage.Database) *testEnv {
	t.Helper()
	env := &testEnv{
		host:     openHost(t, db),
		treasury: newKey(t),
		merchant: newKey(t),
		customer: newKey(t),
	}
	if err := env.host.Bootstrap(Genesis{
		MintAuthority: env.treasury.Address(),
		Decimals:      6,
		Allocations: []Allocation{
			{Owner: env.customer.Address(), Amount: 10_000},
		},
	}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return env
}

func (e *testEnv) send(t *testing.T, key *crypto.PrivateKey, txType types.TxType, params interface{}) (*types.Receipt, error) {
	t.Helper()
	nonce, err := e.host.Nonce(key.Address())
	if err != nil {
		t.Fatalf("nonce: %v", err)
	}
	tx, err := types.NewTransaction(testChainID, txType, nonce, params)
	if err != nil {
		t.Fatalf("build tx: %v", err)
	}
	if err := tx.Sign(key); err != nil {
		t.Fatalf("sign tx: %v", err)
	}
	return e.host.Execute(context.Background(), tx)
}

func (e *testEnv) mustSend(t *testing.T, key *crypto.PrivateKey, txType types.TxType, params interface{}) *types.Receipt {
	t.Helper()
	receipt, err := e.send(t, key, txType, params)
	if err != nil {
		t.Fatalf("%s: %v", txType, err)
	}
	if !receipt.Succeeded() {
		t.Fatalf("%s: unexpected receipt %+v", txType, receipt)
	}
	return receipt
}

func (e *testEnv) openMerchant(t *testing.T, bps uint16) loyalty.Addresses {
	t.Helper()
	addrs := e.host.DeriveAddresses(e.merchant.Address(), nil)
	e.mustSend(t, e.merchant, types.TxTypeInitMerchant, nil)
	e.mustSend(t, e.merchant, types.TxTypeInitRewardPoints, types.InitRewardPointsParams{
		Merchant:    addrs.Merchant,
		BasisPoints: bps,
		URI:         "https://example.com/points.json",
		Name:        "Bean Points",
		Symbol:      "BEAN",
	})
	return addrs
}

func TestBootstrapIsIdempotent(t *testing.T) {
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	env := newTestEnv(t, db)

	_, version := env.host.Head()
	if err := env.host.Bootstrap(Genesis{MintAuthority: env.treasury.Address()}); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if _, again := env.host.Head(); again != version {
		t.Fatalf("second bootstrap committed state: %d -> %d", version, again)
	}
	balance, err := env.host.Balance(env.customer.Address(), env.host.PaymentAsset())
	if err != nil || balance != 10_000 {
		t.Fatalf("unexpected genesis balance %d (%v)", balance, err)
	}
	if err := env.host.Bootstrap(Genesis{}); !errors.Is(err, coreerrors.ErrInvalidArgument) {
		t.Fatalf("expected missing mint authority to fail, got %v", err)
	}
}

func TestExecutePaymentEarnsRewards(t *testing.T) {
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	env := newTestEnv(t, db)
	addrs := env.openMerchant(t, 500)

	receipt := env.mustSend(t, env.customer, types.TxTypeTransaction, types.TransactionParams{
		Merchant: addrs.Merchant,
		Amount:   1_000,
	})
	if len(receipt.Events) == 0 || receipt.Events[len(receipt.Events)-1].Type != "loyalty.payment.processed" {
		t.Fatalf("unexpected events: %+v", receipt.Events)
	}

	points, err := env.host.Balance(env.customer.Address(), addrs.RewardPoints)
	if err != nil || points != 50 {
		t.Fatalf("expected 50 reward points, got %d (%v)", points, err)
	}
	paid, err := env.host.Balance(env.merchant.Address(), env.host.PaymentAsset())
	if err != nil || paid != 1_000 {
		t.Fatalf("expected merchant to receive 1000, got %d (%v)", paid, err)
	}

	stored, err := env.host.Receipt(receipt.TxHash)
	if err != nil {
		t.Fatalf("load receipt: %v", err)
	}
	if stored.Version != receipt.Version || stored.StateRoot != receipt.StateRoot {
		t.Fatalf("stored receipt differs: %+v", stored)
	}

	record, err := env.host.Merchant(addrs.Merchant)
	if err != nil {
		t.Fatalf("merchant: %v", err)
	}
	if record.RewardPointsAsset != addrs.RewardPoints || record.RewardPointsBasisPoints != 500 {
		t.Fatalf("unexpected merchant record: %+v", record)
	}
	md, err := env.host.Metadata(addrs.RewardPoints)
	if err != nil || md.Metadata.Symbol != "BEAN" {
		t.Fatalf("unexpected reward metadata: %+v (%v)", md, err)
	}
}

func TestExecuteRejectsBadEnvelopes(t *testing.T) {
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	env := newTestEnv(t, db)
	_, before := env.host.Head()

	tx, err := types.NewTransaction(testChainID+1, types.TxTypeInitMerchant, 0, nil)
	if err != nil {
		t.Fatalf("build tx: %v", err)
	}
	if err := tx.Sign(env.merchant); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := env.host.Execute(context.Background(), tx); !errors.Is(err, ErrChainIDMismatch) {
		t.Fatalf("expected chain id mismatch, got %v", err)
	}

	unsigned, _ := types.NewTransaction(testChainID, types.TxTypeInitMerchant, 0, nil)
	if _, err := env.host.Execute(context.Background(), unsigned); !errors.Is(err, coreerrors.ErrAuthorization) {
		t.Fatalf("expected missing signature to fail authorization, got %v", err)
	}

	replay, _ := types.NewTransaction(testChainID, types.TxTypeInitMerchant, 5, nil)
	if err := replay.Sign(env.merchant); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := env.host.Execute(context.Background(), replay); !errors.Is(err, ErrNonceMismatch) {
		t.Fatalf("expected nonce mismatch, got %v", err)
	}

	if _, after := env.host.Head(); after != before {
		t.Fatalf("rejected transactions committed state")
	}
	if nonce, _ := env.host.Nonce(env.merchant.Address()); nonce != 0 {
		t.Fatalf("rejected transactions consumed nonce %d", nonce)
	}
}

func TestFailedOperationRollsBackEveryWrite(t *testing.T) {
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	env := newTestEnv(t, db)
	addrs := env.openMerchant(t, 500)

	whale := newKey(t).Address()
	env.mustSend(t, env.merchant, types.TxTypeMintRewardPoints, types.MintRewardPointsParams{
		Merchant: addrs.Merchant,
		Customer: whale,
		Amount:   math.MaxUint64 - 10,
	})

	customer := env.customer.Address()
	destination := ledger.HoldingAddress(env.merchant.Address(), env.host.PaymentAsset())
	_, before := env.host.Head()

	// The transfer succeeds; minting the reward then overflows the supply.
	receipt, err := env.send(t, env.customer, types.TxTypeTransaction, types.TransactionParams{
		Merchant: addrs.Merchant,
		Amount:   1_000,
	})
	if !errors.Is(err, coreerrors.ErrArithmeticOverflow) {
		t.Fatalf("expected supply overflow, got %v", err)
	}
	if receipt == nil || receipt.Succeeded() || receipt.Error == "" {
		t.Fatalf("expected failed receipt, got %+v", receipt)
	}
	if len(receipt.Events) != 0 {
		t.Fatalf("failed operation leaked events: %+v", receipt.Events)
	}

	if balance, _ := env.host.Balance(customer, env.host.PaymentAsset()); balance != 10_000 {
		t.Fatalf("customer payment balance changed to %d", balance)
	}
	account, err := env.host.Asset(env.host.PaymentAsset())
	if err != nil {
		t.Fatalf("payment asset: %v", err)
	}
	if account.Supply != 10_000 {
		t.Fatalf("payment supply changed to %d", account.Supply)
	}
	if balance, _ := env.host.Balance(env.merchant.Address(), env.host.PaymentAsset()); balance != 0 {
		t.Fatalf("merchant destination %s credited %d", destination, balance)
	}
	if points, _ := env.host.Balance(customer, addrs.RewardPoints); points != 0 {
		t.Fatalf("customer reward balance changed to %d", points)
	}

	if nonce, _ := env.host.Nonce(customer); nonce != 1 {
		t.Fatalf("failed operation must consume the nonce, got %d", nonce)
	}
	if _, after := env.host.Head(); after != before+1 {
		t.Fatalf("expected only the nonce commit, version %d -> %d", before, after)
	}
}

func TestHostReopensCommittedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	db, err := storage.NewLevelDB(path)
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	env := newTestEnv(t, db)
	addrs := env.openMerchant(t, 250)
	root, version := env.host.Head()
	db.Close()

	reopened, err := storage.NewLevelDB(path)
	if err != nil {
		t.Fatalf("reopen leveldb: %v", err)
	}
	t.Cleanup(reopened.Close)
	host := openHost(t, reopened)

	if gotRoot, gotVersion := host.Head(); gotRoot != root || gotVersion != version {
		t.Fatalf("head mismatch after reopen: %s/%d want %s/%d", gotRoot, gotVersion, root, version)
	}
	record, err := host.Merchant(addrs.Merchant)
	if err != nil {
		t.Fatalf("merchant after reopen: %v", err)
	}
	if record.RewardPointsBasisPoints != 250 {
		t.Fatalf("unexpected record after reopen: %+v", record)
	}
	if nonce, _ := host.Nonce(env.merchant.Address()); nonce != 2 {
		t.Fatalf("expected nonce 2 after reopen, got %d", nonce)
	}
}

func TestErrorKind(t *testing.T) {
	if got := errorKind(loyalty.ErrUnauthorized); got != "authorization" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := errorKind(errors.New("boom")); got != "internal" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := errorKind(nil); got != "" {
		t.Fatalf("unexpected kind %q", got)
	}
}

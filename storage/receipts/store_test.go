package receipts

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"loyaltyledger/core/types"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path, nil)
	require.NoError(t, err)
	return store
}

func TestReceiptRoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.db")
	store := openTestStore(t, path)

	receipt := &types.Receipt{
		TxHash: "0xABCDEF",
		Type:   "transaction",
		Status: types.ReceiptStatusSuccess,
		Events: []types.Event{{Type: "loyalty.payment.processed", Attributes: map[string]string{"reward": "250"}}},
	}
	require.NoError(t, store.Put(receipt))
	require.NoError(t, store.Close())

	store = openTestStore(t, path)
	t.Cleanup(func() { _ = store.Close() })

	got, err := store.Get("abcdef")
	require.NoError(t, err)
	require.Equal(t, "transaction", got.Type)
	require.True(t, got.Succeeded())
	require.Equal(t, "250", got.Events[0].Attributes["reward"])
}

func TestReceiptMissing(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "receipts.db"))
	t.Cleanup(func() { _ = store.Close() })

	_, err := store.Get("0x00")
	require.True(t, errors.Is(err, ErrNotFound))

	require.Error(t, store.Put(&types.Receipt{}))
}

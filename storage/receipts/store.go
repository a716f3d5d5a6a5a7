package receipts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	coreerrors "loyaltyledger/core/errors"
	"loyaltyledger/core/types"
)

var (
	bucketReceipts = []byte("receipts")

	// ErrNotFound is returned when a receipt does not exist.
	ErrNotFound = fmt.Errorf("receipt %w", coreerrors.ErrNotFound)
)

// Store persists execution receipts keyed by transaction hash.
type Store struct {
	db *bolt.DB
}

// Open initialises (and migrates) the BoltDB-backed store.
func Open(path string, options *bolt.Options) (*Store, error) {
	if options == nil {
		options = &bolt.Options{Timeout: time.Second}
	} else if options.Timeout == 0 {
		options.Timeout = time.Second
	}
	db, err := bolt.Open(path, 0o600, options)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReceipts)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying Bolt database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func normalizeHash(hash string) []byte {
	return []byte(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(hash), "0x")))
}

// Put stores a receipt, replacing any previous receipt for the same hash.
func (s *Store) Put(receipt *types.Receipt) error {
	if receipt == nil || strings.TrimSpace(receipt.TxHash) == "" {
		return errors.New("receipt: tx hash required")
	}
	raw, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReceipts).Put(normalizeHash(receipt.TxHash), raw)
	})
}

// Get returns the receipt of the transaction with the given hash. Hashes are
// accepted with or without the 0x prefix.
func (s *Store) Get(hash string) (*types.Receipt, error) {
	var receipt types.Receipt
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketReceipts).Get(normalizeHash(hash))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &receipt)
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

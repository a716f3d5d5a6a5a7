package storage

import (
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/triedb"
)

const (
	levelDBCacheMB   = 16
	levelDBHandles   = 16
	levelDBNamespace = "loyaltyledger/db/"
)

// Database is a generic interface for a key-value store that also hosts the
// trie node database used by the ledger state.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	TrieDB() *triedb.Database
	Close() // A way to gracefully shut down the database connection.
}

// --- In-Memory DB (for testing) ---

type MemDB struct {
	disk   ethdb.Database
	trieDB *triedb.Database
}

func NewMemDB() *MemDB {
	disk := rawdb.NewMemoryDatabase()
	return &MemDB{
		disk:   disk,
		trieDB: triedb.NewDatabase(disk, nil),
	}
}

func (db *MemDB) Put(key []byte, value []byte) error {
	return db.disk.Put(key, value)
}

func (db *MemDB) Get(key []byte) ([]byte, error) {
	return db.disk.Get(key)
}

// TrieDB exposes the node database shared by every trie opened on this store.
func (db *MemDB) TrieDB() *triedb.Database {
	return db.trieDB
}

func (db *MemDB) Close() {
	_ = db.trieDB.Close()
	_ = db.disk.Close()
}

// --- Persistent DB ---

// LevelDB is a persistent key-value store using LevelDB.
type LevelDB struct {
	disk   ethdb.Database
	trieDB *triedb.Database
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	kv, err := leveldb.New(path, levelDBCacheMB, levelDBHandles, levelDBNamespace, false)
	if err != nil {
		return nil, err
	}
	disk := rawdb.NewDatabase(kv)
	return &LevelDB{disk: disk, trieDB: triedb.NewDatabase(disk, nil)}, nil
}

// Put inserts or updates a key-value pair.
func (ldb *LevelDB) Put(key []byte, value []byte) error {
	return ldb.disk.Put(key, value)
}

// Get retrieves a value for a given key.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.disk.Get(key)
}

// TrieDB exposes the node database shared by every trie opened on this store.
func (ldb *LevelDB) TrieDB() *triedb.Database {
	return ldb.trieDB
}

// Close closes the database connection.
func (ldb *LevelDB) Close() {
	_ = ldb.trieDB.Close()
	_ = ldb.disk.Close()
}

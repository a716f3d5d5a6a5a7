package metadata_test

import (
	"errors"
	"strings"
	"testing"

	coreerrors "loyaltyledger/core/errors"
	"loyaltyledger/core/state"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/ledger"
	"loyaltyledger/native/metadata"
	"loyaltyledger/storage"
	statetrie "loyaltyledger/storage/trie"
)

type fixture struct {
	ledger   *ledger.Ledger
	registry *metadata.Registry
	manager  *state.Manager
	program  crypto.Address
	owner    crypto.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	tr, err := statetrie.NewTrie(db, nil)
	if err != nil {
		t.Fatalf("create trie: %v", err)
	}
	manager := state.NewManager(tr)
	l := ledger.New(manager)
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &fixture{
		ledger:   l,
		registry: metadata.NewRegistry(manager, l),
		manager:  manager,
		program:  crypto.ProgramID("badge-test"),
		owner:    key.Address(),
	}
}

// uniqueAsset creates a self-governed asset with a supply of one held by the
// fixture owner.
func (f *fixture) uniqueAsset(t *testing.T, tag string, mintAuthority *crypto.Address) crypto.Address {
	t.Helper()
	asset, _ := crypto.MustDerive(f.program, tag, f.owner)
	authority := asset
	if mintAuthority != nil {
		authority = *mintAuthority
	}
	if _, err := f.ledger.CreateAsset(ledger.AssetSpec{
		Address:         asset,
		MintAuthority:   authority,
		FreezeAuthority: authority,
	}, types.NewSigners(asset)); err != nil {
		t.Fatalf("create asset %s: %v", tag, err)
	}
	acct, _, err := f.ledger.CreateHoldingAccountIfAbsent(f.owner, asset)
	if err != nil {
		t.Fatalf("holding account: %v", err)
	}
	if err := f.ledger.Mint(asset, acct, 1, types.NewSigners(authority)); err != nil {
		t.Fatalf("mint %s: %v", tag, err)
	}
	return asset
}

func TestCollectionMembershipProtocol(t *testing.T) {
	f := newFixture(t)
	collection := f.uniqueAsset(t, "COLLECTION", nil)
	collectionSigners := types.NewSigners(collection)

	_, err := f.registry.RegisterMetadata(collection, collection, metadata.Data{
		Name:     "Coffee Club",
		Symbol:   "CLUB",
		URI:      "https://example.com/club.json",
		Creators: []metadata.Creator{{Address: f.owner, Share: 100, Verified: true}},
	}, true, collectionSigners)
	if err != nil {
		t.Fatalf("register collection: %v", err)
	}
	md, _, _ := f.registry.Metadata(collection)
	if md.Creators[0].Verified {
		t.Fatalf("creators must start unverified")
	}
	if md.Address != metadata.MetadataAddress(collection) {
		t.Fatalf("metadata address mismatch")
	}
	if _, err := f.registry.MarkUniqueSupply(collection, 1, collectionSigners); err != nil {
		t.Fatalf("mark unique: %v", err)
	}
	if err := f.registry.VerifyCreator(collection, f.owner, collectionSigners); !errors.Is(err, coreerrors.ErrAuthorization) {
		t.Fatalf("expected creator signature check, got %v", err)
	}
	if err := f.registry.VerifyCreator(collection, f.owner, types.NewSigners(f.owner)); err != nil {
		t.Fatalf("verify creator: %v", err)
	}

	item := f.uniqueAsset(t, "ITEM", &collection)
	if _, err := f.registry.RegisterMetadata(item, collection, metadata.Data{Name: "Member", Symbol: "MBR"}, false, collectionSigners); err != nil {
		t.Fatalf("register item: %v", err)
	}
	if _, err := f.registry.MarkUniqueSupply(item, metadata.UnlimitedPrints, collectionSigners); err != nil {
		t.Fatalf("mark item unique: %v", err)
	}

	if err := f.registry.VerifyCollectionMembership(item, collection, collectionSigners); !errors.Is(err, metadata.ErrNotPending) {
		t.Fatalf("expected unset item to be rejected, got %v", err)
	}
	if err := f.registry.SetCollection(item, collection, collectionSigners); err != nil {
		t.Fatalf("set collection: %v", err)
	}
	md, _, _ = f.registry.Metadata(item)
	if md.CollectionStatus != metadata.CollectionPendingVerification {
		t.Fatalf("expected pending, got %s", md.CollectionStatus)
	}
	if err := f.registry.VerifyCollectionMembership(item, collection, types.NewSigners(f.owner)); !errors.Is(err, coreerrors.ErrAuthorization) {
		t.Fatalf("expected collection authority check, got %v", err)
	}
	if err := f.registry.VerifyCollectionMembership(item, collection, collectionSigners); err != nil {
		t.Fatalf("verify membership: %v", err)
	}

	md, _, _ = f.registry.Metadata(item)
	if md.CollectionStatus != metadata.CollectionVerified || md.CollectionKey != collection {
		t.Fatalf("unexpected item membership: %+v", md)
	}
	parent, _, _ := f.registry.Metadata(collection)
	if parent.CollectionSize != 1 {
		t.Fatalf("expected collection size 1, got %d", parent.CollectionSize)
	}
	if err := f.registry.SetCollection(item, collection, collectionSigners); !errors.Is(err, coreerrors.ErrAlreadyInitialized) {
		t.Fatalf("verified membership must be terminal, got %v", err)
	}
}

func TestMarkUniqueSupplyCapsLedgerSupply(t *testing.T) {
	f := newFixture(t)
	asset := f.uniqueAsset(t, "BADGE", nil)
	signers := types.NewSigners(asset)
	if _, err := f.registry.RegisterMetadata(asset, asset, metadata.Data{Name: "Badge"}, false, signers); err != nil {
		t.Fatalf("register: %v", err)
	}
	ed, err := f.registry.MarkUniqueSupply(asset, 1, signers)
	if err != nil {
		t.Fatalf("mark unique: %v", err)
	}
	if ed.MaxSupply != 1 || ed.Address != metadata.EditionAddress(asset) {
		t.Fatalf("unexpected edition: %+v", ed)
	}
	acct := ledger.HoldingAddress(f.owner, asset)
	if err := f.ledger.Mint(asset, acct, 1, signers); !errors.Is(err, ledger.ErrSupplyCapExceeded) {
		t.Fatalf("expected second unit to be refused, got %v", err)
	}
	if _, err := f.registry.MarkUniqueSupply(asset, 1, signers); !errors.Is(err, coreerrors.ErrAlreadyInitialized) {
		t.Fatalf("expected edition exists, got %v", err)
	}
}

func TestRegisterMetadataValidation(t *testing.T) {
	f := newFixture(t)
	asset := f.uniqueAsset(t, "BADGE", nil)
	signers := types.NewSigners(asset)

	cases := []struct {
		name string
		data metadata.Data
		want error
	}{
		{"name", metadata.Data{Name: strings.Repeat("n", metadata.MaxNameLength+1)}, metadata.ErrNameTooLong},
		{"symbol", metadata.Data{Symbol: strings.Repeat("s", metadata.MaxSymbolLength+1)}, metadata.ErrSymbolTooLong},
		{"uri", metadata.Data{URI: strings.Repeat("u", metadata.MaxURILength+1)}, metadata.ErrURITooLong},
		{"invalid utf8 name", metadata.Data{Name: "Bean\xff\xfeClub"}, metadata.ErrInvalidText},
		{"invalid utf8 symbol", metadata.Data{Symbol: "B\xc3"}, metadata.ErrInvalidText},
		{"shares", metadata.Data{Creators: []metadata.Creator{{Address: f.owner, Share: 60}}}, metadata.ErrInvalidShares},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.registry.RegisterMetadata(asset, asset, tc.data, false, signers)
			if !errors.Is(err, tc.want) || !errors.Is(err, coreerrors.ErrInvalidArgument) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := f.registry.RegisterMetadata(asset, asset, metadata.Data{Name: "ok"}, false, types.NewSigners(f.owner)); !errors.Is(err, coreerrors.ErrAuthorization) {
		t.Fatalf("expected mint authority check, got %v", err)
	}
	if _, err := f.registry.RegisterMetadata(asset, asset, metadata.Data{Name: "ok"}, false, signers); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.registry.RegisterMetadata(asset, asset, metadata.Data{Name: "again"}, false, signers); !errors.Is(err, coreerrors.ErrAlreadyInitialized) {
		t.Fatalf("expected already initialized, got %v", err)
	}
}

func TestRegisterMetadataNormalizesLabels(t *testing.T) {
	f := newFixture(t)
	asset := f.uniqueAsset(t, "BADGE", nil)

	md, err := f.registry.RegisterMetadata(asset, asset, metadata.Data{
		Name:   " \uff22\uff45\uff41\uff4e Club ",
		Symbol: "\uff22\uff25\uff21\uff2e",
		URI:    "https://example.com/bean.json",
	}, false, types.NewSigners(asset))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if md.Name != "Bean Club" || md.Symbol != "BEAN" {
		t.Fatalf("labels not normalized: %q %q", md.Name, md.Symbol)
	}

	stored, ok, err := f.registry.Metadata(asset)
	if err != nil || !ok {
		t.Fatalf("metadata: ok=%v err=%v", ok, err)
	}
	if stored.Name != "Bean Club" || stored.Symbol != "BEAN" {
		t.Fatalf("unexpected stored labels: %q %q", stored.Name, stored.Symbol)
	}
}

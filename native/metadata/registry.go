package metadata

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"loyaltyledger/core/events"
	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
	"loyaltyledger/native/ledger"
)

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	PutDerivation(addr crypto.Address, capability crypto.Capability) error
}

type assetLedger interface {
	Asset(addr crypto.Address) (*ledger.Asset, bool, error)
	SetSupplyCap(asset crypto.Address, supplyCap uint64, signers types.Signers) error
}

// Registry stores descriptive metadata, uniqueness markers and collection
// membership for ledger assets.
type Registry struct {
	st      registryState
	ledger  assetLedger
	emitter events.Emitter
}

// NewRegistry creates a registry backed by the provided state manager and
// ledger.
func NewRegistry(st registryState, l assetLedger) *Registry {
	return &Registry{st: st, ledger: l, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used to broadcast registry updates.
// Passing nil resets the emitter to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// Metadata returns the metadata registered for asset.
func (r *Registry) Metadata(asset crypto.Address) (*Metadata, bool, error) {
	md := new(Metadata)
	ok, err := r.st.KVGet(recordKey(asset), md)
	if err != nil || !ok {
		return nil, ok, err
	}
	return md, true, nil
}

// Edition returns the uniqueness marker of asset.
func (r *Registry) Edition(asset crypto.Address) (*Edition, bool, error) {
	ed := new(Edition)
	ok, err := r.st.KVGet(editionKey(asset), ed)
	if err != nil || !ok {
		return nil, ok, err
	}
	return ed, true, nil
}

func (r *Registry) mustMetadata(asset crypto.Address) (*Metadata, error) {
	md, ok, err := r.Metadata(asset)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, asset)
	}
	return md, nil
}

func (r *Registry) mustAsset(addr crypto.Address) (*ledger.Asset, error) {
	asset, ok, err := r.ledger.Asset(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, addr)
	}
	return asset, nil
}

func (r *Registry) putMetadata(md *Metadata) error {
	return r.st.KVPut(recordKey(md.Asset), md)
}

// normalizeData rejects text that is not valid UTF-8 and folds name and
// symbol to NFKC so visually identical labels are stored identically.
func normalizeData(data Data) (Data, error) {
	for field, value := range map[string]string{"name": data.Name, "symbol": data.Symbol, "uri": data.URI} {
		if !utf8.ValidString(value) {
			return Data{}, fmt.Errorf("%w: %s", ErrInvalidText, field)
		}
	}
	data.Name = norm.NFKC.String(strings.TrimSpace(data.Name))
	data.Symbol = norm.NFKC.String(strings.TrimSpace(data.Symbol))
	data.URI = strings.TrimSpace(data.URI)
	return data, validateData(data)
}

func validateData(data Data) error {
	if len(data.Name) > MaxNameLength {
		return fmt.Errorf("%w: %d > %d", ErrNameTooLong, len(data.Name), MaxNameLength)
	}
	if len(data.Symbol) > MaxSymbolLength {
		return fmt.Errorf("%w: %d > %d", ErrSymbolTooLong, len(data.Symbol), MaxSymbolLength)
	}
	if len(data.URI) > MaxURILength {
		return fmt.Errorf("%w: %d > %d", ErrURITooLong, len(data.URI), MaxURILength)
	}
	if len(data.Creators) == 0 {
		return nil
	}
	seen := make(map[crypto.Address]struct{}, len(data.Creators))
	total := 0
	for _, c := range data.Creators {
		if _, dup := seen[c.Address]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCreator, c.Address)
		}
		seen[c.Address] = struct{}{}
		total += int(c.Share)
	}
	if total != CreatorShareTotal {
		return fmt.Errorf("%w: got %d", ErrInvalidShares, total)
	}
	return nil
}

// RegisterMetadata attaches descriptive data to asset. The asset's mint
// authority must sign. Creators are always stored unverified.
func (r *Registry) RegisterMetadata(assetAddr, updateAuthority crypto.Address, data Data, isCollection bool, signers types.Signers) (*Metadata, error) {
	data, err := normalizeData(data)
	if err != nil {
		return nil, err
	}
	asset, err := r.mustAsset(assetAddr)
	if err != nil {
		return nil, err
	}
	if !signers.Contains(asset.MintAuthority) {
		return nil, fmt.Errorf("%w: mint authority %s must sign", ErrUnauthorized, asset.MintAuthority)
	}
	if _, exists, err := r.Metadata(assetAddr); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: %s", ErrMetadataExists, assetAddr)
	}
	creators := make([]Creator, len(data.Creators))
	for i, c := range data.Creators {
		creators[i] = Creator{Address: c.Address, Share: c.Share}
	}
	capability := capabilityFor(metadataTag, assetAddr)
	addr, err := capability.Address()
	if err != nil {
		return nil, err
	}
	md := &Metadata{
		Address:         addr,
		Asset:           assetAddr,
		UpdateAuthority: updateAuthority,
		Name:            data.Name,
		Symbol:          data.Symbol,
		URI:             data.URI,
		Creators:        creators,
		IsCollection:    isCollection,
	}
	if err := r.putMetadata(md); err != nil {
		return nil, err
	}
	if err := r.st.PutDerivation(addr, capability); err != nil {
		return nil, err
	}
	r.emitter.Emit(events.MetadataRegistered{
		Asset:           assetAddr,
		UpdateAuthority: updateAuthority,
		Name:            md.Name,
		Symbol:          md.Symbol,
		URI:             md.URI,
	})
	return md, nil
}

// MarkUniqueSupply records the edition marker of a one-of-a-kind asset and
// caps its ledger supply at one. The update authority and the mint authority
// must sign and the asset supply must already be exactly one.
func (r *Registry) MarkUniqueSupply(assetAddr crypto.Address, maxPrints uint64, signers types.Signers) (*Edition, error) {
	md, err := r.mustMetadata(assetAddr)
	if err != nil {
		return nil, err
	}
	if !signers.Contains(md.UpdateAuthority) {
		return nil, fmt.Errorf("%w: update authority %s must sign", ErrUnauthorized, md.UpdateAuthority)
	}
	asset, err := r.mustAsset(assetAddr)
	if err != nil {
		return nil, err
	}
	if asset.Supply != 1 {
		return nil, fmt.Errorf("%w: supply %d", ErrNotUniqueSupply, asset.Supply)
	}
	if _, exists, err := r.Edition(assetAddr); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: %s", ErrEditionExists, assetAddr)
	}
	if err := r.ledger.SetSupplyCap(assetAddr, 1, signers); err != nil {
		return nil, err
	}
	capability := capabilityFor(editionTag, assetAddr)
	addr, err := capability.Address()
	if err != nil {
		return nil, err
	}
	ed := &Edition{Address: addr, Asset: assetAddr, MaxSupply: maxPrints}
	if err := r.st.KVPut(editionKey(assetAddr), ed); err != nil {
		return nil, err
	}
	if err := r.st.PutDerivation(addr, capability); err != nil {
		return nil, err
	}
	r.emitter.Emit(events.MetadataEditionCreated{Asset: assetAddr, Edition: addr, MaxSupply: maxPrints})
	return ed, nil
}

// VerifyCreator marks creator as verified on asset's metadata. The creator
// must be listed and must sign.
func (r *Registry) VerifyCreator(assetAddr, creator crypto.Address, signers types.Signers) error {
	md, err := r.mustMetadata(assetAddr)
	if err != nil {
		return err
	}
	entry, ok := md.Creator(creator)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCreatorNotFound, creator)
	}
	if !signers.Contains(creator) {
		return fmt.Errorf("%w: creator %s must sign", ErrUnauthorized, creator)
	}
	if entry.Verified {
		return nil
	}
	entry.Verified = true
	if err := r.putMetadata(md); err != nil {
		return err
	}
	r.emitter.Emit(events.MetadataCreatorVerified{Asset: assetAddr, Creator: creator})
	return nil
}

// SetCollection claims membership of asset in collection, leaving the item
// pending verification. The item's update authority must sign.
func (r *Registry) SetCollection(assetAddr, collection crypto.Address, signers types.Signers) error {
	md, err := r.mustMetadata(assetAddr)
	if err != nil {
		return err
	}
	if !signers.Contains(md.UpdateAuthority) {
		return fmt.Errorf("%w: update authority %s must sign", ErrUnauthorized, md.UpdateAuthority)
	}
	if md.CollectionStatus != CollectionUnset {
		return fmt.Errorf("%w: %s is %s", ErrCollectionSet, assetAddr, md.CollectionStatus)
	}
	parent, err := r.mustMetadata(collection)
	if err != nil {
		return err
	}
	if !parent.IsCollection {
		return fmt.Errorf("%w: %s", ErrNotCollection, collection)
	}
	md.CollectionKey = collection
	md.CollectionStatus = CollectionPendingVerification
	if err := r.putMetadata(md); err != nil {
		return err
	}
	r.emitter.Emit(events.MetadataCollectionSet{Asset: assetAddr, Collection: collection})
	return nil
}

// VerifyCollectionMembership confirms a pending membership claim. The
// collection's update authority must sign; the collection size grows by one.
func (r *Registry) VerifyCollectionMembership(assetAddr, collection crypto.Address, signers types.Signers) error {
	md, err := r.mustMetadata(assetAddr)
	if err != nil {
		return err
	}
	if md.CollectionStatus != CollectionPendingVerification {
		return fmt.Errorf("%w: %s is %s", ErrNotPending, assetAddr, md.CollectionStatus)
	}
	if md.CollectionKey != collection {
		return fmt.Errorf("%w: item claims %s", ErrCollectionMismatch, md.CollectionKey)
	}
	parent, err := r.mustMetadata(collection)
	if err != nil {
		return err
	}
	if !parent.IsCollection {
		return fmt.Errorf("%w: %s", ErrNotCollection, collection)
	}
	if !signers.Contains(parent.UpdateAuthority) {
		return fmt.Errorf("%w: collection authority %s must sign", ErrUnauthorized, parent.UpdateAuthority)
	}
	if parent.CollectionSize == ^uint64(0) {
		return ErrCollectionSizeLimit
	}
	parent.CollectionSize++
	md.CollectionStatus = CollectionVerified
	if err := r.putMetadata(parent); err != nil {
		return err
	}
	if err := r.putMetadata(md); err != nil {
		return err
	}
	r.emitter.Emit(events.MetadataCollectionVerified{
		Asset:          assetAddr,
		Collection:     collection,
		CollectionSize: parent.CollectionSize,
	})
	return nil
}

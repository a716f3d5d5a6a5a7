package events

import (
	"strconv"

	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
)

const (
	TypeMetadataRegistered         = "metadata.registered"
	TypeMetadataEditionCreated     = "metadata.edition.created"
	TypeMetadataCreatorVerified    = "metadata.creator.verified"
	TypeMetadataCollectionSet      = "metadata.collection.set"
	TypeMetadataCollectionVerified = "metadata.collection.verified"
)

type MetadataRegistered struct {
	Asset           crypto.Address
	UpdateAuthority crypto.Address
	Name            string
	Symbol          string
	URI             string
}

func (MetadataRegistered) EventType() string { return TypeMetadataRegistered }

func (e MetadataRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeMetadataRegistered,
		Attributes: map[string]string{
			"asset":           e.Asset.String(),
			"updateAuthority": e.UpdateAuthority.String(),
			"name":            e.Name,
			"symbol":          e.Symbol,
			"uri":             e.URI,
		},
	}
}

type MetadataEditionCreated struct {
	Asset     crypto.Address
	Edition   crypto.Address
	MaxSupply uint64
}

func (MetadataEditionCreated) EventType() string { return TypeMetadataEditionCreated }

func (e MetadataEditionCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeMetadataEditionCreated,
		Attributes: map[string]string{
			"asset":     e.Asset.String(),
			"edition":   e.Edition.String(),
			"maxSupply": strconv.FormatUint(e.MaxSupply, 10),
		},
	}
}

type MetadataCreatorVerified struct {
	Asset   crypto.Address
	Creator crypto.Address
}

func (MetadataCreatorVerified) EventType() string { return TypeMetadataCreatorVerified }

func (e MetadataCreatorVerified) Event() *types.Event {
	return &types.Event{
		Type: TypeMetadataCreatorVerified,
		Attributes: map[string]string{
			"asset":   e.Asset.String(),
			"creator": e.Creator.String(),
		},
	}
}

type MetadataCollectionSet struct {
	Asset      crypto.Address
	Collection crypto.Address
}

func (MetadataCollectionSet) EventType() string { return TypeMetadataCollectionSet }

func (e MetadataCollectionSet) Event() *types.Event {
	return &types.Event{
		Type: TypeMetadataCollectionSet,
		Attributes: map[string]string{
			"asset":      e.Asset.String(),
			"collection": e.Collection.String(),
		},
	}
}

type MetadataCollectionVerified struct {
	Asset          crypto.Address
	Collection     crypto.Address
	CollectionSize uint64
}

func (MetadataCollectionVerified) EventType() string { return TypeMetadataCollectionVerified }

func (e MetadataCollectionVerified) Event() *types.Event {
	return &types.Event{
		Type: TypeMetadataCollectionVerified,
		Attributes: map[string]string{
			"asset":          e.Asset.String(),
			"collection":     e.Collection.String(),
			"collectionSize": strconv.FormatUint(e.CollectionSize, 10),
		},
	}
}

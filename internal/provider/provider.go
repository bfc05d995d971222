// Package provider defines the capability interface content sources
// implement and the registry that tracks which ones are enabled.
package provider

//go:generate mockgen -destination=mocks/provider.go -package=mocks github.com/streamdex/streamdex/internal/provider Provider

import (
	"context"

	"github.com/streamdex/streamdex/internal/media"
)

// Capability names one operation a provider supports.
type Capability string

const (
	CapSearch   Capability = "search"
	CapMetadata Capability = "metadata"
	CapStream   Capability = "stream"
)

// Provider is the uniform interface over one external content source.
// Implementations are stateless per call: concurrent calls to the same
// provider must not share mutable state.
//
// Cancellation is signalled through ctx. A cancelled call returns
// ctx.Err(); the engine treats that as a cancelled result, not a failure.
type Provider interface {
	// Search returns matching items for a query. An empty slice with a
	// nil error means the provider found nothing.
	Search(ctx context.Context, query string, page int) ([]media.ContentItem, error)

	// GetMetadata returns the detailed view for a content link.
	// Returns ErrNotFound when the link is recognized but has no content.
	GetMetadata(ctx context.Context, link string) (*media.Metadata, error)

	// ResolveStreams returns the playable streams for a watchable link.
	// An empty slice with a nil error means no servers right now.
	ResolveStreams(ctx context.Context, link string, mediaType media.Type) ([]media.Stream, error)
}

// Descriptor describes one configured provider. Value is the identity;
// everything else is display and capability metadata.
type Descriptor struct {
	Value        string
	Name         string
	Capabilities []Capability
	Enabled      bool
}

// Supports reports whether the descriptor declares the capability.
func (d Descriptor) Supports(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

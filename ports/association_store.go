package ports

import (
	"context"

	"cotdex/domain/network"
)

// AssociationReader executes threshold queries against the association table.
// Implementations must return rows in a stable order for identical queries.
type AssociationReader interface {
	QueryAssociations(ctx context.Context, q network.AssociationQuery) ([]network.AssociationRecord, error)
}

// MetadataReader lists the disease metadata table.
type MetadataReader interface {
	QueryMetadata(ctx context.Context) ([]network.DiseaseMetadata, error)
}

// AttributeReader reads demographic attribute counts for a node or an edge.
type AttributeReader interface {
	QueryAttributes(ctx context.Context, q network.AttributeQuery) ([]network.AttributeRow, error)
}

// AssociationStore is the full read surface the network engine needs from
// the statistics database.
type AssociationStore interface {
	AssociationReader
	MetadataReader
	AttributeReader
}

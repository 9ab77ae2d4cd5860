// Package graph is the filtering and subgraph-derivation engine of the
// comorbidity network: edge selection, neighbourhood resolution,
// connectivity checks and projection into the renderer schema.
package graph

import (
	"context"
	"time"

	"cotdex/domain/network"
	"cotdex/internal"
	"cotdex/internal/errors"
	"cotdex/internal/metrics"
	"cotdex/ports"
)

// EdgeFilter selects association records matching a set of thresholds.
type EdgeFilter struct {
	store ports.AssociationReader
	log   *internal.Logger
}

// NewEdgeFilter creates an edge filter over store.
func NewEdgeFilter(store ports.AssociationReader, logger *internal.Logger) *EdgeFilter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EdgeFilter{store: store, log: logger.With("filter")}
}

// Filter returns every record matching params. With seeds, only records whose
// cause or outcome is one of the seeds are kept. Invalid parameters fail with
// INVALID_PARAMETER before the store is touched; store failures come back as
// DATA_SOURCE_ERROR.
func (f *EdgeFilter) Filter(ctx context.Context, params network.FilterParams, seeds ...network.DiseaseCode) ([]network.AssociationRecord, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := f.store.QueryAssociations(ctx, params.Query(seeds...))
	metrics.AccessorDuration.WithLabelValues("associations").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AccessorErrors.WithLabelValues("associations").Inc()
		return nil, errors.DataSource("query associations", err)
	}

	f.log.Debug("fu=%d rr=[%g,%g] scale=%s seeds=%d -> %d records",
		params.FollowUp, params.RRMin, params.RRMax, params.RRScale, len(seeds), len(records))
	return records, nil
}

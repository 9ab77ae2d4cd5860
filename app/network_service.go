package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"cotdex/domain/network"
	"cotdex/internal"
	"cotdex/internal/errors"
	"cotdex/internal/graph"
	"cotdex/internal/metrics"
	"cotdex/ports"

	"golang.org/x/sync/errgroup"
)

// DefaultCacheTTL is how long a built view payload stays in the cache.
const DefaultCacheTTL = time.Hour

// SummaryHubs is the number of best-connected diseases a summary lists.
const SummaryHubs = 10

// NetworkService builds the network views: filter, resolve, project, cache.
type NetworkService struct {
	store     ports.AssociationStore
	cache     ports.CacheStore
	filter    *graph.EdgeFilter
	projector *graph.Projector
	ttl       time.Duration
	log       *internal.Logger
}

// NetworkServiceConfig holds the collaborators of a NetworkService.
type NetworkServiceConfig struct {
	Store  ports.AssociationStore
	Cache  ports.CacheStore
	Style  *network.Style // nil uses the default style
	TTL    time.Duration  // zero uses DefaultCacheTTL
	Logger *internal.Logger
}

// NewNetworkService creates a network service
func NewNetworkService(cfg NetworkServiceConfig) *NetworkService {
	logger := cfg.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &NetworkService{
		store:     cfg.Store,
		cache:     cfg.Cache,
		filter:    graph.NewEdgeFilter(cfg.Store, logger),
		projector: graph.NewProjector(cfg.Style),
		ttl:       ttl,
		log:       logger.With("network"),
	}
}

// MainNetwork returns the whole network filtered by params.
func (s *NetworkService) MainNetwork(ctx context.Context, params network.FilterParams) ([]byte, error) {
	return s.view(ctx, network.WholeNetworkProfile.Name, params, nil, func(ctx context.Context) (*network.Graph, error) {
		records, meta, err := s.fetch(ctx, params)
		if err != nil {
			return nil, err
		}
		return s.projector.Project(records, meta, nil), nil
	})
}

// SingleDisease returns every association touching seed.
func (s *NetworkService) SingleDisease(ctx context.Context, params network.FilterParams, seed network.DiseaseCode) ([]byte, error) {
	seeds, err := network.NormalizeSeeds([]string{string(seed)})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, network.SingleDiseaseProfile.Name, params, seeds, func(ctx context.Context) (*network.Graph, error) {
		records, meta, err := s.fetch(ctx, params, seeds...)
		if err != nil {
			return nil, err
		}
		if err := requireKnown(meta, seeds); err != nil {
			return nil, err
		}
		return s.projector.Project(records, meta, nil), nil
	})
}

// SubNetwork returns the seeds and the diseases connected to every seed, with
// all associations among them. With two or more seeds the first and last are
// pinned on opposite sides.
func (s *NetworkService) SubNetwork(ctx context.Context, params network.FilterParams, seeds []network.DiseaseCode) ([]byte, error) {
	seeds, err := normalize(seeds)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, network.SubNetworkProfile.Name, params, seeds, func(ctx context.Context) (*network.Graph, error) {
		// Edges between two neighbours touch no seed, so the whole filtered
		// network is needed before restricting.
		records, meta, err := s.fetch(ctx, params)
		if err != nil {
			return nil, err
		}
		if err := requireKnown(meta, seeds); err != nil {
			return nil, err
		}
		target, err := graph.CommonNeighbors(records, seeds)
		if err != nil {
			return nil, err
		}

		var pin *network.Pin
		if len(seeds) >= 2 {
			pin = &network.Pin{First: seeds[0], Last: seeds[len(seeds)-1]}
		}
		return s.projector.Project(graph.Restrict(records, target), meta, pin), nil
	})
}

// ConnectionResult reports whether seeds share a component. When they do,
// the thresholds the check ran with are included for the follow-up request.
type ConnectionResult struct {
	Connected bool `json:"connected"`
	*network.FilterParams
}

// CheckConnection tests whether every pair of seeds is joined by a path under
// the fixed connectivity profile. Fewer than two distinct seeds is reported
// as not connected without querying.
func (s *NetworkService) CheckConnection(ctx context.Context, seeds []network.DiseaseCode) (*ConnectionResult, error) {
	distinct, err := normalize(seeds)
	if err != nil || len(distinct) < 2 {
		return &ConnectionResult{Connected: false}, nil
	}

	params := network.ConnectivityProfile.Defaults
	records, err := s.filter.Filter(ctx, params)
	if err != nil {
		return nil, err
	}

	if !graph.AllConnected(records, distinct) {
		return &ConnectionResult{Connected: false}, nil
	}
	return &ConnectionResult{Connected: true, FilterParams: &params}, nil
}

// ConnectedDiseases lists seed and every disease directly associated with it
// under the fixed connected-diseases profile, sorted by code.
func (s *NetworkService) ConnectedDiseases(ctx context.Context, seed network.DiseaseCode) ([]network.DiseaseCode, error) {
	seeds, err := network.NormalizeSeeds([]string{string(seed)})
	if err != nil {
		return nil, err
	}
	records, meta, err := s.fetch(ctx, network.ConnectedDiseasesProfile.Defaults, seeds...)
	if err != nil {
		return nil, err
	}
	if err := requireKnown(meta, seeds); err != nil {
		return nil, err
	}
	return graph.Neighbors(records, seeds[0]).Sorted(), nil
}

// Diseases lists the metadata of every known disease, sorted by code.
func (s *NetworkService) Diseases(ctx context.Context) ([]network.DiseaseMetadata, error) {
	rows, err := s.metadata(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows, nil
}

// Detail returns the demographic breakdown of a node or an edge.
func (s *NetworkService) Detail(ctx context.Context, q network.AttributeQuery) (*graph.Breakdown, error) {
	switch q.Kind {
	case network.AttributeKindNode:
		if q.Node == "" {
			return nil, errors.InvalidParameter("node detail requires a disease code")
		}
	case network.AttributeKindEdge:
		if q.Cause == "" || q.Outcome == "" || q.FollowUp <= 0 {
			return nil, errors.InvalidParameter("edge detail requires follow_up, cause and outcome")
		}
	default:
		return nil, errors.InvalidParameter("unsupported detail type %q", q.Kind)
	}

	start := time.Now()
	rows, err := s.store.QueryAttributes(ctx, q)
	metrics.AccessorDuration.WithLabelValues("attributes").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AccessorErrors.WithLabelValues("attributes").Inc()
		return nil, errors.DataSource("query attributes", err)
	}

	b := graph.BuildBreakdown(q.Kind, rows)
	return &b, nil
}

// Summary describes the network selected by params, optionally limited to
// associations touching seeds.
func (s *NetworkService) Summary(ctx context.Context, params network.FilterParams, seeds []network.DiseaseCode) (*graph.Summary, error) {
	records, err := s.filter.Filter(ctx, params, seeds...)
	if err != nil {
		return nil, err
	}
	summary := graph.Summarize(records, SummaryHubs)
	return &summary, nil
}

// FlushCache drops every cached view.
func (s *NetworkService) FlushCache(ctx context.Context) error {
	if err := s.cache.Flush(ctx); err != nil {
		metrics.CacheErrors.WithLabelValues("flush").Inc()
		return errors.Wrap(err, "flush cache")
	}
	s.log.Info("cache flushed")
	return nil
}

// view serves a cached payload or builds, encodes and caches a new one. A
// payload is only written once it is fully built. Cache backend failures
// degrade to a rebuild and never fail the request.
func (s *NetworkService) view(ctx context.Context, name string, params network.FilterParams, seeds []network.DiseaseCode, build func(context.Context) (*network.Graph, error)) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	key := network.CacheKey(name, params, seeds)

	payload, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheErrors.WithLabelValues("get").Inc()
		s.log.Warn("cache get %s: %v", key, err)
	case ok:
		metrics.CacheHits.WithLabelValues(name).Inc()
		s.log.Trace("cache hit %s", key)
		return payload, nil
	}
	metrics.CacheMisses.WithLabelValues(name).Inc()

	start := time.Now()
	g, err := build(ctx)
	if err != nil {
		return nil, err
	}
	payload, err = json.Marshal(g)
	if err != nil {
		return nil, errors.Wrap(err, "encode graph")
	}
	metrics.BuildDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.ViewSize.WithLabelValues("nodes").Observe(float64(len(g.Nodes)))
	metrics.ViewSize.WithLabelValues("edges").Observe(float64(len(g.Edges)))

	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		s.log.Warn("cache set %s: %v", key, err)
	}
	s.log.Debug("built %s: %d nodes, %d edges in %s", name, len(g.Nodes), len(g.Edges), time.Since(start))
	return payload, nil
}

// fetch runs the association and metadata queries concurrently. The first
// failure cancels the other.
func (s *NetworkService) fetch(ctx context.Context, params network.FilterParams, seeds ...network.DiseaseCode) ([]network.AssociationRecord, network.MetadataIndex, error) {
	var (
		records []network.AssociationRecord
		rows    []network.DiseaseMetadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.filter.Filter(gctx, params, seeds...)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.metadata(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return records, network.IndexMetadata(rows), nil
}

func (s *NetworkService) metadata(ctx context.Context) ([]network.DiseaseMetadata, error) {
	start := time.Now()
	rows, err := s.store.QueryMetadata(ctx)
	metrics.AccessorDuration.WithLabelValues("metadata").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AccessorErrors.WithLabelValues("metadata").Inc()
		return nil, errors.DataSource("query metadata", err)
	}
	return rows, nil
}

func normalize(seeds []network.DiseaseCode) ([]network.DiseaseCode, error) {
	raw := make([]string, len(seeds))
	for i, s := range seeds {
		raw[i] = string(s)
	}
	return network.NormalizeSeeds(raw)
}

func requireKnown(meta network.MetadataIndex, seeds []network.DiseaseCode) error {
	for _, seed := range seeds {
		if _, ok := meta[seed]; !ok {
			return errors.NotFound(fmt.Sprintf("disease %s", seed))
		}
	}
	return nil
}

// Package testkit provides an in-memory association store and fixture data
// for tests and local runs without a database.
package testkit

import (
	"context"
	"fmt"
	"sync"

	"cotdex/domain/network"
	"cotdex/ports"
)

// InMemoryStore implements ports.AssociationStore over slices. Records are
// returned in insertion order, filtered with AssociationQuery.Matches.
type InMemoryStore struct {
	mu         sync.RWMutex
	records    []network.AssociationRecord
	metadata   []network.DiseaseMetadata
	nodeAttrs  []network.NodeAttributeRecord
	edgeAttrs  []network.EdgeAttributeRecord
	failWith   error
	queryCalls int
}

var _ ports.AssociationStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates a store holding records and metadata.
func NewInMemoryStore(records []network.AssociationRecord, metadata []network.DiseaseMetadata) *InMemoryStore {
	return &InMemoryStore{records: records, metadata: metadata}
}

// WithAttributes adds node and edge attribute rows.
func (s *InMemoryStore) WithAttributes(nodes []network.NodeAttributeRecord, edges []network.EdgeAttributeRecord) *InMemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeAttrs = nodes
	s.edgeAttrs = edges
	return s
}

// FailWith makes every subsequent query return err. nil restores normal
// behaviour.
func (s *InMemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// QueryCalls is the number of QueryAssociations calls served so far.
func (s *InMemoryStore) QueryCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryCalls
}

func (s *InMemoryStore) QueryAssociations(ctx context.Context, q network.AssociationQuery) ([]network.AssociationRecord, error) {
	s.mu.Lock()
	s.queryCalls++
	s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]network.AssociationRecord, 0)
	for _, r := range s.records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *InMemoryStore) QueryMetadata(ctx context.Context) ([]network.DiseaseMetadata, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]network.DiseaseMetadata(nil), s.metadata...), nil
}

func (s *InMemoryStore) QueryAttributes(ctx context.Context, q network.AttributeQuery) ([]network.AttributeRow, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]network.AttributeRow, 0)
	switch q.Kind {
	case network.AttributeKindNode:
		for _, a := range s.nodeAttrs {
			if a.Node == q.Node {
				out = append(out, a.AttributeRow)
			}
		}
	case network.AttributeKindEdge:
		for _, a := range s.edgeAttrs {
			if a.FollowUp == q.FollowUp && a.Cause == q.Cause && a.Outcome == q.Outcome {
				out = append(out, a.AttributeRow)
			}
		}
	default:
		return nil, fmt.Errorf("unknown attribute kind %q", q.Kind)
	}
	return out, nil
}

func (s *InMemoryStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failWith
}

// Record builds a raw-scale record with significant p-values.
func Record(cause, outcome string, fu int, rr float64) network.AssociationRecord {
	return network.AssociationRecord{
		Cause:        network.DiseaseCode(cause),
		Outcome:      network.DiseaseCode(outcome),
		FollowUp:     fu,
		RelativeRisk: rr,
		ChisqP:       0.01,
		FisherP:      0.01,
	}
}

// Meta builds metadata with a display name and no scale hints.
func Meta(code, name string) network.DiseaseMetadata {
	return network.DiseaseMetadata{Code: network.DiseaseCode(code), DisplayName: name}
}

// ChainFixture is A→B→C at follow-up 1 plus an isolated X→Y pair, all inside
// the default single-disease thresholds.
func ChainFixture() *InMemoryStore {
	return NewInMemoryStore(
		[]network.AssociationRecord{
			Record("A", "B", 1, 1.2),
			Record("B", "C", 1, 1.15),
			Record("X", "Y", 1, 1.25),
		},
		[]network.DiseaseMetadata{
			Meta("A", "Alpha"), Meta("B", "Beta"), Meta("C", "Gamma"),
			Meta("X", "Chi"), Meta("Y", "Psi"),
		},
	)
}

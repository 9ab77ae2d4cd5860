package testkit

import (
	"context"
	"testing"

	"cotdex/domain/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Deterministic(t *testing.T) {
	a, _ := NewGenerator(DefaultGeneratorConfig()).Generate()
	b, _ := NewGenerator(DefaultGeneratorConfig()).Generate()
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestGenerator_NoSelfLoops(t *testing.T) {
	records, metadata := NewGenerator(DefaultGeneratorConfig()).Generate()
	assert.Len(t, metadata, DefaultGeneratorConfig().Diseases)
	for _, r := range records {
		assert.NotEqual(t, r.Cause, r.Outcome)
		assert.Greater(t, r.RelativeRisk, 0.0)
	}
}

func TestInMemoryStore_Matches(t *testing.T) {
	store := ChainFixture()
	q := network.SingleDiseaseProfile.Defaults.Query("C")

	records, err := store.QueryAssociations(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, network.DiseaseCode("B"), records[0].Cause)
	assert.Equal(t, 1, store.QueryCalls())
}

func TestInMemoryStore_FailWith(t *testing.T) {
	store := ChainFixture()
	store.FailWith(assert.AnError)

	_, err := store.QueryMetadata(context.Background())
	assert.ErrorIs(t, err, assert.AnError)

	store.FailWith(nil)
	_, err = store.QueryMetadata(context.Background())
	assert.NoError(t, err)
}

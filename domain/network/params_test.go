package network

import (
	"math"
	"strings"
	"testing"

	"cotdex/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestParseParams_WholeNetworkRequiresFollowUp(t *testing.T) {
	_, err := WholeNetworkProfile.ParseParams(lookupFrom(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInvalidParameter))

	_, err = WholeNetworkProfile.ParseParams(lookupFrom(map[string]string{KeyFollowUp: "  "}))
	assert.True(t, errors.Is(err, errors.CodeInvalidParameter))
}

func TestParseParams_Defaults(t *testing.T) {
	p, err := WholeNetworkProfile.ParseParams(lookupFrom(map[string]string{KeyFollowUp: "3"}))
	require.NoError(t, err)
	assert.Equal(t, FilterParams{FollowUp: 3, RRMin: 0, RRMax: 2, ChisqMax: 0.05, FisherMax: 0.05, RRScale: RRScaleLog}, p)

	p, err = SingleDiseaseProfile.ParseParams(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, SingleDiseaseProfile.Defaults, p)
}

func TestParseParams_Overrides(t *testing.T) {
	p, err := SubNetworkProfile.ParseParams(lookupFrom(map[string]string{
		KeyFollowUp:  "2",
		KeyRRMin:     "1.05",
		KeyRRMax:     "4",
		KeyChisqMax:  "0.01",
		KeyFisherMax: "",
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, p.FollowUp)
	assert.Equal(t, 1.05, p.RRMin)
	assert.Equal(t, 4.0, p.RRMax)
	assert.Equal(t, 0.01, p.ChisqMax)
	assert.Equal(t, 0.5, p.FisherMax, "blank values keep the default")
	assert.Equal(t, RRScaleRaw, p.RRScale)
}

func TestParseParams_FixedProfilesIgnoreRequest(t *testing.T) {
	p, err := ConnectivityProfile.ParseParams(lookupFrom(map[string]string{KeyFollowUp: "9", KeyRRMin: "abc"}))
	require.NoError(t, err)
	assert.Equal(t, ConnectivityProfile.Defaults, p)
}

func TestParseParams_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"non-integer follow-up", map[string]string{KeyFollowUp: "1.5"}},
		{"zero follow-up", map[string]string{KeyFollowUp: "0"}},
		{"negative follow-up", map[string]string{KeyFollowUp: "-1"}},
		{"word threshold", map[string]string{KeyRRMin: "low"}},
		{"NaN threshold", map[string]string{KeyChisqMax: "NaN"}},
		{"infinite threshold", map[string]string{KeyRRMax: "+Inf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SingleDiseaseProfile.ParseParams(lookupFrom(tt.values))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.CodeInvalidParameter))
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := FilterParams{FollowUp: 0, RRMin: math.NaN(), RRMax: 1, ChisqMax: 1, FisherMax: math.Inf(-1), RRScale: "sqrt"}.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, field := range []string{"follow_up", "rr_min", "fisher_max", "rr_scale"} {
		assert.True(t, strings.Contains(msg, field), "missing %s in %q", field, msg)
	}
}

func TestParseSeeds(t *testing.T) {
	seeds, err := ParseSeeds(" I10, E11 ,,I10,K70")
	require.NoError(t, err)
	assert.Equal(t, []DiseaseCode{"I10", "E11", "K70"}, seeds)

	_, err = ParseSeeds(" , ")
	assert.True(t, errors.Is(err, errors.CodeInvalidParameter))
}

func TestCacheKey(t *testing.T) {
	p := SubNetworkProfile.Defaults
	key := CacheKey("sub", p, []DiseaseCode{"A", "C"})
	assert.Equal(t, "graph/v1|view=sub|fu=1|scale=raw|rr_min=1.1|rr_max=1.3|chisq_max=0.5|fisher_max=0.5|seeds=A,C", key)

	assert.Equal(t, key, CacheKey("sub", p, []DiseaseCode{"A", "C"}))
	assert.NotEqual(t, key, CacheKey("sub", p, []DiseaseCode{"C", "A"}))
	assert.NotEqual(t, key, CacheKey("single", p, []DiseaseCode{"A", "C"}))

	q := p
	q.FisherMax = 0.05
	assert.NotEqual(t, key, CacheKey("sub", q, []DiseaseCode{"A", "C"}))

	zero, negZero := p, p
	zero.RRMin = 0
	negZero.RRMin = math.Copysign(0, -1)
	assert.Equal(t, CacheKey("sub", zero, nil), CacheKey("sub", negZero, nil))
}

func TestAssociationQuery_Matches(t *testing.T) {
	rec := AssociationRecord{Cause: "A", Outcome: "B", FollowUp: 1, RelativeRisk: 1.3, LogRelativeRisk: 0.26, ChisqP: 0.5, FisherP: 0.01}
	q := SingleDiseaseProfile.Defaults.Query()

	assert.True(t, q.Matches(rec), "bounds are inclusive")

	q.Seeds = []DiseaseCode{"B"}
	assert.True(t, q.Matches(rec))
	q.Seeds = []DiseaseCode{"C", "D"}
	assert.False(t, q.Matches(rec))

	q = SingleDiseaseProfile.Defaults.Query()
	q.FollowUp = 2
	assert.False(t, q.Matches(rec))

	q = SingleDiseaseProfile.Defaults.Query()
	q.RRScale = RRScaleLog
	assert.False(t, q.Matches(rec), "log scale compares log_rr_values")
	q.RRMin, q.RRMax = 0.2, 0.3
	assert.True(t, q.Matches(rec))
}

func TestIndexMetadata(t *testing.T) {
	idx := IndexMetadata([]DiseaseMetadata{{Code: "A", DisplayName: "one"}, {Code: "A", DisplayName: "two"}})
	assert.Len(t, idx, 1)
	assert.Equal(t, "two", idx["A"].DisplayName)
}

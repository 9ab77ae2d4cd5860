package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"cotdex/domain/network"
)

// GeneratorConfig configures the synthetic network generator
type GeneratorConfig struct {
	Diseases  int     `json:"diseases"`
	FollowUps int     `json:"follow_ups"`
	Density   float64 `json:"density"` // probability of an ordered pair carrying a record
	Seed      int64   `json:"seed"`
}

// DefaultGeneratorConfig returns a small, fairly dense network
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Diseases:  40,
		FollowUps: 3,
		Density:   0.08,
		Seed:      42,
	}
}

// Generator produces deterministic synthetic comorbidity data
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a generator seeded from config.Seed
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Codes returns ICD-style codes spread over the chapter letters, e.g. "A00",
// "B01", ..., so the palette sees many first letters.
func (g *Generator) Codes() []network.DiseaseCode {
	codes := make([]network.DiseaseCode, g.config.Diseases)
	for i := range codes {
		codes[i] = network.DiseaseCode(fmt.Sprintf("%c%02d", 'A'+i%26, i/26))
	}
	return codes
}

// Generate returns association records and matching metadata. Relative
// risks are log-normal around 1.2; p-values are uniform so roughly half of
// the records pass a 0.5 threshold.
func (g *Generator) Generate() ([]network.AssociationRecord, []network.DiseaseMetadata) {
	codes := g.Codes()

	var records []network.AssociationRecord
	for fu := 1; fu <= g.config.FollowUps; fu++ {
		for _, cause := range codes {
			for _, outcome := range codes {
				if cause == outcome || g.rng.Float64() >= g.config.Density {
					continue
				}
				rr := math.Exp(math.Log(1.2) + g.rng.NormFloat64()*0.15)
				records = append(records, network.AssociationRecord{
					Cause:           cause,
					Outcome:         outcome,
					FollowUp:        fu,
					RelativeRisk:    rr,
					LogRelativeRisk: math.Log(rr),
					ChisqP:          g.rng.Float64(),
					FisherP:         g.rng.Float64(),
				})
			}
		}
	}

	metadata := make([]network.DiseaseMetadata, len(codes))
	for i, code := range codes {
		w := 0.5 + g.rng.Float64()
		metadata[i] = network.DiseaseMetadata{
			Code:        code,
			DisplayName: fmt.Sprintf("Disease %s", code),
			EnglishName: fmt.Sprintf("Synthetic disease %s", code),
			Width:       &w,
			Height:      &w,
		}
	}
	return records, metadata
}

// Store generates data into an InMemoryStore
func (g *Generator) Store() *InMemoryStore {
	records, metadata := g.Generate()
	return NewInMemoryStore(records, metadata)
}

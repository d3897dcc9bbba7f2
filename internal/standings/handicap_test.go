package standings

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/tenpin/leaguebook/internal/domain"
)

func TestCalculateHandicap(t *testing.T) {
	rules := domain.HandicapRules{Enabled: true, Basis: 210, Percentage: 90, Max: 63}

	tests := []struct {
		name    string
		average float64
		rules   domain.HandicapRules
		want    int
	}{
		{"below basis", 180, rules, 27},
		{"above basis", 220, rules, 0},
		{"exactly basis", 210, rules, 0},
		{"clamped to max", 100, rules, 63},
		{"fractional diff floors", 199.5, rules, 9},
		{"disabled", 100, domain.HandicapRules{Basis: 210, Percentage: 90, Max: 63}, 0},
		{"zero percentage", 150, domain.HandicapRules{Enabled: true, Basis: 220, Percentage: 0, Max: 100}, 0},
		{"zero cap", 150, domain.HandicapRules{Enabled: true, Basis: 220, Percentage: 100, Max: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateHandicap(tt.average, tt.rules))
		})
	}
}

func TestCalculateHandicap_NonIncreasingInAverage(t *testing.T) {
	faker := gofakeit.New(42)
	for i := 0; i < 200; i++ {
		rules := domain.HandicapRules{
			Enabled:    true,
			Basis:      faker.Number(180, 250),
			Percentage: faker.Number(0, 100),
			Max:        faker.Number(0, 100),
		}
		lo := faker.Float64Range(0, 300)
		hi := faker.Float64Range(lo, 300)

		hLo, hHi := CalculateHandicap(lo, rules), CalculateHandicap(hi, rules)
		assert.GreaterOrEqual(t, hLo, hHi, "rules=%+v lo=%v hi=%v", rules, lo, hi)
		assert.GreaterOrEqual(t, hHi, 0)
		assert.LessOrEqual(t, hLo, rules.Max)
	}
}

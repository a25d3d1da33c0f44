package services

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/isdelr/machine-monitor-be/internal/models"
)

// Draw ranges and the status threshold for the placeholder prediction.
const (
	efficiencyMin       = 70.0
	efficiencyMax       = 95.0
	downtimeMin         = 5.0
	downtimeMax         = 20.0
	efficiencyThreshold = 85.0
)

// RandomSource yields floats uniformly distributed in [0, 1).
type RandomSource interface {
	Float64() float64
}

// lockedSource makes a *rand.Rand safe for concurrent handlers.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// NewRandomSource returns a concurrency-safe PCG source seeded with seed.
func NewRandomSource(seed uint64) RandomSource {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// PredictionServiceProvider defines the interface for prediction services.
type PredictionServiceProvider interface {
	Predict() models.PredictionResult
}

// PredictionService produces placeholder efficiency predictions. There is no
// model behind it: values are uniform draws from fixed ranges.
type PredictionService struct {
	rng RandomSource
}

// NewPredictionService creates a PredictionService. A nil source falls back to
// a time-seeded one.
func NewPredictionService(rng RandomSource) *PredictionService {
	if rng == nil {
		rng = NewRandomSource(uint64(time.Now().UnixNano()))
	}
	return &PredictionService{rng: rng}
}

// Predict draws a fresh PredictionResult.
func (s *PredictionService) Predict() models.PredictionResult {
	efficiency := round2(s.uniform(efficiencyMin, efficiencyMax))
	downtime := round2(s.uniform(downtimeMin, downtimeMax))
	return Classify(efficiency, downtime)
}

// Classify builds the result for already drawn values.
func Classify(efficiency, downtime float64) models.PredictionResult {
	result := models.PredictionResult{
		Efficiency:          efficiency,
		DowntimeProbability: downtime,
		Status:              models.StatusActionRequired,
		Recommendation:      models.RecommendCheckLubricant,
	}
	if efficiency > efficiencyThreshold {
		result.Status = models.StatusOptimal
		result.Recommendation = models.RecommendMaintainSpeed
	}
	return result
}

func (s *PredictionService) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

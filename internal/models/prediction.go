package models

// Prediction status labels.
const (
	StatusOptimal        = "Optimal"
	StatusActionRequired = "Action Required"
)

// Recommendations paired with each status.
const (
	RecommendMaintainSpeed  = "Maintain current speed"
	RecommendCheckLubricant = "Check machine lubrication"
)

// PredictionResult is a placeholder machine-efficiency reading. It is computed
// per request and never stored.
type PredictionResult struct {
	Efficiency          float64 `json:"efficiency"`
	DowntimeProbability float64 `json:"downtime_probability"`
	Status              string  `json:"status"`
	Recommendation      string  `json:"recommendation"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run is a persisted record of one Box-Cox fit: the lambda posterior,
// the accumulated log-evidence, and how the EP loop terminated.
type Run struct {
	ID             uuid.UUID `json:"id"`
	Label          string    `json:"label"`
	Count          int       `json:"count"`
	LambdaMean     float64   `json:"lambda_mean"`
	LambdaVariance float64   `json:"lambda_variance"`
	LogEvidence    float64   `json:"log_evidence"`
	Sweeps         int       `json:"sweeps"`
	Converged      bool      `json:"converged"`
	CreatedAt      time.Time `json:"created_at"`
}

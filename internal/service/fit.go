package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/inferlab/epbox/internal/domain"
	"github.com/inferlab/epbox/internal/numeric"
	"github.com/inferlab/epbox/internal/operator"
	"go.uber.org/zap"
)

var ErrSeriesEmpty = errors.New("series is required")

const (
	DefaultPriorMean     = 0.0
	DefaultPriorVariance = 4.0
	DefaultMaxSweeps     = 50
	DefaultTolerance     = 1e-6

	// targetVarianceFloor keeps the normality target proper even
	// for near-constant series.
	targetVarianceFloor = 1e-6
)

// FitRequest describes one Box-Cox fit over a strictly positive series.
// Zero-valued tuning fields fall back to the package defaults.
type FitRequest struct {
	Label         string
	Series        []float64
	PriorMean     float64
	PriorVariance float64
	MaxSweeps     int
	Tolerance     float64
}

// FitService runs the fixed factor graph the two operators were built for:
// a lambda prior, the Jacobian reweighting factor over the whole series,
// and one transform factor per observation, iterated with EP sweeps until
// the lambda posterior stops moving.
type FitService struct {
	store    domain.RunStore
	registry *operator.Registry
	logger   *zap.Logger
}

func NewFitService(store domain.RunStore, logger *zap.Logger, cfg numeric.QuadratureConfig) *FitService {
	return &FitService{
		store:    store,
		registry: operator.NewRegistry(logger, cfg),
		logger:   logger,
	}
}

// Registry exposes the dispatch table for raw message requests.
func (s *FitService) Registry() *operator.Registry {
	return s.registry
}

func (s *FitService) Fit(ctx context.Context, req FitRequest) (*domain.Run, error) {
	if len(req.Series) == 0 {
		return nil, ErrSeriesEmpty
	}
	sumLogs, err := numeric.SumLogs(req.Series)
	if err != nil {
		return nil, err
	}

	priorMean, priorVariance := req.PriorMean, req.PriorVariance
	if priorVariance <= 0 {
		priorMean, priorVariance = DefaultPriorMean, DefaultPriorVariance
	}
	maxSweeps := req.MaxSweeps
	if maxSweeps <= 0 {
		maxSweeps = DefaultMaxSweeps
	}
	tolerance := req.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	prior := domain.NewGaussian(priorMean, priorVariance)
	jacobianMsg, err := s.registry.Message(operator.FactorJacobian, operator.RoleLambda,
		operator.Request{Observation: sumLogs})
	if err != nil {
		return nil, err
	}

	n := len(req.Series)
	messages := make([]domain.Gaussian, n)
	factorIDs := make([]uuid.UUID, n)
	for i := range factorIDs {
		factorIDs[i] = uuid.New()
	}
	posterior := domain.Multiply(prior, jacobianMsg)

	// Moment-matched once at the prior mean and held fixed: the transform
	// factors penalize lambdas that spread the transformed series past this
	// target, balancing the Jacobian factor's tilt toward large lambda.
	target := s.normalityTarget(req.Series, prior.Mean())

	sweeps := 0
	converged := false
	for sweeps < maxSweeps {
		sweeps++
		prevMean, prevVariance := posterior.Mean(), posterior.Variance()

		for i, y := range req.Series {
			cavity := domain.Divide(posterior, messages[i], true)
			msg, err := s.registry.Message(operator.FactorTransform, operator.RoleLambda, operator.Request{
				FactorID: factorIDs[i],
				Beliefs: map[operator.Role]domain.Gaussian{
					operator.RoleLambda: cavity,
					operator.RoleOutput: target,
				},
				Observation: y,
			})
			if err != nil {
				return nil, err
			}
			messages[i] = msg
			posterior = domain.Multiply(cavity, msg)
		}

		meanDelta := math.Abs(posterior.Mean() - prevMean)
		varianceDelta := math.Abs(posterior.Variance() - prevVariance)
		s.logger.Debug("ep sweep",
			zap.Int("sweep", sweeps),
			zap.Float64("lambda_mean", posterior.Mean()),
			zap.Float64("lambda_variance", posterior.Variance()),
			zap.Float64("mean_delta", meanDelta))
		if meanDelta < tolerance && varianceDelta < tolerance {
			converged = true
			break
		}
	}

	logEvidence, err := s.totalEvidence(req.Series, posterior, messages, target, sumLogs)
	if err != nil {
		return nil, err
	}

	run := &domain.Run{
		ID:             uuid.New(),
		Label:          req.Label,
		Count:          n,
		LambdaMean:     posterior.Mean(),
		LambdaVariance: posterior.Variance(),
		LogEvidence:    logEvidence,
		Sweeps:         sweeps,
		Converged:      converged,
	}
	if err := s.store.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("persist run: %w", err)
	}

	s.logger.Info("fit completed",
		zap.String("run_id", run.ID.String()),
		zap.String("label", run.Label),
		zap.Int("count", run.Count),
		zap.Float64("lambda_mean", run.LambdaMean),
		zap.Float64("lambda_variance", run.LambdaVariance),
		zap.Int("sweeps", run.Sweeps),
		zap.Bool("converged", run.Converged))
	return run, nil
}

func (s *FitService) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	return s.store.GetByID(ctx, id)
}

func (s *FitService) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	return s.store.List(ctx, limit)
}

// normalityTarget moment-matches a Gaussian to the series transformed at
// lambdaHat. It is the z-side belief each transform factor conditions on.
func (s *FitService) normalityTarget(series []float64, lambdaHat float64) domain.Gaussian {
	var sum, sumSq float64
	for _, y := range series {
		z := numeric.Transform(y, lambdaHat)
		sum += z
		sumSq += z * z
	}
	n := float64(len(series))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < targetVarianceFloor {
		variance = targetVarianceFloor
	}
	return domain.NewGaussian(mean, variance)
}

// totalEvidence sums each factor's log-normalizer against its cavity.
// An EP-style approximation, not an exact marginal likelihood.
func (s *FitService) totalEvidence(series []float64, posterior domain.Gaussian, messages []domain.Gaussian, target domain.Gaussian, sumLogs float64) (float64, error) {
	total, err := s.registry.LogEvidence(operator.FactorJacobian, operator.Request{
		Beliefs:     map[operator.Role]domain.Gaussian{operator.RoleLambda: posterior},
		Observation: sumLogs,
	})
	if err != nil {
		return 0, err
	}
	for i, y := range series {
		cavity := domain.Divide(posterior, messages[i], true)
		contribution, err := s.registry.LogEvidence(operator.FactorTransform, operator.Request{
			Beliefs: map[operator.Role]domain.Gaussian{
				operator.RoleLambda: cavity,
				operator.RoleOutput: target,
			},
			Observation: y,
		})
		if err != nil {
			return 0, err
		}
		total += contribution
	}
	return total, nil
}

package operator

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/inferlab/epbox/internal/domain"
	"github.com/inferlab/epbox/internal/numeric"
	"go.uber.org/zap"
)

// FactorKind identifies one of the supported factor types.
type FactorKind string

// Role names an argument position on a factor.
type Role string

const (
	FactorTransform FactorKind = "boxcox_transform"
	FactorJacobian  FactorKind = "boxcox_jacobian"

	RoleLambda Role = "lambda"
	RoleOutput Role = "output"
	RoleValue  Role = "value"
	RoleInput  Role = "input"
	RoleSum    Role = "sum"
)

var (
	ErrUnknownFactor = errors.New("unknown factor kind")
	ErrUnknownRole   = errors.New("no message defined for role")
)

// Request carries everything a single message computation needs: the
// current beliefs by role and the factor's observed scalar. A belief
// supplied under an observed role (input, sum) is collapsed to its mean.
type Request struct {
	FactorID    uuid.UUID
	Beliefs     map[Role]domain.Gaussian
	Observation float64
}

func (r Request) belief(role Role) domain.Gaussian {
	if b, ok := r.Beliefs[role]; ok {
		return b
	}
	return domain.Uninformative()
}

// scalar returns the observed argument: a belief under the role collapsed
// to its mean, or the raw observation.
func (r Request) scalar(role Role) float64 {
	if b, ok := r.Beliefs[role]; ok {
		return b.Mean()
	}
	return r.Observation
}

type messageFunc func(Request) (domain.Gaussian, error)

type evidenceFunc func(Request) (float64, error)

type dispatchKey struct {
	kind   FactorKind
	target Role
}

// Registry is the explicit dispatch table from (factor kind, target role)
// to the matching pure message function, built once at startup. It holds
// no mutable state after construction and is safe for concurrent use.
type Registry struct {
	logger   *zap.Logger
	messages map[dispatchKey]messageFunc
	evidence map[FactorKind]evidenceFunc
}

func NewRegistry(logger *zap.Logger, cfg numeric.QuadratureConfig) *Registry {
	transform := NewTransformFactor(cfg)
	jacobian := JacobianFactor{}

	r := &Registry{
		logger:   logger,
		messages: make(map[dispatchKey]messageFunc),
		evidence: make(map[FactorKind]evidenceFunc),
	}

	r.messages[dispatchKey{FactorTransform, RoleOutput}] = func(req Request) (domain.Gaussian, error) {
		return transform.MessageToOutput(req.belief(RoleLambda), req.scalar(RoleInput))
	}
	r.messages[dispatchKey{FactorTransform, RoleLambda}] = func(req Request) (domain.Gaussian, error) {
		return transform.MessageToLambda(req.belief(RoleLambda), req.belief(RoleOutput), req.scalar(RoleInput))
	}
	r.messages[dispatchKey{FactorJacobian, RoleLambda}] = func(req Request) (domain.Gaussian, error) {
		return jacobian.MessageToLambda(req.scalar(RoleSum)), nil
	}
	r.messages[dispatchKey{FactorJacobian, RoleValue}] = func(req Request) (domain.Gaussian, error) {
		return jacobian.MessageToValue(req.belief(RoleLambda), req.scalar(RoleSum)), nil
	}

	r.evidence[FactorTransform] = func(req Request) (float64, error) {
		return transform.LogEvidence(req.belief(RoleLambda), req.belief(RoleOutput), req.scalar(RoleInput))
	}
	r.evidence[FactorJacobian] = func(req Request) (float64, error) {
		return jacobian.LogEvidence(req.belief(RoleLambda), req.scalar(RoleSum)), nil
	}

	return r
}

// Message computes the outgoing message from the given factor kind toward
// the target role.
func (r *Registry) Message(kind FactorKind, target Role, req Request) (domain.Gaussian, error) {
	fn, ok := r.messages[dispatchKey{kind, target}]
	if !ok {
		if _, known := r.evidence[kind]; !known {
			return domain.Gaussian{}, fmt.Errorf("%q: %w", kind, ErrUnknownFactor)
		}
		return domain.Gaussian{}, fmt.Errorf("%q -> %q: %w", kind, target, ErrUnknownRole)
	}
	msg, err := fn(req)
	if err != nil {
		return domain.Gaussian{}, err
	}
	r.logger.Debug("computed message",
		zap.String("factor_kind", string(kind)),
		zap.String("target_role", string(target)),
		zap.String("factor_id", req.FactorID.String()))
	return msg, nil
}

// LogEvidence computes the factor's log-normalization contribution.
func (r *Registry) LogEvidence(kind FactorKind, req Request) (float64, error) {
	fn, ok := r.evidence[kind]
	if !ok {
		return 0, fmt.Errorf("%q: %w", kind, ErrUnknownFactor)
	}
	return fn(req)
}

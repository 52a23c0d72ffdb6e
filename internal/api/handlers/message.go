package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/inferlab/epbox/internal/domain"
	"github.com/inferlab/epbox/internal/numeric"
	"github.com/inferlab/epbox/internal/operator"
)

// MessageHandler exposes the raw message-computation contract to host
// engines that keep the factor graph on their side.
type MessageHandler struct {
	registry *operator.Registry
}

func NewMessageHandler(registry *operator.Registry) *MessageHandler {
	return &MessageHandler{registry: registry}
}

type messageRequest struct {
	FactorKind  string                     `json:"factor_kind"`
	TargetRole  string                     `json:"target_role,omitempty"`
	FactorID    string                     `json:"factor_id,omitempty"`
	Observation float64                    `json:"observation,omitempty"`
	Beliefs     map[string]domain.Gaussian `json:"beliefs,omitempty"`
}

func (m messageRequest) toOperatorRequest() operator.Request {
	req := operator.Request{Observation: m.Observation}
	if id, err := uuid.Parse(m.FactorID); err == nil {
		req.FactorID = id
	}
	if len(m.Beliefs) > 0 {
		req.Beliefs = make(map[operator.Role]domain.Gaussian, len(m.Beliefs))
		for role, belief := range m.Beliefs {
			req.Beliefs[operator.Role(role)] = belief
		}
	}
	return req
}

// Compute handles POST /v1/messages.
func (h *MessageHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.registry.Message(
		operator.FactorKind(req.FactorKind),
		operator.Role(req.TargetRole),
		req.toOperatorRequest(),
	)
	if err != nil {
		writeMessageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// Evidence handles POST /v1/evidence.
func (h *MessageHandler) Evidence(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	logEvidence, err := h.registry.LogEvidence(
		operator.FactorKind(req.FactorKind),
		req.toOperatorRequest(),
	)
	if err != nil {
		writeMessageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"log_evidence": logEvidence})
}

func writeMessageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, operator.ErrUnknownFactor),
		errors.Is(err, operator.ErrUnknownRole),
		errors.Is(err, numeric.ErrNonPositiveObservation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "failed to compute message")
	}
}

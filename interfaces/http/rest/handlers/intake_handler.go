package handlers

import (
	"net/http"
	"time"

	"homeport-backend/application/ports"
	"homeport-backend/application/services"
	"homeport-backend/domain/core/valueobjects"
	"homeport-backend/pkg/common"
	pkgerrors "homeport-backend/pkg/errors"
	"homeport-backend/pkg/utils"

	"go.uber.org/zap"
)

const maxIntakeBodyBytes = 64 * 1024

// IntakeHandler accepts anonymous questionnaire submissions. No
// authentication: the whole point of the flow is that the visitor fills the
// form before deciding to sign up.
type IntakeHandler struct {
	orchestrator *services.ProfileOrchestrator
	errors       *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(orchestrator *services.ProfileOrchestrator, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{
		orchestrator: orchestrator,
		errors:       errHandler,
		logger:       logger,
	}
}

// SubmitIntakeRequest represents the request body for an intake submission
type SubmitIntakeRequest struct {
	Fields map[string]interface{} `json:"fields" validate:"required"`
	// Durable asks for the redirect-surviving draft tier; clients set it
	// right before leaving for a third-party login.
	Durable bool `json:"durable"`
}

// SubmitIntakeResponse represents the response for an intake submission
type SubmitIntakeResponse struct {
	RecordID  string `json:"record_id"`
	CreatedAt string `json:"created_at"`
}

// SubmitIntake handles POST /intake
func (h *IntakeHandler) SubmitIntake(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetClientID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("X-Client-ID header is required"))
		return
	}

	var req SubmitIntakeRequest
	if err := common.ParseJSONBody(r, &req, maxIntakeBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	tier := ports.TierSession
	if req.Durable {
		tier = ports.TierDurable
	}

	record, err := h.orchestrator.SubmitIntake(r.Context(), valueobjects.NewFieldSetFrom(req.Fields), clientID, tier)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, SubmitIntakeResponse{
		RecordID:  record.ID().String(),
		CreatedAt: record.CreatedAt().Format(time.RFC3339),
	})
}

package handlers

import (
	"net/http"

	"homeport-backend/application/services"
	"homeport-backend/domain/core/valueobjects"
	"homeport-backend/pkg/common"
	pkgerrors "homeport-backend/pkg/errors"
	"homeport-backend/pkg/utils"

	"go.uber.org/zap"
)

const maxProfileBodyBytes = 64 * 1024

// ProfileHandler serves the authenticated profile surface: resolution with
// reconciliation, and the edit lifecycle over the resolved record.
type ProfileHandler struct {
	orchestrator *services.ProfileOrchestrator
	errors       *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(orchestrator *services.ProfileOrchestrator, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		orchestrator: orchestrator,
		errors:       errHandler,
		logger:       logger,
	}
}

// ProfileResponse represents the profile surface state
type ProfileResponse struct {
	Record     *RecordResponse        `json:"record"`
	Status     string                 `json:"status"`
	Draft      map[string]interface{} `json:"draft,omitempty"`
	Reviewable bool                   `json:"reviewable"`
}

// StartEditRequest represents the request body for starting an edit
type StartEditRequest struct {
	// Defaults seed the draft when the principal has no record yet
	Defaults map[string]interface{} `json:"defaults,omitempty"`
}

// MutateDraftRequest represents a single draft field change
type MutateDraftRequest struct {
	Key   string      `json:"key" validate:"required"`
	Value interface{} `json:"value"`
}

// GetProfile handles GET /profile. Resolution runs reconciliation, so this
// is also the post-login trigger that claims a pending anonymous
// submission.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	clientID, _ := common.GetClientID(r.Context())

	record, err := h.orchestrator.ResolveProfile(r.Context(), principal, clientID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if record == nil {
		// Nothing pending and nothing owned yet
		h.errors.Handle(w, r, pkgerrors.NewNotFoundError("profile"))
		return
	}

	common.RespondJSON(w, http.StatusOK, ProfileResponse{
		Record: recordResponse(record),
		Status: string(services.StatusViewing),
	})
}

// GetSession handles GET /profile/session
func (h *ProfileHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, sessionResponse(session))
}

// StartEdit handles POST /profile/edit
func (h *ProfileHandler) StartEdit(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req StartEditRequest
	if r.ContentLength > 0 {
		if err := common.ParseJSONBody(r, &req, maxProfileBodyBytes); err != nil {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
			return
		}
	}

	if err := session.StartEdit(valueobjects.NewFieldSetFrom(req.Defaults)); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, sessionResponse(session))
}

// MutateDraft handles PATCH /profile/draft
func (h *ProfileHandler) MutateDraft(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req MutateDraftRequest
	if err := common.ParseJSONBody(r, &req, maxProfileBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	if err := session.Mutate(req.Key, req.Value); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, sessionResponse(session))
}

// CancelEdit handles POST /profile/cancel
func (h *ProfileHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := session.Cancel(); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, sessionResponse(session))
}

// SaveEdit handles POST /profile/save
func (h *ProfileHandler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if _, err := session.Save(r.Context()); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, sessionResponse(session))
}

// SubmitForReview handles POST /profile/submit
func (h *ProfileHandler) SubmitForReview(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if _, err := session.SubmitForReview(r.Context()); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, sessionResponse(session))
}

func (h *ProfileHandler) session(r *http.Request) (*services.EditSession, error) {
	principal, err := principalFromContext(r)
	if err != nil {
		return nil, err
	}
	clientID, _ := common.GetClientID(r.Context())
	return h.orchestrator.Session(r.Context(), principal, clientID)
}

func sessionResponse(session *services.EditSession) ProfileResponse {
	return ProfileResponse{
		Record:     recordResponse(session.Committed()),
		Status:     string(session.Status()),
		Draft:      session.Draft(),
		Reviewable: session.Reviewable(),
	}
}

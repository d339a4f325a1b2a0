package handlers

import (
	"net/http"
	"time"

	"homeport-backend/domain/core/entities"
	"homeport-backend/domain/core/valueobjects"
	"homeport-backend/pkg/common"
	pkgerrors "homeport-backend/pkg/errors"
)

// RecordResponse is the wire shape of a profile record
type RecordResponse struct {
	ID        string                 `json:"id"`
	OwnerID   string                 `json:"owner_id,omitempty"`
	Completed bool                   `json:"completed"`
	Fields    map[string]interface{} `json:"fields"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
	Version   int                    `json:"version"`
}

func recordResponse(record *entities.Record) *RecordResponse {
	if record == nil {
		return nil
	}
	return &RecordResponse{
		ID:        record.ID().String(),
		OwnerID:   record.OwnerID(),
		Completed: record.Completed(),
		Fields:    record.Fields(),
		CreatedAt: record.CreatedAt().Format(time.RFC3339),
		UpdatedAt: record.UpdatedAt().Format(time.RFC3339),
		Version:   record.Version(),
	}
}

// principalFromContext rebuilds the authenticated principal placed in the
// context by the auth middleware
func principalFromContext(r *http.Request) (valueobjects.Principal, error) {
	principalID, ok := common.GetPrincipalID(r.Context())
	if !ok || principalID == "" {
		return valueobjects.Principal{}, pkgerrors.NewUnauthorizedError("authentication required")
	}

	role, _ := common.GetRole(r.Context())
	return valueobjects.NewPrincipal(principalID, common.GetEmailConfirmed(r.Context()), role)
}

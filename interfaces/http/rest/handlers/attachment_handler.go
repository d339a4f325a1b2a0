package handlers

import (
	"net/http"

	"homeport-backend/application/services"
	"homeport-backend/pkg/common"
	pkgerrors "homeport-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AttachmentHandler serves the profile attachment surface. Files are always
// scoped to the authenticated principal; the path never carries another
// owner's namespace.
type AttachmentHandler struct {
	attachments  *services.AttachmentService
	maxBodyBytes int64
	errors       *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(attachments *services.AttachmentService, maxBodyBytes int64, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		attachments:  attachments,
		maxBodyBytes: maxBodyBytes,
		errors:       errHandler,
		logger:       logger,
	}
}

// UploadResponse represents the response for an upload
type UploadResponse struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Upload handles POST /attachments with a multipart form carrying one
// "file" part
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("missing file part"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	path, err := h.attachments.Upload(r.Context(), principal.ID(), header.Filename, file, header.Size, contentType)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, UploadResponse{
		Path: path,
		Name: header.Filename,
	})
}

// List handles GET /attachments
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	attachments, err := h.attachments.List(r.Context(), principal.ID())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"attachments": attachments,
	})
}

// ResolveURL handles GET /attachments/{name}/url
func (h *AttachmentHandler) ResolveURL(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	name := chi.URLParam(r, "name")
	url, err := h.attachments.ResolveURL(r.Context(), principal.ID(), name)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if url == "" {
		h.errors.Handle(w, r, pkgerrors.NewNotFoundError("attachment"))
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Delete handles DELETE /attachments/{name}
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.attachments.Delete(r.Context(), principal.ID(), name); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/aki/journal-api/internal/api/middleware"
	"github.com/aki/journal-api/internal/domain"
	"github.com/aki/journal-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
}

func NewAttachmentHandler(attachmentService *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// Upload accepts a multipart form with a single "file" field.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	journalID, err := uuid.Parse(chi.URLParam(r, "journalId"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return
	}

	// The 10 MiB ceiling plus form overhead bounds the parse.
	if err := r.ParseMultipartForm(domain.MaxAttachmentSize + 1024*1024); err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")

	attachment, err := h.attachmentService.Upload(r.Context(), identity.ID, service.UploadInput{
		JournalID:        journalID,
		OriginalFilename: header.Filename,
		MimeType:         mimeType,
		Size:             header.Size,
		Body:             file,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Journal entry not found")
		case errors.Is(err, service.ErrFileTypeNotAllowed):
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":        "File type not allowed",
				"allowedTypes": domain.AllowedMimeTypes,
			})
		case errors.Is(err, service.ErrFileTooLarge):
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "File size too large",
				"maxSize": domain.MaxAttachmentSize,
			})
		default:
			log.Printf("ERROR [handlers.Attachment] upload failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to upload file")
		}
		return
	}

	writeJSON(w, http.StatusCreated, attachment)
}

// Get streams the attachment bytes through the API as an authenticated
// proxy; bytes are never served from the blob store directly.
func (h *AttachmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Attachment not found")
		return
	}

	attachment, body, err := h.attachmentService.Fetch(r.Context(), id, identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Attachment not found")
			return
		}
		log.Printf("ERROR [handlers.Attachment] fetch failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve file")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", attachment.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.OriginalFilename))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, body)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Attachment not found")
		return
	}

	if err := h.attachmentService.Delete(r.Context(), id, identity.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Attachment not found")
			return
		}
		log.Printf("ERROR [handlers.Attachment] delete failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Attachment deleted successfully"})
}

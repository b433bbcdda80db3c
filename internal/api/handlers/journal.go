package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aki/journal-api/internal/api/middleware"
	"github.com/aki/journal-api/internal/domain"
	"github.com/aki/journal-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type JournalHandler struct {
	journalService *service.JournalService
}

func NewJournalHandler(journalService *service.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

type CreateEntryRequest struct {
	Content string `json:"content" validate:"required"`
}

type UpdateEntryRequest struct {
	Content string `json:"content" validate:"required"`
}

type EntryListResponse struct {
	Entries    []*domain.JournalEntry `json:"entries"`
	Pagination service.Pagination     `json:"pagination"`
}

type SearchResponse struct {
	Entries    []*domain.JournalEntry `json:"entries"`
	Query      string                 `json:"query"`
	Pagination service.Pagination     `json:"pagination"`
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, limit := pageParams(r)
	entries, pagination, err := h.journalService.List(r.Context(), identity.ID, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if entries == nil {
		entries = []*domain.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: entries, Pagination: pagination})
}

func (h *JournalHandler) Search(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := r.URL.Query().Get("q")
	page, limit := pageParams(r)

	entries, pagination, err := h.journalService.Search(r.Context(), identity.ID, query, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "Search query is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if entries == nil {
		entries = []*domain.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Entries: entries, Query: query, Pagination: pagination})
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	entry, err := h.journalService.Create(r.Context(), identity.ID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyContent) {
			writeError(w, http.StatusBadRequest, "Content is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return
	}

	entry, err := h.journalService.Get(r.Context(), id, identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Journal entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return
	}

	var req UpdateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	entry, err := h.journalService.Update(r.Context(), id, identity.ID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Journal entry not found")
		case errors.Is(err, service.ErrEmptyContent):
			writeError(w, http.StatusBadRequest, "Content is required")
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return
	}

	if err := h.journalService.Delete(r.Context(), id, identity.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Journal entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Journal entry deleted successfully"})
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/yonasKu/sproutbook-api/internal/application/journal"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// EntryHandler handles journal entry and child profile endpoints.
type EntryHandler struct {
	svc journal.Service
}

func NewEntryHandler(svc journal.Service) *EntryHandler { return &EntryHandler{svc: svc} }

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	var req domain.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID
	entry, err := h.svc.CreateEntry(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	limit := int32(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = int32(n)
		}
	}
	entries, err := h.svc.ListEntries(r.Context(), userID, limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// maxMediaUpload caps a single media upload at 32MB.
const maxMediaUpload = 32 << 20

func (h *EntryHandler) AttachMedia(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	if err := r.ParseMultipartForm(maxMediaUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	entry, err := h.svc.AttachMedia(r.Context(), userID, chi.URLParam(r, "id"), contentType, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *EntryHandler) RemoveMedia(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	key := r.URL.Query().Get("key")
	entry, err := h.svc.RemoveMedia(r.Context(), userID, chi.URLParam(r, "id"), key)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	var req domain.CreateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID
	child, err := h.svc.CreateChild(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, child)
}

func (h *EntryHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	children, err := h.svc.ListChildren(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yonasKu/sproutbook-api/internal/application/batch"
	"github.com/yonasKu/sproutbook-api/internal/domain"
	"github.com/yonasKu/sproutbook-api/internal/infrastructure/dynamo"
)

// RecapHandler serves generated recaps and the batch trigger endpoint.
type RecapHandler struct {
	repo         *dynamo.RecapRepo
	orchestrator *batch.Orchestrator
}

func NewRecapHandler(repo *dynamo.RecapRepo, orchestrator *batch.Orchestrator) *RecapHandler {
	return &RecapHandler{repo: repo, orchestrator: orchestrator}
}

func (h *RecapHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	limit := int32(20)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = int32(n)
		}
	}
	recaps, err := h.repo.ListByUser(r.Context(), userID, limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recaps)
}

func (h *RecapHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	rec, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	if rec.UserID != userID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RunBatch triggers a scheduled-style batch run for the previous period.
// The scheduler normally owns this; the endpoint exists for operators and
// for external cron triggers.
func (h *RecapHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParsePeriodKind(chi.URLParam(r, "period"))
	if err != nil {
		httpError(w, err)
		return
	}
	summary, err := h.orchestrator.RunBatch(r.Context(), kind, time.Now())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

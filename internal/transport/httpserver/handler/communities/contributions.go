package communities

import (
	"net/http"

	communitydomain "coinvest-go/internal/domain/community"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListContributions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	result, err := h.Communities.ListContributions(r.Context(), userID, communityID)
	if err != nil {
		h.writeServiceError(w, "contributions.list", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(result, toContributionResponse))
}

func (h *Handlers) ListMyContributions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	result, err := h.Communities.ListMyContributions(r.Context(), userID, communityID)
	if err != nil {
		h.writeServiceError(w, "contributions.list_mine", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(result, toContributionResponse))
}

func (h *Handlers) RecordContribution(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")
	var req contributionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.Communities.RecordContribution(r.Context(), userID, communityID, req.Amount, communitydomain.ContributionType(req.Type))
	if err != nil {
		h.writeServiceError(w, "contributions.record", err, "user_id", userID, "community_id", communityID, "type", req.Type)
		return
	}

	writeJSON(w, http.StatusCreated, toContributionResponse(result))
}

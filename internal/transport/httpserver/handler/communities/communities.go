package communities

import (
	"net/http"

	communitydomain "coinvest-go/internal/domain/community"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req createCommunityRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.Communities.CreateCommunity(r.Context(), userID, communitydomain.CreateCommunityInput{
		Name:         req.Name,
		Description:  req.Description,
		ApprovalMode: communitydomain.ApprovalMode(req.ApprovalMode),
	})
	if err != nil {
		h.writeServiceError(w, "communities.create", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusCreated, toCommunityResponse(result))
}

func (h *Handlers) ListCommunities(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.Communities.ListCommunities(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "communities.list", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(result, toCommunityResponse))
}

func (h *Handlers) GetCommunity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	result, err := h.Communities.GetCommunity(r.Context(), userID, communityID)
	if err != nil {
		h.writeServiceError(w, "communities.get", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, toCommunityResponse(result))
}

func (h *Handlers) UpdateCommunity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")
	var req updateCommunityRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input := communitydomain.UpdateCommunityInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.ApprovalMode != nil {
		mode := communitydomain.ApprovalMode(*req.ApprovalMode)
		input.ApprovalMode = &mode
	}

	result, err := h.Communities.UpdateCommunity(r.Context(), userID, communityID, input)
	if err != nil {
		h.writeServiceError(w, "communities.update", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, toCommunityResponse(result))
}

func (h *Handlers) DeleteCommunity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	if err := h.Communities.DeleteCommunity(r.Context(), userID, communityID); err != nil {
		h.writeServiceError(w, "communities.delete", err, "user_id", userID, "community_id", communityID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	result, err := h.Communities.GetWallet(r.Context(), userID, communityID)
	if err != nil {
		h.writeServiceError(w, "communities.wallet", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, toWalletResponse(result))
}

func (h *Handlers) ListPositions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	result, err := h.Communities.ListPositions(r.Context(), userID, communityID)
	if err != nil {
		h.writeServiceError(w, "communities.positions", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(result, toPositionResponse))
}

func (h *Handlers) MyShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	result, err := h.Communities.MyShare(r.Context(), userID, communityID)
	if err != nil {
		h.writeServiceError(w, "communities.my_share", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, toShareResponse(result))
}

func (h *Handlers) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	result, err := h.Communities.WithdrawMember(r.Context(), userID, communityID)
	if err != nil {
		h.writeServiceError(w, "communities.withdraw", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, withdrawalResponse{
		Success:          result.Success,
		WithdrawalAmount: result.WithdrawalAmount,
	})
}

package communities

import (
	"net/http"

	communitydomain "coinvest-go/internal/domain/community"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	result, err := h.Communities.ListMembers(r.Context(), userID, communityID)
	if err != nil {
		h.writeServiceError(w, "members.list", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(result, toMemberResponse))
}

func (h *Handlers) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")
	var req addMemberRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.Communities.AddMember(r.Context(), userID, communityID, req.UserID, communitydomain.Role(req.Role))
	if err != nil {
		h.writeServiceError(w, "members.add", err, "user_id", userID, "community_id", communityID, "target_user_id", req.UserID)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberResponse(result))
}

func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	memberID := chi.URLParam(r, "memberId")

	if err := h.Communities.RemoveMember(r.Context(), userID, memberID); err != nil {
		h.writeServiceError(w, "members.remove", err, "user_id", userID, "member_id", memberID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	memberID := chi.URLParam(r, "memberId")
	var req updateMemberRoleRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.Communities.UpdateMemberRole(r.Context(), userID, memberID, communitydomain.Role(req.Role))
	if err != nil {
		h.writeServiceError(w, "members.update_role", err, "user_id", userID, "member_id", memberID)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(result))
}

func (h *Handlers) TransferAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")
	var req transferAdminRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.Communities.TransferAdmin(r.Context(), userID, communityID, req.UserID)
	if err != nil {
		h.writeServiceError(w, "members.transfer_admin", err, "user_id", userID, "community_id", communityID, "target_user_id", req.UserID)
		return
	}

	writeJSON(w, http.StatusOK, toCommunityResponse(result))
}

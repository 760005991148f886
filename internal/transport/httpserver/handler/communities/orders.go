package communities

import (
	"net/http"

	communitydomain "coinvest-go/internal/domain/community"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")

	result, err := h.Communities.ListOrders(r.Context(), userID, communityID)
	if err != nil {
		h.writeServiceError(w, "orders.list", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(result, toOrderResponse))
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	communityID := chi.URLParam(r, "id")
	var req createOrderRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.Communities.CreateOrder(r.Context(), userID, communityID, communitydomain.CreateOrderInput{
		OrderType:    communitydomain.OrderType(req.OrderType),
		MetalType:    communitydomain.MetalType(req.MetalType),
		Carat:        req.Carat,
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		Deadline:     req.Deadline,
	})
	if err != nil {
		h.writeServiceError(w, "orders.create", err, "user_id", userID, "community_id", communityID)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(result))
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "orderId")

	result, err := h.Communities.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		h.writeServiceError(w, "orders.get", err, "user_id", userID, "order_id", orderID)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(result))
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "orderId")
	var req updateOrderStatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.Communities.UpdateOrderStatus(r.Context(), userID, orderID, communitydomain.OrderStatus(req.Status))
	if err != nil {
		h.writeServiceError(w, "orders.update_status", err, "user_id", userID, "order_id", orderID, "status", req.Status)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(result))
}

func (h *Handlers) ListVotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "orderId")

	result, err := h.Communities.ListVotes(r.Context(), userID, orderID)
	if err != nil {
		h.writeServiceError(w, "orders.votes", err, "user_id", userID, "order_id", orderID)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(result, toVoteResponse))
}

func (h *Handlers) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "orderId")
	var req voteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.Communities.CastVote(r.Context(), userID, orderID, communitydomain.VoteChoice(req.Vote))
	if err != nil {
		h.writeServiceError(w, "orders.vote", err, "user_id", userID, "order_id", orderID)
		return
	}

	writeJSON(w, http.StatusOK, voteResultResponse{
		Vote:  toVoteResponse(&result.Vote),
		Order: toOrderResponse(&result.Order),
	})
}

func (h *Handlers) ExecuteOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "orderId")

	result, err := h.Communities.ExecuteOrder(r.Context(), userID, orderID)
	if err != nil {
		h.writeServiceError(w, "orders.execute", err, "user_id", userID, "order_id", orderID)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(result))
}

package communities

import (
	"errors"
	"net/http"

	communitydomain "coinvest-go/internal/domain/community"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var domainErrors = []errorMapping{
	{communitydomain.ErrCommunityNotFound, http.StatusNotFound, "community_not_found"},
	{communitydomain.ErrMemberNotFound, http.StatusNotFound, "member_not_found"},
	{communitydomain.ErrWalletNotFound, http.StatusNotFound, "wallet_not_found"},
	{communitydomain.ErrPositionNotFound, http.StatusNotFound, "position_not_found"},
	{communitydomain.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{communitydomain.ErrVoteNotFound, http.StatusNotFound, "vote_not_found"},

	{communitydomain.ErrNotMember, http.StatusForbidden, "not_member"},
	{communitydomain.ErrMemberExited, http.StatusForbidden, "member_exited"},
	{communitydomain.ErrNotAdmin, http.StatusForbidden, "not_admin"},
	{communitydomain.ErrNotExecutor, http.StatusForbidden, "not_executor"},
	{communitydomain.ErrDemoReadOnly, http.StatusForbidden, "demo_read_only"},

	{communitydomain.ErrAlreadyMember, http.StatusBadRequest, "already_member"},
	{communitydomain.ErrCannotRemoveAdmin, http.StatusBadRequest, "cannot_remove_admin"},
	{communitydomain.ErrAlreadyVoted, http.StatusBadRequest, "already_voted"},
	{communitydomain.ErrVotingClosed, http.StatusBadRequest, "voting_closed"},
	{communitydomain.ErrInvalidTransition, http.StatusBadRequest, "invalid_transition"},
	{communitydomain.ErrApprovalThresholdNotMet, http.StatusBadRequest, "approval_threshold_not_met"},
	{communitydomain.ErrOrderNotApproved, http.StatusBadRequest, "order_not_approved"},
	{communitydomain.ErrInsufficientHoldings, http.StatusBadRequest, "insufficient_holdings"},
	{communitydomain.ErrAlreadyExited, http.StatusBadRequest, "already_exited"},
	{communitydomain.ErrAdminMustTransfer, http.StatusBadRequest, "admin_must_transfer"},
	{communitydomain.ErrCommunityNotEmpty, http.StatusBadRequest, "community_not_empty"},
}

// writeServiceError maps a service error onto the response envelope and logs
// it as a business or internal failure.
func (h *Handlers) writeServiceError(w http.ResponseWriter, op string, err error, args ...any) {
	var validationErr *communitydomain.ValidationError
	if errors.As(err, &validationErr) {
		h.log.BusinessError(op+": validation failed", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", validationErr.Message)
		return
	}

	for _, mapping := range domainErrors {
		if errors.Is(err, mapping.err) {
			h.log.BusinessError(op+": "+mapping.err.Error(), err, args...)
			writeError(w, mapping.status, mapping.code, mapping.err.Error())
			return
		}
	}

	h.log.InternalError(op+": failed", err, args...)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

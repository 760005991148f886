package community

import "errors"

var (
	ErrCommunityNotFound = errors.New("community not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrPositionNotFound  = errors.New("position not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrVoteNotFound      = errors.New("vote not found")

	ErrNotMember    = errors.New("not a member of this community")
	ErrMemberExited = errors.New("member has exited this community")
	ErrNotAdmin     = errors.New("only admin can perform this action")
	ErrNotExecutor  = errors.New("only admin or treasurer can execute orders")
	ErrDemoReadOnly = errors.New("demo community is read-only")

	ErrAlreadyMember           = errors.New("user is already a member")
	ErrCannotRemoveAdmin       = errors.New("cannot remove admin")
	ErrAlreadyVoted            = errors.New("you have already voted on this order")
	ErrVotingClosed            = errors.New("order is not open for voting")
	ErrInvalidTransition       = errors.New("invalid order status transition")
	ErrApprovalThresholdNotMet = errors.New("approval threshold not met")
	ErrOrderNotApproved        = errors.New("order must be approved before execution")
	ErrInsufficientHoldings    = errors.New("insufficient holdings for sell order")
	ErrAlreadyExited           = errors.New("you have already exited this community")
	ErrAdminMustTransfer       = errors.New("as admin, you must transfer admin rights before withdrawing")
	ErrCommunityNotEmpty       = errors.New("community still holds cash or positions")

	ErrValidation = errors.New("validation failed")
)

// ValidationError carries a human-readable message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

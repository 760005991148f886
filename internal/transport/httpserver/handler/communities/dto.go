package communities

import (
	"time"

	communitydomain "coinvest-go/internal/domain/community"
	"github.com/shopspring/decimal"
)

type createCommunityRequest struct {
	Name         string  `json:"name" validate:"required,max=50"`
	Description  *string `json:"description" validate:"omitempty,max=200"`
	ApprovalMode string  `json:"approvalMode" validate:"omitempty,oneof=admin_only simple_majority weighted"`
}

type updateCommunityRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=50"`
	Description  *string `json:"description" validate:"omitempty,max=200"`
	ApprovalMode *string `json:"approvalMode" validate:"omitempty,oneof=admin_only simple_majority weighted"`
}

type addMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=member treasurer"`
}

type updateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=member treasurer"`
}

type transferAdminRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type createOrderRequest struct {
	OrderType    string          `json:"orderType" validate:"required,oneof=buy sell"`
	MetalType    string          `json:"metalType" validate:"required,oneof=gold silver"`
	Carat        *string         `json:"carat"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit" validate:"gt=0"`
	Deadline     *time.Time      `json:"deadline"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=proposed voting approved rejected executed"`
}

type voteRequest struct {
	Vote string `json:"vote" validate:"required,oneof=for against"`
}

type contributionRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Type   string          `json:"type" validate:"required,oneof=deposit withdrawal"`
}

type communityResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	AdminID      string    `json:"adminId"`
	ApprovalMode string    `json:"approvalMode"`
	MemberCount  int       `json:"memberCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type memberResponse struct {
	ID          string     `json:"id"`
	CommunityID string     `json:"communityId"`
	UserID      string     `json:"userId"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	ExitedAt    *time.Time `json:"exitedAt"`
	JoinedAt    time.Time  `json:"joinedAt"`
}

type walletResponse struct {
	ID          string          `json:"id"`
	CommunityID string          `json:"communityId"`
	Balance     decimal.Decimal `json:"balance"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type positionResponse struct {
	ID              string          `json:"id"`
	CommunityID     string          `json:"communityId"`
	Type            string          `json:"type"`
	Carat           *string         `json:"carat"`
	Quantity        decimal.Decimal `json:"quantity"`
	AvgPricePerUnit decimal.Decimal `json:"avgPricePerUnit"`
	TotalInvested   decimal.Decimal `json:"totalInvested"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type orderResponse struct {
	ID           string          `json:"id"`
	CommunityID  string          `json:"communityId"`
	ProposedBy   string          `json:"proposedBy"`
	OrderType    string          `json:"orderType"`
	MetalType    string          `json:"metalType"`
	Carat        *string         `json:"carat"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Status       string          `json:"status"`
	VotesFor     int             `json:"votesFor"`
	VotesAgainst int             `json:"votesAgainst"`
	Deadline     *time.Time      `json:"deadline"`
	ExecutedAt   *time.Time      `json:"executedAt"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type voteResponse struct {
	ID      string    `json:"id"`
	OrderID string    `json:"orderId"`
	UserID  string    `json:"userId"`
	Vote    string    `json:"vote"`
	VotedAt time.Time `json:"votedAt"`
}

type voteResultResponse struct {
	Vote  voteResponse  `json:"vote"`
	Order orderResponse `json:"order"`
}

type contributionResponse struct {
	ID          string          `json:"id"`
	CommunityID string          `json:"communityId"`
	UserID      string          `json:"userId"`
	OrderID     *string         `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type shareResponse struct {
	TotalContributed    decimal.Decimal `json:"totalContributed"`
	SharePercentage     decimal.Decimal `json:"sharePercentage"`
	WithdrawalAmount    decimal.Decimal `json:"withdrawalAmount"`
	CommunityTotalValue decimal.Decimal `json:"communityTotalValue"`
}

type withdrawalResponse struct {
	Success          bool            `json:"success"`
	WithdrawalAmount decimal.Decimal `json:"withdrawalAmount"`
}

func toCommunityResponse(c *communitydomain.Community) communityResponse {
	return communityResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		AdminID:      c.AdminID,
		ApprovalMode: string(c.ApprovalMode),
		MemberCount:  c.MemberCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toMemberResponse(m *communitydomain.Member) memberResponse {
	return memberResponse{
		ID:          m.ID,
		CommunityID: m.CommunityID,
		UserID:      m.UserID,
		Role:        string(m.Role),
		Status:      string(m.Status),
		ExitedAt:    m.ExitedAt,
		JoinedAt:    m.JoinedAt,
	}
}

func toWalletResponse(w *communitydomain.Wallet) walletResponse {
	return walletResponse{
		ID:          w.ID,
		CommunityID: w.CommunityID,
		Balance:     w.Balance,
		UpdatedAt:   w.UpdatedAt,
	}
}

func toPositionResponse(p *communitydomain.Position) positionResponse {
	return positionResponse{
		ID:              p.ID,
		CommunityID:     p.CommunityID,
		Type:            string(p.Type),
		Carat:           p.Carat,
		Quantity:        p.Quantity,
		AvgPricePerUnit: p.AvgPricePerUnit,
		TotalInvested:   p.TotalInvested,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toOrderResponse(o *communitydomain.Order) orderResponse {
	return orderResponse{
		ID:           o.ID,
		CommunityID:  o.CommunityID,
		ProposedBy:   o.ProposedBy,
		OrderType:    string(o.OrderType),
		MetalType:    string(o.MetalType),
		Carat:        o.Carat,
		Quantity:     o.Quantity,
		PricePerUnit: o.PricePerUnit,
		TotalAmount:  o.TotalAmount,
		Status:       string(o.Status),
		VotesFor:     o.VotesFor,
		VotesAgainst: o.VotesAgainst,
		Deadline:     o.Deadline,
		ExecutedAt:   o.ExecutedAt,
		CreatedAt:    o.CreatedAt,
	}
}

func toVoteResponse(v *communitydomain.Vote) voteResponse {
	return voteResponse{
		ID:      v.ID,
		OrderID: v.OrderID,
		UserID:  v.UserID,
		Vote:    string(v.Vote),
		VotedAt: v.VotedAt,
	}
}

func toContributionResponse(c *communitydomain.Contribution) contributionResponse {
	return contributionResponse{
		ID:          c.ID,
		CommunityID: c.CommunityID,
		UserID:      c.UserID,
		OrderID:     c.OrderID,
		Amount:      c.Amount,
		Type:        string(c.Type),
		CreatedAt:   c.CreatedAt,
	}
}

func toShareResponse(s *communitydomain.Share) shareResponse {
	return shareResponse{
		TotalContributed:    s.TotalContributed,
		SharePercentage:     s.SharePercentage,
		WithdrawalAmount:    s.WithdrawalAmount,
		CommunityTotalValue: s.CommunityTotalValue,
	}
}

func mapSlice[T any, R any](items []T, convert func(*T) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, convert(&items[i]))
	}
	return out
}

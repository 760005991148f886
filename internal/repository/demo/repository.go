package demo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	communitydomain "coinvest-go/internal/domain/community"
)

// CommunityPrefix marks fixture communities.
const CommunityPrefix = "demo-comm-"

//go:embed fixtures.json
var fixturesJSON []byte

type fixtures struct {
	Communities   []communitydomain.Community    `json:"communities"`
	Members       []communitydomain.Member       `json:"members"`
	Wallets       []communitydomain.Wallet       `json:"wallets"`
	Positions     []communitydomain.Position     `json:"positions"`
	Orders        []communitydomain.Order        `json:"orders"`
	Votes         []communitydomain.Vote         `json:"votes"`
	Contributions []communitydomain.Contribution `json:"contributions"`
}

func loadFixtures() (*fixtures, error) {
	var f fixtures
	if err := json.Unmarshal(fixturesJSON, &f); err != nil {
		return nil, fmt.Errorf("decode demo fixtures: %w", err)
	}
	return &f, nil
}

// Repository serves the embedded demo communities on top of a real store.
// Callers see every demo community as read-only members; any write that
// touches one fails with ErrDemoReadOnly.
type Repository struct {
	inner    communitydomain.Repository
	fixtures *fixtures
}

func New(inner communitydomain.Repository) (*Repository, error) {
	f, err := loadFixtures()
	if err != nil {
		return nil, err
	}
	return &Repository{inner: inner, fixtures: f}, nil
}

func IsDemoCommunity(communityID string) bool {
	return strings.HasPrefix(communityID, CommunityPrefix)
}

func (r *Repository) Transaction(ctx context.Context, fn func(communitydomain.Repository) error) error {
	return r.inner.Transaction(ctx, func(tx communitydomain.Repository) error {
		return fn(&Repository{inner: tx, fixtures: r.fixtures})
	})
}

func (r *Repository) LockCommunity(ctx context.Context, communityID string) error {
	if IsDemoCommunity(communityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.LockCommunity(ctx, communityID)
}

func (r *Repository) CreateCommunity(ctx context.Context, community *communitydomain.Community) error {
	if IsDemoCommunity(community.ID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.CreateCommunity(ctx, community)
}

func (r *Repository) GetCommunity(ctx context.Context, communityID string) (*communitydomain.Community, error) {
	if !IsDemoCommunity(communityID) {
		return r.inner.GetCommunity(ctx, communityID)
	}
	for _, community := range r.fixtures.Communities {
		if community.ID == communityID {
			return &community, nil
		}
	}
	return nil, communitydomain.ErrCommunityNotFound
}

// ListCommunitiesByUser shows the demo communities to users who have none of
// their own.
func (r *Repository) ListCommunitiesByUser(ctx context.Context, userID string) ([]communitydomain.Community, error) {
	communities, err := r.inner.ListCommunitiesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(communities) > 0 {
		return communities, nil
	}
	out := append([]communitydomain.Community(nil), r.fixtures.Communities...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) UpdateCommunity(ctx context.Context, community *communitydomain.Community) error {
	if IsDemoCommunity(community.ID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.UpdateCommunity(ctx, community)
}

func (r *Repository) DeleteCommunity(ctx context.Context, communityID string) error {
	if IsDemoCommunity(communityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.DeleteCommunity(ctx, communityID)
}

func (r *Repository) AddMember(ctx context.Context, member *communitydomain.Member) error {
	if IsDemoCommunity(member.CommunityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.AddMember(ctx, member)
}

// GetMember returns the fixture membership or a synthesized viewer row so
// that any caller can read a demo community.
func (r *Repository) GetMember(ctx context.Context, communityID, userID string) (*communitydomain.Member, error) {
	if !IsDemoCommunity(communityID) {
		return r.inner.GetMember(ctx, communityID, userID)
	}
	if _, err := r.GetCommunity(ctx, communityID); err != nil {
		return nil, err
	}
	for _, member := range r.fixtures.Members {
		if member.CommunityID == communityID && member.UserID == userID {
			return &member, nil
		}
	}
	return &communitydomain.Member{
		ID:          "demo-viewer-" + userID,
		CommunityID: communityID,
		UserID:      userID,
		Role:        communitydomain.RoleMember,
		Status:      communitydomain.MemberActive,
	}, nil
}

func (r *Repository) GetMemberByID(ctx context.Context, memberID string) (*communitydomain.Member, error) {
	for _, member := range r.fixtures.Members {
		if member.ID == memberID {
			return &member, nil
		}
	}
	return r.inner.GetMemberByID(ctx, memberID)
}

func (r *Repository) ListMembers(ctx context.Context, communityID string) ([]communitydomain.Member, error) {
	if !IsDemoCommunity(communityID) {
		return r.inner.ListMembers(ctx, communityID)
	}
	return filter(r.fixtures.Members, func(m communitydomain.Member) bool { return m.CommunityID == communityID }), nil
}

func (r *Repository) UpdateMember(ctx context.Context, member *communitydomain.Member) error {
	if IsDemoCommunity(member.CommunityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.UpdateMember(ctx, member)
}

func (r *Repository) DeleteMember(ctx context.Context, memberID string) error {
	for _, member := range r.fixtures.Members {
		if member.ID == memberID {
			return communitydomain.ErrDemoReadOnly
		}
	}
	return r.inner.DeleteMember(ctx, memberID)
}

func (r *Repository) CreateWallet(ctx context.Context, wallet *communitydomain.Wallet) error {
	if IsDemoCommunity(wallet.CommunityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.CreateWallet(ctx, wallet)
}

func (r *Repository) GetWallet(ctx context.Context, communityID string) (*communitydomain.Wallet, error) {
	if !IsDemoCommunity(communityID) {
		return r.inner.GetWallet(ctx, communityID)
	}
	for _, wallet := range r.fixtures.Wallets {
		if wallet.CommunityID == communityID {
			return &wallet, nil
		}
	}
	return nil, communitydomain.ErrWalletNotFound
}

func (r *Repository) UpdateWallet(ctx context.Context, wallet *communitydomain.Wallet) error {
	if IsDemoCommunity(wallet.CommunityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.UpdateWallet(ctx, wallet)
}

func (r *Repository) ListPositions(ctx context.Context, communityID string) ([]communitydomain.Position, error) {
	if !IsDemoCommunity(communityID) {
		return r.inner.ListPositions(ctx, communityID)
	}
	return filter(r.fixtures.Positions, func(p communitydomain.Position) bool { return p.CommunityID == communityID }), nil
}

func (r *Repository) GetPosition(ctx context.Context, communityID string, metal communitydomain.MetalType, carat *string) (*communitydomain.Position, error) {
	if !IsDemoCommunity(communityID) {
		return r.inner.GetPosition(ctx, communityID, metal, carat)
	}
	for _, position := range r.fixtures.Positions {
		if position.CommunityID != communityID || position.Type != metal {
			continue
		}
		if (position.Carat == nil && carat == nil) || (position.Carat != nil && carat != nil && *position.Carat == *carat) {
			return &position, nil
		}
	}
	return nil, communitydomain.ErrPositionNotFound
}

func (r *Repository) CreatePosition(ctx context.Context, position *communitydomain.Position) error {
	if IsDemoCommunity(position.CommunityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.CreatePosition(ctx, position)
}

func (r *Repository) UpdatePosition(ctx context.Context, position *communitydomain.Position) error {
	if IsDemoCommunity(position.CommunityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.UpdatePosition(ctx, position)
}

func (r *Repository) CreateOrder(ctx context.Context, order *communitydomain.Order) error {
	if IsDemoCommunity(order.CommunityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.CreateOrder(ctx, order)
}

func (r *Repository) GetOrder(ctx context.Context, orderID string) (*communitydomain.Order, error) {
	if order, ok := r.fixtureOrder(orderID); ok {
		return &order, nil
	}
	return r.inner.GetOrder(ctx, orderID)
}

func (r *Repository) ListOrders(ctx context.Context, communityID string) ([]communitydomain.Order, error) {
	if !IsDemoCommunity(communityID) {
		return r.inner.ListOrders(ctx, communityID)
	}
	out := filter(r.fixtures.Orders, func(o communitydomain.Order) bool { return o.CommunityID == communityID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListExpiredOrders never reports fixture orders; they are frozen.
func (r *Repository) ListExpiredOrders(ctx context.Context, now time.Time) ([]communitydomain.Order, error) {
	return r.inner.ListExpiredOrders(ctx, now)
}

func (r *Repository) UpdateOrder(ctx context.Context, order *communitydomain.Order) error {
	if IsDemoCommunity(order.CommunityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.UpdateOrder(ctx, order)
}

func (r *Repository) CreateVote(ctx context.Context, vote *communitydomain.Vote) error {
	if _, ok := r.fixtureOrder(vote.OrderID); ok {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.CreateVote(ctx, vote)
}

func (r *Repository) GetVote(ctx context.Context, orderID, userID string) (*communitydomain.Vote, error) {
	if _, ok := r.fixtureOrder(orderID); !ok {
		return r.inner.GetVote(ctx, orderID, userID)
	}
	for _, vote := range r.fixtures.Votes {
		if vote.OrderID == orderID && vote.UserID == userID {
			return &vote, nil
		}
	}
	return nil, communitydomain.ErrVoteNotFound
}

func (r *Repository) ListVotes(ctx context.Context, orderID string) ([]communitydomain.Vote, error) {
	if _, ok := r.fixtureOrder(orderID); !ok {
		return r.inner.ListVotes(ctx, orderID)
	}
	return filter(r.fixtures.Votes, func(v communitydomain.Vote) bool { return v.OrderID == orderID }), nil
}

func (r *Repository) CreateContribution(ctx context.Context, contribution *communitydomain.Contribution) error {
	if IsDemoCommunity(contribution.CommunityID) {
		return communitydomain.ErrDemoReadOnly
	}
	return r.inner.CreateContribution(ctx, contribution)
}

func (r *Repository) ListContributions(ctx context.Context, communityID string, f communitydomain.ContributionFilter) ([]communitydomain.Contribution, error) {
	if !IsDemoCommunity(communityID) {
		return r.inner.ListContributions(ctx, communityID, f)
	}
	out := filter(r.fixtures.Contributions, func(c communitydomain.Contribution) bool {
		return c.CommunityID == communityID && (f.UserID == "" || c.UserID == f.UserID)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) fixtureOrder(orderID string) (communitydomain.Order, bool) {
	for _, order := range r.fixtures.Orders {
		if order.ID == orderID {
			return order, true
		}
	}
	return communitydomain.Order{}, false
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

package community

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LockCommunity serializes writers on one community for the rest of the
	// enclosing transaction.
	LockCommunity(ctx context.Context, communityID string) error

	CreateCommunity(ctx context.Context, community *Community) error
	GetCommunity(ctx context.Context, communityID string) (*Community, error)
	ListCommunitiesByUser(ctx context.Context, userID string) ([]Community, error)
	UpdateCommunity(ctx context.Context, community *Community) error
	DeleteCommunity(ctx context.Context, communityID string) error

	AddMember(ctx context.Context, member *Member) error
	GetMember(ctx context.Context, communityID, userID string) (*Member, error)
	GetMemberByID(ctx context.Context, memberID string) (*Member, error)
	ListMembers(ctx context.Context, communityID string) ([]Member, error)
	UpdateMember(ctx context.Context, member *Member) error
	DeleteMember(ctx context.Context, memberID string) error

	CreateWallet(ctx context.Context, wallet *Wallet) error
	GetWallet(ctx context.Context, communityID string) (*Wallet, error)
	UpdateWallet(ctx context.Context, wallet *Wallet) error

	ListPositions(ctx context.Context, communityID string) ([]Position, error)
	GetPosition(ctx context.Context, communityID string, metal MetalType, carat *string) (*Position, error)
	CreatePosition(ctx context.Context, position *Position) error
	UpdatePosition(ctx context.Context, position *Position) error

	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context, communityID string) ([]Order, error)
	ListExpiredOrders(ctx context.Context, now time.Time) ([]Order, error)
	UpdateOrder(ctx context.Context, order *Order) error

	CreateVote(ctx context.Context, vote *Vote) error
	GetVote(ctx context.Context, orderID, userID string) (*Vote, error)
	ListVotes(ctx context.Context, orderID string) ([]Vote, error)

	CreateContribution(ctx context.Context, contribution *Contribution) error
	ListContributions(ctx context.Context, communityID string, filter ContributionFilter) ([]Contribution, error)
}

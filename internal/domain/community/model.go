package community

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalMode string

const (
	ApprovalAdminOnly      ApprovalMode = "admin_only"
	ApprovalSimpleMajority ApprovalMode = "simple_majority"
	ApprovalWeighted       ApprovalMode = "weighted"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTreasurer Role = "treasurer"
	RoleMember    Role = "member"
)

type MemberStatus string

const (
	MemberActive MemberStatus = "active"
	MemberExited MemberStatus = "exited"
)

type MetalType string

const (
	MetalGold   MetalType = "gold"
	MetalSilver MetalType = "silver"
)

const (
	Carat22K = "22K"
	Carat24K = "24K"
)

type OrderType string

const (
	OrderBuy  OrderType = "buy"
	OrderSell OrderType = "sell"
)

type OrderStatus string

const (
	StatusProposed OrderStatus = "proposed"
	StatusVoting   OrderStatus = "voting"
	StatusApproved OrderStatus = "approved"
	StatusRejected OrderStatus = "rejected"
	StatusExecuted OrderStatus = "executed"
)

type VoteChoice string

const (
	VoteFor     VoteChoice = "for"
	VoteAgainst VoteChoice = "against"
)

type ContributionType string

const (
	ContributionDeposit    ContributionType = "deposit"
	ContributionWithdrawal ContributionType = "withdrawal"
)

type Community struct {
	ID           string       `gorm:"type:uuid;primaryKey"`
	Name         string       `gorm:"size:50;not null"`
	Description  *string      `gorm:"size:200"`
	AdminID      string       `gorm:"not null;index"`
	ApprovalMode ApprovalMode `gorm:"type:varchar(32);not null"`
	MemberCount  int          `gorm:"not null;default:0"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

func (Community) TableName() string { return "communities" }

type Member struct {
	ID          string       `gorm:"type:uuid;primaryKey"`
	CommunityID string       `gorm:"type:uuid;not null;index"`
	UserID      string       `gorm:"not null;index"`
	Role        Role         `gorm:"type:varchar(16);not null"`
	Status      MemberStatus `gorm:"type:varchar(16);not null"`
	ExitedAt    *time.Time
	JoinedAt    time.Time `gorm:"not null"`
}

func (Member) TableName() string { return "community_members" }

func (m Member) IsActive() bool {
	return m.Status == MemberActive
}

func (m Member) CanExecute() bool {
	return m.IsActive() && (m.Role == RoleAdmin || m.Role == RoleTreasurer)
}

type Wallet struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	CommunityID string          `gorm:"type:uuid;not null;uniqueIndex"`
	Balance     decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

func (Wallet) TableName() string { return "community_wallets" }

type Position struct {
	ID              string          `gorm:"type:uuid;primaryKey"`
	CommunityID     string          `gorm:"type:uuid;not null;index"`
	Type            MetalType       `gorm:"type:varchar(16);not null"`
	Carat           *string         `gorm:"type:varchar(8)"`
	Quantity        decimal.Decimal `gorm:"type:numeric(20,3);not null"`
	AvgPricePerUnit decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	TotalInvested   decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

func (Position) TableName() string { return "community_positions" }

type Order struct {
	ID           string          `gorm:"type:uuid;primaryKey"`
	CommunityID  string          `gorm:"type:uuid;not null;index"`
	ProposedBy   string          `gorm:"not null"`
	OrderType    OrderType       `gorm:"type:varchar(8);not null"`
	MetalType    MetalType       `gorm:"type:varchar(16);not null"`
	Carat        *string         `gorm:"type:varchar(8)"`
	Quantity     decimal.Decimal `gorm:"type:numeric(20,3);not null"`
	PricePerUnit decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(24,5);not null"`
	Status       OrderStatus     `gorm:"type:varchar(16);not null;index"`
	VotesFor     int             `gorm:"not null;default:0"`
	VotesAgainst int             `gorm:"not null;default:0"`
	Deadline     *time.Time
	ExecutedAt   *time.Time
	CreatedAt    time.Time `gorm:"not null"`
}

func (Order) TableName() string { return "community_orders" }

// IsOpen reports whether the order still accepts votes.
func (o Order) IsOpen() bool {
	return o.Status == StatusProposed || o.Status == StatusVoting
}

type Vote struct {
	ID      string     `gorm:"type:uuid;primaryKey"`
	OrderID string     `gorm:"type:uuid;not null;index"`
	UserID  string     `gorm:"not null"`
	Vote    VoteChoice `gorm:"type:varchar(8);not null"`
	VotedAt time.Time  `gorm:"not null"`
}

func (Vote) TableName() string { return "community_votes" }

type Contribution struct {
	ID          string           `gorm:"type:uuid;primaryKey"`
	CommunityID string           `gorm:"type:uuid;not null;index"`
	UserID      string           `gorm:"not null;index"`
	OrderID     *string          `gorm:"type:uuid"`
	Amount      decimal.Decimal  `gorm:"type:numeric(20,2);not null"`
	Type        ContributionType `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time        `gorm:"not null"`
}

func (Contribution) TableName() string { return "community_contributions" }

type ContributionFilter struct {
	UserID string
}

type CreateCommunityInput struct {
	Name         string
	Description  *string
	ApprovalMode ApprovalMode
}

type UpdateCommunityInput struct {
	Name         *string
	Description  *string
	ApprovalMode *ApprovalMode
}

type CreateOrderInput struct {
	OrderType    OrderType
	MetalType    MetalType
	Carat        *string
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	Deadline     *time.Time
}

type VoteResult struct {
	Vote  Vote
	Order Order
}

type Share struct {
	TotalContributed    decimal.Decimal
	SharePercentage     decimal.Decimal
	WithdrawalAmount    decimal.Decimal
	CommunityTotalValue decimal.Decimal
}

type WithdrawalResult struct {
	Success          bool
	WithdrawalAmount decimal.Decimal
}

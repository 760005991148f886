package community

import (
	"context"
	"errors"
	"time"

	communitydomain "coinvest-go/internal/domain/community"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(communitydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// LockCommunity takes a row lock on the community that is held until the
// surrounding transaction ends.
func (r *PostgresRepository) LockCommunity(ctx context.Context, communityID string) error {
	if !isUUID(communityID) {
		return communitydomain.ErrCommunityNotFound
	}
	var community communitydomain.Community
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", communityID).
		Take(&community).Error
	return notFound(err, communitydomain.ErrCommunityNotFound)
}

func (r *PostgresRepository) CreateCommunity(ctx context.Context, community *communitydomain.Community) error {
	return r.db.WithContext(ctx).Create(community).Error
}

func (r *PostgresRepository) GetCommunity(ctx context.Context, communityID string) (*communitydomain.Community, error) {
	if !isUUID(communityID) {
		return nil, communitydomain.ErrCommunityNotFound
	}
	var community communitydomain.Community
	if err := r.db.WithContext(ctx).Where("id = ?", communityID).Take(&community).Error; err != nil {
		return nil, notFound(err, communitydomain.ErrCommunityNotFound)
	}
	return &community, nil
}

func (r *PostgresRepository) ListCommunitiesByUser(ctx context.Context, userID string) ([]communitydomain.Community, error) {
	memberships := r.db.Model(&communitydomain.Member{}).Select("community_id").Where("user_id = ?", userID)

	var communities []communitydomain.Community
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", memberships).
		Order("created_at desc").
		Find(&communities).Error; err != nil {
		return nil, err
	}
	return communities, nil
}

func (r *PostgresRepository) UpdateCommunity(ctx context.Context, community *communitydomain.Community) error {
	return r.updateRow(ctx, community, communitydomain.ErrCommunityNotFound)
}

// DeleteCommunity removes the community with every row that hangs off it.
func (r *PostgresRepository) DeleteCommunity(ctx context.Context, communityID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := tx.Model(&communitydomain.Order{}).Select("id").Where("community_id = ?", communityID)
		if err := tx.Where("order_id IN (?)", orders).Delete(&communitydomain.Vote{}).Error; err != nil {
			return err
		}
		children := []any{
			&communitydomain.Contribution{},
			&communitydomain.Order{},
			&communitydomain.Position{},
			&communitydomain.Wallet{},
			&communitydomain.Member{},
		}
		for _, model := range children {
			if err := tx.Where("community_id = ?", communityID).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Where("id = ?", communityID).Delete(&communitydomain.Community{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return communitydomain.ErrCommunityNotFound
		}
		return nil
	})
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *communitydomain.Member) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return communitydomain.ErrAlreadyMember
	}
	return err
}

// GetMember prefers the active membership and otherwise returns the latest
// exited one.
func (r *PostgresRepository) GetMember(ctx context.Context, communityID, userID string) (*communitydomain.Member, error) {
	var member communitydomain.Member
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Order("CASE WHEN status = 'active' THEN 0 ELSE 1 END").
		Order("joined_at desc").
		Take(&member).Error
	if err != nil {
		return nil, notFound(err, communitydomain.ErrMemberNotFound)
	}
	return &member, nil
}

func (r *PostgresRepository) GetMemberByID(ctx context.Context, memberID string) (*communitydomain.Member, error) {
	if !isUUID(memberID) {
		return nil, communitydomain.ErrMemberNotFound
	}
	var member communitydomain.Member
	if err := r.db.WithContext(ctx).Where("id = ?", memberID).Take(&member).Error; err != nil {
		return nil, notFound(err, communitydomain.ErrMemberNotFound)
	}
	return &member, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, communityID string) ([]communitydomain.Member, error) {
	var members []communitydomain.Member
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) UpdateMember(ctx context.Context, member *communitydomain.Member) error {
	return r.updateRow(ctx, member, communitydomain.ErrMemberNotFound)
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, memberID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", memberID).Delete(&communitydomain.Member{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return communitydomain.ErrMemberNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateWallet(ctx context.Context, wallet *communitydomain.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

func (r *PostgresRepository) GetWallet(ctx context.Context, communityID string) (*communitydomain.Wallet, error) {
	var wallet communitydomain.Wallet
	if err := r.db.WithContext(ctx).Where("community_id = ?", communityID).Take(&wallet).Error; err != nil {
		return nil, notFound(err, communitydomain.ErrWalletNotFound)
	}
	return &wallet, nil
}

func (r *PostgresRepository) UpdateWallet(ctx context.Context, wallet *communitydomain.Wallet) error {
	return r.updateRow(ctx, wallet, communitydomain.ErrWalletNotFound)
}

func (r *PostgresRepository) ListPositions(ctx context.Context, communityID string) ([]communitydomain.Position, error) {
	var positions []communitydomain.Position
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("type asc").
		Order("carat asc").
		Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *PostgresRepository) GetPosition(ctx context.Context, communityID string, metal communitydomain.MetalType, carat *string) (*communitydomain.Position, error) {
	query := r.db.WithContext(ctx).Where("community_id = ? AND type = ?", communityID, metal)
	if carat == nil {
		query = query.Where("carat IS NULL")
	} else {
		query = query.Where("carat = ?", *carat)
	}

	var position communitydomain.Position
	if err := query.Take(&position).Error; err != nil {
		return nil, notFound(err, communitydomain.ErrPositionNotFound)
	}
	return &position, nil
}

func (r *PostgresRepository) CreatePosition(ctx context.Context, position *communitydomain.Position) error {
	return r.db.WithContext(ctx).Create(position).Error
}

func (r *PostgresRepository) UpdatePosition(ctx context.Context, position *communitydomain.Position) error {
	return r.updateRow(ctx, position, communitydomain.ErrPositionNotFound)
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, order *communitydomain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *PostgresRepository) GetOrder(ctx context.Context, orderID string) (*communitydomain.Order, error) {
	if !isUUID(orderID) {
		return nil, communitydomain.ErrOrderNotFound
	}
	var order communitydomain.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).Take(&order).Error; err != nil {
		return nil, notFound(err, communitydomain.ErrOrderNotFound)
	}
	return &order, nil
}

func (r *PostgresRepository) ListOrders(ctx context.Context, communityID string) ([]communitydomain.Order, error) {
	var orders []communitydomain.Order
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) ListExpiredOrders(ctx context.Context, now time.Time) ([]communitydomain.Order, error) {
	var orders []communitydomain.Order
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []communitydomain.OrderStatus{communitydomain.StatusProposed, communitydomain.StatusVoting}).
		Where("deadline IS NOT NULL AND deadline < ?", now).
		Order("deadline asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateOrder(ctx context.Context, order *communitydomain.Order) error {
	return r.updateRow(ctx, order, communitydomain.ErrOrderNotFound)
}

func (r *PostgresRepository) CreateVote(ctx context.Context, vote *communitydomain.Vote) error {
	err := r.db.WithContext(ctx).Create(vote).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return communitydomain.ErrAlreadyVoted
	}
	return err
}

func (r *PostgresRepository) GetVote(ctx context.Context, orderID, userID string) (*communitydomain.Vote, error) {
	var vote communitydomain.Vote
	if err := r.db.WithContext(ctx).Where("order_id = ? AND user_id = ?", orderID, userID).Take(&vote).Error; err != nil {
		return nil, notFound(err, communitydomain.ErrVoteNotFound)
	}
	return &vote, nil
}

func (r *PostgresRepository) ListVotes(ctx context.Context, orderID string) ([]communitydomain.Vote, error) {
	var votes []communitydomain.Vote
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("voted_at asc").
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *PostgresRepository) CreateContribution(ctx context.Context, contribution *communitydomain.Contribution) error {
	return r.db.WithContext(ctx).Create(contribution).Error
}

func (r *PostgresRepository) ListContributions(ctx context.Context, communityID string, filter communitydomain.ContributionFilter) ([]communitydomain.Contribution, error) {
	query := r.db.WithContext(ctx).Where("community_id = ?", communityID)
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var contributions []communitydomain.Contribution
	if err := query.Order("created_at desc").Find(&contributions).Error; err != nil {
		return nil, err
	}
	return contributions, nil
}

// updateRow writes every column of model, zero values included.
func (r *PostgresRepository) updateRow(ctx context.Context, model any, missing error) error {
	result := r.db.WithContext(ctx).Model(model).Select("*").Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missing
	}
	return nil
}

// isUUID filters ids that cannot match a uuid column before they reach
// postgres, which would reject them with a syntax error.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

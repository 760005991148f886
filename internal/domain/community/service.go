package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"coinvest-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	nameMaxLength        = 50
	descriptionMaxLength = 200
)

type Service struct {
	repo      Repository
	locker    Locker
	publisher Publisher
	cache     Cache
	cacheTTL  time.Duration
	log       logger.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithLocker(locker Locker) Option {
	return func(s *Service) {
		if locker != nil {
			s.locker = locker
		}
	}
}

func WithPublisher(publisher Publisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithCache enables the community read cache. A non-positive ttl disables it.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if cache != nil && ttl > 0 {
			s.cache = cache
			s.cacheTTL = ttl
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		locker:    NewKeyedMutex(),
		publisher: noopPublisher{},
		cache:     noopCache{},
		log:       logger.Nop(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateCommunity(ctx context.Context, actorID string, input CreateCommunityInput) (*Community, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(input.Description)
	if err != nil {
		return nil, err
	}
	mode := input.ApprovalMode
	if mode == "" {
		mode = ApprovalAdminOnly
	}
	if !validApprovalMode(mode) {
		return nil, invalid("approvalMode must be one of admin_only, simple_majority, weighted")
	}

	now := s.now()
	community := Community{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		AdminID:      actorID,
		ApprovalMode: mode,
		MemberCount:  1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateCommunity(ctx, &community); err != nil {
			return err
		}

		admin := Member{
			ID:          uuid.NewString(),
			CommunityID: community.ID,
			UserID:      actorID,
			Role:        RoleAdmin,
			Status:      MemberActive,
			JoinedAt:    now,
		}
		if err := tx.AddMember(ctx, &admin); err != nil {
			return err
		}

		wallet := Wallet{
			ID:          uuid.NewString(),
			CommunityID: community.ID,
			Balance:     decimal.Zero,
			UpdatedAt:   now,
		}
		return tx.CreateWallet(ctx, &wallet)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{Type: EventCommunityCreated, CommunityID: community.ID, ActorID: actorID, EntityID: community.ID})
	return &community, nil
}

func (s *Service) ListCommunities(ctx context.Context, actorID string) ([]Community, error) {
	return s.repo.ListCommunitiesByUser(ctx, actorID)
}

func (s *Service) GetCommunity(ctx context.Context, actorID, communityID string) (*Community, error) {
	community, err := s.loadCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if _, err := anyMember(ctx, s.repo, communityID, actorID); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *Service) UpdateCommunity(ctx context.Context, actorID, communityID string, input UpdateCommunityInput) (*Community, error) {
	var result Community
	err := s.mutate(ctx, communityID, func(tx Repository) error {
		community, err := tx.GetCommunity(ctx, communityID)
		if err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, tx, community, actorID); err != nil {
			return err
		}

		if input.Name != nil {
			name, err := validateName(*input.Name)
			if err != nil {
				return err
			}
			community.Name = name
		}
		if input.Description != nil {
			description, err := validateDescription(input.Description)
			if err != nil {
				return err
			}
			community.Description = description
		}
		if input.ApprovalMode != nil {
			if !validApprovalMode(*input.ApprovalMode) {
				return invalid("approvalMode must be one of admin_only, simple_majority, weighted")
			}
			community.ApprovalMode = *input.ApprovalMode
		}
		community.UpdatedAt = s.now()

		if err := tx.UpdateCommunity(ctx, community); err != nil {
			return err
		}
		result = *community
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) DeleteCommunity(ctx context.Context, actorID, communityID string) error {
	err := s.mutate(ctx, communityID, func(tx Repository) error {
		community, err := tx.GetCommunity(ctx, communityID)
		if err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, tx, community, actorID); err != nil {
			return err
		}

		wallet, err := tx.GetWallet(ctx, communityID)
		if err != nil && !errors.Is(err, ErrWalletNotFound) {
			return err
		}
		if wallet != nil && wallet.Balance.IsPositive() {
			return ErrCommunityNotEmpty
		}

		positions, err := tx.ListPositions(ctx, communityID)
		if err != nil {
			return err
		}
		for _, position := range positions {
			if position.Quantity.IsPositive() {
				return ErrCommunityNotEmpty
			}
		}

		return tx.DeleteCommunity(ctx, communityID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, Event{Type: EventCommunityDeleted, CommunityID: communityID, ActorID: actorID, EntityID: communityID})
	return nil
}

func (s *Service) loadCommunity(ctx context.Context, communityID string) (*Community, error) {
	if cached, ok := s.cache.Get(communityID); ok {
		return cached, nil
	}
	community, err := s.repo.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(community, s.cacheTTL)
	return community, nil
}

// mutate runs fn in a transaction while holding the community lock.
func (s *Service) mutate(ctx context.Context, communityID string, fn func(Repository) error) error {
	unlock, err := s.locker.Lock(ctx, communityID)
	if err != nil {
		return fmt.Errorf("lock community %s: %w", communityID, err)
	}
	defer unlock()

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockCommunity(ctx, communityID); err != nil {
			return err
		}
		return fn(tx)
	})
	if err != nil {
		return err
	}
	s.cache.Delete(communityID)
	return nil
}

func (s *Service) publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.InternalError("community: publish event failed", err,
			"event", event.Type, "community_id", event.CommunityID, "entity_id", event.EntityID)
	}
}

// anyMember allows exited members, who keep read access to history.
func anyMember(ctx context.Context, repo Repository, communityID, userID string) (*Member, error) {
	member, err := repo.GetMember(ctx, communityID, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

func activeMember(ctx context.Context, repo Repository, communityID, userID string) (*Member, error) {
	member, err := anyMember(ctx, repo, communityID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive() {
		return nil, ErrMemberExited
	}
	return member, nil
}

func requireAdmin(ctx context.Context, repo Repository, community *Community, userID string) (*Member, error) {
	member, err := repo.GetMember(ctx, community.ID, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return nil, ErrNotAdmin
	}
	if err != nil {
		return nil, err
	}
	if !member.IsActive() || member.Role != RoleAdmin || community.AdminID != userID {
		return nil, ErrNotAdmin
	}
	return member, nil
}

func validateName(value string) (string, error) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", invalid("name is required")
	}
	if utf8.RuneCountInString(name) > nameMaxLength {
		return "", invalid(fmt.Sprintf("name must be at most %d characters", nameMaxLength))
	}
	return name, nil
}

func validateDescription(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	description := strings.TrimSpace(*value)
	if description == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(description) > descriptionMaxLength {
		return nil, invalid(fmt.Sprintf("description must be at most %d characters", descriptionMaxLength))
	}
	return &description, nil
}

func validApprovalMode(mode ApprovalMode) bool {
	switch mode {
	case ApprovalAdminOnly, ApprovalSimpleMajority, ApprovalWeighted:
		return true
	default:
		return false
	}
}

package community

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

func (s *Service) ListMembers(ctx context.Context, actorID, communityID string) ([]Member, error) {
	if _, err := s.loadCommunity(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := anyMember(ctx, s.repo, communityID, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, communityID)
}

func (s *Service) GetMember(ctx context.Context, communityID, userID string) (*Member, error) {
	return s.repo.GetMember(ctx, communityID, userID)
}

func (s *Service) GetMemberByID(ctx context.Context, memberID string) (*Member, error) {
	return s.repo.GetMemberByID(ctx, memberID)
}

func (s *Service) AddMember(ctx context.Context, actorID, communityID, userID string, role Role) (*Member, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalid("userId is required")
	}
	if role == "" {
		role = RoleMember
	}
	if role != RoleMember && role != RoleTreasurer {
		return nil, invalid("role must be member or treasurer")
	}

	var result Member
	err := s.mutate(ctx, communityID, func(tx Repository) error {
		community, err := tx.GetCommunity(ctx, communityID)
		if err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, tx, community, actorID); err != nil {
			return err
		}

		existing, err := tx.GetMember(ctx, communityID, userID)
		switch {
		case err == nil && existing.IsActive():
			return ErrAlreadyMember
		case err != nil && !errors.Is(err, ErrMemberNotFound):
			return err
		}

		member := Member{
			ID:          uuid.NewString(),
			CommunityID: communityID,
			UserID:      userID,
			Role:        role,
			Status:      MemberActive,
			JoinedAt:    s.now(),
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		community.MemberCount++
		community.UpdatedAt = s.now()
		if err := tx.UpdateCommunity(ctx, community); err != nil {
			return err
		}

		result = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{Type: EventMemberAdded, CommunityID: communityID, ActorID: actorID, EntityID: result.ID, Data: map[string]string{"user_id": userID, "role": string(role)}})
	return &result, nil
}

func (s *Service) RemoveMember(ctx context.Context, actorID, memberID string) error {
	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return err
	}
	communityID := member.CommunityID

	err = s.mutate(ctx, communityID, func(tx Repository) error {
		community, err := tx.GetCommunity(ctx, communityID)
		if err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, tx, community, actorID); err != nil {
			return err
		}

		target, err := tx.GetMemberByID(ctx, memberID)
		if err != nil {
			return err
		}
		if target.Role == RoleAdmin || target.UserID == community.AdminID {
			return ErrCannotRemoveAdmin
		}

		if err := tx.DeleteMember(ctx, memberID); err != nil {
			return err
		}

		if target.IsActive() && community.MemberCount > 0 {
			community.MemberCount--
		}
		community.UpdatedAt = s.now()
		return tx.UpdateCommunity(ctx, community)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, Event{Type: EventMemberRemoved, CommunityID: communityID, ActorID: actorID, EntityID: memberID})
	return nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, actorID, memberID string, role Role) (*Member, error) {
	if role != RoleMember && role != RoleTreasurer {
		return nil, invalid("role must be member or treasurer")
	}

	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	communityID := member.CommunityID

	var result Member
	err = s.mutate(ctx, communityID, func(tx Repository) error {
		community, err := tx.GetCommunity(ctx, communityID)
		if err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, tx, community, actorID); err != nil {
			return err
		}

		target, err := tx.GetMemberByID(ctx, memberID)
		if err != nil {
			return err
		}
		if target.Role == RoleAdmin {
			return ErrCannotRemoveAdmin
		}
		if !target.IsActive() {
			return ErrMemberExited
		}

		target.Role = role
		if err := tx.UpdateMember(ctx, target); err != nil {
			return err
		}
		result = *target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TransferAdmin hands the admin role to another active member; the previous
// admin stays on as a regular member.
func (s *Service) TransferAdmin(ctx context.Context, actorID, communityID, userID string) (*Community, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalid("userId is required")
	}
	if userID == actorID {
		return nil, invalid("cannot transfer admin rights to yourself")
	}

	var result Community
	err := s.mutate(ctx, communityID, func(tx Repository) error {
		community, err := tx.GetCommunity(ctx, communityID)
		if err != nil {
			return err
		}
		current, err := requireAdmin(ctx, tx, community, actorID)
		if err != nil {
			return err
		}

		target, err := activeMember(ctx, tx, communityID, userID)
		if err != nil {
			if errors.Is(err, ErrNotMember) {
				return ErrMemberNotFound
			}
			return err
		}

		target.Role = RoleAdmin
		if err := tx.UpdateMember(ctx, target); err != nil {
			return err
		}
		current.Role = RoleMember
		if err := tx.UpdateMember(ctx, current); err != nil {
			return err
		}

		community.AdminID = userID
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

	s.publish(ctx, Event{Type: EventAdminTransferred, CommunityID: communityID, ActorID: actorID, EntityID: userID})
	return &result, nil
}

func countActive(members []Member) int {
	count := 0
	for _, member := range members {
		if member.IsActive() {
			count++
		}
	}
	return count
}

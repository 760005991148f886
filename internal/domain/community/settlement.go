package community

import (
	"context"

	"github.com/shopspring/decimal"
)

const percentPlaces = 4

var hundred = decimal.NewFromInt(100)

// CalculateMemberShare values the community at cost basis and splits it by
// net contributed capital.
func (s *Service) CalculateMemberShare(ctx context.Context, communityID, userID string) (*Share, error) {
	return calculateShare(ctx, s.repo, communityID, userID)
}

func (s *Service) MyShare(ctx context.Context, actorID, communityID string) (*Share, error) {
	if _, err := s.loadCommunity(ctx, communityID); err != nil {
		return nil, err
	}
	member, err := anyMember(ctx, s.repo, communityID, actorID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive() {
		return nil, ErrAlreadyExited
	}
	return calculateShare(ctx, s.repo, communityID, actorID)
}

// WithdrawMember pays the caller's share out of the wallet and marks them
// exited. Positions are never liquidated, so the payout is capped by cash.
func (s *Service) WithdrawMember(ctx context.Context, actorID, communityID string) (*WithdrawalResult, error) {
	var result WithdrawalResult
	err := s.mutate(ctx, communityID, func(tx Repository) error {
		community, err := tx.GetCommunity(ctx, communityID)
		if err != nil {
			return err
		}
		member, err := anyMember(ctx, tx, communityID, actorID)
		if err != nil {
			return err
		}
		if !member.IsActive() {
			return ErrAlreadyExited
		}

		if member.Role == RoleAdmin || community.AdminID == actorID {
			members, err := tx.ListMembers(ctx, communityID)
			if err != nil {
				return err
			}
			if countActive(members) > 1 {
				return ErrAdminMustTransfer
			}
		}

		share, err := calculateShare(ctx, tx, communityID, actorID)
		if err != nil {
			return err
		}

		wallet, err := tx.GetWallet(ctx, communityID)
		if err != nil {
			return err
		}
		paid := decimal.Min(share.WithdrawalAmount, wallet.Balance)
		adjustBalance(wallet, share.WithdrawalAmount.Neg(), s.now())
		if err := tx.UpdateWallet(ctx, wallet); err != nil {
			return err
		}

		now := s.now()
		member.Status = MemberExited
		member.ExitedAt = &now
		if err := tx.UpdateMember(ctx, member); err != nil {
			return err
		}

		if community.MemberCount > 0 {
			community.MemberCount--
		}
		community.UpdatedAt = now
		if err := tx.UpdateCommunity(ctx, community); err != nil {
			return err
		}

		result = WithdrawalResult{Success: true, WithdrawalAmount: share.WithdrawalAmount}
		if paid.LessThan(share.WithdrawalAmount) {
			s.log.Warn("community: withdrawal exceeds wallet cash",
				"community_id", communityID, "user_id", actorID,
				"share", share.WithdrawalAmount.String(), "cash", paid.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{
		Type:        EventMemberWithdrawn,
		CommunityID: communityID,
		ActorID:     actorID,
		EntityID:    actorID,
		Data:        map[string]string{"withdrawal_amount": result.WithdrawalAmount.String()},
	})
	return &result, nil
}

func calculateShare(ctx context.Context, repo Repository, communityID, userID string) (*Share, error) {
	wallet, err := repo.GetWallet(ctx, communityID)
	if err != nil {
		return nil, err
	}
	positions, err := repo.ListPositions(ctx, communityID)
	if err != nil {
		return nil, err
	}
	members, err := repo.ListMembers(ctx, communityID)
	if err != nil {
		return nil, err
	}
	contributions, err := repo.ListContributions(ctx, communityID, ContributionFilter{})
	if err != nil {
		return nil, err
	}

	totalValue := wallet.Balance
	for _, position := range positions {
		totalValue = totalValue.Add(position.TotalInvested)
	}

	net := netContributions(contributions)
	share := shareOf(net[userID], poolTotal(members, net), totalValue)
	return &share, nil
}

// poolTotal sums net contributions once per user that ever held a membership.
// Members who took out more than they put in count as zero.
func poolTotal(members []Member, net map[string]decimal.Decimal) decimal.Decimal {
	seen := make(map[string]struct{}, len(members))
	total := decimal.Zero
	for _, member := range members {
		if _, ok := seen[member.UserID]; ok {
			continue
		}
		seen[member.UserID] = struct{}{}
		total = total.Add(clampZero(net[member.UserID]))
	}
	return total
}

func shareOf(contributed, pool, totalValue decimal.Decimal) Share {
	share := Share{
		TotalContributed:    contributed,
		SharePercentage:     decimal.Zero,
		WithdrawalAmount:    decimal.Zero,
		CommunityTotalValue: totalValue,
	}
	if !contributed.IsPositive() || !pool.IsPositive() {
		return share
	}
	share.SharePercentage = contributed.Mul(hundred).DivRound(pool, percentPlaces)
	share.WithdrawalAmount = contributed.Mul(totalValue).DivRound(pool, moneyPlaces)
	return share
}

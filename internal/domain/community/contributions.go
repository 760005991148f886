package community

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordContribution appends a ledger row and moves the wallet by the same
// amount.
func (s *Service) RecordContribution(ctx context.Context, actorID, communityID string, amount decimal.Decimal, kind ContributionType) (*Contribution, error) {
	if kind != ContributionDeposit && kind != ContributionWithdrawal {
		return nil, invalid("type must be deposit or withdrawal")
	}
	if !amount.IsPositive() {
		return nil, invalid("amount must be greater than 0")
	}
	if !amount.Equal(amount.Truncate(moneyPlaces)) {
		return nil, invalid("amount supports at most 2 decimal places")
	}

	var result Contribution
	err := s.mutate(ctx, communityID, func(tx Repository) error {
		if _, err := tx.GetCommunity(ctx, communityID); err != nil {
			return err
		}
		if _, err := activeMember(ctx, tx, communityID, actorID); err != nil {
			return err
		}

		contribution := Contribution{
			ID:          uuid.NewString(),
			CommunityID: communityID,
			UserID:      actorID,
			Amount:      amount,
			Type:        kind,
			CreatedAt:   s.now(),
		}
		if err := tx.CreateContribution(ctx, &contribution); err != nil {
			return err
		}

		delta := amount
		if kind == ContributionWithdrawal {
			delta = amount.Neg()
		}
		if _, err := s.adjustWallet(ctx, tx, communityID, delta); err != nil {
			return err
		}

		result = contribution
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{
		Type:        EventContribution,
		CommunityID: communityID,
		ActorID:     actorID,
		EntityID:    result.ID,
		Data:        map[string]string{"type": string(kind), "amount": amount.String()},
	})
	return &result, nil
}

func (s *Service) ListContributions(ctx context.Context, actorID, communityID string) ([]Contribution, error) {
	if _, err := s.loadCommunity(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := anyMember(ctx, s.repo, communityID, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListContributions(ctx, communityID, ContributionFilter{})
}

func (s *Service) ListMyContributions(ctx context.Context, actorID, communityID string) ([]Contribution, error) {
	if _, err := s.loadCommunity(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := anyMember(ctx, s.repo, communityID, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListContributions(ctx, communityID, ContributionFilter{UserID: actorID})
}

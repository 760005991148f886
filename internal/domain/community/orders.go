package community

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const systemActor = "system"

func (s *Service) CreateOrder(ctx context.Context, actorID, communityID string, input CreateOrderInput) (*Order, error) {
	carat, err := validateOrderInput(&input, s.now())
	if err != nil {
		return nil, err
	}

	var result Order
	err = s.mutate(ctx, communityID, func(tx Repository) error {
		if _, err := tx.GetCommunity(ctx, communityID); err != nil {
			return err
		}
		if _, err := activeMember(ctx, tx, communityID, actorID); err != nil {
			return err
		}

		order := Order{
			ID:           uuid.NewString(),
			CommunityID:  communityID,
			ProposedBy:   actorID,
			OrderType:    input.OrderType,
			MetalType:    input.MetalType,
			Carat:        carat,
			Quantity:     input.Quantity,
			PricePerUnit: input.PricePerUnit,
			TotalAmount:  input.Quantity.Mul(input.PricePerUnit),
			Status:       StatusProposed,
			Deadline:     input.Deadline,
			CreatedAt:    s.now(),
		}
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{Type: EventOrderProposed, CommunityID: communityID, ActorID: actorID, EntityID: result.ID})
	return &result, nil
}

func (s *Service) ListOrders(ctx context.Context, actorID, communityID string) ([]Order, error) {
	if _, err := s.loadCommunity(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := anyMember(ctx, s.repo, communityID, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListOrders(ctx, communityID)
}

func (s *Service) GetOrder(ctx context.Context, actorID, orderID string) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := anyMember(ctx, s.repo, order.CommunityID, actorID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) ListVotes(ctx context.Context, actorID, orderID string) ([]Vote, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := anyMember(ctx, s.repo, order.CommunityID, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListVotes(ctx, orderID)
}

// CastVote records one vote per member. The first vote opens voting on a
// proposed order.
func (s *Service) CastVote(ctx context.Context, actorID, orderID string, choice VoteChoice) (*VoteResult, error) {
	if choice != VoteFor && choice != VoteAgainst {
		return nil, invalid("vote must be for or against")
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	communityID := order.CommunityID

	var result VoteResult
	err = s.mutate(ctx, communityID, func(tx Repository) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if _, err := activeMember(ctx, tx, communityID, actorID); err != nil {
			return err
		}

		_, err = tx.GetVote(ctx, orderID, actorID)
		switch {
		case err == nil:
			return ErrAlreadyVoted
		case !errors.Is(err, ErrVoteNotFound):
			return err
		}

		if !order.IsOpen() {
			return ErrVotingClosed
		}

		vote := Vote{
			ID:      uuid.NewString(),
			OrderID: orderID,
			UserID:  actorID,
			Vote:    choice,
			VotedAt: s.now(),
		}
		if err := tx.CreateVote(ctx, &vote); err != nil {
			return err
		}

		if choice == VoteFor {
			order.VotesFor++
		} else {
			order.VotesAgainst++
		}
		if order.Status == StatusProposed {
			order.Status = StatusVoting
		}
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}

		result = VoteResult{Vote: vote, Order: *order}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{Type: EventVoteCast, CommunityID: communityID, ActorID: actorID, EntityID: orderID, Data: map[string]string{"vote": string(choice)}})
	return &result, nil
}

// UpdateOrderStatus is the admin's manual transition. Approval is gated by the
// community's approval mode and executed is only reachable via ExecuteOrder.
func (s *Service) UpdateOrderStatus(ctx context.Context, actorID, orderID string, status OrderStatus) (*Order, error) {
	if !validOrderStatus(status) {
		return nil, invalid("status must be one of proposed, voting, approved, rejected, executed")
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	communityID := order.CommunityID

	var result Order
	err = s.mutate(ctx, communityID, func(tx Repository) error {
		community, err := tx.GetCommunity(ctx, communityID)
		if err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, tx, community, actorID); err != nil {
			return err
		}

		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !canTransition(order.Status, status) {
			return ErrInvalidTransition
		}
		if status == StatusApproved {
			if err := checkApproval(ctx, tx, community, order); err != nil {
				return err
			}
		}

		order.Status = status
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		result = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{Type: EventOrderStatusChanged, CommunityID: communityID, ActorID: actorID, EntityID: orderID, Data: map[string]string{"status": string(status)}})
	return &result, nil
}

// ExecuteOrder settles an approved order against the shared position and
// wallet. Either every change is applied or none is.
func (s *Service) ExecuteOrder(ctx context.Context, actorID, orderID string) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	communityID := order.CommunityID

	var result Order
	err = s.mutate(ctx, communityID, func(tx Repository) error {
		if _, err := tx.GetCommunity(ctx, communityID); err != nil {
			return err
		}
		member, err := tx.GetMember(ctx, communityID, actorID)
		if err != nil && !errors.Is(err, ErrMemberNotFound) {
			return err
		}
		if member == nil || !member.CanExecute() {
			return ErrNotExecutor
		}

		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != StatusApproved {
			return ErrOrderNotApproved
		}

		now := s.now()
		switch order.OrderType {
		case OrderBuy:
			if err := s.executeBuy(ctx, tx, order, now); err != nil {
				return err
			}
		case OrderSell:
			if err := s.executeSell(ctx, tx, order, now); err != nil {
				return err
			}
		default:
			return invalid("unknown order type")
		}

		order.Status = StatusExecuted
		order.ExecutedAt = &now
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		result = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{
		Type:        EventOrderExecuted,
		CommunityID: communityID,
		ActorID:     actorID,
		EntityID:    orderID,
		Data: map[string]string{
			"order_type":   string(result.OrderType),
			"total_amount": result.TotalAmount.String(),
		},
	})
	return &result, nil
}

func (s *Service) executeBuy(ctx context.Context, tx Repository, order *Order, now time.Time) error {
	position, err := tx.GetPosition(ctx, order.CommunityID, order.MetalType, order.Carat)
	switch {
	case errors.Is(err, ErrPositionNotFound):
		created := newPosition(uuid.NewString(), order.CommunityID, order.MetalType, order.Carat, order.Quantity, order.PricePerUnit, now)
		if err := tx.CreatePosition(ctx, &created); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		applyBuy(position, order.Quantity, order.PricePerUnit, now)
		if err := tx.UpdatePosition(ctx, position); err != nil {
			return err
		}
	}

	_, err = s.adjustWallet(ctx, tx, order.CommunityID, order.TotalAmount.Neg())
	return err
}

func (s *Service) executeSell(ctx context.Context, tx Repository, order *Order, now time.Time) error {
	position, err := tx.GetPosition(ctx, order.CommunityID, order.MetalType, order.Carat)
	if errors.Is(err, ErrPositionNotFound) {
		return ErrInsufficientHoldings
	}
	if err != nil {
		return err
	}
	if position.Quantity.LessThan(order.Quantity) {
		return ErrInsufficientHoldings
	}

	applySell(position, order.Quantity, now)
	if err := tx.UpdatePosition(ctx, position); err != nil {
		return err
	}

	_, err = s.adjustWallet(ctx, tx, order.CommunityID, order.TotalAmount)
	return err
}

// ExpireOrders rejects open orders whose deadline has passed and reports how
// many were closed.
func (s *Service) ExpireOrders(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.repo.ListExpiredOrders(ctx, now)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, candidate := range expired {
		orderID := candidate.ID
		changed := false
		err := s.mutate(ctx, candidate.CommunityID, func(tx Repository) error {
			order, err := tx.GetOrder(ctx, orderID)
			if err != nil {
				return err
			}
			if !order.IsOpen() || order.Deadline == nil || !order.Deadline.Before(now) {
				return nil
			}
			order.Status = StatusRejected
			changed = true
			return tx.UpdateOrder(ctx, order)
		})
		if err != nil {
			return closed, err
		}
		if !changed {
			continue
		}
		closed++
		s.publish(ctx, Event{Type: EventOrderStatusChanged, CommunityID: candidate.CommunityID, ActorID: systemActor, EntityID: orderID, Data: map[string]string{"status": string(StatusRejected), "reason": "deadline"}})
	}
	return closed, nil
}

func validateOrderInput(input *CreateOrderInput, now time.Time) (*string, error) {
	if input.OrderType != OrderBuy && input.OrderType != OrderSell {
		return nil, invalid("orderType must be buy or sell")
	}
	if input.MetalType != MetalGold && input.MetalType != MetalSilver {
		return nil, invalid("metalType must be gold or silver")
	}

	var carat *string
	if input.Carat != nil {
		value := strings.ToUpper(strings.TrimSpace(*input.Carat))
		if value != "" {
			carat = &value
		}
	}
	if input.MetalType == MetalGold {
		if carat == nil {
			return nil, invalid("Carat is required for gold orders")
		}
		if *carat != Carat22K && *carat != Carat24K {
			return nil, invalid("carat must be 22K or 24K")
		}
	} else if carat != nil {
		return nil, invalid("carat is only allowed for gold orders")
	}

	if !input.Quantity.IsPositive() {
		return nil, invalid("quantity must be greater than 0")
	}
	if !input.Quantity.Equal(input.Quantity.Truncate(quantityPlaces)) {
		return nil, invalid("quantity supports at most 3 decimal places")
	}
	if !input.PricePerUnit.IsPositive() {
		return nil, invalid("pricePerUnit must be greater than 0")
	}
	if !input.PricePerUnit.Equal(input.PricePerUnit.Truncate(moneyPlaces)) {
		return nil, invalid("pricePerUnit supports at most 2 decimal places")
	}
	if input.Deadline != nil && !input.Deadline.After(now) {
		return nil, invalid("deadline must be in the future")
	}
	return carat, nil
}

package community

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const quantityPlaces = 3

func (s *Service) ListPositions(ctx context.Context, actorID, communityID string) ([]Position, error) {
	if _, err := s.loadCommunity(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := anyMember(ctx, s.repo, communityID, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListPositions(ctx, communityID)
}

func newPosition(id, communityID string, metal MetalType, carat *string, quantity, price decimal.Decimal, now time.Time) Position {
	return Position{
		ID:              id,
		CommunityID:     communityID,
		Type:            metal,
		Carat:           cloneString(carat),
		Quantity:        quantity,
		AvgPricePerUnit: price,
		TotalInvested:   quantity.Mul(price).Round(moneyPlaces),
		UpdatedAt:       now,
	}
}

// applyBuy blends the purchase into the weighted-average cost.
func applyBuy(position *Position, quantity, price decimal.Decimal, now time.Time) {
	position.Quantity = position.Quantity.Add(quantity)
	position.TotalInvested = position.TotalInvested.Add(quantity.Mul(price)).Round(moneyPlaces)
	if position.Quantity.IsPositive() {
		position.AvgPricePerUnit = position.TotalInvested.DivRound(position.Quantity, moneyPlaces)
	}
	position.UpdatedAt = now
}

// applySell removes cost in proportion to the quantity sold. The average
// price of the remainder does not change.
func applySell(position *Position, quantity decimal.Decimal, now time.Time) {
	invested := decimal.Zero
	if position.Quantity.IsPositive() {
		remaining := decimal.NewFromInt(1).Sub(quantity.Div(position.Quantity))
		invested = position.TotalInvested.Mul(remaining).Round(moneyPlaces)
	}

	position.Quantity = clampZero(position.Quantity.Sub(quantity))
	position.TotalInvested = clampZero(invested)
	position.UpdatedAt = now
}

func clampZero(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

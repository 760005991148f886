package community

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

func (s *Service) GetWallet(ctx context.Context, actorID, communityID string) (*Wallet, error) {
	if _, err := s.loadCommunity(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := anyMember(ctx, s.repo, communityID, actorID); err != nil {
		return nil, err
	}
	return s.repo.GetWallet(ctx, communityID)
}

// adjustWallet applies delta to the community wallet inside tx.
func (s *Service) adjustWallet(ctx context.Context, tx Repository, communityID string, delta decimal.Decimal) (*Wallet, error) {
	wallet, err := tx.GetWallet(ctx, communityID)
	if err != nil {
		return nil, err
	}
	adjustBalance(wallet, delta, s.now())
	if err := tx.UpdateWallet(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// adjustBalance never lets the balance drop below zero.
func adjustBalance(wallet *Wallet, delta decimal.Decimal, now time.Time) {
	next := wallet.Balance.Add(delta.Round(moneyPlaces))
	if next.IsNegative() {
		next = decimal.Zero
	}
	wallet.Balance = next
	wallet.UpdatedAt = now
}

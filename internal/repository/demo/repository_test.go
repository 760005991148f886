package demo

import (
	"context"
	"errors"
	"testing"

	communitydomain "coinvest-go/internal/domain/community"
	"coinvest-go/internal/repository/inmemory"
	"github.com/shopspring/decimal"
)

func newDemoService(t *testing.T) (*communitydomain.Service, *Repository) {
	t.Helper()
	repo, err := New(inmemory.NewCommunityRepository())
	if err != nil {
		t.Fatalf("new demo repository: %v", err)
	}
	return communitydomain.NewService(repo), repo
}

func TestFixturesDecode(t *testing.T) {
	f, err := loadFixtures()
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	if len(f.Communities) == 0 || len(f.Members) == 0 || len(f.Orders) == 0 {
		t.Fatalf("expected populated fixtures, got %d communities %d members %d orders",
			len(f.Communities), len(f.Members), len(f.Orders))
	}
	for _, community := range f.Communities {
		if !IsDemoCommunity(community.ID) {
			t.Fatalf("fixture community %q lacks demo prefix", community.ID)
		}
	}
	for _, position := range f.Positions {
		if !position.Quantity.IsPositive() {
			t.Fatalf("fixture position %s has quantity %s", position.ID, position.Quantity)
		}
	}
}

func TestListCommunitiesFallsBackToFixtures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDemoService(t)

	communities, err := svc.ListCommunities(ctx, "new-user")
	if err != nil {
		t.Fatalf("list communities: %v", err)
	}
	if len(communities) != 2 {
		t.Fatalf("expected 2 demo communities, got %d", len(communities))
	}

	created, err := svc.CreateCommunity(ctx, "new-user", communitydomain.CreateCommunityInput{Name: "Real"})
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	communities, err = svc.ListCommunities(ctx, "new-user")
	if err != nil {
		t.Fatalf("list communities: %v", err)
	}
	if len(communities) != 1 || communities[0].ID != created.ID {
		t.Fatalf("expected only the real community, got %+v", communities)
	}
}

func TestDemoReadsForAnyViewer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDemoService(t)

	community, err := svc.GetCommunity(ctx, "stranger", "demo-comm-1")
	if err != nil {
		t.Fatalf("get community: %v", err)
	}
	if community.Name != "Family Gold Savings" {
		t.Fatalf("unexpected name %q", community.Name)
	}

	wallet, err := svc.GetWallet(ctx, "stranger", "demo-comm-1")
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("expected balance 45000, got %s", wallet.Balance)
	}

	orders, err := svc.ListOrders(ctx, "stranger", "demo-comm-1")
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) == 0 {
		t.Fatalf("expected demo orders")
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].CreatedAt.After(orders[i-1].CreatedAt) {
			t.Fatalf("orders not newest first")
		}
	}

	votes, err := svc.ListVotes(ctx, "stranger", "demo-order-1")
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	order, err := svc.GetOrder(ctx, "stranger", "demo-order-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(votes) != order.VotesFor+order.VotesAgainst {
		t.Fatalf("expected %d vote rows, got %d", order.VotesFor+order.VotesAgainst, len(votes))
	}

	share, err := svc.MyShare(ctx, "demo-user-1", "demo-comm-1")
	if err != nil {
		t.Fatalf("my share: %v", err)
	}
	if !share.TotalContributed.IsPositive() {
		t.Fatalf("expected a positive contribution for demo-user-1, got %s", share.TotalContributed)
	}

	if _, err := svc.GetCommunity(ctx, "stranger", "demo-comm-404"); !errors.Is(err, communitydomain.ErrCommunityNotFound) {
		t.Fatalf("expected ErrCommunityNotFound, got %v", err)
	}
}

func TestDemoWritesAreRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDemoService(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{"deposit", func() error {
			_, err := svc.RecordContribution(ctx, "demo-user-1", "demo-comm-1", decimal.NewFromInt(10), communitydomain.ContributionDeposit)
			return err
		}},
		{"propose", func() error {
			_, err := svc.CreateOrder(ctx, "demo-user-1", "demo-comm-1", communitydomain.CreateOrderInput{
				OrderType:    communitydomain.OrderBuy,
				MetalType:    communitydomain.MetalSilver,
				Quantity:     decimal.NewFromInt(1),
				PricePerUnit: decimal.NewFromInt(80),
			})
			return err
		}},
		{"vote", func() error {
			_, err := svc.CastVote(ctx, "stranger", "demo-order-1", communitydomain.VoteFor)
			return err
		}},
		{"execute", func() error {
			_, err := svc.ExecuteOrder(ctx, "demo-user-1", "demo-order-1")
			return err
		}},
		{"add member", func() error {
			_, err := svc.AddMember(ctx, "demo-user-1", "demo-comm-1", "someone", communitydomain.RoleMember)
			return err
		}},
		{"withdraw", func() error {
			_, err := svc.WithdrawMember(ctx, "demo-user-2", "demo-comm-1")
			return err
		}},
		{"delete", func() error {
			return svc.DeleteCommunity(ctx, "demo-user-1", "demo-comm-1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, communitydomain.ErrDemoReadOnly) {
				t.Fatalf("expected ErrDemoReadOnly, got %v", err)
			}
		})
	}
}

func TestRealCommunitiesPassThrough(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDemoService(t)

	created, err := svc.CreateCommunity(ctx, "owner", communitydomain.CreateCommunityInput{Name: "Silver club"})
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	if _, err := svc.RecordContribution(ctx, "owner", created.ID, decimal.NewFromInt(500), communitydomain.ContributionDeposit); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	wallet, err := svc.GetWallet(ctx, "owner", created.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected 500, got %s", wallet.Balance)
	}
	if _, err := svc.GetCommunity(ctx, "stranger", created.ID); !errors.Is(err, communitydomain.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

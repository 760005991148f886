package community

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{StatusProposed, StatusVoting, true},
		{StatusProposed, StatusApproved, true},
		{StatusProposed, StatusRejected, true},
		{StatusVoting, StatusApproved, true},
		{StatusVoting, StatusRejected, true},
		{StatusVoting, StatusProposed, false},
		{StatusApproved, StatusRejected, true},
		{StatusApproved, StatusExecuted, false},
		{StatusRejected, StatusVoting, false},
		{StatusExecuted, StatusRejected, false},
	}

	for _, tt := range tests {
		if got := canTransition(tt.from, tt.to); got != tt.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestSimpleMajority(t *testing.T) {
	tests := []struct {
		name    string
		for_    int
		against int
		active  int
		want    bool
	}{
		{name: "no votes", active: 2, want: false},
		{name: "tie", for_: 1, against: 1, active: 2, want: false},
		{name: "quorum met", for_: 2, against: 0, active: 4, want: true},
		{name: "below quorum", for_: 1, against: 0, active: 3, want: false},
		{name: "split with quorum", for_: 2, against: 1, active: 5, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := simpleMajority(tt.for_, tt.against, tt.active); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestActiveTallySkipsExitedVoters(t *testing.T) {
	members := []Member{
		{UserID: "a", Status: MemberActive},
		{UserID: "b", Status: MemberExited},
		{UserID: "c", Status: MemberActive},
	}
	votes := []Vote{
		{UserID: "a", Vote: VoteAgainst},
		{UserID: "b", Vote: VoteFor},
		{UserID: "c", Vote: VoteFor},
		{UserID: "stranger", Vote: VoteFor},
	}

	votesFor, votesAgainst := activeTally(members, votes)
	if votesFor != 1 || votesAgainst != 1 {
		t.Fatalf("expected 1 for and 1 against, got %d and %d", votesFor, votesAgainst)
	}
}

func TestWeightedMajority(t *testing.T) {
	members := []Member{
		{UserID: "a", Status: MemberActive},
		{UserID: "b", Status: MemberActive},
		{UserID: "c", Status: MemberActive},
		{UserID: "gone", Status: MemberExited},
	}
	contributions := []Contribution{
		{UserID: "a", Type: ContributionDeposit, Amount: decimal.NewFromInt(900)},
		{UserID: "b", Type: ContributionDeposit, Amount: decimal.NewFromInt(150)},
		{UserID: "b", Type: ContributionWithdrawal, Amount: decimal.NewFromInt(50)},
		{UserID: "gone", Type: ContributionDeposit, Amount: decimal.NewFromInt(5000)},
	}

	passed, ok := weightedMajority(members, contributions, []Vote{
		{UserID: "b", Vote: VoteFor},
		{UserID: "c", Vote: VoteFor},
		{UserID: "a", Vote: VoteAgainst},
	})
	if !ok || passed {
		t.Fatalf("expected heavy vote against to win, got passed=%v ok=%v", passed, ok)
	}

	passed, ok = weightedMajority(members, contributions, []Vote{
		{UserID: "a", Vote: VoteFor},
		{UserID: "gone", Vote: VoteAgainst},
	})
	if !ok || !passed {
		t.Fatalf("expected majority weight to pass, got passed=%v ok=%v", passed, ok)
	}

	passed, ok = weightedMajority(members, contributions, []Vote{{UserID: "b", Vote: VoteFor}})
	if !ok || passed {
		t.Fatalf("expected quorum by weight to fail, got passed=%v ok=%v", passed, ok)
	}

	_, ok = weightedMajority(members, nil, []Vote{{UserID: "a", Vote: VoteFor}})
	if ok {
		t.Fatalf("expected fallback when no member carries weight")
	}
}

func TestShareOf(t *testing.T) {
	share := shareOf(decimal.NewFromInt(1), decimal.NewFromInt(3), decimal.NewFromInt(100))
	if !share.SharePercentage.Equal(decimal.RequireFromString("33.3333")) {
		t.Fatalf("expected 33.3333%%, got %s", share.SharePercentage)
	}
	if !share.WithdrawalAmount.Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("expected 33.33, got %s", share.WithdrawalAmount)
	}

	empty := shareOf(decimal.NewFromInt(-5), decimal.NewFromInt(10), decimal.NewFromInt(100))
	if !empty.WithdrawalAmount.IsZero() || !empty.SharePercentage.IsZero() {
		t.Fatalf("expected zero share for non-positive contribution, got %+v", empty)
	}
}

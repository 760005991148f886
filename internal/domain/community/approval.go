package community

import (
	"context"

	"github.com/shopspring/decimal"
)

var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusProposed: {StatusVoting, StatusApproved, StatusRejected},
	StatusVoting:   {StatusApproved, StatusRejected},
	StatusApproved: {StatusRejected},
}

func canTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validOrderStatus(status OrderStatus) bool {
	switch status {
	case StatusProposed, StatusVoting, StatusApproved, StatusRejected, StatusExecuted:
		return true
	default:
		return false
	}
}

// checkApproval enforces the community's approval mode before an order may
// move to approved.
func checkApproval(ctx context.Context, tx Repository, community *Community, order *Order) error {
	if community.ApprovalMode == ApprovalAdminOnly {
		return nil
	}
	if order.Status != StatusVoting {
		return ErrApprovalThresholdNotMet
	}

	members, err := tx.ListMembers(ctx, community.ID)
	if err != nil {
		return err
	}
	votes, err := tx.ListVotes(ctx, order.ID)
	if err != nil {
		return err
	}

	if community.ApprovalMode == ApprovalWeighted {
		contributions, err := tx.ListContributions(ctx, community.ID, ContributionFilter{})
		if err != nil {
			return err
		}
		passed, ok := weightedMajority(members, contributions, votes)
		if ok {
			if !passed {
				return ErrApprovalThresholdNotMet
			}
			return nil
		}
	}

	votesFor, votesAgainst := activeTally(members, votes)
	if !simpleMajority(votesFor, votesAgainst, countActive(members)) {
		return ErrApprovalThresholdNotMet
	}
	return nil
}

// activeTally counts votes cast by members who are still active. The order's
// stored counters keep votes of members who exited since.
func activeTally(members []Member, votes []Vote) (votesFor, votesAgainst int) {
	active := make(map[string]struct{}, len(members))
	for _, member := range members {
		if member.IsActive() {
			active[member.UserID] = struct{}{}
		}
	}
	for _, vote := range votes {
		if _, ok := active[vote.UserID]; !ok {
			continue
		}
		if vote.Vote == VoteFor {
			votesFor++
		} else {
			votesAgainst++
		}
	}
	return votesFor, votesAgainst
}

// simpleMajority requires more votes for than against, cast by at least half
// of the active members.
func simpleMajority(votesFor, votesAgainst, activeMembers int) bool {
	if votesFor <= votesAgainst {
		return false
	}
	return 2*(votesFor+votesAgainst) >= activeMembers
}

// weightedMajority weighs each active voter by their net contribution. ok is
// false when no active member carries any weight.
func weightedMajority(members []Member, contributions []Contribution, votes []Vote) (passed bool, ok bool) {
	net := netContributions(contributions)

	weights := make(map[string]decimal.Decimal, len(members))
	total := decimal.Zero
	for _, member := range members {
		if !member.IsActive() {
			continue
		}
		weight := clampZero(net[member.UserID])
		weights[member.UserID] = weight
		total = total.Add(weight)
	}
	if !total.IsPositive() {
		return false, false
	}

	weightFor := decimal.Zero
	weightAgainst := decimal.Zero
	for _, vote := range votes {
		weight, active := weights[vote.UserID]
		if !active {
			continue
		}
		if vote.Vote == VoteFor {
			weightFor = weightFor.Add(weight)
		} else {
			weightAgainst = weightAgainst.Add(weight)
		}
	}

	if !weightFor.GreaterThan(weightAgainst) {
		return false, true
	}
	participating := weightFor.Add(weightAgainst).Mul(decimal.NewFromInt(2))
	return participating.GreaterThanOrEqual(total), true
}

func netContributions(contributions []Contribution) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal)
	for _, contribution := range contributions {
		switch contribution.Type {
		case ContributionDeposit:
			net[contribution.UserID] = net[contribution.UserID].Add(contribution.Amount)
		case ContributionWithdrawal:
			net[contribution.UserID] = net[contribution.UserID].Sub(contribution.Amount)
		}
	}
	return net
}

package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	communitydomain "coinvest-go/internal/domain/community"
)

// CommunityRepository keeps every community entity in process memory. A
// transaction works on a clone of the whole state which replaces the live
// state only when fn succeeds.
type CommunityRepository struct {
	store *communityStore
	tx    *communityState
}

type communityStore struct {
	mu    sync.RWMutex
	state *communityState
}

type communityState struct {
	communities   table[communitydomain.Community]
	members       table[communitydomain.Member]
	wallets       table[communitydomain.Wallet]
	positions     table[communitydomain.Position]
	orders        table[communitydomain.Order]
	votes         table[communitydomain.Vote]
	contributions table[communitydomain.Contribution]
}

// table is an id index over rows kept in insertion order.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() table[T] {
	return table[T]{rows: make(map[string]T)}
}

func (t table[T]) clone() table[T] {
	rows := make(map[string]T, len(t.rows))
	for id, row := range t.rows {
		rows[id] = row
	}
	order := make([]string, len(t.order))
	copy(order, t.order)
	return table[T]{rows: rows, order: order}
}

func (t *table[T]) insert(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) remove(id string) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t table[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, id := range t.order {
		row := t.rows[id]
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func newCommunityState() *communityState {
	return &communityState{
		communities:   newTable[communitydomain.Community](),
		members:       newTable[communitydomain.Member](),
		wallets:       newTable[communitydomain.Wallet](),
		positions:     newTable[communitydomain.Position](),
		orders:        newTable[communitydomain.Order](),
		votes:         newTable[communitydomain.Vote](),
		contributions: newTable[communitydomain.Contribution](),
	}
}

func (s *communityState) clone() *communityState {
	return &communityState{
		communities:   s.communities.clone(),
		members:       s.members.clone(),
		wallets:       s.wallets.clone(),
		positions:     s.positions.clone(),
		orders:        s.orders.clone(),
		votes:         s.votes.clone(),
		contributions: s.contributions.clone(),
	}
}

func NewCommunityRepository() *CommunityRepository {
	return &CommunityRepository{store: &communityStore{state: newCommunityState()}}
}

func (r *CommunityRepository) Transaction(ctx context.Context, fn func(communitydomain.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	working := r.store.state.clone()
	if err := fn(&CommunityRepository{store: r.store, tx: working}); err != nil {
		return err
	}
	r.store.state = working
	return nil
}

// LockCommunity is a no-op: a transaction already holds the store exclusively.
func (r *CommunityRepository) LockCommunity(ctx context.Context, communityID string) error {
	return nil
}

func (r *CommunityRepository) read(fn func(*communityState) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return fn(r.store.state)
}

func (r *CommunityRepository) write(fn func(*communityState) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.state)
}

func (r *CommunityRepository) CreateCommunity(ctx context.Context, community *communitydomain.Community) error {
	return r.write(func(s *communityState) error {
		s.communities.insert(community.ID, *community)
		return nil
	})
}

func (r *CommunityRepository) GetCommunity(ctx context.Context, communityID string) (*communitydomain.Community, error) {
	var out communitydomain.Community
	err := r.read(func(s *communityState) error {
		community, ok := s.communities.rows[communityID]
		if !ok {
			return communitydomain.ErrCommunityNotFound
		}
		out = community
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CommunityRepository) ListCommunitiesByUser(ctx context.Context, userID string) ([]communitydomain.Community, error) {
	var out []communitydomain.Community
	err := r.read(func(s *communityState) error {
		joined := make(map[string]struct{})
		for _, member := range s.members.rows {
			if member.UserID == userID {
				joined[member.CommunityID] = struct{}{}
			}
		}
		out = s.communities.filter(func(c communitydomain.Community) bool {
			_, ok := joined[c.ID]
			return ok
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(out, func(c communitydomain.Community) time.Time { return c.CreatedAt })
	return out, nil
}

func (r *CommunityRepository) UpdateCommunity(ctx context.Context, community *communitydomain.Community) error {
	return r.write(func(s *communityState) error {
		if _, ok := s.communities.rows[community.ID]; !ok {
			return communitydomain.ErrCommunityNotFound
		}
		s.communities.insert(community.ID, *community)
		return nil
	})
}

func (r *CommunityRepository) DeleteCommunity(ctx context.Context, communityID string) error {
	return r.write(func(s *communityState) error {
		if _, ok := s.communities.rows[communityID]; !ok {
			return communitydomain.ErrCommunityNotFound
		}

		for _, order := range s.orders.filter(func(o communitydomain.Order) bool { return o.CommunityID == communityID }) {
			for _, vote := range s.votes.filter(func(v communitydomain.Vote) bool { return v.OrderID == order.ID }) {
				s.votes.remove(vote.ID)
			}
			s.orders.remove(order.ID)
		}
		for _, member := range s.members.filter(func(m communitydomain.Member) bool { return m.CommunityID == communityID }) {
			s.members.remove(member.ID)
		}
		for _, wallet := range s.wallets.filter(func(w communitydomain.Wallet) bool { return w.CommunityID == communityID }) {
			s.wallets.remove(wallet.ID)
		}
		for _, position := range s.positions.filter(func(p communitydomain.Position) bool { return p.CommunityID == communityID }) {
			s.positions.remove(position.ID)
		}
		for _, contribution := range s.contributions.filter(func(c communitydomain.Contribution) bool { return c.CommunityID == communityID }) {
			s.contributions.remove(contribution.ID)
		}
		s.communities.remove(communityID)
		return nil
	})
}

func (r *CommunityRepository) AddMember(ctx context.Context, member *communitydomain.Member) error {
	return r.write(func(s *communityState) error {
		s.members.insert(member.ID, *member)
		return nil
	})
}

// GetMember prefers the active membership and otherwise returns the latest
// exited one.
func (r *CommunityRepository) GetMember(ctx context.Context, communityID, userID string) (*communitydomain.Member, error) {
	var out *communitydomain.Member
	err := r.read(func(s *communityState) error {
		rows := s.members.filter(func(m communitydomain.Member) bool {
			return m.CommunityID == communityID && m.UserID == userID
		})
		for i := len(rows) - 1; i >= 0; i-- {
			row := rows[i]
			if row.IsActive() {
				out = &row
				return nil
			}
			if out == nil {
				out = &row
			}
		}
		if out == nil {
			return communitydomain.ErrMemberNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CommunityRepository) GetMemberByID(ctx context.Context, memberID string) (*communitydomain.Member, error) {
	var out communitydomain.Member
	err := r.read(func(s *communityState) error {
		member, ok := s.members.rows[memberID]
		if !ok {
			return communitydomain.ErrMemberNotFound
		}
		out = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CommunityRepository) ListMembers(ctx context.Context, communityID string) ([]communitydomain.Member, error) {
	var out []communitydomain.Member
	err := r.read(func(s *communityState) error {
		out = s.members.filter(func(m communitydomain.Member) bool { return m.CommunityID == communityID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *CommunityRepository) UpdateMember(ctx context.Context, member *communitydomain.Member) error {
	return r.write(func(s *communityState) error {
		if _, ok := s.members.rows[member.ID]; !ok {
			return communitydomain.ErrMemberNotFound
		}
		s.members.insert(member.ID, *member)
		return nil
	})
}

func (r *CommunityRepository) DeleteMember(ctx context.Context, memberID string) error {
	return r.write(func(s *communityState) error {
		if _, ok := s.members.rows[memberID]; !ok {
			return communitydomain.ErrMemberNotFound
		}
		s.members.remove(memberID)
		return nil
	})
}

func (r *CommunityRepository) CreateWallet(ctx context.Context, wallet *communitydomain.Wallet) error {
	return r.write(func(s *communityState) error {
		s.wallets.insert(wallet.ID, *wallet)
		return nil
	})
}

func (r *CommunityRepository) GetWallet(ctx context.Context, communityID string) (*communitydomain.Wallet, error) {
	var out communitydomain.Wallet
	err := r.read(func(s *communityState) error {
		wallets := s.wallets.filter(func(w communitydomain.Wallet) bool { return w.CommunityID == communityID })
		if len(wallets) == 0 {
			return communitydomain.ErrWalletNotFound
		}
		out = wallets[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CommunityRepository) UpdateWallet(ctx context.Context, wallet *communitydomain.Wallet) error {
	return r.write(func(s *communityState) error {
		if _, ok := s.wallets.rows[wallet.ID]; !ok {
			return communitydomain.ErrWalletNotFound
		}
		s.wallets.insert(wallet.ID, *wallet)
		return nil
	})
}

func (r *CommunityRepository) ListPositions(ctx context.Context, communityID string) ([]communitydomain.Position, error) {
	var out []communitydomain.Position
	err := r.read(func(s *communityState) error {
		out = s.positions.filter(func(p communitydomain.Position) bool { return p.CommunityID == communityID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CommunityRepository) GetPosition(ctx context.Context, communityID string, metal communitydomain.MetalType, carat *string) (*communitydomain.Position, error) {
	var out communitydomain.Position
	err := r.read(func(s *communityState) error {
		matches := s.positions.filter(func(p communitydomain.Position) bool {
			return p.CommunityID == communityID && p.Type == metal && sameCarat(p.Carat, carat)
		})
		if len(matches) == 0 {
			return communitydomain.ErrPositionNotFound
		}
		out = matches[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CommunityRepository) CreatePosition(ctx context.Context, position *communitydomain.Position) error {
	return r.write(func(s *communityState) error {
		s.positions.insert(position.ID, *position)
		return nil
	})
}

func (r *CommunityRepository) UpdatePosition(ctx context.Context, position *communitydomain.Position) error {
	return r.write(func(s *communityState) error {
		if _, ok := s.positions.rows[position.ID]; !ok {
			return communitydomain.ErrPositionNotFound
		}
		s.positions.insert(position.ID, *position)
		return nil
	})
}

func (r *CommunityRepository) CreateOrder(ctx context.Context, order *communitydomain.Order) error {
	return r.write(func(s *communityState) error {
		s.orders.insert(order.ID, *order)
		return nil
	})
}

func (r *CommunityRepository) GetOrder(ctx context.Context, orderID string) (*communitydomain.Order, error) {
	var out communitydomain.Order
	err := r.read(func(s *communityState) error {
		order, ok := s.orders.rows[orderID]
		if !ok {
			return communitydomain.ErrOrderNotFound
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CommunityRepository) ListOrders(ctx context.Context, communityID string) ([]communitydomain.Order, error) {
	var out []communitydomain.Order
	err := r.read(func(s *communityState) error {
		out = s.orders.filter(func(o communitydomain.Order) bool { return o.CommunityID == communityID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(out, func(o communitydomain.Order) time.Time { return o.CreatedAt })
	return out, nil
}

func (r *CommunityRepository) ListExpiredOrders(ctx context.Context, now time.Time) ([]communitydomain.Order, error) {
	var out []communitydomain.Order
	err := r.read(func(s *communityState) error {
		out = s.orders.filter(func(o communitydomain.Order) bool {
			return o.IsOpen() && o.Deadline != nil && o.Deadline.Before(now)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CommunityRepository) UpdateOrder(ctx context.Context, order *communitydomain.Order) error {
	return r.write(func(s *communityState) error {
		if _, ok := s.orders.rows[order.ID]; !ok {
			return communitydomain.ErrOrderNotFound
		}
		s.orders.insert(order.ID, *order)
		return nil
	})
}

func (r *CommunityRepository) CreateVote(ctx context.Context, vote *communitydomain.Vote) error {
	return r.write(func(s *communityState) error {
		for _, existing := range s.votes.rows {
			if existing.OrderID == vote.OrderID && existing.UserID == vote.UserID {
				return communitydomain.ErrAlreadyVoted
			}
		}
		s.votes.insert(vote.ID, *vote)
		return nil
	})
}

func (r *CommunityRepository) GetVote(ctx context.Context, orderID, userID string) (*communitydomain.Vote, error) {
	var out communitydomain.Vote
	err := r.read(func(s *communityState) error {
		matches := s.votes.filter(func(v communitydomain.Vote) bool {
			return v.OrderID == orderID && v.UserID == userID
		})
		if len(matches) == 0 {
			return communitydomain.ErrVoteNotFound
		}
		out = matches[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CommunityRepository) ListVotes(ctx context.Context, orderID string) ([]communitydomain.Vote, error) {
	var out []communitydomain.Vote
	err := r.read(func(s *communityState) error {
		out = s.votes.filter(func(v communitydomain.Vote) bool { return v.OrderID == orderID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VotedAt.Before(out[j].VotedAt) })
	return out, nil
}

func (r *CommunityRepository) CreateContribution(ctx context.Context, contribution *communitydomain.Contribution) error {
	return r.write(func(s *communityState) error {
		s.contributions.insert(contribution.ID, *contribution)
		return nil
	})
}

func (r *CommunityRepository) ListContributions(ctx context.Context, communityID string, filter communitydomain.ContributionFilter) ([]communitydomain.Contribution, error) {
	var out []communitydomain.Contribution
	err := r.read(func(s *communityState) error {
		out = s.contributions.filter(func(c communitydomain.Contribution) bool {
			if c.CommunityID != communityID {
				return false
			}
			return filter.UserID == "" || c.UserID == filter.UserID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(out, func(c communitydomain.Contribution) time.Time { return c.CreatedAt })
	return out, nil
}

// newestFirst orders rows by timestamp descending; rows with equal timestamps
// keep reverse insertion order.
func newestFirst[T any](rows []T, at func(T) time.Time) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	sort.SliceStable(rows, func(i, j int) bool { return at(rows[i]).After(at(rows[j])) })
}

func sameCarat(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

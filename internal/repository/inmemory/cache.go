package inmemory

import (
	"sync"
	"time"

	communitydomain "coinvest-go/internal/domain/community"
)

// CommunityCache keeps community rows until their deadline passes. Expired
// entries are dropped lazily by the next lookup.
type CommunityCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]cachedCommunity
}

type cachedCommunity struct {
	community communitydomain.Community
	deadline  time.Time
}

func NewCommunityCache() *CommunityCache {
	return newCommunityCache(time.Now)
}

func newCommunityCache(now func() time.Time) *CommunityCache {
	return &CommunityCache{
		now:     now,
		entries: make(map[string]cachedCommunity),
	}
}

func (c *CommunityCache) Get(communityID string) (*communitydomain.Community, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[communityID]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.deadline) {
		delete(c.entries, communityID)
		return nil, false
	}
	community := entry.community
	return &community, true
}

// Set stores a copy; a non-positive ttl evicts instead.
func (c *CommunityCache) Set(community *communitydomain.Community, ttl time.Duration) {
	if community == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ttl <= 0 {
		delete(c.entries, community.ID)
		return
	}
	c.entries[community.ID] = cachedCommunity{community: *community, deadline: c.now().Add(ttl)}
}

func (c *CommunityCache) Delete(communityID string) {
	c.mu.Lock()
	delete(c.entries, communityID)
	c.mu.Unlock()
}

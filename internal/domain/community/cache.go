package community

import "time"

// Cache holds community rows for read paths. Every committed mutation evicts
// the community it touched.
type Cache interface {
	Get(communityID string) (*Community, bool)
	Set(community *Community, ttl time.Duration)
	Delete(communityID string)
}

type noopCache struct{}

func (noopCache) Get(string) (*Community, bool) {
	return nil, false
}

func (noopCache) Set(*Community, time.Duration) {}

func (noopCache) Delete(string) {}

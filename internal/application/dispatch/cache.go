package dispatch

import "sync"

// responseCache remembers responses by (character_id, request_id) so a
// retried command returns the original outcome instead of running twice.
// Bounded FIFO; old entries fall off once the cap is reached.
type responseCache struct {
	mu      sync.Mutex
	max     int
	order   []string
	entries map[string]map[string]interface{}
}

func newResponseCache(max int) *responseCache {
	return &responseCache{
		max:     max,
		entries: make(map[string]map[string]interface{}),
	}
}

func cacheKey(characterID, requestID string) string {
	return characterID + "/" + requestID
}

func (c *responseCache) get(characterID, requestID string) (map[string]interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, ok := c.entries[cacheKey(characterID, requestID)]
	return out, ok
}

func (c *responseCache) put(characterID, requestID string, response map[string]interface{}) {
	key := cacheKey(characterID, requestID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		c.entries[key] = response
		return
	}
	for len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = response
}

func (c *responseCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.entries = make(map[string]map[string]interface{})
}

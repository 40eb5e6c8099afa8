package pipeline

// SubscriptionCache remembers standard-subscription answers by agent name
// for a single report run. It is not safe for concurrent use; create one
// per run.
type SubscriptionCache struct {
	m map[string]bool
}

// NewSubscriptionCache returns an empty cache.
func NewSubscriptionCache() *SubscriptionCache {
	return &SubscriptionCache{m: make(map[string]bool)}
}

// Get returns the cached answer for name.
func (c *SubscriptionCache) Get(name string) (bool, bool) {
	v, ok := c.m[nameKey(name)]
	return v, ok
}

// Set records the answer for name.
func (c *SubscriptionCache) Set(name string, v bool) {
	c.m[nameKey(name)] = v
}

// Len returns the number of cached names.
func (c *SubscriptionCache) Len() int {
	return len(c.m)
}

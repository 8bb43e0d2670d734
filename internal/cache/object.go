package cache

import "sort"

// ObjectCache is a generic cache with a soft capacity limit: once the
// entry count passes the limit, the least-recently accessed entries are
// evicted down to three quarters of it. It holds no lock of its own;
// callers serialize access. Unlike LRUList it owns its own key->value map
// rather than ordering a caller-provided recency list, so GetOrCreate
// does both the lookup and the recency bookkeeping in one call.
type ObjectCache[K comparable, V any] struct {
	entries   map[K]*objectEntry[V]
	softLimit int
	tick      int64
	onEvict   func(K, V)
}

type objectEntry[V any] struct {
	value V
	atime int64
}

// NewObjectCache creates a cache with the given soft limit (0 means
// unlimited). onEvict, if non-nil, is called for every entry the cache
// evicts on its own, including the one Delete removes explicitly; a
// caller that needs to defer disposal of an evicted value (gpu.Device
// does, onto its DisposeQueue) hooks this instead of polling Len.
func NewObjectCache[K comparable, V any](softLimit int, onEvict func(K, V)) *ObjectCache[K, V] {
	return &ObjectCache[K, V]{
		entries:   make(map[K]*objectEntry[V]),
		softLimit: softLimit,
		onEvict:   onEvict,
	}
}

// GetOrCreate returns the cached value for key, or calls create and
// caches its result if this is the first request for key. The returned
// bool reports whether it was a cache hit. create must not itself call
// back into the cache: ObjectCache holds no internal lock of its own,
// matching the convention other per-frame engine data structures in this
// module follow (the caller, usually already holding a wider lock, is
// responsible for serializing access).
func (c *ObjectCache[K, V]) GetOrCreate(key K, create func() V) (V, bool) {
	v, hit, _ := c.GetOrCreateErr(key, func() (V, error) { return create(), nil })
	return v, hit
}

// GetOrCreateErr is GetOrCreate for a create func that can fail; a
// failed create is never cached, so the next GetOrCreateErr for the
// same key retries instead of replaying the same error forever.
func (c *ObjectCache[K, V]) GetOrCreateErr(key K, create func() (V, error)) (V, bool, error) {
	c.tick++
	if e, ok := c.entries[key]; ok {
		e.atime = c.tick
		return e.value, true, nil
	}
	value, err := create()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.entries[key] = &objectEntry[V]{value: value, atime: c.tick}
	c.evictIfOverLimit()
	return value, false, nil
}

// Delete removes key, reporting whether it was present, and invokes
// onEvict for the removed value.
func (c *ObjectCache[K, V]) Delete(key K) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	if c.onEvict != nil {
		c.onEvict(key, e.value)
	}
	return true
}

// Len returns the number of cached entries.
func (c *ObjectCache[K, V]) Len() int {
	return len(c.entries)
}

func (c *ObjectCache[K, V]) evictIfOverLimit() {
	if c.softLimit <= 0 || len(c.entries) <= c.softLimit {
		return
	}
	target := c.softLimit * 3 / 4
	if target < 1 {
		target = 1
	}
	toEvict := len(c.entries) - target
	if toEvict <= 0 {
		return
	}

	type keyed struct {
		key   K
		atime int64
	}
	ordered := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		ordered = append(ordered, keyed{key: k, atime: e.atime})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].atime < ordered[j].atime })

	for _, k := range ordered[:toEvict] {
		e := c.entries[k.key]
		delete(c.entries, k.key)
		if c.onEvict != nil {
			c.onEvict(k.key, e.value)
		}
	}
}

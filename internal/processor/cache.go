package processor

// cached holds one value together with the key it was built from.
type cached[K comparable, V any] struct {
	key K
	val V
	ok  bool
}

// get returns the stored value when key matches, and otherwise builds, stores and
// returns a new one.
func (c *cached[K, V]) get(key K, build func() V) V {
	if c.ok && c.key == key {
		return c.val
	}
	c.key, c.val, c.ok = key, build(), true
	return c.val
}

func (c *cached[K, V]) reset() {
	var zero V
	c.val, c.ok = zero, false
}

type viewKey struct {
	rev      uint64
	tileable bool
}

type distanceKey struct {
	view     viewKey
	distance int
	soft     bool
}

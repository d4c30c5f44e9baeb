package addrbook

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoCleanup = 10 * time.Minute

type memo struct {
	ns      NameService
	names   *gocache.Cache
	reverse *gocache.Cache
}

// Memo remembers the successful answers of ns for ttl. Failures are never
// remembered so the next lookup asks ns again.
func Memo(ns NameService, ttl time.Duration) NameService {
	return &memo{
		ns:      ns,
		names:   gocache.New(ttl, memoCleanup),
		reverse: gocache.New(ttl, memoCleanup),
	}
}

func (m *memo) ResolveName(name string) (string, error) {
	return remember(m.names, name, m.ns.ResolveName)
}

func (m *memo) LookupAddress(address string) (string, error) {
	return remember(m.reverse, address, m.ns.LookupAddress)
}

func remember(c *gocache.Cache, key string, ask func(string) (string, error)) (string, error) {
	if v, found := c.Get(key); found {
		return v.(string), nil
	}
	result, err := ask(key)
	if err != nil {
		return "", err
	}
	c.SetDefault(key, result)
	return result, nil
}

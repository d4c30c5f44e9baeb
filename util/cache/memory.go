package cache

import (
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps records in process memory only. Records are stored
// encoded so Get behaves like the persistent backends.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore returns a store whose records expire after ttl. A zero
// ttl keeps them until the process exits.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{c: gocache.New(ttl, 10*time.Minute)}
}

func (ms *MemoryStore) Get(key Key, record interface{}) bool {
	raw, found := ms.c.Get(key.String())
	if !found {
		return false
	}
	return json.Unmarshal(raw.([]byte), record) == nil
}

func (ms *MemoryStore) Set(key Key, record interface{}) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("couldn't encode record for %s: %w", key, err)
	}
	ms.c.SetDefault(key.String(), raw)
	return nil
}

func (ms *MemoryStore) Delete(key Key) error {
	ms.c.Delete(key.String())
	return nil
}

func (ms *MemoryStore) Close() error {
	ms.c.Flush()
	return nil
}

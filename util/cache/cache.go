package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	BackendJSON   = "json"
	BackendBolt   = "bolt"
	BackendLevel  = "leveldb"
	BackendMemory = "memory"
)

// Key identifies one record. Account and token are addresses and compare
// case-insensitively, Tag names the kind of record stored under the key.
type Key struct {
	Account string
	Token   string
	ChainID uint64
	Tag     string
}

func NewKey(account, token string, chainID uint64, tag string) Key {
	return Key{
		Account: account,
		Token:   token,
		ChainID: chainID,
		Tag:     tag,
	}
}

func (k Key) String() string {
	return fmt.Sprintf(
		"%s_%s_%d_%s",
		strings.ToLower(k.Account),
		strings.ToLower(k.Token),
		k.ChainID,
		k.Tag,
	)
}

// Store keeps small JSON records under a composite Key. Get never fails on
// a missing key, it reports false instead. A record that can't be decoded
// into the given value is reported as missing too.
type Store interface {
	Get(key Key, record interface{}) bool
	Set(key Key, record interface{}) error
	Delete(key Key) error
	Close() error
}

// Open returns the store for backend at path. An empty backend means json,
// the memory backend ignores path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(path), nil
	case BackendBolt:
		return NewBoltStore(path)
	case BackendLevel:
		return NewLevelStore(path)
	case BackendMemory:
		return NewMemoryStore(0), nil
	}
	return nil, fmt.Errorf("unsupported cache backend '%s'", backend)
}

// FileStore persists the whole cache as one JSON document. It is loaded on
// first access and rewritten on every change.
type FileStore struct {
	path   string
	mu     sync.Mutex
	loaded bool
	Data   map[string]json.RawMessage `json:"Data"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		Data: map[string]json.RawMessage{},
	}
}

func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) persist() error {
	jsonData, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(fs.path, jsonData, 0644)
}

func (fs *FileStore) load() {
	if fs.loaded {
		return
	}
	fs.loaded = true
	content, err := os.ReadFile(fs.path)
	if err != nil {
		// WARNING: swallow error here, a missing file is an empty cache
		return
	}
	onDisk := struct {
		Data map[string]json.RawMessage `json:"Data"`
	}{}
	if err = json.Unmarshal(content, &onDisk); err != nil {
		// WARNING: swallow error here, the next write replaces the file
		return
	}
	for k, v := range onDisk.Data {
		fs.Data[k] = v
	}
}

func (fs *FileStore) Get(key Key, record interface{}) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.load()

	raw, found := fs.Data[key.String()]
	if !found {
		return false
	}
	return json.Unmarshal(raw, record) == nil
}

func (fs *FileStore) Set(key Key, record interface{}) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("couldn't encode record for %s: %w", key, err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.load()
	k := key.String()
	prev, had := fs.Data[k]
	fs.Data[k] = raw
	if err := fs.persist(); err != nil {
		fs.restore(k, prev, had)
		return err
	}
	return nil
}

// restore puts back the entry a failed write replaced.
func (fs *FileStore) restore(k string, prev json.RawMessage, had bool) {
	if had {
		fs.Data[k] = prev
		return
	}
	delete(fs.Data, k)
}

func (fs *FileStore) Delete(key Key) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.load()
	k := key.String()
	prev, found := fs.Data[k]
	if !found {
		return nil
	}
	delete(fs.Data, k)
	if err := fs.persist(); err != nil {
		fs.restore(k, prev, true)
		return err
	}
	return nil
}

func (fs *FileStore) Close() error {
	return nil
}

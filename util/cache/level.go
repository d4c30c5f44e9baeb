package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelStore keeps records in a leveldb directory, one entry per key.
type LevelStore struct {
	db *leveldb.DB
}

func NewLevelStore(path string) (*LevelStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}
	db, err := leveldb.OpenFile(path, opt)
	if err != nil {
		return nil, fmt.Errorf("couldn't open cache db %s: %w", path, err)
	}
	return &LevelStore{db: db}, nil
}

func (ls *LevelStore) Get(key Key, record interface{}) bool {
	raw, err := ls.db.Get([]byte(key.String()), nil)
	if err != nil {
		// WARNING: read errors other than a missing key are treated as a miss too
		return false
	}
	return json.Unmarshal(raw, record) == nil
}

func (ls *LevelStore) Set(key Key, record interface{}) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("couldn't encode record for %s: %w", key, err)
	}
	return ls.db.Put([]byte(key.String()), raw, nil)
}

func (ls *LevelStore) Delete(key Key) error {
	err := ls.db.Delete([]byte(key.String()), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil
	}
	return err
}

func (ls *LevelStore) Close() error {
	return ls.db.Close()
}

package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("cache")

// BoltStore keeps records in a single bbolt bucket. Unlike FileStore it
// doesn't rewrite the whole cache on every Set.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("couldn't open cache db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (bs *BoltStore) Get(key Key, record interface{}) bool {
	found := false
	bs.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key.String()))
		if raw == nil {
			return nil
		}
		found = json.Unmarshal(raw, record) == nil
		return nil
	})
	return found
}

func (bs *BoltStore) Set(key Key, record interface{}) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("couldn't encode record for %s: %w", key, err)
	}
	return bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key.String()), raw)
	})
}

func (bs *BoltStore) Delete(key Key) error {
	return bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key.String()))
	})
}

func (bs *BoltStore) Close() error {
	return bs.db.Close()
}

// Package allowance caches ERC20 allowances granted to a bridge spender.
//
// Records are trusted until explicitly refreshed: a hit is served without
// asking the chain again. Callers that just sent an approve transaction
// should call Refresh (or Forget) for the affected key.
package allowance

import (
	"math/big"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tranvictor/bridgekit/util/cache"
)

const (
	// ApproveTag marks allowance records in the shared store.
	ApproveTag = "BRIDGE_APPROVE"
	// NullMsg is returned in Info.Msg when no allowance could be obtained.
	NullMsg = "Null"
)

//go:generate mockgen -destination=mocks/reader.go -package=mocks github.com/tranvictor/bridgekit/allowance Reader

// Reader reads allowance(owner, spender) from the ERC20 contract at caddr.
type Reader interface {
	ERC20Allowance(caddr, owner, spender string) (*big.Int, error)
}

// Record is what gets stored, {"approve": <raw amount>}.
type Record struct {
	Approve *big.Int `json:"approve"`
}

// Info is the answer of GetAllowanceInfo. Exactly one of three shapes:
// empty (no account given), {"approve": n} or {"msg": "Null"}.
type Info struct {
	Approve *big.Int `json:"approve,omitempty"`
	Msg     string   `json:"msg,omitempty"`
}

func (i Info) Found() bool {
	return i.Approve != nil
}

func (i Info) Empty() bool {
	return i.Approve == nil && i.Msg == ""
}

type Cache struct {
	store  cache.Store
	reader Reader
	group  singleflight.Group
	l      *zap.Logger
}

type Option func(*Cache)

func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		c.l = l
	}
}

func NewCache(store cache.Store, reader Reader, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		reader: reader,
		l:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func Key(account, token string, chainID uint64) cache.Key {
	return cache.NewKey(account, token, chainID, ApproveTag)
}

func (c *Cache) read(key cache.Key) (Info, bool) {
	rec := Record{}
	if !c.store.Get(key, &rec) || rec.Approve == nil {
		return Info{}, false
	}
	return Info{Approve: rec.Approve}, true
}

// fetch reads the allowance from chain and stores it. Concurrent fetches
// for the same key and contract share one remote call. Failures are logged
// and leave the store untouched.
func (c *Cache) fetch(key cache.Key, account, token, spenderTokenContract string) {
	flight := key.String() + "@" + strings.ToLower(spenderTokenContract)
	c.group.Do(flight, func() (interface{}, error) {
		amount, err := c.reader.ERC20Allowance(spenderTokenContract, account, token)
		if err != nil {
			c.l.Debug("allowance fetch failed",
				zap.String("key", key.String()),
				zap.String("contract", spenderTokenContract),
				zap.Error(err),
			)
			return nil, err
		}
		if err := c.store.Set(key, Record{Approve: amount}); err != nil {
			c.l.Warn("couldn't store allowance", zap.String("key", key.String()), zap.Error(err))
			return nil, err
		}
		c.l.Debug("allowance stored", zap.String("key", key.String()), zap.Stringer("approve", amount))
		return nil, nil
	})
}

// GetAllowanceInfo returns the allowance account granted to token on
// chainID, read from the ERC20 contract at spenderTokenContract on a cache
// miss. It never fails: no account gives an empty Info, an unobtainable
// allowance gives Info{Msg: NullMsg}.
func (c *Cache) GetAllowanceInfo(account, token string, chainID uint64, spenderTokenContract string) Info {
	if account == "" {
		return Info{}
	}
	key := Key(account, token, chainID)
	if info, found := c.read(key); found {
		c.l.Debug("allowance cache hit", zap.String("key", key.String()))
		return info
	}
	c.l.Debug("allowance cache miss", zap.String("key", key.String()))
	c.fetch(key, account, token, spenderTokenContract)
	if info, found := c.read(key); found {
		return info
	}
	return Info{Msg: NullMsg}
}

// Refresh always asks the chain and overwrites the stored record on
// success. When the chain can't be read the previous record, if any, is
// returned.
func (c *Cache) Refresh(account, token string, chainID uint64, spenderTokenContract string) Info {
	if account == "" {
		return Info{}
	}
	key := Key(account, token, chainID)
	c.fetch(key, account, token, spenderTokenContract)
	if info, found := c.read(key); found {
		return info
	}
	return Info{Msg: NullMsg}
}

// Forget drops the stored record so the next GetAllowanceInfo reads the
// chain again.
func (c *Cache) Forget(account, token string, chainID uint64) error {
	return c.store.Delete(Key(account, token, chainID))
}

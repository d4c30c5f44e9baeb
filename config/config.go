package config

import (
	"log"
	"os/user"
	"path/filepath"
	"time"
)

const (
	DefaultDebounce = 150 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

var (
	Network      string
	CacheBackend string
	CachePath    string
	LogLevel     string

	Debounce    time.Duration
	Timeout     time.Duration
	AssumeValid bool

	Refresh    bool
	Forget     bool
	JSONOutput bool
)

func getHomeDir() string {
	usr, err := user.Current()
	if err != nil {
		log.Fatal(err)
	}
	return usr.HomeDir
}

// Dir is where bridgekit keeps its cache, address book and custom networks.
func Dir() string {
	return filepath.Join(getHomeDir(), ".bridgekit")
}

func NetworksDir() string {
	return filepath.Join(Dir(), "networks")
}

func AddressBookPath() string {
	return filepath.Join(Dir(), "addresses.json")
}

// DefaultCachePath returns the cache location for backend when --cache is
// not given.
func DefaultCachePath(backend string) string {
	switch backend {
	case "bolt":
		return filepath.Join(Dir(), "cache.db")
	case "leveldb":
		return filepath.Join(Dir(), "cache.ldb")
	}
	return filepath.Join(Dir(), "cache.json")
}

// Package addrbook is the local name service: a JSON book of addresses the
// user has labelled, consulted before ENS.
//
// The book file (~/.bridgekit/addresses.json) is a flat object from
// address to name:
//
//	{
//	    "0xd8da6bf26964af9d7eed9e03e53415d37aa96045": "vitalik",
//	    "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": "usdc"
//	}
//
// Lookups are exact and case-insensitive. Fuzzy matching is only used for
// suggestions, never to pick a destination address.
package addrbook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	bkcommon "github.com/tranvictor/bridgekit/common"
)

type Entry struct {
	Address string
	Name    string
}

type Book struct {
	mu      sync.RWMutex
	byAddr  map[string]Entry
	byName  map[string]Entry
	entries []Entry
}

// NewBook builds a book from an address -> name map. Keys that are not
// addresses and empty names are skipped.
func NewBook(data map[string]string) *Book {
	b := &Book{}
	b.Replace(data)
	return b
}

// Replace swaps the whole content of the book for data.
func (b *Book) Replace(data map[string]string) {
	byAddr := map[string]Entry{}
	byName := map[string]Entry{}
	for addr, name := range data {
		checksummed, ok := bkcommon.IsAddress(addr)
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		e := Entry{Address: checksummed, Name: name}
		byAddr[strings.ToLower(checksummed)] = e
		byName[strings.ToLower(name)] = e
	}
	entries := make([]Entry, 0, len(byAddr))
	for _, e := range byAddr {
		entries = append(entries, e)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.byAddr = byAddr
	b.byName = byName
	b.entries = entries
}

func readBook(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading address book %s failed: %w", path, err)
	}
	data := map[string]string{}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parsing address book %s failed: %w", path, err)
	}
	return data, nil
}

// Load reads the book at path. A missing file is an empty book.
func Load(path string) (*Book, error) {
	data, err := readBook(path)
	if err != nil {
		return nil, err
	}
	return NewBook(data), nil
}

// Reload replaces the book with the content of path. On error the book
// is left as it was.
func (b *Book) Reload(path string) error {
	data, err := readBook(path)
	if err != nil {
		return err
	}
	b.Replace(data)
	return nil
}

func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// ResolveName returns the address labelled name, or "" when the book has
// no such label.
func (b *Book) ResolveName(name string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, found := b.byName[strings.ToLower(strings.TrimSpace(name))]
	if !found {
		return "", nil
	}
	return e.Address, nil
}

// LookupAddress returns the label of address, or "" when it isn't in the
// book.
func (b *Book) LookupAddress(address string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, found := b.byAddr[strings.ToLower(strings.TrimSpace(address))]
	if !found {
		return "", nil
	}
	return e.Name, nil
}

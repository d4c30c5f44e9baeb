package addrbook

import (
	"errors"
)

type NameService interface {
	ResolveName(name string) (string, error)
	LookupAddress(address string) (string, error)
}

// Chain asks each service in order and returns the first non-empty answer.
// Failures are only reported when no service had an answer.
type Chain []NameService

func (c Chain) ResolveName(name string) (string, error) {
	return c.first(func(s NameService) (string, error) {
		return s.ResolveName(name)
	})
}

func (c Chain) LookupAddress(address string) (string, error) {
	return c.first(func(s NameService) (string, error) {
		return s.LookupAddress(address)
	})
}

func (c Chain) first(ask func(NameService) (string, error)) (string, error) {
	errs := []error{}
	for _, s := range c {
		result, err := ask(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if result != "" {
			return result, nil
		}
	}
	return "", errors.Join(errs...)
}

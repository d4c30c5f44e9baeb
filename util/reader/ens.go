package reader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	bkcommon "github.com/tranvictor/bridgekit/common"
)

var (
	ErrNoENSRegistry = errors.New("network has no ENS registry")
	ErrInvalidName   = errors.New("invalid ENS name")
)

const reverseSuffix = ".addr.reverse"

// NormalizeName lower-cases name and puts it in NFC form. Empty labels
// ("a..eth", ".eth") are rejected.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	normalized := norm.NFC.String(cases.Lower(language.Und).String(name))
	for _, label := range strings.Split(normalized, ".") {
		if label == "" {
			return "", fmt.Errorf("%w: '%s' has an empty label", ErrInvalidName, name)
		}
	}
	return normalized, nil
}

// Namehash implements the EIP-137 recursive label hash. name is expected
// to be normalized already.
func Namehash(name string) common.Hash {
	node := common.Hash{}
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node[:], labelHash)
	}
	return node
}

func (er *EthReader) ensResolverOf(node common.Hash) (common.Address, error) {
	resolver := common.Address{}
	err := er.ReadContractWithABI(
		&resolver, er.ensRegistry, bkcommon.GetENSRegistryABI(),
		"resolver", [32]byte(node),
	)
	return resolver, err
}

// ResolveName returns the checksummed address name points to. It returns
// an empty string and no error when the name has no resolver or no address
// record.
func (er *EthReader) ResolveName(name string) (string, error) {
	if er.ensRegistry == "" {
		return "", ErrNoENSRegistry
	}
	normalized, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	node := Namehash(normalized)
	resolver, err := er.ensResolverOf(node)
	if err != nil {
		return "", fmt.Errorf("couldn't get resolver of %s: %w", normalized, err)
	}
	if bkcommon.IsZeroAddress(resolver) {
		return "", nil
	}
	addr := common.Address{}
	err = er.ReadContractWithABI(
		&addr, resolver.Hex(), bkcommon.GetENSResolverABI(),
		"addr", [32]byte(node),
	)
	if err != nil {
		return "", fmt.Errorf("couldn't get address of %s: %w", normalized, err)
	}
	if bkcommon.IsZeroAddress(addr) {
		return "", nil
	}
	return addr.Hex(), nil
}

// LookupAddress returns the primary ENS name of address. The name is only
// returned when it resolves back to the same address, otherwise the result
// is an empty string.
func (er *EthReader) LookupAddress(address string) (string, error) {
	if er.ensRegistry == "" {
		return "", ErrNoENSRegistry
	}
	addr, ok := bkcommon.IsAddress(address)
	if !ok {
		return "", fmt.Errorf("'%s' is not an address", address)
	}
	node := Namehash(strings.ToLower(addr[2:]) + reverseSuffix)
	resolver, err := er.ensResolverOf(node)
	if err != nil {
		return "", fmt.Errorf("couldn't get reverse resolver of %s: %w", addr, err)
	}
	if bkcommon.IsZeroAddress(resolver) {
		return "", nil
	}
	name := ""
	err = er.ReadContractWithABI(
		&name, resolver.Hex(), bkcommon.GetENSResolverABI(),
		"name", [32]byte(node),
	)
	if err != nil {
		return "", fmt.Errorf("couldn't get name of %s: %w", addr, err)
	}
	if name == "" {
		return "", nil
	}
	forward, err := er.ResolveName(name)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(forward, addr) {
		return "", nil
	}
	return name, nil
}

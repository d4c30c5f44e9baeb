package common

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var hexAddressRe = regexp.MustCompile("^(0x|0X)?[0-9a-fA-F]{40}$")

func GetERC20ABI() *abi.ABI {
	result, _ := abi.JSON(strings.NewReader(erc20abi))
	return &result
}

func GetENSRegistryABI() *abi.ABI {
	result, _ := abi.JSON(strings.NewReader(ensRegistryABI))
	return &result
}

func GetENSResolverABI() *abi.ABI {
	result, _ := abi.JSON(strings.NewReader(ensResolverABI))
	return &result
}

func HexToAddress(hex string) common.Address {
	return common.HexToAddress(hex)
}

// IsAddress returns the checksummed form of str when it is a syntactically
// valid address. Prefix is optional. All-lower and all-upper hex is accepted
// as is, mixed case must carry a correct EIP-55 checksum.
func IsAddress(str string) (string, bool) {
	str = strings.TrimSpace(str)
	if !hexAddressRe.MatchString(str) {
		return "", false
	}
	body := str
	if len(body) == 42 {
		body = body[2:]
	}
	checksummed := common.HexToAddress(body).Hex()
	if isMixedCase(body) && checksummed[2:] != body {
		return "", false
	}
	return checksummed, true
}

// IsZeroAddress reports whether addr decodes to 0x000...0.
func IsZeroAddress(addr common.Address) bool {
	return addr == common.Address{}
}

func isMixedCase(hex string) bool {
	return strings.ToLower(hex) != hex && strings.ToUpper(hex) != hex
}

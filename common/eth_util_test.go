package common_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tranvictor/bridgekit/common"
)

func TestIsAddress(t *testing.T) {
	const checksummed = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"checksummed", checksummed, checksummed, true},
		{"lowercase", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", checksummed, true},
		{"uppercase body", "0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045", checksummed, true},
		{"no prefix", "d8da6bf26964af9d7eed9e03e53415d37aa96045", checksummed, true},
		{"surrounding spaces", "  " + checksummed + " ", checksummed, true},
		{"bad checksum", "0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045", "", false},
		{"too short", "0xd8da6bf26964af9d7eed9e03e53415d37aa9604", "", false},
		{"not hex", "0xz8da6bf26964af9d7eed9e03e53415d37aa96045", "", false},
		{"name", "vitalik.eth", "", false},
		{"empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := common.IsAddress(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBigToFloatString(t *testing.T) {
	assert.Equal(t, "1.1", common.BigToFloatString(big.NewInt(1100), 3))
	assert.Equal(t, "11", common.BigToFloatString(big.NewInt(1100), 2))
	assert.Equal(t, "0.011", common.BigToFloatString(big.NewInt(1100), 5))
	assert.Equal(t, "1100", common.BigToFloatString(big.NewInt(1100), 0))
	assert.Equal(t, "-0.5", common.BigToFloatString(big.NewInt(-5), 1))
	assert.Equal(t, "0", common.BigToFloatString(nil, 18))
}

package evm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Test vectors from EIP-55: https://eips.ethereum.org/EIPS/eip-55
//
//nolint:gochecknoglobals // Test data
var eip55Checksummed = []string{
	"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
}

func TestToChecksumAddress(t *testing.T) {
	t.Parallel()

	for _, want := range eip55Checksummed {
		t.Run(want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, ToChecksumAddress(want))
			assert.Equal(t, want, ToChecksumAddress(strings.ToLower(want)))
		})
	}
}

func TestToChecksumAddress_InvalidUnchanged(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "not-an-address", ToChecksumAddress("not-an-address"))
}

func TestIsValidAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{"checksummed", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"lowercase", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"zero address", "0x0000000000000000000000000000000000000000", true},
		{"missing prefix", "5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", false},
		{"uppercase prefix", "0X5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", false},
		{"too short", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAe", false},
		{"too long", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed0", false},
		{"non hex", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeg", false},
		{"empty", "", false},
		{"bitcoin address", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.valid, IsValidAddress(tc.address))
		})
	}
}

func TestValidateChecksumAddress(t *testing.T) {
	t.Parallel()

	t.Run("valid checksums", func(t *testing.T) {
		t.Parallel()
		for _, addr := range eip55Checksummed {
			require.NoError(t, ValidateChecksumAddress(addr))
		}
	})

	t.Run("single case has no checksum", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, ValidateChecksumAddress("0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"))
		require.NoError(t, ValidateChecksumAddress("0xFB6916095CA1DF60BB79CE92CE3EA74C37C5D359"))
	})

	t.Run("bad checksum", func(t *testing.T) {
		t.Parallel()
		// Last character case flipped
		err := ValidateChecksumAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD")
		require.ErrorIs(t, err, tgerr.ErrInvalidChecksum)

		var te *tgerr.TollgateError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", te.Details["expected"])
	})

	t.Run("bad format", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, ValidateChecksumAddress("not-an-address"), tgerr.ErrInvalidAddress)
	})
}

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	got, err := NormalizeAddress("0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb")
	require.NoError(t, err)
	assert.Equal(t, "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB", got)

	_, err = NormalizeAddress("0x123")
	require.ErrorIs(t, err, tgerr.ErrInvalidAddress)
}

func TestValidator(t *testing.T) {
	t.Parallel()

	var v Validator
	require.NoError(t, v.ValidateAddress("0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb"))
	require.Error(t, v.ValidateAddress("0xd1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb"))
}

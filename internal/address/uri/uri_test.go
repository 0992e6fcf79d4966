package uri

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tollgate/internal/chain"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

func TestIsURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true},
		{"ethereum:0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"https://example.com/pay", true},
		{"BITCOIN:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true},
		{"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", false},
		{"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false},
		{"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", false},
		{"🦊🚀", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsURI(tc.input))
		})
	}
}

func TestParse_BIP21(t *testing.T) {
	t.Parallel()

	t.Run("amount and label", func(t *testing.T) {
		t.Parallel()

		req, err := Parse("bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=0.5&label=Satoshi")
		require.NoError(t, err)
		assert.Equal(t, SchemeBitcoin, req.Scheme)
		assert.Equal(t, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", req.Address)
		assert.Equal(t, "50000000", req.Amount.String())
		assert.Equal(t, "Satoshi", req.Label)
	})

	t.Run("uppercase scheme", func(t *testing.T) {
		t.Parallel()

		req, err := Parse("LITECOIN:LVg2kJoFNg45Nbpy53h7Fe1wKyeXVRhMH9")
		require.NoError(t, err)
		assert.Equal(t, SchemeLitecoin, req.Scheme)
		assert.Nil(t, req.Amount)
	})

	t.Run("authority form", func(t *testing.T) {
		t.Parallel()

		req, err := Parse("dogecoin://DH5yaieqoZN36fDVciNyRueRGvGLR3mr7L")
		require.NoError(t, err)
		assert.Equal(t, "DH5yaieqoZN36fDVciNyRueRGvGLR3mr7L", req.Address)
	})
}

func TestParse_EIP681(t *testing.T) {
	t.Parallel()

	t.Run("value in exponent notation", func(t *testing.T) {
		t.Parallel()

		req, err := Parse("ethereum:0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359?value=2.014e18")
		require.NoError(t, err)
		assert.Equal(t, "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359", req.Address)
		assert.Equal(t, "2014000000000000000", req.Amount.String())
	})

	t.Run("pay prefix and chain id", func(t *testing.T) {
		t.Parallel()

		req, err := Parse("ethereum:pay-0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359@137")
		require.NoError(t, err)
		assert.Equal(t, "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359", req.Address)
		assert.Equal(t, "137", req.ChainRef)
	})

	t.Run("token transfer", func(t *testing.T) {
		t.Parallel()

		req, err := Parse("ethereum:0x89205a3a3b2a69de6dbf7f01ed13b2108b2c43e7/transfer?address=0x8e23ee67d1332ad560396262c48ffbb01f93d052&uint256=1")
		require.NoError(t, err)
		assert.Equal(t, "0x89205a3a3b2a69de6dbf7f01ed13b2108b2c43e7", req.Token)
		assert.Equal(t, "0x8e23ee67d1332ad560396262c48ffbb01f93d052", req.Address)
		assert.Equal(t, "1", req.Amount.String())
	})
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"unsupported scheme", "mailto:someone@example.com"},
		{"missing target", "bitcoin:"},
		{"required parameter", "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?req-somethingyoudontunderstand=50"},
		{"negative amount", "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=-1"},
		{"too precise amount", "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=0.000000001"},
		{"non-numeric amount", "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=lots"},
		{"bad chain id", "ethereum:0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359@mainnet"},
		{"unsupported function", "ethereum:0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359/approve"},
		{"transfer without recipient", "ethereum:0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359/transfer?uint256=1"},
		{"fractional wei", "ethereum:0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359?value=1.5"},
		{"oversized value", "ethereum:0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359?value=1e2000000000"},
		{"oversized amount", "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=1e2000000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(tc.input)
			require.ErrorIs(t, err, tgerr.ErrInvalidURI)
		})
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount   string
		decimals int32
		want     string
	}{
		{"1.5", 8, "150000000"},
		{"0.00000001", 8, "1"},
		{"21", 8, "2100000000"},
		{"1e3", 0, "1000"},
		{"0", 18, "0"},
		{"0e-2000000000", 8, "0"},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639935", 0,
			"115792089237316195423570985008687907853269984665640564039457584007913129639935"},
		{"1e77", 0, "1" + strings.Repeat("0", 77)},
	}

	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAmount(tc.amount, tc.decimals)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseAmount_Bounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		decimals int32
	}{
		{"huge exponent", "1e2000000000", 0},
		{"huge exponent with decimals", "1e2000000000", 8},
		{"max exponent", "1e2147483647", 18},
		{"one past uint256", "115792089237316195423570985008687907853269984665640564039457584007913129639936", 0},
		{"seventy nine digits", "1e78", 0},
		{"scaled past uint256", "1e70", 18},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseAmount(tc.amount, tc.decimals)
			require.ErrorIs(t, err, tgerr.ErrInvalidURI)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.5", FormatAmount(big.NewInt(150_000_000), 8))
	assert.Equal(t, "0.00000001", FormatAmount(big.NewInt(1), 8))
	assert.Equal(t, "42", FormatAmount(big.NewInt(42), 0))
	assert.Equal(t, "0", FormatAmount(nil, 8))
}

func TestSchemeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id     chain.ID
		scheme string
		ok     bool
	}{
		{chain.Ethereum, SchemeEthereum, true},
		{chain.Polygon, SchemeEthereum, true},
		{chain.Bitcoin, SchemeBitcoin, true},
		{chain.Litecoin, SchemeLitecoin, true},
		{chain.Dogecoin, SchemeDogecoin, true},
		{chain.CosmosHub, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.id.String(), func(t *testing.T) {
			t.Parallel()

			scheme, ok := SchemeFor(tc.id)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.scheme, scheme)
		})
	}
}

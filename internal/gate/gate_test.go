package gate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tollgate/internal/address"
	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/features"
	"github.com/mrz1836/tollgate/internal/handle"
	"github.com/mrz1836/tollgate/internal/metrics"
	"github.com/mrz1836/tollgate/internal/wallet"
)

const (
	ethAddress      = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	resolvedAddress = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

var errLookup = errors.New("yat api timeout")

// countingResolver resolves "sometag" and counts calls.
type countingResolver struct {
	calls atomic.Int32
	err   error
}

func (r *countingResolver) Resolve(_ context.Context, h string) (string, error) {
	r.calls.Add(1)
	if r.err != nil {
		return "", r.err
	}
	if h == "sometag" {
		return resolvedAddress, nil
	}
	return "", nil
}

// stubSource serves a single adapter for every chain.
type stubSource struct {
	adapter chain.Adapter
	err     error
}

func (s stubSource) Get(chain.ID) (chain.Adapter, error) {
	return s.adapter, s.err
}

type panickingInterpreter struct{}

func (panickingInterpreter) Interpret(context.Context, chain.InterpretRequest) (chain.Interpretation, error) {
	panic("malformed registry entry")
}

// blockingInterpreter waits for its context to end.
type blockingInterpreter struct{}

func (blockingInterpreter) Interpret(ctx context.Context, _ chain.InterpretRequest) (chain.Interpretation, error) {
	<-ctx.Done()
	return chain.Interpretation{HandleAttempted: true}, ctx.Err()
}

func newGate(t *testing.T, r handle.Resolver, opts ...Option) *Gate {
	t.Helper()

	var regOpts []address.RegistryOption
	if r != nil {
		regOpts = append(regOpts, address.WithHandleResolver(chain.Ethereum, r))
	}
	registry, err := address.NewRegistry(regOpts...)
	require.NoError(t, err)
	return New(registry, opts...)
}

func contextFor(t *testing.T, id chain.ID) chain.Context {
	t.Helper()

	cc, err := chain.NewContext(id)
	require.NoError(t, err)
	return cc
}

func TestRequiresManualEntry(t *testing.T) {
	t.Parallel()

	assert.True(t, RequiresManualEntry(false))
	assert.False(t, RequiresManualEntry(true))
}

func TestRequiresManualEntry_NegatesWalletSupport(t *testing.T) {
	t.Parallel()

	caps := wallet.NewCapabilities(features.Static{features.Snaps: true})
	for _, kind := range wallet.Kinds() {
		for _, w := range []*wallet.Wallet{wallet.New("w", kind), wallet.New("w", kind, wallet.ExtensionSnap)} {
			for _, id := range chain.KnownIDs() {
				supported := caps.SupportsChain(context.Background(), w, id)
				assert.Equal(t, !supported, RequiresManualEntry(supported), "%s on %s", kind, id)
			}
		}
	}
}

func TestValidateAddress_WhitespaceIsEmpty(t *testing.T) {
	t.Parallel()

	g := newGate(t, nil)
	for _, input := range []string{"", " ", "\t", "\n", " \t\r\n "} {
		for _, id := range chain.KnownIDs() {
			got := g.ValidateAddress(context.Background(), input, contextFor(t, id), Options{AllowHandle: true})
			assert.Equal(t, Invalid(ReasonEmpty), got, "%q on %s", input, id)
		}
	}
}

func TestValidateAddress_NativeAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		chain chain.ID
		input string
		want  string
	}{
		{"ethereum checksum", chain.Ethereum, ethAddress, ethAddress},
		{"surrounding whitespace trimmed", chain.Ethereum, "  " + ethAddress + "\n", ethAddress},
		{"evm address on arbitrum", chain.Arbitrum, ethAddress, ethAddress},
		{"bitcoin p2pkh", chain.Bitcoin, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		{"bitcoin segwit", chain.Bitcoin, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"},
	}

	g := newGate(t, nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := g.ValidateAddress(context.Background(), tc.input, contextFor(t, tc.chain), Options{})
			assert.Equal(t, Valid(tc.want), got)
		})
	}
}

func TestValidateAddress_MalformedOnEveryChain(t *testing.T) {
	t.Parallel()

	g := newGate(t, &countingResolver{})
	for _, id := range chain.KnownIDs() {
		got := g.ValidateAddress(context.Background(), "not-an-address", contextFor(t, id), Options{})
		assert.Equal(t, Invalid(ReasonMalformedAddress), got, id.String())
	}
}

func TestValidateAddress_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		chain    chain.ID
		input    string
		opts     Options
		err      error
		want     Outcome
		wantCall bool
	}{
		{"resolved", chain.Ethereum, "sometag", Options{AllowHandle: true}, nil, Valid(resolvedAddress), true},
		{"not found", chain.Ethereum, "othertag", Options{AllowHandle: true}, nil, Invalid(ReasonUnsupportedYatHandle), true},
		{"lookup failure", chain.Ethereum, "sometag", Options{AllowHandle: true}, errLookup, Invalid(ReasonMalformedAddress), true},
		{"handles disabled", chain.Ethereum, "sometag", Options{}, nil, Invalid(ReasonMalformedAddress), false},
		{"no resolver on chain", chain.Polygon, "sometag", Options{AllowHandle: true}, nil, Invalid(ReasonMalformedAddress), false},
		{"native address skips resolver", chain.Ethereum, ethAddress, Options{AllowHandle: true}, nil, Valid(ethAddress), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := &countingResolver{err: tc.err}
			got := newGate(t, res).ValidateAddress(context.Background(), tc.input, contextFor(t, tc.chain), tc.opts)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantCall, res.calls.Load() > 0)
		})
	}
}

func TestValidateAddress_URIsNeverParsed(t *testing.T) {
	t.Parallel()

	res := &countingResolver{}
	g := newGate(t, res)

	for _, input := range []string{
		"ethereum:" + ethAddress,
		"ethereum:" + ethAddress + "@1?value=1e18",
		"https://etherscan.io/address/" + ethAddress,
	} {
		got := g.ValidateAddress(context.Background(), input, contextFor(t, chain.Ethereum), Options{AllowHandle: true})
		assert.Equal(t, Invalid(ReasonMalformedAddress), got, input)
	}
	assert.Zero(t, res.calls.Load(), "URI input never reaches the handle resolver")
}

func TestValidateAddress_BadContext(t *testing.T) {
	t.Parallel()

	btcAsset, err := chain.NativeAsset(chain.Bitcoin)
	require.NoError(t, err)

	tests := []struct {
		name string
		cc   chain.Context
	}{
		{"zero context", chain.Context{}},
		{"asset of another chain", chain.Context{ChainID: chain.Ethereum, AssetID: btcAsset}},
		{"unknown chain", chain.Context{ChainID: "eip155:999", AssetID: "eip155:999/slip44:60"}},
	}

	g := newGate(t, nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, Invalid(ReasonMalformedAddress), g.ValidateAddress(context.Background(), ethAddress, tc.cc, Options{}))
		})
	}
}

func TestValidateAddress_CollaboratorFailures(t *testing.T) {
	t.Parallel()

	cc := contextFor(t, chain.Ethereum)

	t.Run("panicking interpreter", func(t *testing.T) {
		t.Parallel()

		m := metrics.New()
		g := New(stubSource{adapter: chain.Adapter{ChainID: chain.Ethereum, Interpreter: panickingInterpreter{}}}, WithMetrics(m))

		var got Outcome
		require.NotPanics(t, func() {
			got = g.ValidateAddress(context.Background(), ethAddress, cc, Options{})
		})
		assert.Equal(t, Invalid(ReasonMalformedAddress), got)
		assert.Equal(t, int64(1), m.Snapshot().RecoveredPanics)
		assert.Equal(t, int64(1), m.Snapshot().Validations)
	})

	t.Run("registry failure", func(t *testing.T) {
		t.Parallel()

		g := New(stubSource{err: errLookup})
		assert.Equal(t, Invalid(ReasonMalformedAddress), g.ValidateAddress(context.Background(), ethAddress, cc, Options{}))
	})

	t.Run("adapter without interpreter", func(t *testing.T) {
		t.Parallel()

		g := New(stubSource{adapter: chain.Adapter{ChainID: chain.Ethereum}})
		assert.Equal(t, Invalid(ReasonMalformedAddress), g.ValidateAddress(context.Background(), ethAddress, cc, Options{}))
	})

	t.Run("nil registry", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, Invalid(ReasonMalformedAddress), New(nil).ValidateAddress(context.Background(), ethAddress, cc, Options{}))
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		g := New(stubSource{adapter: chain.Adapter{ChainID: chain.Ethereum, Interpreter: blockingInterpreter{}}},
			WithTimeout(20*time.Millisecond))
		assert.Equal(t, Invalid(ReasonMalformedAddress), g.ValidateAddress(context.Background(), "sometag", cc, Options{AllowHandle: true}))
	})
}

func TestValidateAddress_Metrics(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	g := newGate(t, nil, WithMetrics(m))
	cc := contextFor(t, chain.Ethereum)

	g.ValidateAddress(context.Background(), ethAddress, cc, Options{})
	g.ValidateAddress(context.Background(), "nope", cc, Options{})
	g.ValidateAddress(context.Background(), " ", cc, Options{})

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.Validations)
	assert.Equal(t, int64(1), snap.Valid)
}

func TestAsync(t *testing.T) {
	t.Parallel()

	g := newGate(t, nil)
	ch := Async(context.Background(), g, ethAddress, contextFor(t, chain.Ethereum), Options{})

	got, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, Valid(ethAddress), got)

	_, ok = <-ch
	assert.False(t, ok, "channel closes after one outcome")
}

func TestAsync_NilValidator(t *testing.T) {
	t.Parallel()

	got := <-Async(context.Background(), nil, ethAddress, chain.Context{}, Options{})
	assert.Equal(t, Invalid(ReasonMalformedAddress), got)
}

func TestHandleOptions(t *testing.T) {
	t.Parallel()

	on := features.Static{features.Yat: true}
	off := features.Static{}

	assert.True(t, HandleOptions(on, chain.Ethereum, chain.Ethereum).AllowHandle)
	assert.False(t, HandleOptions(off, chain.Ethereum, chain.Ethereum).AllowHandle)
	assert.False(t, HandleOptions(on, chain.Polygon, chain.Ethereum).AllowHandle)
	assert.False(t, HandleOptions(nil, chain.Ethereum, chain.Ethereum).AllowHandle)
	assert.False(t, HandleOptions(on, "", "").AllowHandle)
}

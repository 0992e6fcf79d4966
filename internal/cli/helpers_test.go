package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tollgate/internal/config"
	"github.com/mrz1836/tollgate/internal/handle"
	"github.com/mrz1836/tollgate/internal/output"
)

const (
	ethAddress      = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	otherEthAddress = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	btcAddress      = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	btcSegwit       = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	testYat         = "🦊🚀"
)

// newTestContext builds a command context on the default configuration with
// a temporary home directory. mutate may adjust the configuration first.
func newTestContext(t *testing.T, mutate func(c *config.Config)) *CommandContext {
	t.Helper()

	c := config.Defaults()
	c.Home = t.TempDir()
	c.Logging.Level = "off"
	if mutate != nil {
		mutate(c)
	}

	cc, err := NewCommandContext(c, config.NullLogger(), output.NewFormatter(output.FormatText, nil))
	require.NoError(t, err)
	return cc
}

// useContext installs cc as the CLI globals for the duration of the test.
// NOT parallel safe: mutates package-level globals.
func useContext(t *testing.T, cc *CommandContext, format output.Format) {
	t.Helper()

	origCfg, origLogger, origFormatter, origCtx := cfg, logger, formatter, cmdCtx
	t.Cleanup(func() {
		cfg, logger, formatter, cmdCtx = origCfg, origLogger, origFormatter, origCtx
	})

	cfg = cc.Cfg
	logger = cc.Logger
	formatter = output.NewFormatter(format, nil)
	cmdCtx = cc
}

// setFlag assigns a package-level flag variable and restores it on cleanup.
func setFlag[T any](t *testing.T, dst *T, v T) {
	t.Helper()
	orig := *dst
	*dst = v
	t.Cleanup(func() { *dst = orig })
}

// newTestCommand returns a bare command writing to a buffer.
func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, buf
}

// decodeJSON unmarshals command output.
func decodeJSON(t *testing.T, buf *bytes.Buffer, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(buf.Bytes(), v), buf.String())
}

// yatServer serves a Yat API that resolves testYat to otherEthAddress and
// counts requests.
func yatServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// /emoji_id/{yat}/{tag}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "emoji_id" || parts[1] != testYat {
			http.NotFound(w, r)
			return
		}
		tag := parts[2]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"result":[{"tag":"` + tag + `","data":"` + otherEthAddress + `|test"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// withYat enables the Yat feature against srv.
func withYat(srv *httptest.Server) func(c *config.Config) {
	return func(c *config.Config) {
		c.Features.Yat = true
		c.Handles.Yat = handle.DefaultYatConfig()
		c.Handles.Yat.BaseURL = srv.URL
		c.Handles.Yat.RatePerSecond = 0
		c.Handles.Yat.Timeout = time.Second
		c.Handles.Yat.Retry = handle.RetryPolicy{Attempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	}
}

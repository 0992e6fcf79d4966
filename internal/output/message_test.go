package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/tollgate/internal/output"
)

func TestStatusLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	output.Info(&buf, "chain %s", "eth")
	output.Warn(&buf, "slow")
	output.Success(&buf, "valid")
	output.Failure(&buf, "invalid")

	assert.Equal(t, "ℹ️  chain eth\n⚠️  slow\n✅ valid\n❌ invalid\n", buf.String())
}

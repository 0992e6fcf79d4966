package output_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tollgate/internal/output"
)

func TestFormatter_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatJSON, &buf)

	require.NoError(t, f.Print(map[string]string{"status": "valid"}))

	var result map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "valid", result["status"])
	assert.True(t, f.IsJSON())
	assert.Equal(t, output.FormatJSON, f.Format())
	assert.Same(t, &buf, f.Writer())
}

func TestFormatter_Text(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatText, &buf)

	require.NoError(t, f.Print("hello"))
	require.NoError(t, f.Printf("%s=%d\n", "n", 1))
	require.NoError(t, f.Println("bye"))
	assert.Equal(t, "hello\nn=1\nbye\n", buf.String())
	assert.False(t, f.IsJSON())
}

func TestFormatter_Render(t *testing.T) {
	t.Parallel()

	value := map[string]string{"address": "0xabc"}
	text := func(w io.Writer) error {
		_, err := io.WriteString(w, "address: 0xabc\n")
		return err
	}

	var textBuf bytes.Buffer
	require.NoError(t, output.NewFormatter(output.FormatText, &textBuf).Render(value, text))
	assert.Equal(t, "address: 0xabc\n", textBuf.String())

	var jsonBuf bytes.Buffer
	require.NoError(t, output.NewFormatter(output.FormatJSON, &jsonBuf).Render(value, text))
	assert.JSONEq(t, `{"address":"0xabc"}`, jsonBuf.String())

	var fallback bytes.Buffer
	require.NoError(t, output.NewFormatter(output.FormatText, &fallback).Render("plain", nil))
	assert.Equal(t, "plain\n", fallback.String())
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected output.Format
	}{
		{"json", output.FormatJSON},
		{"JSON", output.FormatJSON},
		{" text ", output.FormatText},
		{"auto", output.FormatAuto},
		{"", output.FormatAuto},
		{"xml", output.FormatAuto},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, output.ParseFormat(tt.input))
		})
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Equal(t, output.FormatText, output.DetectFormat(&buf, output.FormatText))
	assert.Equal(t, output.FormatJSON, output.DetectFormat(&buf, output.FormatJSON))
	assert.Equal(t, output.FormatJSON, output.DetectFormat(&buf, output.FormatAuto), "non-TTY writers get JSON")
}

func TestDetectFormat_TTY(t *testing.T) {
	if os.Getenv("TEST_TTY") == "" {
		t.Skip("Skipping TTY test - set TEST_TTY=1 to run")
	}

	assert.Equal(t, output.FormatText, output.DetectFormat(os.Stdout, output.FormatAuto))
}

func TestTable(t *testing.T) {
	t.Parallel()
	table := output.NewTable("Alias", "Chain")
	table.AddRow("eth", "eip155:1")
	table.AddRow("btc", "bip122:000000000019d6689c085ae165831e93")

	lines := strings.Split(strings.TrimSpace(table.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Alias  Chain"))
	assert.True(t, strings.HasPrefix(lines[1], "-----  -----"))
	assert.Equal(t, "eth    eip155:1", strings.TrimRight(lines[2], " "))
}

func TestTable_EmojiWidth(t *testing.T) {
	t.Parallel()
	table := output.NewTable("INPUT", "RESULT")
	table.AddRow("🦊🚀", "valid")
	table.AddRow("0xabc", "invalid")
	table.AddRow("x")

	want := "INPUT  RESULT\n" +
		"-----  -------\n" +
		"🦊🚀   valid\n" +
		"0xabc  invalid\n" +
		"x\n"
	assert.Equal(t, want, table.String())
}

func TestTable_WriteError(t *testing.T) {
	t.Parallel()
	table := output.NewTable("A")
	table.AddRow("b")
	require.Error(t, table.Render(failingWriter{}))
}


func TestTable_Empty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.NewTable().Render(&buf))
	assert.Empty(t, buf.String())
}

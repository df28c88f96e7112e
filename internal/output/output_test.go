package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	err := w.OK(map[string]int{"count": 2}, WithSummary("2 things"))
	require.NoError(t, err)

	var resp struct {
		OK      bool           `json:"ok"`
		Data    map[string]int `json:"data"`
		Summary string         `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 2, resp.Data["count"])
	assert.Equal(t, "2 things", resp.Summary)
}

func TestQuietEmitsDataOnly(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatQuiet, Writer: &buf})

	require.NoError(t, w.OK([]string{"a", "b"}, WithSummary("ignored")))

	var data []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, []string{"a", "b"}, data)
	assert.NotContains(t, buf.String(), "ignored")
}

func TestErrEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	require.NoError(t, w.Err(ErrAuth("Account 2 is not authorized")))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, CodeAuth, resp.Code)
	assert.Contains(t, resp.Hint, "auth login")
}

func TestJQFilterBypassesEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf, Filter: ".[].name"})

	data := []map[string]string{{"name": "Acme"}, {"name": "Beta"}}
	require.NoError(t, w.OK(data))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"Acme", "Beta"}, lines)
}

func TestJQFilterInvalidExpression(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf, Filter: ".[broken"})

	err := w.OK([]int{1})
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, CodeUsage, e.Code)
}

func TestAsErrorWrapsPlainErrors(t *testing.T) {
	plain := errors.New("boom")
	e := AsError(plain)
	assert.Equal(t, CodeAPI, e.Code)
	assert.Equal(t, "boom", e.Message)

	typed := ErrStorage("disk full", plain)
	assert.Same(t, typed, AsError(typed))
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitUsage, ErrUsage("x").ExitCode())
	assert.Equal(t, ExitAuth, ErrAuth("x").ExitCode())
	assert.Equal(t, ExitNetwork, ErrNetwork(errors.New("x")).ExitCode())
	assert.Equal(t, ExitAPI, ErrAPI(500, "x").ExitCode())
	assert.Equal(t, ExitStorage, ErrStorage("x", nil).ExitCode())
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := out
	out = buf
	t.Cleanup(func() { out = prev })
	return buf
}

func TestDiffCommand(t *testing.T) {
	buf := captureOutput(t)
	cmd := diffCmd{
		Previous:      writeFile(t, "prev.json", `{"expense":[{"remarks":"Rent","amount":1000},{"remarks":"Gym","amount":40}]}`),
		Current:       writeFile(t, "curr.json", `{"expense":[{"remarks":"Rent","amount":1200},{"remarks":"Food","amount":300}],"income":[]}`),
		IdentityField: "remarks",
		AmountField:   "amount",
	}
	require.NoError(t, cmd.Run(nil))

	var got map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	require.Len(t, got["expense"], 3)
	assert.Equal(t, "UPDATED", got["expense"][0]["changeKind"])
	assert.Equal(t, "Rent", got["expense"][0]["remarks"])
	assert.Equal(t, float64(1000), got["expense"][0]["previousAmount"])
	assert.Equal(t, float64(1200), got["expense"][0]["amount"])
	assert.Equal(t, "CREATED", got["expense"][1]["changeKind"])
	assert.Equal(t, "DELETED", got["expense"][2]["changeKind"])
	assert.Contains(t, got, "income")
	assert.Empty(t, got["income"])
}

func TestDiffCommandNumericIdentity(t *testing.T) {
	buf := captureOutput(t)
	cmd := diffCmd{
		Previous:      writeFile(t, "prev.json", `{"expense":[{"id":7,"remarks":"Food","amount":100}]}`),
		Current:       writeFile(t, "curr.json", `{"expense":[{"id":7,"remarks":"Food","amount":"n/a"}]}`),
		IdentityField: "id",
		AmountField:   "amount",
	}
	require.NoError(t, cmd.Run(nil))

	var got map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got["expense"], 1)
	assert.Equal(t, "UPDATED", got["expense"][0]["changeKind"])
	assert.Equal(t, float64(7), got["expense"][0]["id"])
	assert.Equal(t, "n/a", got["expense"][0]["amount"])
	assert.Equal(t, float64(100), got["expense"][0]["previousAmount"])
}

func TestDiffCommandStrict(t *testing.T) {
	captureOutput(t)
	cmd := diffCmd{
		Previous:      writeFile(t, "prev.json", `{"expense":[{"remarks":"Rent","amount":1}]}`),
		Current:       writeFile(t, "curr.json", `{"expense":[{"remarks":"Rent","amount":1},{"remarks":"Rent","amount":2}]}`),
		IdentityField: "remarks",
		AmountField:   "amount",
		Strict:        true,
	}
	err := cmd.Run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current")
}

func TestDiffCommandRejectsTwoStdinInputs(t *testing.T) {
	cmd := diffCmd{Previous: "-", Current: "-"}
	assert.Error(t, cmd.Run(nil))
}

func TestKeyCommand(t *testing.T) {
	buf := captureOutput(t)
	cmd := keyCmd{At: "2026-10-19T10:04:05Z", Zone: "UTC"}
	require.NoError(t, cmd.Run(nil))
	assert.Equal(t, "19-Oct-2026 10:04:05\n", buf.String())

	assert.Error(t, (&keyCmd{At: "yesterday", Zone: "UTC"}).Run(nil))
	assert.Error(t, (&keyCmd{Zone: "Mars/Olympus"}).Run(nil))
}

package toml

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string
	Threads int `toml:",omitempty"`
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.toml")
	require.NoError(t, EncodeFile(path, sample{Name: "x", Threads: 3}))

	var got sample
	require.NoError(t, DecodeFile(path, &got))
	assert.Equal(t, sample{Name: "x", Threads: 3}, got)
}

func TestDecodeFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.toml")
	require.NoError(t, EncodeFile(path, map[string]any{"Name": "x", "Thread": 2}))

	var got sample
	err := DecodeFile(path, &got)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Thread"}, missing.Keys)

	t.Setenv("TOML_MISSING_FIELD", "OK")
	assert.NoError(t, DecodeFile(path, &got))
	assert.Equal(t, "x", got.Name)
}

func TestDecodeFileMissing(t *testing.T) {
	assert.Error(t, DecodeFile(filepath.Join(t.TempDir(), "nope.toml"), &sample{}))
}

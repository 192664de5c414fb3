// Copyright 2018 The aquachain Authors
// This file is part of the aquachain library.
//
// The aquachain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aquachain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aquachain library. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aquachain/ethash/consensus/aquahash"
)

func TestDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aquahash.toml")
	def := Default()
	require.NoError(t, def.Save(path))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aquahash.toml")
	data := `Info = "test settings"

[Aquahash]
Algorithm = "ethash"
PowMode = "test"

[Log]
Level = "debug"
JSON = true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test settings", got.Info)
	assert.Equal(t, aquahash.AlgorithmEthash, got.Aquahash.Algorithm)
	assert.Equal(t, aquahash.ModeTest, got.Aquahash.PowMode)
	assert.Equal(t, aquahash.DefaultConfig.CachesInMem, got.Aquahash.CachesInMem)
	assert.Equal(t, LogConfig{Level: "debug", JSON: true}, got.Log)
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"algo":    "[Aquahash]\nAlgorithm = \"scrypt\"\n",
		"level":   "[Log]\nLevel = \"loud\"\n",
		"unknown": "[Aquahash]\nCaches = 3\n",
		"mode":    "[Aquahash]\nPowMode = \"turbo\"\n",
	} {
		path := filepath.Join(dir, name+".toml")
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		_, err := LoadFile(path)
		assert.Error(t, err, name)
	}
}

func TestLoadFileDatasetDir(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "dags")
	for value, want := range map[string]string{
		"dags":        filepath.Join(dir, "dags"),
		"./sub/../dd": filepath.Join(dir, "dd"),
		abs:           abs,
	} {
		path := filepath.Join(dir, "aquahash.toml")
		data := "[Aquahash]\nDatasetDir = " + strconv.Quote(value) + "\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		got, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, got.Aquahash.DatasetDir, value)
	}
}

func TestCopy(t *testing.T) {
	a := Default()
	b := a.Copy()
	b.Aquahash.Threads = 7
	assert.Zero(t, a.Aquahash.Threads)
	assert.Nil(t, (*File)(nil).Copy())
}

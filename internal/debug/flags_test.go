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

package debug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"gitlab.com/aquachain/ethash/common/config"
)

// runFlags parses args with the debug flags and hands back the log settings.
func runFlags(t *testing.T, cfg config.LogConfig, args ...string) (config.LogConfig, error) {
	t.Helper()
	var (
		got config.LogConfig
		err error
	)
	app := cli.NewApp()
	app.Flags = Flags
	app.Action = func(ctx *cli.Context) error {
		got, err = logSettings(ctx, cfg)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"aquahash"}, args...)))
	return got, err
}

func TestLogSettings(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("COLOR", "")
	t.Setenv("JSONLOG", "")

	got, err := runFlags(t, config.LogConfig{})
	require.NoError(t, err)
	assert.Equal(t, config.LogConfig{Level: "info"}, got)

	got, err = runFlags(t, config.LogConfig{Level: "warn", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, config.LogConfig{Level: "warn", JSON: true}, got)

	got, err = runFlags(t, config.LogConfig{Level: "warn"}, "--verbosity", "5", "--color")
	require.NoError(t, err)
	assert.Equal(t, config.LogConfig{Level: "trce", Color: true}, got)

	t.Setenv("NO_COLOR", "1")
	got, err = runFlags(t, config.LogConfig{Color: true})
	require.NoError(t, err)
	assert.False(t, got.Color)

	_, err = runFlags(t, config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.out")
	require.NoError(t, Handler.StartCPUProfile(cpu))
	assert.Error(t, Handler.StartCPUProfile(cpu))
	require.NoError(t, Handler.StopCPUProfile())
	assert.Error(t, Handler.StopCPUProfile())

	tr := filepath.Join(dir, "trace.out")
	require.NoError(t, Handler.StartGoTrace(tr))
	require.NoError(t, Handler.StopGoTrace())

	mem := filepath.Join(dir, "mem.out")
	require.NoError(t, Handler.WriteMemProfile(mem))
	for _, f := range []string{cpu, tr, mem} {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/aqua")
	assert.Equal(t, "/home/aqua/x.out", expandHome("~/x.out"))
	assert.Equal(t, "rel/x.out", expandHome("rel//x.out"))
}

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

// Package utils contains internal helper functions for aquahash commands.
package utils

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli"
	"gitlab.com/aquachain/ethash/internal/debug"
)

var (
	ConfigFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML settings file",
	}
	AlgorithmFlag = cli.StringFlag{
		Name:  "algo",
		Usage: "Proof-of-work algorithm (ethash or progpow)",
	}
	PowModeFlag = cli.StringFlag{
		Name:  "powmode",
		Usage: "Verification mode (normal, full, test or fake)",
	}
	ThreadsFlag = cli.IntFlag{
		Name:   "threads",
		Usage:  "Search and dataset threads, all CPUs when zero",
		EnvVar: "AQUAHASH_THREADS",
	}
	CachesInMemFlag = cli.IntFlag{
		Name:  "cachesinmem",
		Usage: "Epoch contexts kept in memory",
	}
	DatasetDirFlag = cli.StringFlag{
		Name:  "datasetdir",
		Usage: "Directory for full datasets (powmode full)",
	}
	// EngineFlags configure the proof-of-work engine.
	EngineFlags = []cli.Flag{
		ConfigFileFlag, AlgorithmFlag, PowModeFlag, ThreadsFlag, CachesInMemFlag, DatasetDirFlag,
	}
)

// NewApp creates an app with sane defaults.
func NewApp(gitCommit, usage string) *cli.App {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Author = ""
	app.Email = ""
	app.Version = "0.1.0"
	if len(gitCommit) >= 8 {
		app.Version += "-" + gitCommit[:8]
	}
	app.Usage = usage
	app.Flags = append(append([]cli.Flag{}, EngineFlags...), debug.Flags...)
	return app
}

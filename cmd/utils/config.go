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

package utils

import (
	"github.com/urfave/cli"
	"gitlab.com/aquachain/ethash/common/config"
	"gitlab.com/aquachain/ethash/common/sense"
	"gitlab.com/aquachain/ethash/consensus/aquahash"
)

// MakeConfig loads the settings file named by --config, or the defaults,
// and applies the engine flags on top.
func MakeConfig(ctx *cli.Context) (*config.File, error) {
	cfg := config.Default()
	if file := ctx.GlobalString(ConfigFileFlag.Name); file != "" {
		var err error
		if cfg, err = config.LoadFile(file); err != nil {
			return nil, err
		}
	}
	if ctx.GlobalIsSet(AlgorithmFlag.Name) {
		cfg.Aquahash.Algorithm = ctx.GlobalString(AlgorithmFlag.Name)
	}
	if ctx.GlobalIsSet(PowModeFlag.Name) {
		if err := cfg.Aquahash.PowMode.UnmarshalText([]byte(ctx.GlobalString(PowModeFlag.Name))); err != nil {
			return nil, err
		}
	}
	if ctx.GlobalIsSet(ThreadsFlag.Name) {
		cfg.Aquahash.Threads = ctx.GlobalInt(ThreadsFlag.Name)
	}
	if ctx.GlobalIsSet(CachesInMemFlag.Name) {
		cfg.Aquahash.CachesInMem = ctx.GlobalInt(CachesInMemFlag.Name)
	} else {
		cfg.Aquahash.CachesInMem = int(sense.EnvUint("AQUAHASH_CACHES", uint64(cfg.Aquahash.CachesInMem)))
	}
	if ctx.GlobalIsSet(DatasetDirFlag.Name) {
		cfg.Aquahash.DatasetDir = ctx.GlobalString(DatasetDirFlag.Name)
	}
	if cfg.Aquahash.DatasetDir == "" && cfg.Aquahash.PowMode == aquahash.ModeFull {
		cfg.Aquahash.DatasetDir = sense.EnvOr("AQUAHASH_DATASETDIR", "")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MakeEngine creates the engine described by cfg.
func MakeEngine(cfg *config.File) (*aquahash.Aquahash, error) {
	c := *cfg.Aquahash
	return aquahash.New(&c)
}

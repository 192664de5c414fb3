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

// Package config holds the settings file shared by the aquahash commands.
package config

import (
	"fmt"
	"path/filepath"

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/log"
	"gitlab.com/aquachain/ethash/common/toml"
	"gitlab.com/aquachain/ethash/consensus/aquahash"
)

type AquahashConfig = aquahash.Config

// LogConfig selects the root log handler.
type LogConfig struct {
	Level string `toml:",omitempty"` // crit, error, warn, info, debug or trace
	JSON  bool   `toml:",omitempty"`
	Color bool   `toml:",omitempty"`
}

// File is the layout of a settings file.
type File struct {
	Info     any `toml:",omitempty"` // this is so config file can have a comment at the top and still parse
	Aquahash *AquahashConfig
	Log      LogConfig
}

// Default returns the settings used when no file is given.
func Default() *File {
	c := aquahash.DefaultConfig
	return &File{
		Aquahash: &c,
		Log:      LogConfig{Level: "info"},
	}
}

// Copy returns a deep copy.
func (a *File) Copy() *File {
	if a == nil {
		return nil
	}
	var c = *a
	if a.Aquahash != nil {
		c.Aquahash = new(AquahashConfig)
		*c.Aquahash = *a.Aquahash
	}
	return &c
}

// Validate reports settings the engine would reject.
func (a *File) Validate() error {
	if a.Aquahash == nil {
		return fmt.Errorf("missing [Aquahash] section")
	}
	if _, err := aquahash.AlgorithmByName(a.Aquahash.Algorithm); err != nil {
		return err
	}
	if a.Aquahash.PowMode > aquahash.ModeFake {
		return fmt.Errorf("unknown pow mode %v", a.Aquahash.PowMode)
	}
	if a.Aquahash.PowMode == aquahash.ModeFull && a.Aquahash.DatasetDir == "" {
		log.Warn("Full mode without a dataset dir keeps every dataset in memory")
	}
	if a.Log.Level != "" {
		if _, err := log.ParseLevel(a.Log.Level); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads a settings file over the defaults.
func LoadFile(path string) (*File, error) {
	cfg := Default()
	if err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	// dataset directories are relative to the settings file
	if dir := cfg.Aquahash.DatasetDir; dir != "" {
		cfg.Aquahash.DatasetDir = common.AbsolutePath(filepath.Dir(path), common.ExpandHome(dir))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the settings to path.
func (a *File) Save(path string) error {
	return toml.EncodeFile(path, a)
}

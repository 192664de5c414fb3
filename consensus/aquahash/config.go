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

package aquahash

import (
	"fmt"
	"strings"

	"gitlab.com/aquachain/ethash/consensus/ethash"
)

// Mode defines the type and amount of PoW verification an aquahash engine
// makes.
type Mode uint

const (
	ModeNormal Mode = iota // light contexts, dataset items derived on demand
	ModeFull               // materialized datasets, in memory or DatasetDir
	ModeTest               // tiny test sized caches and datasets
	ModeFake               // accept everything, no hashing
)

var modeNames = [...]string{"normal", "full", "test", "fake"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint(m))
}

// Params returns the protocol constants a mode hashes with, nil for
// ModeFake.
func (m Mode) Params() *ethash.Params {
	switch m {
	case ModeTest:
		return ethash.TestParams
	case ModeFake:
		return nil
	}
	return ethash.DefaultParams
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if int(m) >= len(modeNames) {
		return nil, fmt.Errorf("unknown pow mode %d", uint(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range modeNames {
		if s == name {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown pow mode %q", s)
}

// Config are the configuration parameters of the aquahash engine.
type Config struct {
	Algorithm   string `toml:",omitempty"` // "ethash" or "progpow"
	PowMode     Mode
	CachesInMem int    // epoch contexts kept in memory
	DatasetDir  string `toml:",omitempty"` // dataset files for ModeFull
	Threads     int    `toml:",omitempty"` // search threads, all CPUs when zero
}

// DefaultConfig contains default settings for use on the main net.
var DefaultConfig = Config{
	Algorithm:   AlgorithmProgPoW,
	PowMode:     ModeNormal,
	CachesInMem: 2,
}

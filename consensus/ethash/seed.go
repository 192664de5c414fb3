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

package ethash

import (
	"sync"

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/crypto/sha3"
)

// seedChain remembers the last computed seed so consecutive epochs cost one
// keccak256 each. The lock only guards the memo, hashing runs outside it.
type seedChain struct {
	mu    sync.Mutex
	epoch uint64
	seed  common.Hash
}

var seeds = new(seedChain)

func (s *seedChain) get(epoch uint64) common.Hash {
	var (
		from = uint64(0)
		seed common.Hash
	)
	s.mu.Lock()
	if epoch >= s.epoch {
		from, seed = s.epoch, s.seed
	}
	s.mu.Unlock()

	seed = advanceSeed(seed, from, epoch)

	s.mu.Lock()
	s.epoch, s.seed = epoch, seed
	s.mu.Unlock()
	return seed
}

// advanceSeed hashes seed, the seed of epoch from, forward to epoch to.
func advanceSeed(seed common.Hash, from, to uint64) common.Hash {
	keccak256 := sha3.MakeHasher(sha3.NewKeccak256())
	for i := from; i < to; i++ {
		keccak256(seed[:], seed[:])
	}
	return seed
}

// SeedHash is the seed to use for generating the verification cache and the
// dataset of an epoch: keccak256 applied epoch times to 32 zero bytes.
func (p *Params) SeedHash(epoch uint64) (common.Hash, error) {
	if err := p.checkEpoch(epoch); err != nil {
		return common.Hash{}, err
	}
	return seeds.get(epoch), nil
}

// SeedHashDirect computes the seed from scratch without the shared memo.
func (p *Params) SeedHashDirect(epoch uint64) (common.Hash, error) {
	if err := p.checkEpoch(epoch); err != nil {
		return common.Hash{}, err
	}
	return advanceSeed(common.Hash{}, 0, epoch), nil
}

// SeedHash returns the seed of a mainnet epoch.
func SeedHash(epoch uint64) (common.Hash, error) { return DefaultParams.SeedHash(epoch) }

// SeedHashDirect computes the seed of a mainnet epoch without the memo.
func SeedHashDirect(epoch uint64) (common.Hash, error) { return DefaultParams.SeedHashDirect(epoch) }

// EpochFromSeed finds the epoch whose seed hash equals seed, searching up to
// MaxEpoch.
func (p *Params) EpochFromSeed(seed common.Hash) (uint64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	var cur common.Hash
	keccak256 := sha3.MakeHasher(sha3.NewKeccak256())
	for epoch := uint64(0); epoch <= p.MaxEpoch; epoch++ {
		if cur == seed {
			return epoch, nil
		}
		keccak256(cur[:], cur[:])
	}
	return 0, ErrUnknownSeed
}

// EpochFromSeed finds the mainnet epoch of a seed hash.
func EpochFromSeed(seed common.Hash) (uint64, error) {
	return DefaultParams.EpochFromSeed(seed)
}

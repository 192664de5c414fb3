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

// Package ethash implements the classic ethash proof-of-work: epoch seeds,
// the verification cache, dataset items, epoch contexts and hashimoto.
package ethash

import (
	"fmt"
	"math"
)

const (
	hashBytes    = 64         // Hash length in bytes
	hashWords    = 16         // Number of 32 bit ints in a hash
	mixBytes     = 128        // Width of mix
	mixWords     = 32         // Number of 32 bit ints in a mix
	loopAccesses = 64         // Number of accesses in hashimoto loop
	fnvPrime     = 0x01000193 // FNV-1 32 bit prime

	// L1CacheWords is the number of leading dataset words kept hot in every
	// context for the program-randomizing engine (16 KiB).
	L1CacheWords = 4096
	l1CacheItems = L1CacheWords / hashWords
)

// Params are the protocol constants of an ethash chain.
type Params struct {
	CacheInitBytes     uint64 // Bytes in cache at genesis
	CacheGrowthBytes   uint64 // Cache growth per epoch
	DatasetInitBytes   uint64 // Bytes in dataset at genesis
	DatasetGrowthBytes uint64 // Dataset growth per epoch
	EpochLength        uint64 // Blocks per epoch
	DatasetParents     uint32 // Number of parents of each dataset element
	CacheRounds        int    // Number of rounds in cache production
	MaxEpoch           uint64 // Highest epoch accepted
}

// DefaultParams are the mainnet ethash constants.
var DefaultParams = &Params{
	CacheInitBytes:     1 << 24,
	CacheGrowthBytes:   1 << 17,
	DatasetInitBytes:   1 << 30,
	DatasetGrowthBytes: 1 << 23,
	EpochLength:        30000,
	DatasetParents:     256,
	CacheRounds:        3,
	MaxEpoch:           32639,
}

// TestParams shrink the cache and dataset to a few kilobytes so whole epochs
// can be built in tests. Hashes computed with them are not mainnet hashes.
var TestParams = &Params{
	CacheInitBytes:     1 << 10,
	CacheGrowthBytes:   1 << 8,
	DatasetInitBytes:   1 << 15,
	DatasetGrowthBytes: 1 << 12,
	EpochLength:        30000,
	DatasetParents:     256,
	CacheRounds:        3,
	MaxEpoch:           1024,
}

// Validate reports whether the constants describe a buildable chain.
func (p *Params) Validate() error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: nil params", ErrInvalidParams)
	case p.EpochLength == 0:
		return fmt.Errorf("%w: zero epoch length", ErrInvalidParams)
	case p.CacheInitBytes < 4*hashBytes || p.CacheInitBytes%hashBytes != 0 || p.CacheGrowthBytes%hashBytes != 0:
		return fmt.Errorf("%w: cache sizes must be non-zero multiples of %d", ErrInvalidParams, hashBytes)
	case p.DatasetInitBytes < 4*mixBytes || p.DatasetInitBytes%mixBytes != 0 || p.DatasetGrowthBytes%mixBytes != 0:
		return fmt.Errorf("%w: dataset sizes must be non-zero multiples of %d", ErrInvalidParams, mixBytes)
	case p.DatasetInitBytes/hashBytes < 2*l1CacheItems:
		return fmt.Errorf("%w: dataset smaller than the l1 cache", ErrInvalidParams)
	case p.DatasetParents == 0 || p.CacheRounds < 0:
		return fmt.Errorf("%w: bad derivation rounds", ErrInvalidParams)
	}
	// cache and dataset item indices are 32 bit words
	if !fitsItems(p.CacheInitBytes, p.CacheGrowthBytes, p.MaxEpoch) ||
		!fitsItems(p.DatasetInitBytes, p.DatasetGrowthBytes, p.MaxEpoch) {
		return fmt.Errorf("%w: max epoch %d overflows 32 bit item indices", ErrInvalidParams, p.MaxEpoch)
	}
	return nil
}

// fitsItems reports whether init+growth*epoch bytes hold at most 2^32-1 items.
func fitsItems(init, growth, epoch uint64) bool {
	const limit = math.MaxUint32 * hashBytes
	if growth != 0 && epoch > (limit-min(init, limit))/growth {
		return false
	}
	return init <= limit
}

// EpochNumber returns the epoch of a block.
func (p *Params) EpochNumber(block uint64) uint64 {
	return block / p.EpochLength
}

// checkEpoch rejects broken params and epochs above the protocol maximum.
func (p *Params) checkEpoch(epoch uint64) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if epoch > p.MaxEpoch {
		return fmt.Errorf("%w: %d > %d", ErrEpochTooLarge, epoch, p.MaxEpoch)
	}
	return nil
}

// CacheSize returns the size of the verification cache of an epoch in bytes.
// The item count is the largest prime not above the linear growth target.
func (p *Params) CacheSize(epoch uint64) (uint64, error) {
	if err := p.checkEpoch(epoch); err != nil {
		return 0, err
	}
	return p.cacheSize(epoch), nil
}

func (p *Params) cacheSize(epoch uint64) uint64 {
	size := p.CacheInitBytes + p.CacheGrowthBytes*epoch - hashBytes
	for !isPrime(size / hashBytes) {
		size -= 2 * hashBytes
	}
	return size
}

// DatasetSize returns the size of the full dataset of an epoch in bytes. The
// number of 128 byte pages is the largest prime not above the target.
func (p *Params) DatasetSize(epoch uint64) (uint64, error) {
	if err := p.checkEpoch(epoch); err != nil {
		return 0, err
	}
	return p.datasetSize(epoch), nil
}

func (p *Params) datasetSize(epoch uint64) uint64 {
	size := p.DatasetInitBytes + p.DatasetGrowthBytes*epoch - mixBytes
	for !isPrime(size / mixBytes) {
		size -= 2 * mixBytes
	}
	return size
}

// isPrime is trial division over odd numbers, fine for the sizes involved
// (well below 2^32).
func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := uint64(3); i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// EpochNumber returns the mainnet epoch of a block.
func EpochNumber(block uint64) uint64 { return DefaultParams.EpochNumber(block) }

// CacheSize returns the mainnet cache size of an epoch in bytes.
func CacheSize(epoch uint64) (uint64, error) { return DefaultParams.CacheSize(epoch) }

// DatasetSize returns the mainnet dataset size of an epoch in bytes.
func DatasetSize(epoch uint64) (uint64, error) { return DefaultParams.DatasetSize(epoch) }

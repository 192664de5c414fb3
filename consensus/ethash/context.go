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
	"context"
	"encoding/binary"
	"fmt"

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/crypto/sha3"
)

// ItemFunc writes the 16 words of a dataset item into dst. An ItemFunc owns
// scratch buffers and must not be shared between goroutines.
type ItemFunc func(index uint32, dst []uint32)

// EpochContext is the immutable per-epoch state needed to hash: the light
// cache, the dataset size and optionally a materialized dataset. It is safe
// for concurrent use once built.
type EpochContext struct {
	Epoch uint64

	params       *Params
	seed         common.Hash
	cache        []uint32 // 16 words per item
	datasetItems uint64   // 64 byte items
	dataset      Dataset  // nil in light mode
	l1           []uint32 // first L1CacheWords words of the dataset
}

// BuildEpochContext builds a mainnet context. With full set the entire
// dataset is materialized in memory (gigabytes).
func BuildEpochContext(epoch uint64, full bool) (*EpochContext, error) {
	return DefaultParams.BuildEpochContext(context.Background(), epoch, full, 0)
}

// BuildEpochContext builds the context of an epoch. Dataset generation uses
// threads goroutines (all CPUs when zero) and stops early if ctx is done.
func (p *Params) BuildEpochContext(ctx context.Context, epoch uint64, full bool, threads int) (*EpochContext, error) {
	seed, err := p.SeedHash(epoch)
	if err != nil {
		return nil, err
	}
	c := &EpochContext{
		Epoch:        epoch,
		params:       p,
		seed:         seed,
		cache:        generateCache(p.cacheSize(epoch), p.CacheRounds, epoch, seed[:]),
		datasetItems: p.datasetSize(epoch) / hashBytes,
	}
	if full {
		dest := make([]uint32, c.datasetItems*hashWords)
		if err := generateDataset(ctx, dest, epoch, c.cache, p.DatasetParents, threads); err != nil {
			return nil, err
		}
		c.dataset = memDataset(dest)
	}
	c.l1 = c.buildL1()
	return c, nil
}

func (c *EpochContext) buildL1() []uint32 {
	l1 := make([]uint32, L1CacheWords)
	lookup := c.Lookup()
	for i := uint32(0); i < l1CacheItems; i++ {
		lookup(i, l1[i*hashWords:])
	}
	return l1
}

// WithDataset returns a copy of the context backed by a materialized
// dataset, typically loaded from disk.
func (c *EpochContext) WithDataset(d Dataset) (*EpochContext, error) {
	if d.NumItems() != c.datasetItems {
		return nil, fmt.Errorf("%w: %d items, want %d", ErrDatasetMismatch, d.NumItems(), c.datasetItems)
	}
	if e, ok := d.(interface{ Epoch() uint64 }); ok && e.Epoch() != c.Epoch {
		return nil, fmt.Errorf("%w: dataset epoch %d, context epoch %d", ErrDatasetMismatch, e.Epoch(), c.Epoch)
	}
	cpy := *c
	cpy.dataset = d
	return &cpy, nil
}

// GenerateDataset writes the full dataset of the context into dest, which
// must hold DatasetItems()*16 words.
func (c *EpochContext) GenerateDataset(ctx context.Context, dest []uint32, threads int) error {
	if uint64(len(dest)) != c.datasetItems*hashWords {
		return fmt.Errorf("%w: destination holds %d words, want %d", ErrDatasetMismatch, len(dest), c.datasetItems*hashWords)
	}
	return generateDataset(ctx, dest, c.Epoch, c.cache, c.params.DatasetParents, threads)
}

// Lookup returns an ItemFunc reading the dataset, or deriving items from the
// cache in light mode. Both produce identical words. An index outside the
// dataset is an internal fault and panics.
func (c *EpochContext) Lookup() ItemFunc {
	if c.dataset != nil {
		return func(index uint32, dst []uint32) {
			c.checkIndex(index)
			c.dataset.Item(index, dst)
		}
	}
	keccak512 := sha3.MakeHasher(sha3.NewKeccak512())
	mix := make([]byte, hashBytes)
	return func(index uint32, dst []uint32) {
		c.checkIndex(index)
		generateDatasetItem(c.cache, index, c.params.DatasetParents, keccak512, mix, dst)
	}
}

func (c *EpochContext) checkIndex(index uint32) {
	if uint64(index) >= c.datasetItems {
		panic(fmt.Sprintf("ethash: dataset index %d out of bounds (epoch %d, %d items)", index, c.Epoch, c.datasetItems))
	}
}

// Params returns the protocol constants the context was built with.
func (c *EpochContext) Params() *Params { return c.params }

// Seed returns the epoch seed hash.
func (c *EpochContext) Seed() common.Hash { return c.seed }

// Full reports whether a materialized dataset backs the context.
func (c *EpochContext) Full() bool { return c.dataset != nil }

// CacheItems is the number of 64 byte items in the light cache.
func (c *EpochContext) CacheItems() uint32 { return uint32(len(c.cache) / hashWords) }

// DatasetItems is the number of 64 byte items in the full dataset.
func (c *EpochContext) DatasetItems() uint64 { return c.datasetItems }

// L1 returns the first 16 KiB of the dataset as words. It must not be modified.
func (c *EpochContext) L1() []uint32 { return c.l1 }

// CacheBytes serializes the light cache, little endian.
func (c *EpochContext) CacheBytes() []byte {
	out := make([]byte, len(c.cache)*4)
	for i, w := range c.cache {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

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
	"runtime"
	"sync/atomic"
	"time"

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/log"
	"gitlab.com/aquachain/ethash/crypto/sha3"
	"golang.org/x/sync/errgroup"
)

// datasetChunk is the number of items a single generation task derives.
const datasetChunk = 1 << 14

// Dataset is a fully materialized dataset of 64 byte items.
type Dataset interface {
	// NumItems is the number of 64 byte items.
	NumItems() uint64
	// Item copies item index into dst as 16 little endian words.
	Item(index uint32, dst []uint32)
}

// memDataset is a dataset held in memory, 16 words per item.
type memDataset []uint32

func (d memDataset) NumItems() uint64 { return uint64(len(d) / hashWords) }

func (d memDataset) Item(index uint32, dst []uint32) {
	off := int(index) * hashWords
	copy(dst[:hashWords], d[off:off+hashWords])
}

// fnv is an algorithm inspired by the FNV hash, which in some cases is used as
// a non-associative substitute for XOR. Note that we multiply the prime with
// the full 32-bit input, in contrast with the FNV-1 algorithm which multiplies the
// prime with one byte (octet) in turn.
func fnv(a, b uint32) uint32 {
	return a*fnvPrime ^ b
}

// fnvHash mixes in data into mix using the ethash fnv method.
func fnvHash(mix []uint32, data []uint32) {
	for i := 0; i < len(mix); i++ {
		mix[i] = mix[i]*fnvPrime ^ data[i]
	}
}

// generateDatasetItem combines data from parents pseudorandomly selected
// cache items to produce a single dataset item, written to out as words.
// mix is a 64 byte scratch buffer.
func generateDatasetItem(cache []uint32, index uint32, parents uint32, keccak512 sha3.Hasher, mix []byte, out []uint32) {
	// Calculate the number of theoretical rows (we use one buffer nonetheless)
	rows := uint32(len(cache) / hashWords)

	// Initialize the mix
	base := (index % rows) * hashWords
	for i := uint32(0); i < hashWords; i++ {
		binary.LittleEndian.PutUint32(mix[i*4:], cache[base+i])
	}
	binary.LittleEndian.PutUint32(mix, cache[base]^index)
	keccak512(mix, mix)

	// Convert the mix to uint32s to avoid constant bit shifting
	intMix := out[:hashWords]
	for i := range intMix {
		intMix[i] = binary.LittleEndian.Uint32(mix[i*4:])
	}
	// fnv it with a lot of random cache nodes based on index
	for i := uint32(0); i < parents; i++ {
		parent := fnv(index^i, intMix[i%hashWords]) % rows
		fnvHash(intMix, cache[parent*hashWords:])
	}
	// Flatten the uint32 mix into a binary one and return
	for i, val := range intMix {
		binary.LittleEndian.PutUint32(mix[i*4:], val)
	}
	keccak512(mix, mix)
	for i := range intMix {
		intMix[i] = binary.LittleEndian.Uint32(mix[i*4:])
	}
}

// generateDataset fills dest with every dataset item derivable from cache.
// Items are independent, so chunks run on up to threads goroutines; ctx is
// checked between chunks.
func generateDataset(ctx context.Context, dest []uint32, epoch uint64, cache []uint32, parents uint32, threads int) error {
	logger := log.New("epoch", epoch)

	start := time.Now()
	items := uint64(len(dest) / hashWords)
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	var progress atomic.Uint64
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				logger.Info("Generating DAG in progress", "percentage", progress.Load()*100/items, "elapsed", common.PrettyDuration(time.Since(start)))
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for first := uint64(0); first < items; first += datasetChunk {
		if gctx.Err() != nil {
			break
		}
		first := first
		limit := min(first+datasetChunk, items)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			keccak512 := sha3.MakeHasher(sha3.NewKeccak512())
			mix := make([]byte, hashBytes)
			for index := first; index < limit; index++ {
				generateDatasetItem(cache, uint32(index), parents, keccak512, mix, dest[index*hashWords:])
			}
			progress.Add(limit - first)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("Aborted DAG generation", "elapsed", common.PrettyDuration(time.Since(start)), "err", err)
		return fmt.Errorf("dataset generation for epoch %d: %w", epoch, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("dataset generation for epoch %d: %w", epoch, err)
	}
	logger.Info("Generated ethash dataset", "items", items, "elapsed", common.PrettyDuration(time.Since(start)))
	return nil
}

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
	"encoding/binary"
	"sync/atomic"
	"time"

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/log"
	"gitlab.com/aquachain/ethash/crypto/sha3"
)

// generateCache creates a verification cache of a given size for an input
// seed. The cache production process involves first sequentially filling up
// size bytes, then performing rounds passes of Sergio Demian Lerner's
// RandMemoHash algorithm from Strict Memory Hard Hashing Functions (2014).
// The output is a set of 64 byte items, returned as little endian words.
func generateCache(size uint64, rounds int, epoch uint64, seed []byte) []uint32 {
	logger := log.New("epoch", epoch)

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)

		logFn := logger.Debug
		if elapsed > 3*time.Second {
			logFn = logger.Info
		}
		logFn("Generated ethash verification cache", "size", common.StorageSize(size), "elapsed", common.PrettyDuration(elapsed))
	}()

	cache := make([]byte, size)
	rows := int(size) / hashBytes

	// Start a monitoring goroutine to report progress on low end devices
	var progress atomic.Uint32
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
				logger.Info("Generating ethash verification cache", "percentage", uint64(progress.Load())*100/uint64(rows)/uint64(rounds+1), "elapsed", common.PrettyDuration(time.Since(start)))
			}
		}
	}()

	// Sequentially produce the initial dataset
	keccak512 := sha3.MakeHasher(sha3.NewKeccak512())
	keccak512(cache, seed)
	for offset := uint64(hashBytes); offset < size; offset += hashBytes {
		keccak512(cache[offset:], cache[offset-hashBytes:offset])
		progress.Add(1)
	}
	// Use a low-round version of randmemohash, in place and in order
	temp := make([]byte, hashBytes)
	for i := 0; i < rounds; i++ {
		for j := 0; j < rows; j++ {
			var (
				srcOff = ((j - 1 + rows) % rows) * hashBytes
				dstOff = j * hashBytes
				xorOff = int(binary.LittleEndian.Uint32(cache[dstOff:])%uint32(rows)) * hashBytes
			)
			for k := 0; k < hashBytes; k++ {
				temp[k] = cache[srcOff+k] ^ cache[xorOff+k]
			}
			keccak512(cache[dstOff:], temp)
			progress.Add(1)
		}
	}
	words := make([]uint32, size/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(cache[i*4:])
	}
	return words
}

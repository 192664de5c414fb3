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

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/crypto/sha3"
)

// Result is the output of a proof-of-work hash.
type Result struct {
	MixHash   common.Hash
	FinalHash common.Hash
}

// Hash runs hashimoto for a header hash and nonce against the context.
func Hash(c *EpochContext, header common.Hash, nonce uint64) Result {
	return hashimoto(header, nonce, c.datasetItems, c.Lookup())
}

// seedHash is keccak512(header || little endian nonce).
func seedHash(header common.Hash, nonce uint64) []byte {
	seed := make([]byte, 40)
	copy(seed, header[:])
	binary.LittleEndian.PutUint64(seed[32:], nonce)
	return sha3.Keccak512(seed)
}

// finalHash is keccak256(seed || mix).
func finalHash(seed []byte, mix common.Hash) common.Hash {
	return common.BytesToHash(sha3.Keccak256(seed, mix[:]))
}

// hashimoto aggregates data from the full dataset in order to produce our final
// value for a particular header hash and nonce.
func hashimoto(header common.Hash, nonce uint64, items uint64, lookup ItemFunc) Result {
	// Calculate the number of theoretical rows (we use one buffer nonetheless)
	rows := uint32(items * hashBytes / mixBytes)

	// Combine header+nonce into a 64 byte seed
	seed := seedHash(header, nonce)
	seedHead := binary.LittleEndian.Uint32(seed)

	// Start the mix with replicated seed
	mix := make([]uint32, mixWords)
	for i := 0; i < len(mix); i++ {
		mix[i] = binary.LittleEndian.Uint32(seed[i%hashWords*4:])
	}
	// Mix in random dataset nodes
	temp := make([]uint32, mixWords)

	for i := 0; i < loopAccesses; i++ {
		parent := fnv(uint32(i)^seedHead, mix[i%mixWords]) % rows
		for j := uint32(0); j < mixBytes/hashBytes; j++ {
			lookup(2*parent+j, temp[j*hashWords:])
		}
		fnvHash(mix, temp)
	}
	// Compress mix
	for i := 0; i < len(mix); i += 4 {
		mix[i/4] = fnv(fnv(fnv(mix[i], mix[i+1]), mix[i+2]), mix[i+3])
	}
	mix = mix[:len(mix)/4]

	var res Result
	for i, val := range mix {
		binary.LittleEndian.PutUint32(res.MixHash[i*4:], val)
	}
	res.FinalHash = finalHash(seed, res.MixHash)
	return res
}

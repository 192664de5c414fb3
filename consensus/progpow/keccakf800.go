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

package progpow

import (
	"encoding/binary"
	"math/bits"

	"gitlab.com/aquachain/ethash/common"
)

// keccakf800 round constants, the low halves of the keccak-f[1600] ones.
var keccakf800RC = [22]uint32{
	0x00000001, 0x00008082, 0x0000808a, 0x80008000, 0x0000808b, 0x80000001,
	0x80008081, 0x00008009, 0x0000008a, 0x00000088, 0x80008009, 0x8000000a,
	0x8000808b, 0x0000008b, 0x00008089, 0x00008003, 0x00008002, 0x00000080,
	0x0000800a, 0x8000000a, 0x80008081, 0x00008080,
}

var (
	keccakRotc = [24]int{1, 3, 6, 10, 15, 21, 28, 4, 13, 23, 2, 14, 27, 9, 24, 8, 25, 11, 30, 18, 7, 29, 20, 12}
	keccakPiln = [24]int{10, 7, 11, 17, 18, 3, 5, 16, 8, 21, 24, 4, 15, 23, 19, 13, 12, 2, 20, 14, 22, 9, 6, 1}
)

// keccakF800 is the 32 bit keccak permutation, 22 rounds.
func keccakF800(st *[25]uint32) {
	var bc [5]uint32
	for r := 0; r < len(keccakf800RC); r++ {
		// theta
		for i := 0; i < 5; i++ {
			bc[i] = st[i] ^ st[i+5] ^ st[i+10] ^ st[i+15] ^ st[i+20]
		}
		for i := 0; i < 5; i++ {
			t := bc[(i+4)%5] ^ bits.RotateLeft32(bc[(i+1)%5], 1)
			for j := 0; j < 25; j += 5 {
				st[j+i] ^= t
			}
		}
		// rho pi
		t := st[1]
		for i := 0; i < 24; i++ {
			j := keccakPiln[i]
			bc[0] = st[j]
			st[j] = bits.RotateLeft32(t, keccakRotc[i])
			t = bc[0]
		}
		// chi
		for j := 0; j < 25; j += 5 {
			copy(bc[:], st[j:j+5])
			for i := 0; i < 5; i++ {
				st[j+i] ^= ^bc[(i+1)%5] & bc[(i+2)%5]
			}
		}
		// iota
		st[0] ^= keccakf800RC[r]
	}
}

// keccakProgpow256 absorbs header, seed and mix words into a single f800
// permutation and squeezes 8 words.
func keccakProgpow256(header common.Hash, seed uint64, mix common.Hash) common.Hash {
	var st [25]uint32
	for i := 0; i < 8; i++ {
		st[i] = binary.LittleEndian.Uint32(header[i*4:])
	}
	st[8] = uint32(seed)
	st[9] = uint32(seed >> 32)
	for i := 0; i < 8; i++ {
		st[10+i] = binary.LittleEndian.Uint32(mix[i*4:])
	}
	keccakF800(&st)

	var out common.Hash
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], st[i])
	}
	return out
}

// keccakProgpow64 derives the 64 bit hash seed of a header and nonce, the
// first 8 output bytes read big endian.
func keccakProgpow64(header common.Hash, nonce uint64) uint64 {
	h := keccakProgpow256(header, nonce, common.Hash{})
	return binary.BigEndian.Uint64(h[:8])
}

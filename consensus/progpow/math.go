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

import "math/bits"

const (
	fnvPrime       = 0x01000193
	fnvOffsetBasis = 0x811c9dc5
)

// kiss99 is Marsaglia's KISS99 generator: a multiply-with-carry pair, a
// 3-shift register and a linear congruential step.
type kiss99 struct {
	z, w, jsr, jcong uint32
}

func (k *kiss99) next() uint32 {
	k.z = 36969*(k.z&65535) + (k.z >> 16)
	k.w = 18000*(k.w&65535) + (k.w >> 16)
	mwc := (k.z << 16) + k.w

	k.jsr ^= k.jsr << 17
	k.jsr ^= k.jsr >> 13
	k.jsr ^= k.jsr << 5

	k.jcong = 69069*k.jcong + 1234567

	return (mwc ^ k.jcong) + k.jsr
}

func fnv1a(h, d uint32) uint32 {
	return (h ^ d) * fnvPrime
}

// randomMath applies one of 11 operations picked by selector.
func randomMath(a, b, selector uint32) uint32 {
	switch selector % 11 {
	case 0:
		return a + b
	case 1:
		return a * b
	case 2:
		hi, _ := bits.Mul32(a, b)
		return hi
	case 3:
		return min(a, b)
	case 4:
		return bits.RotateLeft32(a, int(b%32))
	case 5:
		return bits.RotateLeft32(a, -int(b%32))
	case 6:
		return a & b
	case 7:
		return a | b
	case 8:
		return a ^ b
	case 9:
		return uint32(bits.LeadingZeros32(a) + bits.LeadingZeros32(b))
	default:
		return uint32(bits.OnesCount32(a) + bits.OnesCount32(b))
	}
}

// randomMerge folds b into a keeping entropy from both. Rotations never use
// a zero distance.
func randomMerge(a, b, selector uint32) uint32 {
	x := (selector>>16)%31 + 1
	switch selector % 4 {
	case 0:
		return a*33 + b
	case 1:
		return (a ^ b) * 33
	case 2:
		return bits.RotateLeft32(a, int(x)) ^ b
	default:
		return bits.RotateLeft32(a, -int(x)) ^ b
	}
}

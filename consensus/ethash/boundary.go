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
	"fmt"

	"github.com/holiman/uint256"
	"gitlab.com/aquachain/ethash/common"
)

// MaxBoundary is 2^256-1, the boundary of difficulty one.
var MaxBoundary = common.Hash{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// CheckBoundary reports whether hash, read as a big endian integer, does
// not exceed boundary.
func CheckBoundary(hash, boundary common.Hash) bool {
	var h, b uint256.Int
	h.SetBytes32(hash[:])
	b.SetBytes32(boundary[:])
	return h.Cmp(&b) <= 0
}

// BoundaryFromBytes checks and converts a big endian 32 byte boundary.
func BoundaryFromBytes(b []byte) (common.Hash, error) {
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: got %d", ErrInvalidBoundary, len(b))
	}
	return common.BytesToHash(b), nil
}

// BoundaryFromDifficulty returns floor(2^256 / difficulty). Difficulties of
// zero and one give MaxBoundary.
func BoundaryFromDifficulty(difficulty *uint256.Int) common.Hash {
	one := uint256.NewInt(1)
	if difficulty.Cmp(one) <= 0 {
		return MaxBoundary
	}
	all := new(uint256.Int).SetAllOne()
	// 2^256 = all + 1, so the quotient gains one when difficulty divides it
	q := new(uint256.Int).Div(all, difficulty)
	r := new(uint256.Int).Mod(all, difficulty)
	if r.AddUint64(r, 1).Eq(difficulty) {
		q.AddUint64(q, 1)
	}
	return common.Hash(q.Bytes32())
}

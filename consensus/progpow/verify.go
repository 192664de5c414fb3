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
	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/consensus/ethash"
)

// VerifyFinal checks the final hash implied by a claimed mix hash against
// the boundary without running the program.
func VerifyFinal(header common.Hash, nonce uint64, mix, boundary common.Hash) ethash.Verdict {
	return VerifyClaim(header, nonce, mix, common.Hash{}, boundary)
}

// VerifyClaim checks the claimed final hash (skipped when zero) and the
// boundary without running the program.
func VerifyClaim(header common.Hash, nonce uint64, mix, final, boundary common.Hash) ethash.Verdict {
	claimed := keccakProgpow256(header, keccakProgpow64(header, nonce), mix)
	if !final.IsZero() && claimed != final {
		return ethash.VerdictFinalMismatch
	}
	if !ethash.CheckBoundary(claimed, boundary) {
		return ethash.VerdictBoundaryExceeded
	}
	return ethash.VerdictOK
}

// VerifyMix runs the period program of block and compares the mix hash.
func VerifyMix(c *ethash.EpochContext, block uint64, header common.Hash, nonce uint64, mix common.Hash) ethash.Verdict {
	if hashMix(c, ProgramFor(block), keccakProgpow64(header, nonce)) != mix {
		return ethash.VerdictMixMismatch
	}
	return ethash.VerdictOK
}

// Verify recomputes the ProgPoW hash of header and nonce at block. A zero
// final hash skips the comparison against the claimed final hash.
func Verify(c *ethash.EpochContext, block uint64, header common.Hash, nonce uint64, mix, final, boundary common.Hash) ethash.Verdict {
	if v := VerifyClaim(header, nonce, mix, final, boundary); !v.OK() {
		return v
	}
	return VerifyMix(c, block, header, nonce, mix)
}

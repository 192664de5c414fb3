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
	"gitlab.com/aquachain/ethash/common"
)

// Verdict is the outcome of a proof-of-work verification. Anything but
// VerdictOK is a normal negative result, not an error.
type Verdict int

const (
	VerdictOK Verdict = iota
	VerdictMixMismatch
	VerdictFinalMismatch
	VerdictBoundaryExceeded
)

func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "ok"
	case VerdictMixMismatch:
		return "mix hash mismatch"
	case VerdictFinalMismatch:
		return "final hash mismatch"
	case VerdictBoundaryExceeded:
		return "boundary exceeded"
	}
	return "unknown verdict"
}

// OK is shorthand for v == VerdictOK.
func (v Verdict) OK() bool { return v == VerdictOK }

// VerifyFinal checks the final hash implied by a claimed mix hash against
// the boundary without touching the dataset.
func VerifyFinal(header common.Hash, nonce uint64, mix, boundary common.Hash) Verdict {
	return VerifyClaim(header, nonce, mix, common.Hash{}, boundary)
}

// VerifyClaim runs the checks that need no epoch context: the final hash
// implied by mix must equal the claimed one (unless final is zero) and lie
// within the boundary.
func VerifyClaim(header common.Hash, nonce uint64, mix, final, boundary common.Hash) Verdict {
	claimed := finalHash(seedHash(header, nonce), mix)
	if !final.IsZero() && claimed != final {
		return VerdictFinalMismatch
	}
	if !CheckBoundary(claimed, boundary) {
		return VerdictBoundaryExceeded
	}
	return VerdictOK
}

// VerifyMix recomputes the mix hash of header and nonce over the dataset.
func VerifyMix(c *EpochContext, header common.Hash, nonce uint64, mix common.Hash) Verdict {
	if Hash(c, header, nonce).MixHash != mix {
		return VerdictMixMismatch
	}
	return VerdictOK
}

// Verify recomputes the proof-of-work of header and nonce. A zero final
// hash skips the comparison against the claimed final hash. The cheap
// boundary check runs before the dataset is touched.
func Verify(c *EpochContext, header common.Hash, nonce uint64, mix, final, boundary common.Hash) Verdict {
	if v := VerifyClaim(header, nonce, mix, final, boundary); !v.OK() {
		return v
	}
	return VerifyMix(c, header, nonce, mix)
}

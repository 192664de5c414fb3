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

// Package progpow implements ProgPoW 0.9.2, the program-randomizing
// successor of ethash, on top of ethash epoch contexts.
package progpow

import (
	"encoding/binary"

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/consensus/ethash"
)

const (
	PeriodLength = 50 // Blocks per program
	Lanes        = 16 // Parallel lanes sharing a dataset load
	Regs         = 32 // Registers per lane
	DagLoads     = 4  // Words each lane loads per round
	CntCache     = 12 // Cache ops per round
	CntMath      = 20 // Math ops per round
	CntDag       = 64 // Rounds, one dataset load each

	l1Words   = ethash.L1CacheWords
	itemWords = Lanes * DagLoads // words in one 2048 bit dataset item
	itemParts = itemWords / 16   // 64 byte items making up one
)

// Hash computes the ProgPoW result of a header and nonce at block.
func Hash(c *ethash.EpochContext, block uint64, header common.Hash, nonce uint64) ethash.Result {
	return HashWithProgram(c, ProgramFor(block), header, nonce)
}

// HashWithProgram is Hash with an explicit program, so callers hashing many
// nonces of a period reuse it.
func HashWithProgram(c *ethash.EpochContext, p *Program, header common.Hash, nonce uint64) ethash.Result {
	seed := keccakProgpow64(header, nonce)
	mix := hashMix(c, p, seed)
	return ethash.Result{
		MixHash:   mix,
		FinalHash: keccakProgpow256(header, seed, mix),
	}
}

// initMix fills each lane's registers from a KISS99 stream keyed by the
// hash seed and the lane number.
func initMix(seed uint64) *[Lanes][Regs]uint32 {
	var mix [Lanes][Regs]uint32
	z := fnv1a(fnvOffsetBasis, uint32(seed))
	w := fnv1a(z, uint32(seed>>32))
	for l := range mix {
		jsr := fnv1a(w, uint32(l))
		rng := kiss99{z: z, w: w, jsr: jsr, jcong: fnv1a(jsr, uint32(l))}
		for i := range mix[l] {
			mix[l][i] = rng.next()
		}
	}
	return &mix
}

func hashMix(c *ethash.EpochContext, p *Program, seed uint64) common.Hash {
	var (
		mix      = initMix(seed)
		lookup   = c.Lookup()
		l1       = c.L1()
		numItems = uint32(c.DatasetItems() / itemParts)
		item     [itemWords]uint32
	)
	for r := uint32(0); r < CntDag; r++ {
		// lanes take turns choosing the shared load
		index := mix[r%Lanes][0] % numItems
		for k := uint32(0); k < itemParts; k++ {
			lookup(index*itemParts+k, item[k*16:])
		}
		for _, op := range p.Ops {
			switch op.Kind {
			case OpCache:
				for l := range mix {
					offset := mix[l][op.Src1] % l1Words
					mix[l][op.Dst] = randomMerge(mix[l][op.Dst], l1[offset], op.Sel1)
				}
			case OpMath:
				for l := range mix {
					data := randomMath(mix[l][op.Src1], mix[l][op.Src2], op.Sel1)
					mix[l][op.Dst] = randomMerge(mix[l][op.Dst], data, op.Sel2)
				}
			}
		}
		for l := uint32(0); l < Lanes; l++ {
			offset := ((l ^ r) % Lanes) * DagLoads
			for i := uint32(0); i < DagLoads; i++ {
				dst := p.DagDst[i]
				mix[l][dst] = randomMerge(mix[l][dst], item[offset+i], p.DagSel[i])
			}
		}
	}

	// Reduce registers per lane, then lanes into 8 words
	var laneHash [Lanes]uint32
	for l := range mix {
		laneHash[l] = fnvOffsetBasis
		for _, v := range mix[l] {
			laneHash[l] = fnv1a(laneHash[l], v)
		}
	}
	var words [8]uint32
	for i := range words {
		words[i] = fnvOffsetBasis
	}
	for l, h := range laneHash {
		words[l%8] = fnv1a(words[l%8], h)
	}
	var out common.Hash
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

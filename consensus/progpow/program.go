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
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

// mixRNGState generates a program: a KISS99 stream seeded from the period
// plus shuffled destination and source register sequences. Every register
// appears once in each run of Regs draws from nextDst or nextSrc.
type mixRNGState struct {
	rng kiss99

	dstSeq     [Regs]uint32
	srcSeq     [Regs]uint32
	dstCounter uint32
	srcCounter uint32
}

func newMixRNGState(period uint64) *mixRNGState {
	var (
		lo = uint32(period)
		hi = uint32(period >> 32)
	)
	s := new(mixRNGState)
	s.rng.z = fnv1a(fnvOffsetBasis, lo)
	s.rng.w = fnv1a(s.rng.z, hi)
	s.rng.jsr = fnv1a(s.rng.w, lo)
	s.rng.jcong = fnv1a(s.rng.jsr, hi)

	for i := uint32(0); i < Regs; i++ {
		s.dstSeq[i] = i
		s.srcSeq[i] = i
	}
	// Fisher-Yates, both sequences from the same stream
	for i := uint32(Regs); i > 1; i-- {
		j := s.rng.next() % i
		s.dstSeq[i-1], s.dstSeq[j] = s.dstSeq[j], s.dstSeq[i-1]
		j = s.rng.next() % i
		s.srcSeq[i-1], s.srcSeq[j] = s.srcSeq[j], s.srcSeq[i-1]
	}
	return s
}

func (s *mixRNGState) nextDst() uint32 {
	d := s.dstSeq[s.dstCounter%Regs]
	s.dstCounter++
	return d
}

func (s *mixRNGState) nextSrc() uint32 {
	r := s.srcSeq[s.srcCounter%Regs]
	s.srcCounter++
	return r
}

// OpKind distinguishes the two program instructions.
type OpKind uint8

const (
	// OpCache merges an L1 word addressed by Src1 into Dst.
	OpCache OpKind = iota
	// OpMath merges randomMath(Src1, Src2) into Dst.
	OpMath
)

// Op is one program instruction. Cache ops use Sel1 as the merge selector,
// math ops use Sel1 for the operation and Sel2 for the merge.
type Op struct {
	Kind       OpKind
	Src1, Src2 uint32
	Dst        uint32
	Sel1, Sel2 uint32
}

// Program is the random instruction sequence of one period. It is run
// unchanged in each of the CntDag rounds of every hash in the period.
type Program struct {
	Period uint64
	Ops    []Op
	DagDst [DagLoads]uint32
	DagSel [DagLoads]uint32
}

// NewProgram generates the program of a period. Cache and math ops are
// interleaved, then the dataset merge destinations are drawn; the first
// always targets register 0, which feeds the next round's dataset index.
func NewProgram(period uint64) *Program {
	s := newMixRNGState(period)
	p := &Program{
		Period: period,
		Ops:    make([]Op, 0, CntCache+CntMath),
	}
	for i := 0; i < max(CntCache, CntMath); i++ {
		if i < CntCache {
			src := s.nextSrc()
			dst := s.nextDst()
			sel := s.rng.next()
			p.Ops = append(p.Ops, Op{Kind: OpCache, Src1: src, Dst: dst, Sel1: sel})
		}
		if i < CntMath {
			// two distinct sources
			srcRnd := s.rng.next() % (Regs * (Regs - 1))
			src1 := srcRnd % Regs
			src2 := srcRnd / Regs
			if src2 >= src1 {
				src2++
			}
			sel1 := s.rng.next()
			dst := s.nextDst()
			sel2 := s.rng.next()
			p.Ops = append(p.Ops, Op{Kind: OpMath, Src1: src1, Src2: src2, Dst: dst, Sel1: sel1, Sel2: sel2})
		}
	}
	for i := 0; i < DagLoads; i++ {
		if i > 0 {
			p.DagDst[i] = s.nextDst()
		}
		p.DagSel[i] = s.rng.next()
	}
	return p
}

var mathNames = [11]string{"add", "mul", "mulhi", "min", "rotl", "rotr", "and", "or", "xor", "clz", "popcnt"}

func mergeString(dst uint32, val string, sel uint32) string {
	x := (sel>>16)%31 + 1
	switch sel % 4 {
	case 0:
		return fmt.Sprintf("r%d = r%d*33 + %s", dst, dst, val)
	case 1:
		return fmt.Sprintf("r%d = (r%d ^ %s)*33", dst, dst, val)
	case 2:
		return fmt.Sprintf("r%d = rotl(r%d, %d) ^ %s", dst, dst, x, val)
	default:
		return fmt.Sprintf("r%d = rotr(r%d, %d) ^ %s", dst, dst, x, val)
	}
}

// String disassembles the program, one instruction per line.
func (p *Program) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "; period %d\n", p.Period)
	for i, op := range p.Ops {
		var val string
		switch op.Kind {
		case OpCache:
			val = fmt.Sprintf("l1[r%d %% %d]", op.Src1, l1Words)
			fmt.Fprintf(&b, "%02d cache %s\n", i, mergeString(op.Dst, val, op.Sel1))
		case OpMath:
			val = fmt.Sprintf("%s(r%d, r%d)", mathNames[op.Sel1%11], op.Src1, op.Src2)
			fmt.Fprintf(&b, "%02d math  %s\n", i, mergeString(op.Dst, val, op.Sel2))
		}
	}
	for i := 0; i < DagLoads; i++ {
		fmt.Fprintf(&b, "%02d dag   %s\n", len(p.Ops)+i, mergeString(p.DagDst[i], fmt.Sprintf("dag[lane*%d+%d]", DagLoads, i), p.DagSel[i]))
	}
	return b.String()
}

// ProgramCache keeps generated programs by period.
type ProgramCache struct {
	cache *lru.Cache
}

// NewProgramCache creates a cache holding up to size programs.
func NewProgramCache(size int) *ProgramCache {
	cache, err := lru.New(size)
	if err != nil {
		panic(err) // only for size <= 0
	}
	return &ProgramCache{cache: cache}
}

// Get returns the program of a period, generating it on a miss.
func (c *ProgramCache) Get(period uint64) *Program {
	if p, ok := c.cache.Get(period); ok {
		return p.(*Program)
	}
	p := NewProgram(period)
	c.cache.Add(period, p)
	return p
}

var programs = NewProgramCache(8)

// ProgramFor returns the program in force at a block.
func ProgramFor(block uint64) *Program {
	return programs.Get(block / PeriodLength)
}

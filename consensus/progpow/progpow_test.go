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
	"context"
	"math/bits"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	mapset "github.com/deckarep/golang-set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/log"
	"gitlab.com/aquachain/ethash/consensus/ethash"
)

func init() {
	log.ResetForTesting()
}

func testContext(t testing.TB, epoch uint64) *ethash.EpochContext {
	t.Helper()
	c, err := ethash.TestParams.BuildEpochContext(context.Background(), epoch, false, 0)
	require.NoError(t, err)
	return c
}

func TestKiss99(t *testing.T) {
	rng := kiss99{z: 362436069, w: 521288629, jsr: 123456789, jcong: 380116160}
	assert.Equal(t, uint32(769445856), rng.next())
	assert.Equal(t, uint32(742012328), rng.next())
	assert.Equal(t, uint32(2121196314), rng.next())
	assert.Equal(t, uint32(2805620942), rng.next())
	for i := 0; i < 100000-5; i++ {
		rng.next()
	}
	assert.Equal(t, uint32(941074834), rng.next())
}

func TestFnv1a(t *testing.T) {
	assert.Equal(t, uint32(0xD37EE61A), fnv1a(0x811C9DC5, 0xDDD0A47B))
	assert.Equal(t, uint32(0xDEDC7AD4), fnv1a(0xD37EE61A, 0xEE304846))
}

func TestRandomMath(t *testing.T) {
	tests := []struct{ a, b, sel, want uint32 }{
		{0x8626BB1F, 0xBBDFBC4E, 0x883E5B49, 0x4206776D},
		{0x3F4BDFAC, 0xD79E414F, 0x36B71236, 0x4C5CB214},
		{0x6D175B7E, 0xC4E89D4C, 0x944ECABB, 0x53E9023F},
		{0x2EDDD94C, 0x7E70CB54, 0x3F472A85, 0x2EDDD94C},
		{0x61AE0E62, 0xE0596B32, 0x3F472A85, 0x61AE0E62},
		{0x8A81E396, 0x3F4BDFAC, 0xCEC46E67, 0x1E3968A8},
		{0x8A81E396, 0x7E70CB54, 0xDBE71FF7, 0x1E3968A8},
		{0xA7352F36, 0xA0EB7045, 0x59E7B9D8, 0xA0212004},
		{0xC89805AF, 0x64291E2F, 0x1BDC84A9, 0xECB91FAF},
		{0x760726D3, 0x79FC6A48, 0xC675CAC5, 0x0FFB4C9B},
		{0x75551D43, 0x3383BA34, 0x2863AD31, 0x00000003},
		{0xEA260841, 0xE92C44B7, 0xF83FFE7D, 0x0000001B},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, randomMath(tt.a, tt.b, tt.sel), "math %#x %#x sel %#x", tt.a, tt.b, tt.sel)
	}
	// clz of zero is the full width
	assert.Equal(t, uint32(64), randomMath(0, 0, 9))
}

func TestRandomMerge(t *testing.T) {
	tests := []struct{ a, b, sel, want uint32 }{
		{0x3B0BB37D, 0xA0212004, 0x9BD26AB0, 0x3CA34321},
		{0x10C02F0D, 0x870FA227, 0xD4F45515, 0x91C1326A},
		{0x24D2BAE4, 0x0FFB4C9B, 0x7FDBC2F2, 0x2EDDD94C},
		{0xDA39E821, 0x089C4008, 0x8B6CD8C3, 0x8A81E396},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, randomMerge(tt.a, tt.b, tt.sel), "merge %#x %#x sel %#x", tt.a, tt.b, tt.sel)
	}
}

func TestKeccakProgpow64(t *testing.T) {
	header := common.HexToHash("ffeeddccbbaa9988776655443322110000112233445566778899aabbccddeeff")
	assert.Equal(t, uint64(0xee304846ddd0a47b), keccakProgpow64(header, 0x123456789abcdef0))
	assert.Equal(t, uint64(0x5dd431e5fbc604f4), keccakProgpow64(common.Hash{}, 0))
}

func TestInitMix(t *testing.T) {
	mix := initMix(0xEE304846DDD0A47B)
	assert.Equal(t, []uint32{0x10C02F0D, 0x99891C9E, 0xC59649A0, 0x43F0394D}, mix[0][:4])
	assert.Equal(t, []uint32{0x4E46D05D, 0x2E77E734, 0x2C479399, 0x70712177}, mix[13][:4])
}

// Every register shows up exactly once per cycle of draws.
func TestMixRNGFairness(t *testing.T) {
	for _, period := range []uint64{0, 1, 3000, 1 << 40} {
		s := newMixRNGState(period)
		for cycle := 0; cycle < 3; cycle++ {
			dsts, srcs := mapset.NewThreadUnsafeSet(), mapset.NewThreadUnsafeSet()
			for i := 0; i < Regs; i++ {
				require.True(t, dsts.Add(s.nextDst()), "period %d: repeated dst within a cycle", period)
				require.True(t, srcs.Add(s.nextSrc()), "period %d: repeated src within a cycle", period)
			}
			assert.Equal(t, Regs, dsts.Cardinality())
			assert.Equal(t, Regs, srcs.Cardinality())
		}
	}
}

func TestProgramShape(t *testing.T) {
	p := NewProgram(0)
	require.Len(t, p.Ops, CntCache+CntMath)
	assert.Equal(t, Op{Kind: OpCache, Src1: 29, Dst: 18, Sel1: 2818227283}, p.Ops[0])
	assert.Equal(t, Op{Kind: OpMath, Src1: 21, Src2: 14, Dst: 31, Sel1: 634006992, Sel2: 1048274192}, p.Ops[1])
	assert.Equal(t, [DagLoads]uint32{0, 18, 31, 13}, p.DagDst)
	assert.Equal(t, [DagLoads]uint32{0x9a7b0cf1, 0xf3aa7686, 0xcc6d411e, 0x8fc1bdc3}, p.DagSel)

	var cache, math int
	for _, op := range p.Ops {
		switch op.Kind {
		case OpCache:
			cache++
		case OpMath:
			math++
			assert.NotEqual(t, op.Src1, op.Src2)
		}
		assert.Less(t, op.Dst, uint32(Regs))
	}
	assert.Equal(t, CntCache, cache)
	assert.Equal(t, CntMath, math)

	asm := p.String()
	assert.True(t, strings.HasPrefix(asm, "; period 0\n"))
	assert.Equal(t, CntCache+CntMath+DagLoads+1, strings.Count(asm, "\n"))
	assert.Contains(t, asm, "l1[r29 % 4096]")
}

// Blocks of one period run the same program, whatever the nonce.
func TestProgramStableWithinPeriod(t *testing.T) {
	first := NewProgram(7)
	for block := uint64(350); block < 400; block++ {
		p := ProgramFor(block)
		if !assert.Equal(t, first, p) {
			t.Logf("program mismatch at block %d:\n%s\nwant:\n%s", block, spew.Sdump(p), spew.Sdump(first))
		}
	}
	assert.NotEqual(t, first.Ops, ProgramFor(400).Ops)

	cache := NewProgramCache(2)
	assert.Same(t, cache.Get(7), cache.Get(7))
}

func TestHashDeterminism(t *testing.T) {
	c := testContext(t, 0)
	header := common.HexToHash("0xabcdef")
	a := Hash(c, 3, header, 42)
	b := Hash(c, 49, header, 42)
	assert.Equal(t, a, b, "same period")
	assert.NotEqual(t, a, Hash(c, 50, header, 42), "next period")
	assert.NotEqual(t, a, Hash(c, 3, header, 43))

	full, err := ethash.TestParams.BuildEpochContext(context.Background(), 0, true, 2)
	require.NoError(t, err)
	assert.Equal(t, a, Hash(full, 3, header, 42))
}

func TestVerify(t *testing.T) {
	c := testContext(t, 0)
	header := common.HexToHash("0x77")
	res := Hash(c, 5, header, 1000)

	assert.Equal(t, ethash.VerdictOK, Verify(c, 5, header, 1000, res.MixHash, res.FinalHash, ethash.MaxBoundary))
	assert.Equal(t, ethash.VerdictOK, Verify(c, 5, header, 1000, res.MixHash, common.Hash{}, res.FinalHash))
	assert.Equal(t, ethash.VerdictBoundaryExceeded, Verify(c, 5, header, 1000, res.MixHash, res.FinalHash, common.Hash{}))
	assert.Equal(t, ethash.VerdictMixMismatch, Verify(c, 55, header, 1000, res.MixHash, common.Hash{}, ethash.MaxBoundary))

	bad := res.FinalHash
	bad[0] ^= 0x80
	assert.Equal(t, ethash.VerdictFinalMismatch, Verify(c, 5, header, 1000, res.MixHash, bad, ethash.MaxBoundary))

	assert.Equal(t, ethash.VerdictOK, VerifyFinal(header, 1000, res.MixHash, ethash.MaxBoundary))
	assert.Equal(t, ethash.VerdictBoundaryExceeded, VerifyFinal(header, 1000, res.MixHash, common.Hash{}))
	assert.Equal(t, ethash.VerdictFinalMismatch, VerifyClaim(header, 1000, res.MixHash, bad, common.Hash{}))
	assert.Equal(t, ethash.VerdictOK, VerifyMix(c, 5, header, 1000, res.MixHash))
	assert.Equal(t, ethash.VerdictMixMismatch, VerifyMix(c, 55, header, 1000, res.MixHash))
}

func TestAvalanche(t *testing.T) {
	c := testContext(t, 0)
	rnd := rand.New(rand.NewSource(7))
	var header common.Hash
	rnd.Read(header[:])
	nonce := rnd.Uint64()
	p := ProgramFor(0)
	base := HashWithProgram(c, p, header, nonce).FinalHash

	const flips = 48
	total := 0
	for i := 0; i < flips; i++ {
		h, n := header, nonce
		if i%2 == 0 {
			bit := rnd.Intn(256)
			h[bit/8] ^= 1 << (bit % 8)
		} else {
			n ^= 1 << rnd.Intn(64)
		}
		got := HashWithProgram(c, p, h, n).FinalHash
		d := 0
		for j := range got {
			d += bits.OnesCount8(got[j] ^ base[j])
		}
		require.NotZero(t, d)
		total += d
	}
	assert.InDelta(t, 128, float64(total)/flips, 16)
}

// Mainnet vectors, needs the epoch caches.
func TestMainnetVectors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mainnet cache build in short mode")
	}
	store, err := ethash.NewStore(ethash.StoreConfig{CachesInMem: 2})
	require.NoError(t, err)
	defer store.Close()

	tests := []struct {
		block      uint64
		header     string
		nonce      uint64
		mix, final string
	}{
		{
			block:  0,
			header: "0000000000000000000000000000000000000000000000000000000000000000",
			nonce:  0,
			mix:    "0xfaeb1be51075b03a4ff44b335067951ead07a3b078539ace76fd56fc410557a3",
			final:  "0x63155f732f2bf556967f906155b510c917e48e99685ead76ea83f4eca03ab12b",
		},
		{
			block:  49,
			header: "63155f732f2bf556967f906155b510c917e48e99685ead76ea83f4eca03ab12b",
			nonce:  0x6ff2c47,
			mix:    "0xc789c1180f890ec555ff42042913465481e8e6bc512cb981e1c1108dc3f2227d",
			final:  "0x9e7248f20914913a73d80a70174c331b1d34f260535ac3631d770e656b5dd922",
		},
		{
			block:  30000,
			header: "ffeeddccbbaa9988776655443322110000112233445566778899aabbccddeeff",
			nonce:  0x123456789abcdef0,
			mix:    "0x11f19805c58ab46610ff9c719dcf0a5f18fa2f1605798eef770c47219274767d",
			final:  "0x5b7ccd472dbefdd95b895cac8ece67ff0deb5a6bd2ecc6e162383d00c3728ece",
		},
	}
	for _, tt := range tests {
		c, err := store.ForBlock(context.Background(), tt.block)
		require.NoError(t, err)
		header := common.HexToHash(tt.header)
		res := Hash(c, tt.block, header, tt.nonce)
		assert.Equal(t, tt.mix, res.MixHash.Hex(), "block %d", tt.block)
		assert.Equal(t, tt.final, res.FinalHash.Hex(), "block %d", tt.block)
		assert.Equal(t, ethash.VerdictOK, Verify(c, tt.block, header, tt.nonce, res.MixHash, res.FinalHash, ethash.MaxBoundary))
	}
}

func BenchmarkMixRNG(b *testing.B) {
	var sum uint32
	for i := 0; i < b.N; i++ {
		s := newMixRNGState(uint64(i))
		for j := 0; j < 16; j++ {
			sum += s.nextDst()
		}
	}
	_ = sum
}

func BenchmarkProgPoWHash(b *testing.B) {
	c := testContext(b, 0)
	for _, block := range []uint64{0, 10000000} {
		b.Run("block"+strconv.FormatUint(block, 10), func(b *testing.B) {
			header := common.HexToHash("0xffeeddccbbaa9988")
			for i := 0; i < b.N; i++ {
				Hash(c, block+uint64(i), header, uint64(i))
			}
		})
	}
}

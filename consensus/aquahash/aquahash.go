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

// Package aquahash implements the aquahash proof-of-work engine: a
// configured choice of ethash or ProgPoW over a shared epoch context store.
package aquahash

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/log"
	"gitlab.com/aquachain/ethash/consensus/aquahash/dagfile"
	"gitlab.com/aquachain/ethash/consensus/ethash"
	"gitlab.com/aquachain/ethash/crypto/sha3"
)

// Aquahash is a proof-of-work engine hashing and verifying header/nonce
// pairs with the configured algorithm.
type Aquahash struct {
	config *Config
	algo   Algorithm
	store  *ethash.Store // nil in fake mode
	log    log.LoggerI

	// Search related fields
	threads int

	// The fields below are hooks for testing
	fakeFail  *uint64       // Block number which fails PoW check even in fake mode
	fakeDelay time.Duration // Time delay to sleep for before returning from verify

	lock sync.Mutex // Ensures thread safety for the search fields
}

// New creates an aquahash engine from config.
func New(config *Config) (*Aquahash, error) {
	algo, err := AlgorithmByName(config.Algorithm)
	if err != nil {
		return nil, err
	}
	aquahash := &Aquahash{
		config:  config,
		algo:    algo,
		threads: config.Threads,
		log:     log.New("algo", algo.Name(), "mode", config.PowMode),
	}
	if config.PowMode == ModeFake {
		return aquahash, nil
	}
	if config.CachesInMem <= 0 {
		aquahash.log.Warn("One aquahash cache must always be in memory", "requested", config.CachesInMem)
		config.CachesInMem = 1
	}
	storeConfig := ethash.StoreConfig{
		Params:      config.PowMode.Params(),
		CachesInMem: config.CachesInMem,
		Full:        config.PowMode == ModeFull,
		Threads:     config.Threads,
	}
	switch config.PowMode {
	case ModeFull:
		if config.DatasetDir != "" {
			aquahash.log.Info("Disk storage enabled for aquahash DAGs", "dir", config.DatasetDir)
			storeConfig.Loader = dagfile.Loader(config.DatasetDir, config.Threads)
		}
	case ModeNormal, ModeTest:
	default:
		return nil, fmt.Errorf("unknown pow mode %v", config.PowMode)
	}
	if aquahash.store, err = ethash.NewStore(storeConfig); err != nil {
		return nil, err
	}
	return aquahash, nil
}

// NewTester creates a small sized aquahash PoW scheme useful only for testing
// purposes.
func NewTester(algorithm string) *Aquahash {
	aquahash, err := New(&Config{Algorithm: algorithm, CachesInMem: 1, PowMode: ModeTest})
	if err != nil {
		panic(err)
	}
	return aquahash
}

// NewFaker creates an aquahash engine with a fake PoW scheme that accepts
// every verification.
func NewFaker() *Aquahash {
	aquahash, _ := New(&Config{PowMode: ModeFake})
	return aquahash
}

// NewFakeFailer creates an aquahash engine with a fake PoW scheme that
// accepts every verification apart from the given block number.
func NewFakeFailer(fail uint64) *Aquahash {
	aquahash := NewFaker()
	aquahash.fakeFail = &fail
	return aquahash
}

// NewFakeDelayer creates an aquahash engine with a fake PoW scheme that
// accepts every verification, but delays verifications by some time.
func NewFakeDelayer(delay time.Duration) *Aquahash {
	aquahash := NewFaker()
	aquahash.fakeDelay = delay
	return aquahash
}

// Name returns the configured algorithm name.
func (aquahash *Aquahash) Name() string {
	return aquahash.algo.Name()
}

// Mode returns the verification mode.
func (aquahash *Aquahash) Mode() Mode {
	return aquahash.config.PowMode
}

// Params returns the protocol constants in use, nil in fake mode.
func (aquahash *Aquahash) Params() *ethash.Params {
	if aquahash.store == nil {
		return nil
	}
	return aquahash.store.Params()
}

// Threads returns the number of search threads currently enabled.
func (aquahash *Aquahash) Threads() int {
	aquahash.lock.Lock()
	defer aquahash.lock.Unlock()

	return aquahash.threads
}

// SetThreads updates the number of search threads used by the next Search.
// If zero is specified, the search will use all cores of the machine. A
// thread count below zero disables searching.
func (aquahash *Aquahash) SetThreads(threads int) {
	aquahash.lock.Lock()
	defer aquahash.lock.Unlock()

	aquahash.threads = threads
}

// Context returns the epoch context of a block.
func (aquahash *Aquahash) Context(ctx context.Context, block uint64) (*ethash.EpochContext, error) {
	if aquahash.store == nil {
		return nil, fmt.Errorf("no epoch contexts in %v mode", aquahash.config.PowMode)
	}
	return aquahash.store.ForBlock(ctx, block)
}

func toHash(b []byte, lengthErr error) (common.Hash, error) {
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: have %d, want %d", lengthErr, len(b), common.HashLength)
	}
	return common.BytesToHash(b), nil
}

// fakeResult stands in for a hash in fake mode.
func fakeResult(header common.Hash, nonce uint64) ethash.Result {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], nonce)
	return ethash.Result{FinalHash: common.BytesToHash(sha3.Keccak256(header[:], n[:]))}
}

// Hash computes the proof-of-work of a 32 byte header hash and nonce.
func (aquahash *Aquahash) Hash(ctx context.Context, block uint64, header []byte, nonce uint64) (ethash.Result, error) {
	h, err := toHash(header, ErrInvalidHeaderLength)
	if err != nil {
		return ethash.Result{}, err
	}
	if aquahash.config.PowMode == ModeFake {
		return fakeResult(h, nonce), nil
	}
	c, err := aquahash.Context(ctx, block)
	if err != nil {
		return ethash.Result{}, err
	}
	return aquahash.algo.Hash(c, block, h, nonce), nil
}

// Verify checks a claimed solution. A failed proof is reported through the
// verdict; errors are reserved for malformed input and context failures.
// An empty final hash skips the final hash comparison.
func (aquahash *Aquahash) Verify(ctx context.Context, block uint64, header []byte, nonce uint64, mix, final, boundary []byte) (ethash.Verdict, error) {
	h, err := toHash(header, ErrInvalidHeaderLength)
	if err != nil {
		return 0, err
	}
	m, err := toHash(mix, ErrInvalidMixLength)
	if err != nil {
		return 0, err
	}
	var f common.Hash
	if len(final) > 0 {
		if f, err = toHash(final, ErrInvalidFinalLength); err != nil {
			return 0, err
		}
	}
	b, err := toHash(boundary, ErrInvalidBoundaryLength)
	if err != nil {
		return 0, err
	}
	if aquahash.config.PowMode == ModeFake {
		time.Sleep(aquahash.fakeDelay)
		if aquahash.fakeFail != nil && *aquahash.fakeFail == block {
			return ethash.VerdictMixMismatch, nil
		}
		return ethash.VerdictOK, nil
	}
	// claims are settled before any context is built
	if v := aquahash.algo.VerifyClaim(h, nonce, m, f, b); !v.OK() {
		return v, nil
	}
	c, err := aquahash.Context(ctx, block)
	if err != nil {
		return 0, err
	}
	return aquahash.algo.VerifyMix(c, block, h, nonce, m), nil
}

// Close releases every epoch context and aborts in-flight builds.
func (aquahash *Aquahash) Close() error {
	if aquahash.store == nil {
		return nil
	}
	return aquahash.store.Close()
}

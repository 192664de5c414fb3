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

package aquahash

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/consensus/ethash"
)

// Work is a nonce search job.
type Work struct {
	Block    uint64
	Header   common.Hash
	Boundary common.Hash
	Start    uint64 // first nonce tried
	Tries    uint64 // nonces per thread, unbounded when zero
}

// NewWork validates the byte encodings of a search job.
func NewWork(block uint64, header, boundary []byte) (Work, error) {
	h, err := toHash(header, ErrInvalidHeaderLength)
	if err != nil {
		return Work{}, err
	}
	b, err := toHash(boundary, ErrInvalidBoundaryLength)
	if err != nil {
		return Work{}, err
	}
	return Work{Block: block, Header: h, Boundary: b}, nil
}

// Solution is a nonce whose final hash does not exceed the boundary.
type Solution struct {
	Nonce    uint64
	Attempts uint64 // hashes computed by all threads
	ethash.Result
}

// Search looks for a nonce satisfying the work's boundary on Threads()
// goroutines. Thread i tries Start+i, Start+i+threads, ... The first
// solution found stops every thread.
func (aquahash *Aquahash) Search(ctx context.Context, work Work) (*Solution, error) {
	threads := aquahash.Threads()
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	if threads < 0 {
		return nil, ErrSearchDisabled
	}
	var c *ethash.EpochContext
	if aquahash.config.PowMode != ModeFake {
		var err error
		if c, err = aquahash.Context(ctx, work.Block); err != nil {
			return nil, err
		}
	}

	// Create a runner and the multiple search threads it directs
	var (
		abort    = make(chan struct{})
		found    = make(chan *Solution)
		attempts atomic.Uint64
		pend     sync.WaitGroup
		start    = time.Now()
	)
	for i := 0; i < threads; i++ {
		pend.Add(1)
		go func(id int) {
			defer pend.Done()
			aquahash.mine(c, work, id, uint64(threads), &attempts, abort, found)
		}(i)
	}
	exhausted := make(chan struct{})
	go func() {
		pend.Wait()
		close(exhausted)
	}()

	// Wait until searching is terminated or a nonce is found
	var (
		result *Solution
		err    error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case result = <-found:
	case <-exhausted:
		err = ErrNoSolution
	}
	close(abort)
	pend.Wait()

	elapsed := time.Since(start)
	total := attempts.Load()
	aquahash.log.Debug("Nonce search finished", "block", work.Block, "threads", threads, "attempts", total,
		"elapsed", common.PrettyDuration(elapsed), "found", result != nil)
	if result != nil {
		result.Attempts = total
	}
	return result, err
}

// mine is the actual proof-of-work miner that searches its stride of nonces
// for one whose final hash is within the boundary.
func (aquahash *Aquahash) mine(c *ethash.EpochContext, work Work, id int, stride uint64, attempts *atomic.Uint64, abort chan struct{}, found chan *Solution) {
	var (
		nonce = work.Start + uint64(id)
		tries uint64
		local uint64
	)
	defer func() { attempts.Add(local) }()

	for work.Tries == 0 || tries < work.Tries {
		select {
		case <-abort:
			return
		default:
		}
		var res ethash.Result
		if c == nil {
			res = fakeResult(work.Header, nonce)
		} else {
			res = aquahash.algo.Hash(c, work.Block, work.Header, nonce)
		}
		local++
		if ethash.CheckBoundary(res.FinalHash, work.Boundary) {
			select {
			case found <- &Solution{Nonce: nonce, Result: res}:
				aquahash.log.Trace("Nonce found and reported", "nonce", nonce, "worker", id)
			case <-abort:
				aquahash.log.Trace("Nonce found but discarded", "nonce", nonce, "worker", id)
			}
			return
		}
		nonce += stride
		tries++
	}
}

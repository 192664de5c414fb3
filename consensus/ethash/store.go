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
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/log"
	"golang.org/x/sync/singleflight"
)

// DatasetLoader attaches a materialized dataset to a freshly built light
// context, for example from a file on disk.
type DatasetLoader func(ctx context.Context, c *EpochContext) (Dataset, error)

// StoreConfig configures a Store.
type StoreConfig struct {
	Params      *Params       // protocol constants, DefaultParams when nil
	CachesInMem int           // contexts kept in memory, at least one
	Full        bool          // materialize the dataset of every context
	Threads     int           // dataset generation threads, all CPUs when zero
	Loader      DatasetLoader // optional, used instead of in-memory generation
}

// Store memoizes epoch contexts. At most one build per epoch runs at a time;
// concurrent callers for the same epoch wait for the same build. Completed
// contexts are kept in an LRU.
type Store struct {
	config StoreConfig
	cache  *lru.Cache
	group  singleflight.Group
	log    log.LoggerI

	ctx    context.Context // cancels in-flight builds on Close
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewStore creates an epoch context store.
func NewStore(config StoreConfig) (*Store, error) {
	if config.Params == nil {
		config.Params = DefaultParams
	}
	if err := config.Params.Validate(); err != nil {
		return nil, err
	}
	if config.CachesInMem <= 0 {
		config.CachesInMem = 1
	}
	s := &Store{
		config: config,
		log:    log.New("module", "ethash-store"),
	}
	cache, err := lru.NewWithEvict(config.CachesInMem, func(key, value interface{}) {
		s.log.Debug("Evicted ethash epoch context", "epoch", key)
	})
	if err != nil {
		return nil, err
	}
	s.cache = cache
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Params returns the protocol constants of the store.
func (s *Store) Params() *Params { return s.config.Params }

// ForBlock returns the context of the epoch containing block.
func (s *Store) ForBlock(ctx context.Context, block uint64) (*EpochContext, error) {
	return s.Get(ctx, s.config.Params.EpochNumber(block))
}

// Get returns the context of an epoch, building it if needed. Builds run
// under the store's lifetime, so a caller giving up through ctx does not
// abort a build other callers are waiting on.
func (s *Store) Get(ctx context.Context, epoch uint64) (*EpochContext, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrStoreClosed
	}
	if err := s.config.Params.checkEpoch(epoch); err != nil {
		return nil, err
	}
	if c, ok := s.cache.Get(epoch); ok {
		return c.(*EpochContext), nil
	}
	ch := s.group.DoChan(strconv.FormatUint(epoch, 10), func() (interface{}, error) {
		if c, ok := s.cache.Get(epoch); ok {
			return c, nil
		}
		c, err := s.build(epoch)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			release(c.dataset)
			return nil, ErrStoreClosed
		}
		s.cache.Add(epoch, c)
		return c, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*EpochContext), nil
	}
}

func (s *Store) build(epoch uint64) (*EpochContext, error) {
	start := time.Now()
	full := s.config.Full && s.config.Loader == nil
	c, err := s.config.Params.BuildEpochContext(s.ctx, epoch, full, s.config.Threads)
	if err != nil {
		s.log.Warn("Failed to build epoch context", "epoch", epoch, "err", err)
		return nil, err
	}
	if s.config.Full && s.config.Loader != nil {
		d, err := s.config.Loader(s.ctx, c)
		if err != nil {
			s.log.Warn("Failed to load dataset", "epoch", epoch, "err", err)
			return nil, err
		}
		if c, err = c.WithDataset(d); err != nil {
			release(d)
			return nil, err
		}
	}
	s.log.Info("Built epoch context", "epoch", epoch, "full", c.Full(), "elapsed", common.PrettyDuration(time.Since(start)))
	return c, nil
}

// release closes a dataset that no context will hold, such as a mapped file.
func release(d Dataset) {
	if closer, ok := d.(io.Closer); ok {
		closer.Close()
	}
}

// Len returns the number of contexts held in memory.
func (s *Store) Len() int { return s.cache.Len() }

// Close aborts in-flight builds and drops every cached context.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	s.cache.Purge()
	return nil
}

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
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSingleBuild(t *testing.T) {
	s, err := NewStore(StoreConfig{Params: TestParams, CachesInMem: 2})
	require.NoError(t, err)
	defer s.Close()

	const callers = 8
	var (
		wg  sync.WaitGroup
		got = make([]*EpochContext, callers)
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			c, err := s.Get(context.Background(), 2)
			assert.NoError(t, err)
			got[i] = c
		}(i)
	}
	wg.Wait()
	for _, c := range got {
		assert.Same(t, got[0], c)
	}
	c, err := s.ForBlock(context.Background(), 2*TestParams.EpochLength+5)
	require.NoError(t, err)
	assert.Same(t, got[0], c)
	assert.Equal(t, 1, s.Len())
}

func TestStoreEviction(t *testing.T) {
	s, err := NewStore(StoreConfig{Params: TestParams, CachesInMem: 1})
	require.NoError(t, err)
	defer s.Close()

	a, err := s.Get(context.Background(), 0)
	require.NoError(t, err)
	_, err = s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	again, err := s.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.NotSame(t, a, again)
	assert.Equal(t, a.CacheBytes(), again.CacheBytes())
}

func TestStoreErrors(t *testing.T) {
	s, err := NewStore(StoreConfig{Params: TestParams})
	require.NoError(t, err)

	_, err = s.Get(context.Background(), TestParams.MaxEpoch+1)
	assert.ErrorIs(t, err, ErrEpochTooLarge)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Get(context.Background(), 0)
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = NewStore(StoreConfig{Params: &Params{}})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestStoreFullAndLoader(t *testing.T) {
	full, err := NewStore(StoreConfig{Params: TestParams, Full: true, Threads: 2})
	require.NoError(t, err)
	defer full.Close()
	c, err := full.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, c.Full())

	var loaded bool
	withLoader, err := NewStore(StoreConfig{
		Params: TestParams,
		Full:   true,
		Loader: func(ctx context.Context, c *EpochContext) (Dataset, error) {
			loaded = true
			dest := make([]uint32, c.DatasetItems()*hashWords)
			return memDataset(dest), c.GenerateDataset(ctx, dest, 1)
		},
	})
	require.NoError(t, err)
	defer withLoader.Close()
	c2, err := withLoader.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.True(t, c2.Full())
	assert.Equal(t, c.L1(), c2.L1())

	boom := errors.New("boom")
	failing, err := NewStore(StoreConfig{
		Params: TestParams,
		Full:   true,
		Loader: func(ctx context.Context, c *EpochContext) (Dataset, error) { return nil, boom },
	})
	require.NoError(t, err)
	defer failing.Close()
	_, err = failing.Get(context.Background(), 0)
	assert.ErrorIs(t, err, boom)

	short, err := NewStore(StoreConfig{
		Params: TestParams,
		Full:   true,
		Loader: func(ctx context.Context, c *EpochContext) (Dataset, error) { return make(memDataset, hashWords), nil },
	})
	require.NoError(t, err)
	defer short.Close()
	_, err = short.Get(context.Background(), 0)
	assert.ErrorIs(t, err, ErrDatasetMismatch)
}

// closingDataset records whether the store released it.
type closingDataset struct {
	memDataset
	closed atomic.Bool
}

func (d *closingDataset) Close() error {
	d.closed.Store(true)
	return nil
}

// blockingLoader returns a loader that signals started and then waits for
// proceed before handing out dataset.
func blockingLoader(dataset func(items uint64) Dataset, loads *atomic.Int32) (DatasetLoader, chan struct{}, chan struct{}) {
	started, proceed := make(chan struct{}), make(chan struct{})
	return func(ctx context.Context, c *EpochContext) (Dataset, error) {
		if loads.Add(1) == 1 {
			close(started)
		}
		<-proceed
		return dataset(c.DatasetItems()), nil
	}, started, proceed
}

func TestStoreReleasesRejectedDataset(t *testing.T) {
	d := &closingDataset{memDataset: make(memDataset, hashWords)}
	s, err := NewStore(StoreConfig{
		Params: TestParams,
		Full:   true,
		Loader: func(ctx context.Context, c *EpochContext) (Dataset, error) { return d, nil },
	})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(context.Background(), 0)
	assert.ErrorIs(t, err, ErrDatasetMismatch)
	assert.True(t, d.closed.Load())
}

func TestStoreCloseDuringBuild(t *testing.T) {
	var (
		loads atomic.Int32
		d     = new(closingDataset)
	)
	loader, started, proceed := blockingLoader(func(items uint64) Dataset {
		d.memDataset = make(memDataset, items*hashWords)
		return d
	}, &loads)
	s, err := NewStore(StoreConfig{Params: TestParams, Full: true, Loader: loader})
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Get(context.Background(), 0)
		errc <- err
	}()
	<-started
	require.NoError(t, s.Close())
	close(proceed)

	assert.ErrorIs(t, <-errc, ErrStoreClosed)
	assert.Equal(t, 0, s.Len())
	assert.True(t, d.closed.Load())
}

func TestStoreCallerGivesUp(t *testing.T) {
	var loads atomic.Int32
	loader, started, proceed := blockingLoader(func(items uint64) Dataset {
		return make(memDataset, items*hashWords)
	}, &loads)
	s, err := NewStore(StoreConfig{Params: TestParams, Full: true, Loader: loader})
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	impatient := make(chan error, 1)
	go func() {
		_, err := s.Get(ctx, 0)
		impatient <- err
	}()
	<-started

	type result struct {
		c   *EpochContext
		err error
	}
	patient := make(chan result, 1)
	go func() {
		c, err := s.Get(context.Background(), 0)
		patient <- result{c, err}
	}()

	cancel()
	assert.ErrorIs(t, <-impatient, context.Canceled)

	close(proceed)
	res := <-patient
	require.NoError(t, res.err)
	assert.True(t, res.c.Full())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, int32(1), loads.Load())

	c, err := s.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.Same(t, res.c, c)
}

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

package dagfile

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/log"
	"gitlab.com/aquachain/ethash/consensus/ethash"
)

func init() {
	log.ResetForTesting()
}

func testContext(t *testing.T, epoch uint64) *ethash.EpochContext {
	c, err := ethash.TestParams.BuildEpochContext(context.Background(), epoch, false, 0)
	require.NoError(t, err)
	return c
}

func TestGenerateAndOpen(t *testing.T) {
	c := testContext(t, 1)
	path := Path(t.TempDir(), c.Epoch, c.Seed())

	f, err := Generate(context.Background(), c, path, 2)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, c.Epoch, f.Epoch())
	assert.Equal(t, c.Seed(), f.Seed())
	assert.Equal(t, c.DatasetItems(), f.NumItems())
	assert.True(t, f.Matches(c))
	assert.False(t, f.Matches(testContext(t, 2)))

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(headerSize)+int64(c.DatasetItems())*itemBytes, stat.Size())

	lookup := c.Lookup()
	want, got := make([]uint32, itemWords), make([]uint32, itemWords)
	for i := uint32(0); uint64(i) < f.NumItems(); i++ {
		lookup(i, want)
		f.Item(i, got)
		require.Equal(t, want, got, "item %d", i)
	}

	full, err := c.WithDataset(f)
	require.NoError(t, err)
	header := common.HexToHash("0xfeed")
	assert.Equal(t, ethash.Hash(c, header, 5), ethash.Hash(full, header, 5))

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Panics(t, func() { f.Item(0, got) })
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(dir + "/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)

	short := dir + "/short"
	require.NoError(t, os.WriteFile(short, []byte("AQUA"), 0644))
	_, err = Open(short)
	assert.ErrorIs(t, err, ErrTruncated)

	bad := dir + "/bad"
	require.NoError(t, os.WriteFile(bad, make([]byte, 256), 0644))
	_, err = Open(bad)
	assert.ErrorIs(t, err, ErrInvalidMagic)

	c := testContext(t, 0)
	path := Path(dir, c.Epoch, c.Seed())
	f, err := Generate(context.Background(), c, path, 1)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, os.Truncate(path, headerSize+itemBytes))
	_, err = Open(path)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestGenerateCancelled(t *testing.T) {
	c := testContext(t, 0)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, c, Path(dir, c.Epoch, c.Seed()), 1)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file left behind")
}

func TestLoaderReusesFile(t *testing.T) {
	c := testContext(t, 0)
	dir := t.TempDir()
	load := Loader(dir, 1)

	d, err := load(context.Background(), c)
	require.NoError(t, err)
	first := d.(*File)
	defer first.Close()
	stat, err := os.Stat(first.Path())
	require.NoError(t, err)

	d, err = load(context.Background(), c)
	require.NoError(t, err)
	second := d.(*File)
	defer second.Close()
	stat2, err := os.Stat(second.Path())
	require.NoError(t, err)
	assert.Equal(t, stat.ModTime(), stat2.ModTime())
	assert.True(t, os.SameFile(stat, stat2), "file regenerated")

	store, err := ethash.NewStore(ethash.StoreConfig{Params: ethash.TestParams, Full: true, Loader: load})
	require.NoError(t, err)
	defer store.Close()
	full, err := store.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, full.Full())
}

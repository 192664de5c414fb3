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

// Package dagfile stores full ethash datasets in memory mapped files, so a
// dataset is generated once per epoch and shared between processes.
//
// A file is a 64 byte header followed by the dataset items as little endian
// 32 bit words:
//
//	magic [8]byte "AQUADAG\x01"
//	epoch uint64
//	items uint64
//	seed  [32]byte
//	pad   [8]byte
package dagfile

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"unsafe"

	"github.com/edsrzf/mmap-go"
	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/common/log"
	"gitlab.com/aquachain/ethash/consensus/ethash"
	"golang.org/x/sys/cpu"
)

const (
	headerSize = 64
	itemBytes  = 64
	itemWords  = itemBytes / 4
	revision   = 1
)

var magic = [8]byte{'A', 'Q', 'U', 'A', 'D', 'A', 'G', revision}

var (
	ErrInvalidMagic = errors.New("not a dataset file")
	ErrTruncated    = errors.New("dataset file truncated")
	ErrClosed       = errors.New("dataset file closed")
)

// Path returns the file name of an epoch's dataset inside dir.
func Path(dir string, epoch uint64, seed common.Hash) string {
	return filepath.Join(dir, fmt.Sprintf("full-R%d-%d-%x", revision, epoch, seed[:8]))
}

// File is a memory mapped dataset. It implements ethash.Dataset.
type File struct {
	path  string
	epoch uint64
	items uint64
	seed  common.Hash

	mu    sync.RWMutex
	file  *os.File
	mem   mmap.MMap
	data  []byte   // items, after the header
	words []uint32 // zero-copy view of data on little endian hosts
}

type header struct {
	Magic [8]byte
	Epoch uint64
	Items uint64
	Seed  common.Hash
	_     [8]byte
}

// Open memory maps an existing dataset file read only.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	mem, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, err
	}
	f, err := newFile(path, file, mem)
	if err != nil {
		mem.Unmap()
		file.Close()
		return nil, err
	}
	runtime.SetFinalizer(f, (*File).Close)
	return f, nil
}

func newFile(path string, file *os.File, mem mmap.MMap) (*File, error) {
	if len(mem) < headerSize {
		return nil, fmt.Errorf("%w: %s", ErrTruncated, path)
	}
	var h header
	if err := binary.Read(bytes.NewReader(mem[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMagic, path)
	}
	if uint64(len(mem)-headerSize) != h.Items*itemBytes {
		return nil, fmt.Errorf("%w: %s has %d bytes for %d items", ErrTruncated, path, len(mem)-headerSize, h.Items)
	}
	f := &File{
		path:  path,
		epoch: h.Epoch,
		items: h.Items,
		seed:  h.Seed,
		file:  file,
		mem:   mem,
		data:  mem[headerSize:],
	}
	if !cpu.IsBigEndian && len(f.data) > 0 {
		f.words = unsafe.Slice((*uint32)(unsafe.Pointer(&f.data[0])), len(f.data)/4)
	}
	return f, nil
}

// Generate writes the full dataset of c to path and opens it. The data is
// generated into a temporary file that is renamed into place when complete,
// so readers never observe a partial dataset.
func Generate(ctx context.Context, c *ethash.EpochContext, path string, threads int) (*File, error) {
	logger := log.New("epoch", c.Epoch, "path", path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	temp := path + "." + strconv.Itoa(rand.Int())
	dump, err := os.Create(temp)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*File, error) {
		dump.Close()
		os.Remove(temp)
		logger.Warn("Failed to write dataset file", "err", err)
		return nil, err
	}
	size := int64(headerSize) + int64(c.DatasetItems())*itemBytes
	if err := dump.Truncate(size); err != nil {
		return fail(err)
	}
	mem, err := mmap.Map(dump, mmap.RDWR, 0)
	if err != nil {
		return fail(err)
	}
	h := header{Magic: magic, Epoch: c.Epoch, Items: c.DatasetItems(), Seed: c.Seed()}
	var hdr bytes.Buffer
	binary.Write(&hdr, binary.LittleEndian, &h)
	copy(mem, hdr.Bytes())

	data := mem[headerSize:]
	if !cpu.IsBigEndian {
		view := unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
		err = c.GenerateDataset(ctx, view, threads)
	} else {
		words := make([]uint32, len(data)/4)
		if err = c.GenerateDataset(ctx, words, threads); err == nil {
			for i, w := range words {
				binary.LittleEndian.PutUint32(data[i*4:], w)
			}
		}
	}
	if err == nil {
		err = mem.Flush()
	}
	if uerr := mem.Unmap(); err == nil {
		err = uerr
	}
	if err != nil {
		return fail(err)
	}
	if err := dump.Close(); err != nil {
		os.Remove(temp)
		return nil, err
	}
	if err := os.Rename(temp, path); err != nil {
		os.Remove(temp)
		return nil, err
	}
	logger.Info("Wrote dataset file", "size", common.StorageSize(size))
	return Open(path)
}

// Loader returns an ethash.DatasetLoader keeping datasets in dir. Existing
// files are reused when their header matches the context.
func Loader(dir string, threads int) ethash.DatasetLoader {
	return func(ctx context.Context, c *ethash.EpochContext) (ethash.Dataset, error) {
		path := Path(dir, c.Epoch, c.Seed())
		f, err := Open(path)
		switch {
		case err == nil && f.Matches(c):
			log.Debug("Loaded dataset file", "epoch", c.Epoch, "path", path)
			return f, nil
		case err == nil:
			f.Close()
			log.Warn("Dataset file does not match epoch, regenerating", "epoch", c.Epoch, "path", path)
		case !errors.Is(err, os.ErrNotExist):
			log.Warn("Failed to load dataset file, regenerating", "epoch", c.Epoch, "path", path, "err", err)
		}
		return Generate(ctx, c, path, threads)
	}
}

// Matches reports whether the file holds the dataset of c.
func (f *File) Matches(c *ethash.EpochContext) bool {
	return f.epoch == c.Epoch && f.items == c.DatasetItems() && f.seed == c.Seed()
}

// Path returns the file's location.
func (f *File) Path() string { return f.path }

// Epoch returns the epoch recorded in the header.
func (f *File) Epoch() uint64 { return f.epoch }

// Seed returns the epoch seed recorded in the header.
func (f *File) Seed() common.Hash { return f.seed }

// NumItems returns the number of 64 byte items.
func (f *File) NumItems() uint64 { return f.items }

// Item copies a dataset item into dst. Reading a closed file panics.
func (f *File) Item(index uint32, dst []uint32) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.mem == nil {
		panic(ErrClosed)
	}
	off := int(index) * itemWords
	if f.words != nil {
		copy(dst[:itemWords], f.words[off:off+itemWords])
		return
	}
	for i := 0; i < itemWords; i++ {
		dst[i] = binary.LittleEndian.Uint32(f.data[(off+i)*4:])
	}
}

// Close unmaps and closes the file. It is safe to call more than once.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mem == nil {
		return nil
	}
	runtime.SetFinalizer(f, nil)
	err := f.mem.Unmap()
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	f.mem, f.data, f.words = nil, nil, nil
	return err
}

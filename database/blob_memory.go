// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/bravo/appendlog"
	"github.com/blinklabs-io/bravo/database/types"
)

// BlobMemory provides the append log's backing memory on top of the
// blob store. Each page is stored as a full page-sized value under a
// big-endian page index key. Grown pages are not preallocated; a page
// with no stored value reads back as zeroes
type BlobMemory struct {
	db        *Database
	mu        sync.Mutex
	pageCount uint64
}

func NewBlobMemory(db *Database) *BlobMemory {
	return &BlobMemory{db: db}
}

// Restore sets the page count so the memory covers at least size bytes.
// This is used at startup to line the memory up with the durable log
// head before replaying the log size
func (m *BlobMemory) Restore(size uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCount = (size + appendlog.PageSize - 1) / appendlog.PageSize
}

// Size returns the current memory size in bytes
func (m *BlobMemory) Size() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pageCount * appendlog.PageSize
}

// Grow extends the memory by the given number of pages and returns the
// new size in bytes
func (m *BlobMemory) Grow(pages uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCount += pages
	return m.pageCount * appendlog.PageSize, nil
}

// Read fills buf from the memory starting at offset
func (m *BlobMemory) Read(offset uint64, buf []byte) error {
	end := offset + uint64(len(buf))
	if end < offset || end > m.Size() {
		return errors.New("read beyond memory size")
	}
	txn := m.db.BlobTxn(false)
	defer txn.Release()
	pos := uint64(0)
	for pos < uint64(len(buf)) {
		cur := offset + pos
		page := cur / appendlog.PageSize
		pageOff := cur % appendlog.PageSize
		n := appendlog.PageSize - pageOff
		if remaining := uint64(len(buf)) - pos; n > remaining {
			n = remaining
		}
		val, err := m.db.Blob().Get(txn.Blob(), types.LogPageBlobKey(page))
		if err != nil {
			if !errors.Is(err, types.ErrBlobKeyNotFound) {
				return fmt.Errorf("failed to read log page %d: %w", page, err)
			}
			// Grown but never written, reads as zeroes
			val = nil
		}
		chunk := buf[pos : pos+n]
		for i := range chunk {
			chunk[i] = 0
		}
		if uint64(len(val)) > pageOff {
			copy(chunk, val[pageOff:])
		}
		pos += n
	}
	return nil
}

// Write stores data into the memory starting at offset. Partial page
// updates read the existing page and patch it; the whole write commits
// as a single blob transaction
func (m *BlobMemory) Write(offset uint64, data []byte) error {
	end := offset + uint64(len(data))
	if end < offset || end > m.Size() {
		return errors.New("write beyond memory size")
	}
	txn := m.db.BlobTxn(true)
	commit := false
	defer func() {
		if !commit {
			txn.Rollback() //nolint:errcheck
		}
	}()
	pos := uint64(0)
	for pos < uint64(len(data)) {
		cur := offset + pos
		page := cur / appendlog.PageSize
		pageOff := cur % appendlog.PageSize
		n := appendlog.PageSize - pageOff
		if remaining := uint64(len(data)) - pos; n > remaining {
			n = remaining
		}
		pageKey := types.LogPageBlobKey(page)
		var pageBuf []byte
		if pageOff == 0 && n == appendlog.PageSize {
			// Full page write
			pageBuf = data[pos : pos+n]
		} else {
			existing, err := m.db.Blob().Get(txn.Blob(), pageKey)
			if err != nil && !errors.Is(err, types.ErrBlobKeyNotFound) {
				return fmt.Errorf("failed to read log page %d: %w", page, err)
			}
			pageBuf = make([]byte, appendlog.PageSize)
			copy(pageBuf, existing)
			copy(pageBuf[pageOff:], data[pos:pos+n])
		}
		if err := m.db.Blob().Set(txn.Blob(), pageKey, pageBuf); err != nil {
			return fmt.Errorf("failed to write log page %d: %w", page, err)
		}
		pos += n
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit log pages: %w", err)
	}
	commit = true
	return nil
}

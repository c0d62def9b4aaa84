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

package appendlog

import (
	"errors"
	"fmt"
	"sync"
)

// PageSize is the granularity in bytes at which backing memory grows
const PageSize = 65536

// ErrOutOfRange is returned when a read extends past the end of the log
var ErrOutOfRange = errors.New("position out of range")

// Position is a stable reference to a byte range within a Log. Instead of
// storing duplicate copies of written data, callers store the returned
// Position and use it to read the data back later.
type Position struct {
	Offset uint64
	Length uint64
}

// Memory is the backing byte store for a Log. Offsets are absolute byte
// positions from the start of the memory. Implementations grow in units
// of PageSize.
type Memory interface {
	// Size returns the current size of the memory in bytes
	Size() uint64
	// Grow extends the memory by the given number of pages and returns
	// the new size in bytes
	Grow(pages uint64) (uint64, error)
	// Read fills buf starting at the given offset
	Read(offset uint64, buf []byte) error
	// Write copies data starting at the given offset
	Write(offset uint64, data []byte) error
}

// MemoryBuffer is an in-memory Memory implementation backed by a byte
// slice. It's also used as scratch space when rebuilding a Log from
// persistent storage.
type MemoryBuffer struct {
	buf []byte
	mu  sync.RWMutex
}

// NewMemoryBuffer creates an empty MemoryBuffer
func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

// Size returns the current size of the buffer in bytes
func (m *MemoryBuffer) Size() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.buf))
}

// Grow extends the buffer by the given number of pages
func (m *MemoryBuffer) Grow(pages uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf = append(m.buf, make([]byte, pages*PageSize)...)
	return uint64(len(m.buf)), nil
}

// Read fills buf starting at the given offset
func (m *MemoryBuffer) Read(offset uint64, buf []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	end := offset + uint64(len(buf))
	if end < offset || end > uint64(len(m.buf)) {
		return ErrOutOfRange
	}
	copy(buf, m.buf[offset:end])
	return nil
}

// Write copies data starting at the given offset
func (m *MemoryBuffer) Write(offset uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := offset + uint64(len(data))
	if end < offset || end > uint64(len(m.buf)) {
		return ErrOutOfRange
	}
	copy(m.buf[offset:end], data)
	return nil
}

// Log is an append-only byte log. Appended data is addressed by the
// Position returned from Append and never moves or changes afterward.
type Log struct {
	mem  Memory
	size uint64
	mu   sync.RWMutex
}

// NewLog creates an empty Log on top of the provided Memory
func NewLog(mem Memory) *Log {
	return &Log{
		mem: mem,
	}
}

// Size returns the number of bytes appended so far
func (l *Log) Size() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Restore sets the log head to the given size. This is used when
// resuming a log whose backing memory was loaded from persistent
// storage. The size cannot extend past the backing memory.
func (l *Log) Restore(size uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if size > l.mem.Size() {
		return ErrOutOfRange
	}
	l.size = size
	return nil
}

// Append writes data to the end of the log, growing the backing memory
// as needed, and returns the Position of the written data
func (l *Log) Append(data []byte) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	offset := l.size
	end := offset + uint64(len(data))
	if end < offset {
		return Position{}, ErrOutOfRange
	}
	// Grow backing memory to cover the new data
	if end > l.mem.Size() {
		needed := end - l.mem.Size()
		pages := (needed + PageSize - 1) / PageSize
		if _, err := l.mem.Grow(pages); err != nil {
			return Position{}, fmt.Errorf("failed to grow log memory: %w", err)
		}
	}
	if err := l.mem.Write(offset, data); err != nil {
		return Position{}, fmt.Errorf("failed to write log data: %w", err)
	}
	l.size = end
	return Position{
		Offset: offset,
		Length: uint64(len(data)),
	}, nil
}

// Read returns the data at the given Position. The entire range must
// fall within the written portion of the log.
func (l *Log) Read(pos Position) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	end := pos.Offset + pos.Length
	if end < pos.Offset || end > l.size {
		return nil, ErrOutOfRange
	}
	buf := make([]byte, pos.Length)
	if err := l.mem.Read(pos.Offset, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

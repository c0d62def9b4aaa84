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

package appendlog_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/blinklabs-io/bravo/appendlog"
)

func TestLogAppendRead(t *testing.T) {
	l := appendlog.NewLog(appendlog.NewMemoryBuffer())
	testData := []byte("test entry data")
	pos, err := l.Append(testData)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if pos.Offset != 0 {
		t.Fatalf("unexpected offset: expected 0, got %d", pos.Offset)
	}
	if pos.Length != uint64(len(testData)) {
		t.Fatalf(
			"unexpected length: expected %d, got %d",
			len(testData),
			pos.Length,
		)
	}
	readData, err := l.Read(pos)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !bytes.Equal(readData, testData) {
		t.Fatalf(
			"did not get expected data: expected %x, got %x",
			testData,
			readData,
		)
	}
}

func TestLogSequentialOffsets(t *testing.T) {
	l := appendlog.NewLog(appendlog.NewMemoryBuffer())
	entries := [][]byte{
		[]byte("first"),
		[]byte("second entry"),
		[]byte("third"),
	}
	var positions []appendlog.Position
	var expectedOffset uint64
	for _, entry := range entries {
		pos, err := l.Append(entry)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if pos.Offset != expectedOffset {
			t.Fatalf(
				"unexpected offset: expected %d, got %d",
				expectedOffset,
				pos.Offset,
			)
		}
		positions = append(positions, pos)
		expectedOffset += uint64(len(entry))
	}
	// Earlier entries remain readable after later appends
	for i, pos := range positions {
		readData, err := l.Read(pos)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !bytes.Equal(readData, entries[i]) {
			t.Fatalf(
				"did not get expected data for entry %d: expected %x, got %x",
				i,
				entries[i],
				readData,
			)
		}
	}
	if l.Size() != expectedOffset {
		t.Fatalf(
			"unexpected log size: expected %d, got %d",
			expectedOffset,
			l.Size(),
		)
	}
}

func TestLogReadOutOfRange(t *testing.T) {
	l := appendlog.NewLog(appendlog.NewMemoryBuffer())
	pos, err := l.Append([]byte("some data"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testDefs := []appendlog.Position{
		// Past the end of the log
		{Offset: pos.Length, Length: 1},
		// Starts inside, extends past the end
		{Offset: 2, Length: pos.Length},
		// Offset+length overflows
		{Offset: ^uint64(0), Length: 2},
	}
	for _, testDef := range testDefs {
		if _, err := l.Read(testDef); !errors.Is(err, appendlog.ErrOutOfRange) {
			t.Fatalf(
				"did not get expected error for position %+v: expected %s, got %v",
				testDef,
				appendlog.ErrOutOfRange,
				err,
			)
		}
	}
}

func TestLogEmptyEntry(t *testing.T) {
	l := appendlog.NewLog(appendlog.NewMemoryBuffer())
	pos, err := l.Append(nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if pos.Length != 0 {
		t.Fatalf("unexpected length: expected 0, got %d", pos.Length)
	}
	readData, err := l.Read(pos)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(readData) != 0 {
		t.Fatalf("expected empty data, got %x", readData)
	}
}

func TestLogPageGrowth(t *testing.T) {
	mem := appendlog.NewMemoryBuffer()
	l := appendlog.NewLog(mem)
	// Small appends stay within a single page
	if _, err := l.Append(make([]byte, 100)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if mem.Size() != appendlog.PageSize {
		t.Fatalf(
			"unexpected memory size: expected %d, got %d",
			appendlog.PageSize,
			mem.Size(),
		)
	}
	// Appending past the first page grows by whole pages
	pos, err := l.Append(make([]byte, appendlog.PageSize))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if mem.Size() != 2*appendlog.PageSize {
		t.Fatalf(
			"unexpected memory size: expected %d, got %d",
			2*appendlog.PageSize,
			mem.Size(),
		)
	}
	// Data crossing a page boundary reads back intact
	readData, err := l.Read(pos)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if uint64(len(readData)) != pos.Length {
		t.Fatalf(
			"unexpected data length: expected %d, got %d",
			pos.Length,
			len(readData),
		)
	}
}

func TestLogRestore(t *testing.T) {
	mem := appendlog.NewMemoryBuffer()
	l := appendlog.NewLog(mem)
	testData := []byte("persisted entry")
	pos, err := l.Append(testData)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	// A fresh log over the same memory sees nothing until restored
	l2 := appendlog.NewLog(mem)
	if _, err := l2.Read(pos); !errors.Is(err, appendlog.ErrOutOfRange) {
		t.Fatalf("expected %s, got %v", appendlog.ErrOutOfRange, err)
	}
	if err := l2.Restore(l.Size()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	readData, err := l2.Read(pos)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !bytes.Equal(readData, testData) {
		t.Fatalf(
			"did not get expected data: expected %x, got %x",
			testData,
			readData,
		)
	}
	// Restoring past the backing memory fails
	if err := l2.Restore(mem.Size() + 1); !errors.Is(err, appendlog.ErrOutOfRange) {
		t.Fatalf("expected %s, got %v", appendlog.ErrOutOfRange, err)
	}
}

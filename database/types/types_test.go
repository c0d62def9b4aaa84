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

package types_test

import (
	"bytes"
	"math"
	"reflect"
	"testing"

	"github.com/blinklabs-io/bravo/database/types"
)

func TestUint64ScanValue(t *testing.T) {
	testDefs := []struct {
		origValue     types.Uint64
		expectedValue string
	}{
		{
			origValue:     types.Uint64(123),
			expectedValue: "123",
		},
		{
			// Above math.MaxInt64 to catch signed-integer truncation
			origValue:     types.Uint64(math.MaxUint64),
			expectedValue: "18446744073709551615",
		},
		{
			origValue:     types.Uint64(0),
			expectedValue: "0",
		},
	}
	for _, testDef := range testDefs {
		valueOut, err := testDef.origValue.Value()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !reflect.DeepEqual(valueOut, testDef.expectedValue) {
			t.Fatalf(
				"did not get expected value from Value(): got %#v, expected %#v",
				valueOut,
				testDef.expectedValue,
			)
		}
		var scanned types.Uint64
		if err := scanned.Scan(valueOut); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if scanned != testDef.origValue {
			t.Fatalf(
				"did not get expected value after Scan(): got %d, expected %d",
				scanned,
				testDef.origValue,
			)
		}
	}
}

func TestUint64ScanRejectsNonString(t *testing.T) {
	var u types.Uint64
	if err := u.Scan(int64(123)); err == nil {
		t.Fatal("expected error scanning non-string value")
	}
}

func TestLogPageBlobKey(t *testing.T) {
	key := types.LogPageBlobKey(0)
	if !bytes.HasPrefix(key, []byte(types.LogPageBlobKeyPrefix)) {
		t.Fatalf("expected key to start with %q", types.LogPageBlobKeyPrefix)
	}
	if len(key) != len(types.LogPageBlobKeyPrefix)+8 {
		t.Fatalf("unexpected key length: %d", len(key))
	}
	// Big-endian page numbers keep lexicographic and numeric order aligned
	if bytes.Compare(
		types.LogPageBlobKey(1),
		types.LogPageBlobKey(256),
	) >= 0 {
		t.Fatal("expected page 1 key to sort before page 256 key")
	}
}

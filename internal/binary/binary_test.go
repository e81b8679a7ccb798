// Copyright 2018 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestDecoder(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []interface{}{int32(7), int32(-1), 2.5, []byte("ab")} {
		if err := Write(&buf, v); err != nil {
			t.Fatalf("Write(%v) returned unexpected error: %v", v, err)
		}
	}

	d := NewDecoder(buf.Bytes())
	if got, err := d.Int32(); err != nil || got != 7 {
		t.Fatalf("Int32() = %v, %v; want 7", got, err)
	}
	if _, err := d.Length(); err == nil {
		t.Fatalf("Length() accepted a negative value")
	}
	if got, err := d.Float64(); err != nil || got != 2.5 {
		t.Fatalf("Float64() = %v, %v; want 2.5", got, err)
	}
	if got, err := d.Bytes(2); err != nil || string(got) != "ab" {
		t.Fatalf("Bytes(2) = %q, %v; want \"ab\"", got, err)
	}
	if got, want := d.Offset(), 18; got != want {
		t.Errorf("Wrong offset: got %d, want %d", got, want)
	}
	if _, err := d.Int32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Int32() past the end returned %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestFloat64s(t *testing.T) {
	testCases := []struct {
		name  string
		input []byte
		n     int
		ok    bool
	}{
		{"empty", nil, 0, true},
		{"exact", make([]byte, 16), 2, true},
		{"extra bytes", make([]byte, 20), 2, true},
		{"truncated", make([]byte, 15), 2, false},
		{"negative count", make([]byte, 16), -1, false},
		{"huge count", make([]byte, 16), 1 << 40, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := NewDecoder(tc.input).Float64s(tc.n)
			if err != nil && tc.ok {
				t.Fatalf("Float64s returned unexpected error: %v", err)
			} else if err == nil && !tc.ok {
				t.Fatalf("Float64s accepted invalid input")
			}
			if tc.ok && len(values) != tc.n {
				t.Fatalf("Wrong value count: got %d, want %d", len(values), tc.n)
			}
		})
	}
}

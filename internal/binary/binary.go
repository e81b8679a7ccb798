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

// Package binary provides support for operating on little endian binary data
// held in memory.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Decoder reads fixed width little endian values from a byte slice.  Every
// read is bounds checked against the remaining bytes, so a truncated buffer
// is reported as an error instead of a panic.
type Decoder struct {
	buf    []byte
	offset int
}

// NewDecoder returns a Decoder positioned at the start of buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.offset
}

// Remaining returns the number of bytes that have not been consumed.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.offset
}

func (d *Decoder) need(n int) error {
	if n < 0 || n > d.Remaining() {
		return fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, d.offset, d.Remaining(), io.ErrUnexpectedEOF)
	}
	return nil
}

// Int32 reads a single int32.
func (d *Decoder) Int32() (int32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(d.buf[d.offset:]))
	d.offset += 4
	return v, nil
}

// Length reads an int32 that is used as a count or a byte length and must
// therefore not be negative.
func (d *Decoder) Length() (int, error) {
	v, err := d.Int32()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative length %d at offset %d", v, d.offset-4)
	}
	return int(v), nil
}

// Float64 reads a single IEEE 754 double.
func (d *Decoder) Float64() (float64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(d.buf[d.offset:]))
	d.offset += 8
	return v, nil
}

// Float64s reads n consecutive doubles.  The length check happens before any
// allocation so that a corrupt count cannot trigger a huge allocation.
func (d *Decoder) Float64s(n int) ([]float64, error) {
	if n < 0 || n > d.Remaining()/8 {
		return nil, fmt.Errorf("need %d values at offset %d, have %d bytes: %w", n, d.offset, d.Remaining(), io.ErrUnexpectedEOF)
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(d.buf[d.offset:]))
		d.offset += 8
	}
	return values, nil
}

// Bytes returns the next n bytes.  The returned slice aliases the buffer.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	b := d.buf[d.offset : d.offset+n]
	d.offset += n
	return b, nil
}

// Write writes the little endian encoding of v to w using binary.Write.
func Write(w io.Writer, v interface{}) error {
	return binary.Write(w, binary.LittleEndian, v)
}

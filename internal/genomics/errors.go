// Copyright 2019 Google Inc.
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

// Package genomics contains definitions shared by the expression, network and
// mapping data packages: the error taxonomy and gene name pattern handling.
package genomics

import "fmt"

// FormatError reports a structurally invalid file: a buffer shorter than its
// header, a declared length that overruns the buffer, or inconsistent counts.
type FormatError struct {
	Context string
	Err     error
}

// NewFormatError returns a FormatError describing err in context.
func NewFormatError(context string, err error) error {
	return &FormatError{Context: context, Err: err}
}

func (err *FormatError) Error() string {
	return fmt.Sprintf("invalid format: %s: %v", err.Context, err.Err)
}

func (err *FormatError) Unwrap() error {
	return err.Err
}

// IndexError reports a node index that falls outside the name sequence.
type IndexError struct {
	Index int
	Len   int
}

func (err *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", err.Index, err.Len)
}

// NotFoundError reports a gene that is absent from a matrix or network.
type NotFoundError struct {
	Kind string
	Name string
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("no %s named %q found", err.Kind, err.Name)
}

// InvalidPatternError reports a pattern that does not compile in a context
// where an empty result would be ambiguous.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (err *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", err.Pattern, err.Err)
}

func (err *InvalidPatternError) Unwrap() error {
	return err.Err
}

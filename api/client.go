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

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
)

var (
	// ErrObjectNotExist is wrapped by every storage engine when an object
	// does not exist.
	ErrObjectNotExist = errors.New("object does not exist")

	// ErrObjectTooLarge is returned when an object exceeds the configured
	// maximum size.
	ErrObjectTooLarge = errors.New("object too large")

	// ErrInvalidObjectName is returned for file names that are empty or try
	// to leave their data directory.
	ErrInvalidObjectName = errors.New("invalid file name")
)

// Client is an interface to the storage engine.
type Client interface {
	// NewObjectHandle returns a handle to a specified object in
	// the storage engine.
	NewObjectHandle(object string) ObjectHandle

	// List returns the names of the objects that start with prefix and do
	// not contain a further "/" after it.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ObjectHandle is an interface to the actual storage engine in use.
type ObjectHandle interface {
	// NewRangeReader returns a reader that reads from a specified
	// range. Length of -1 means to capture everything until the
	// end.
	NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error)
}

// NewStorageClientFunc is the type of function that constructs the
// appropriate Client to satisfy the incoming request.
type NewStorageClientFunc func(*http.Request) (Client, error)

// StaticClient returns a NewStorageClientFunc that always uses client.
func StaticClient(client Client) NewStorageClientFunc {
	return func(*http.Request) (Client, error) {
		return client, nil
	}
}

// readCloser has one reader and a separate closer.
type readCloser struct {
	io.Reader
	io.Closer
}

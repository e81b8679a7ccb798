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
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileClient is a Client that reads objects from a local directory.  Object
// names are slash separated paths relative to Root.
type FileClient struct {
	Root string
}

// NewObjectHandle returns a handle to a file below the root directory.
func (c FileClient) NewObjectHandle(object string) ObjectHandle {
	return fileObjectHandle{c.path(object)}
}

// List returns the regular files in the directory part of prefix whose names
// start with the remainder of prefix.
func (c FileClient) List(_ context.Context, prefix string) ([]string, error) {
	dir, base := path.Split(prefix)
	entries, err := os.ReadDir(c.path(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("listing %q: %w", prefix, ErrObjectNotExist)
		}
		return nil, fmt.Errorf("listing %q: %v", prefix, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasPrefix(entry.Name(), base) {
			names = append(names, dir+entry.Name())
		}
	}
	return names, nil
}

// path maps object to a file name that cannot escape the root directory.
func (c FileClient) path(object string) string {
	return filepath.Join(c.Root, filepath.FromSlash(path.Clean("/"+object)))
}

type fileObjectHandle struct {
	path string
}

func (h fileObjectHandle) NewRangeReader(_ context.Context, offset, length int64) (io.ReadCloser, error) {
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("opening %s: %w", filepath.Base(h.path), ErrObjectNotExist)
		}
		return nil, err
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
	}
	if length < 0 {
		return f, nil
	}
	return readCloser{io.LimitReader(f, length), f}, nil
}

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

// Package mapping provides support for gene to binding file mappings.
package mapping

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Suffix is the file name suffix of mapping files.
const Suffix = ".data"

const maximumLineLength = 64 * 1024 * 1024

// Mapping maps lowercased gene names to binding file names.
type Mapping map[string]string

// Lookup returns the binding file of gene, ignoring case.
func (m Mapping) Lookup(gene string) (string, bool) {
	file, ok := m[strings.ToLower(gene)]
	return file, ok
}

// Parse reads one "gene bindingFile" record per line; fields are separated by
// runs of tabs or spaces.  Lines with fewer than two fields are skipped and
// fields past the second are ignored.
func Parse(r io.Reader) (Mapping, error) {
	m := make(Mapping)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maximumLineLength)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		m[strings.ToLower(fields[0])] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mapping: %v", err)
	}
	return m, nil
}

// Load parses the mapping file name in fsys.
func Load(fsys fs.FS, name string) (Mapping, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening mapping: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// List returns the identifiers of the mapping files in dir, in directory
// listing order.
func List(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return Identifiers(names), nil
}

// Identifiers strips Suffix from every name that carries it and drops the
// rest.  Names may be paths; only the final element is kept.
func Identifiers(names []string) []string {
	ids := []string{}
	for _, name := range names {
		base := path.Base(name)
		if len(base) > len(Suffix) && strings.HasSuffix(base, Suffix) {
			ids = append(ids, strings.TrimSuffix(base, Suffix))
		}
	}
	return ids
}

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

package genomics

import "regexp"

// MatchNothing is a pattern that never matches any name.  A literal followed
// by a start of text anchor cannot match.
var MatchNothing = regexp.MustCompile(`a^`)

// CompilePattern compiles pattern as a case insensitive regular expression
// over gene and condition names.  An empty pattern matches every name.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, &InvalidPatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}

// FilterPattern compiles pattern like CompilePattern but replaces a pattern
// that does not compile with MatchNothing, so that a bad filter selects
// nothing rather than failing the query.
func FilterPattern(pattern string) *regexp.Regexp {
	re, err := CompilePattern(pattern)
	if err != nil {
		return MatchNothing
	}
	return re
}

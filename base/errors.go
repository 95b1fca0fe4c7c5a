// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import "github.com/juju/errors"

// ErrShapeMismatch is returned when matrices or images that must share a
// shape do not. Invalid arguments use errors.NotValid and missing inputs use
// errors.NotFound.
const ErrShapeMismatch = errors.ConstError("shape mismatch")

// ValidateDims checks that every dimension is at least one.
func ValidateDims(names []string, dims ...int) error {
	for i, d := range dims {
		if d < 1 {
			return errors.NotValidf("%s %d (must be positive)", names[i], d)
		}
	}
	return nil
}

// Must panics if err is not nil.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Copyright 2026 The Provdir Authors
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

package directory

import "strings"

// DN is a distinguished name: a hierarchical, comma-separated path that
// uniquely identifies an entry in the directory (most specific component
// first, e.g. "ou=my-client,ou=clients,ou=acme,o=provdir"). A DN is assigned
// once when the entry is created and never changes; entities use each other's
// DNs as foreign keys.
type DN string

// Child returns the DN of a child entry one level below d.
// The attribute value is escaped so it cannot break the DN structure.
func (d DN) Child(attr, value string) DN {
	component := attr + "=" + escapeComponent(value)
	if d == "" {
		return DN(component)
	}
	return DN(component + "," + string(d))
}

// Parent returns the DN one level above d, or the zero DN for a single
// component.
func (d DN) Parent() DN {
	if i := strings.Index(string(d), ","); i >= 0 {
		return d[i+1:]
	}
	return ""
}

// Under reports whether d lives in the subtree rooted at base.
func (d DN) Under(base DN) bool {
	if base == "" {
		return true
	}
	return strings.HasSuffix(string(d), ","+string(base))
}

// IsZero reports whether the DN is unset.
func (d DN) IsZero() bool { return d == "" }

func (d DN) String() string { return string(d) }

func escapeComponent(value string) string {
	return strings.NewReplacer(",", "\\,", "=", "\\=", "+", "\\+").Replace(value)
}

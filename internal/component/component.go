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

package component

import "github.com/provdir/provdir/internal/directory"

// Component is a capability clients and adapters can be linked to. The
// relationship with clients is many-to-many and mirrored: the component holds
// the member client DNs, each member client holds the component DN.
type Component struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Clients     []directory.DN `json:"clients"`
	Adapters    []directory.DN `json:"adapters"`
	DN          directory.DN   `json:"-"`
}

func (c *Component) GetDN() directory.DN       { return c.DN }
func (c *Component) SetDN(dn directory.DN)     { c.DN = dn }
func (c *Component) EntryName() string         { return c.Name }
func (c *Component) EntryKind() directory.Kind { return directory.KindComponent }

// HasClient reports whether the component lists the client as a member.
func (c *Component) HasClient(clientDN directory.DN) bool {
	for _, dn := range c.Clients {
		if dn == clientDN {
			return true
		}
	}
	return false
}

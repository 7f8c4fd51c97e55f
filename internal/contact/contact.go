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

package contact

import "github.com/provdir/provdir/internal/directory"

// Contact is a person registered in the directory, keyed by national identity
// number. Roles are free-form strings scoped to an organisation, e.g.
// "admin@acme".
type Contact struct {
	NIN       string       `json:"nin"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Mail      string       `json:"mail"`
	Mobile    string       `json:"mobile"`
	Roles     []string     `json:"roles"`
	DN        directory.DN `json:"-"`
}

func (c *Contact) GetDN() directory.DN       { return c.DN }
func (c *Contact) SetDN(dn directory.DN)     { c.DN = dn }
func (c *Contact) EntryName() string         { return c.NIN }
func (c *Contact) EntryKind() directory.Kind { return directory.KindContact }

// HasRole reports whether the contact carries the role.
func (c *Contact) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

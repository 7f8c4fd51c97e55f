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

package client

import "github.com/provdir/provdir/internal/directory"

// Client is a provisioned service account belonging to an organisation. It is
// a member of any number of components and of at most one access package.
//
// AccessPackage is the client's current package. AccessPackages mirrors it as
// a list; the relationship synchronizer reads it to find stale memberships
// left behind by earlier links, so both fields are kept coherent on every
// link and unlink.
type Client struct {
	Name             string         `json:"name"`
	ShortDescription string         `json:"shortDescription"`
	Note             string         `json:"note"`
	AssetID          string         `json:"assetId"`
	ClientID         string         `json:"clientId"`
	PasswordHash     string         `json:"passwordHash,omitempty"`
	Components       []directory.DN `json:"components"`
	AccessPackage    directory.DN   `json:"accessPackage"`
	AccessPackages   []directory.DN `json:"accessPackages"`
	DN               directory.DN   `json:"-"`
}

func (c *Client) GetDN() directory.DN       { return c.DN }
func (c *Client) SetDN(dn directory.DN)     { c.DN = dn }
func (c *Client) EntryName() string         { return c.Name }
func (c *Client) EntryKind() directory.Kind { return directory.KindClient }

// IsProvisioned reports whether a credential pair has ever been issued for
// the client. A client shell that exists in the directory without a
// credential id is treated as never provisioned.
func (c *Client) IsProvisioned() bool { return c.ClientID != "" }

// HasComponent reports whether the client lists the component among its
// memberships.
func (c *Client) HasComponent(componentDN directory.DN) bool {
	for _, dn := range c.Components {
		if dn == componentDN {
			return true
		}
	}
	return false
}

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

package adapter

import "github.com/provdir/provdir/internal/directory"

// Adapter is a machine integration account owned by an organisation. Like a
// client it carries a credential pair, but it attaches to assets rather than
// to components or access packages.
type Adapter struct {
	Name             string         `json:"name"`
	Note             string         `json:"note"`
	ShortDescription string         `json:"shortDescription"`
	ClientID         string         `json:"clientId"`
	PasswordHash     string         `json:"passwordHash,omitempty"`
	Assets           []directory.DN `json:"assets"`
	DN               directory.DN   `json:"-"`
}

func (a *Adapter) GetDN() directory.DN       { return a.DN }
func (a *Adapter) SetDN(dn directory.DN)     { a.DN = dn }
func (a *Adapter) EntryName() string         { return a.Name }
func (a *Adapter) EntryKind() directory.Kind { return directory.KindAdapter }

// HasAsset reports whether the adapter already references the asset.
func (a *Adapter) HasAsset(assetDN directory.DN) bool {
	for _, dn := range a.Assets {
		if dn == assetDN {
			return true
		}
	}
	return false
}

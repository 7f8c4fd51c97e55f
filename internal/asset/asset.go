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

package asset

import "github.com/provdir/provdir/internal/directory"

// Asset groups the adapters and clients that exchange data for one
// information domain of an organisation. The primary asset is created
// together with the organisation and receives every new client and adapter.
type Asset struct {
	AssetID     string         `json:"assetId"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Primary     bool           `json:"primary"`
	Adapters    []directory.DN `json:"adapters"`
	Clients     []directory.DN `json:"clients"`
	DN          directory.DN   `json:"-"`
}

func (a *Asset) GetDN() directory.DN       { return a.DN }
func (a *Asset) SetDN(dn directory.DN)     { a.DN = dn }
func (a *Asset) EntryName() string         { return a.AssetID }
func (a *Asset) EntryKind() directory.Kind { return directory.KindAsset }

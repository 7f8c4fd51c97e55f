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

package organisation

import (
	"github.com/provdir/provdir/internal/directory"
)

// Organisation is the root of a provisioning subtree: its adapters, clients,
// access packages and assets all live under its DN.
type Organisation struct {
	Name           string       `json:"name"`
	DisplayName    string       `json:"displayName"`
	OrgNumber      string       `json:"orgNumber"`
	PrimaryAssetID string       `json:"primaryAssetId"`
	DN             directory.DN `json:"-"`
}

func (o *Organisation) GetDN() directory.DN       { return o.DN }
func (o *Organisation) SetDN(dn directory.DN)     { o.DN = dn }
func (o *Organisation) EntryName() string         { return o.Name }
func (o *Organisation) EntryKind() directory.Kind { return directory.KindOrganisation }

// Subtree bases below the organisation. Every owning service builds its DNs
// from these.

func (o *Organisation) ClientBase() directory.DN  { return o.DN.Child("ou", "clients") }
func (o *Organisation) AdapterBase() directory.DN { return o.DN.Child("ou", "adapters") }
func (o *Organisation) AccessBase() directory.DN  { return o.DN.Child("ou", "access") }
func (o *Organisation) AssetBase() directory.DN   { return o.DN.Child("ou", "assets") }

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

package access

import "github.com/provdir/provdir/internal/directory"

// Package groups clients that share a downstream entitlement. Membership is
// mirrored: the package holds the member client DNs, each member holds the
// package DN, and a client belongs to at most one package at a time. The
// synchronizer in this package restores that invariant after every edit.
type Package struct {
	Name    string         `json:"name"`
	Self    directory.DN   `json:"self"`
	Clients []directory.DN `json:"clients"`
	DN      directory.DN   `json:"-"`
}

func (p *Package) GetDN() directory.DN       { return p.DN }
func (p *Package) SetDN(dn directory.DN)     { p.DN = dn }
func (p *Package) EntryName() string         { return p.Name }
func (p *Package) EntryKind() directory.Kind { return directory.KindAccessPackage }

// HasClient reports whether the package lists the client as a member.
func (p *Package) HasClient(clientDN directory.DN) bool {
	for _, dn := range p.Clients {
		if dn == clientDN {
			return true
		}
	}
	return false
}

// AddClient appends the client DN if absent.
func (p *Package) AddClient(clientDN directory.DN) {
	if !p.HasClient(clientDN) {
		p.Clients = append(p.Clients, clientDN)
	}
}

// RemoveClient drops the client DN from the member list.
func (p *Package) RemoveClient(clientDN directory.DN) {
	kept := p.Clients[:0]
	for _, dn := range p.Clients {
		if dn != clientDN {
			kept = append(kept, dn)
		}
	}
	p.Clients = kept
}

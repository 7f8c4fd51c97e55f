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

package directory_test

import (
	"context"
	"testing"

	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObject struct {
	Name    string         `json:"name"`
	Members []directory.DN `json:"members"`
	DN      directory.DN   `json:"-"`
}

func (o *testObject) GetDN() directory.DN       { return o.DN }
func (o *testObject) SetDN(dn directory.DN)     { o.DN = dn }
func (o *testObject) EntryName() string         { return o.Name }
func (o *testObject) EntryKind() directory.Kind { return directory.KindComponent }

func TestEntry_EncodeDecode(t *testing.T) {
	obj := &testObject{
		Name:    "queue",
		Members: []directory.DN{"cn=a,o=provdir", "cn=b,o=provdir"},
		DN:      directory.DN("ou=queue,ou=components,o=provdir"),
	}

	entry, err := directory.NewEntry(obj)
	require.NoError(t, err)
	assert.Equal(t, obj.DN, entry.DN)
	assert.Equal(t, directory.KindComponent, entry.Kind)
	assert.Equal(t, "queue", entry.Name)

	decoded := &testObject{}
	require.NoError(t, entry.Decode(decoded))
	assert.Equal(t, obj.Name, decoded.Name)
	assert.Equal(t, obj.Members, decoded.Members)
	assert.Equal(t, obj.DN, decoded.DN)
}

func TestEntry_NewEntryRequiresDN(t *testing.T) {
	_, err := directory.NewEntry(&testObject{Name: "no-dn"})
	assert.Error(t, err)
}

func TestRemoveListValue(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()

	obj := &testObject{
		Name:    "queue",
		Members: []directory.DN{"cn=a,o=provdir", "cn=b,o=provdir"},
		DN:      directory.DN("ou=queue,ou=components,o=provdir"),
	}
	entry, err := directory.NewEntry(obj)
	require.NoError(t, err)
	require.NoError(t, store.CreateEntry(ctx, entry))

	require.NoError(t, directory.RemoveListValue(ctx, store, obj.DN, "members", "cn=a,o=provdir"))

	stored, err := store.GetEntry(ctx, obj.DN)
	require.NoError(t, err)
	decoded := &testObject{}
	require.NoError(t, stored.Decode(decoded))
	assert.Equal(t, []directory.DN{"cn=b,o=provdir"}, decoded.Members)
}

func TestRemoveListValue_MissingEntryIsNoop(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()

	err := directory.RemoveListValue(ctx, store, "ou=gone,o=provdir", "members", "cn=a,o=provdir")
	assert.NoError(t, err)
}

func TestRemoveListValue_AbsentValueIsNoop(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()

	obj := &testObject{
		Name:    "queue",
		Members: []directory.DN{"cn=a,o=provdir"},
		DN:      directory.DN("ou=queue,ou=components,o=provdir"),
	}
	entry, err := directory.NewEntry(obj)
	require.NoError(t, err)
	require.NoError(t, store.CreateEntry(ctx, entry))

	require.NoError(t, directory.RemoveListValue(ctx, store, obj.DN, "members", "cn=other,o=provdir"))
	require.NoError(t, directory.RemoveListValue(ctx, store, obj.DN, "no_such_attr", "x"))

	stored, err := store.GetEntry(ctx, obj.DN)
	require.NoError(t, err)
	decoded := &testObject{}
	require.NoError(t, stored.Decode(decoded))
	assert.Equal(t, []directory.DN{"cn=a,o=provdir"}, decoded.Members)
}

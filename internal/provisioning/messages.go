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

package provisioning

// ClientRequest asks for a client to be created, updated, deleted or looked
// up in the named organisation. Note and ShortDescription are pointers so a
// request can distinguish "leave unchanged" from "set to empty".
type ClientRequest struct {
	OrgID            string   `json:"orgId"`
	Name             string   `json:"name"`
	Note             *string  `json:"note,omitempty"`
	ShortDescription *string  `json:"shortDescription,omitempty"`
	Components       []string `json:"components,omitempty"`
}

// ClientReply carries the outcome of a provisioning request back to the
// requester. Update and get replies carry the current client id and secret;
// the password is only ever sent on create, where it was just rotated.
type ClientReply struct {
	Successful   bool   `json:"successful,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	OrgID        string `json:"orgId,omitempty"`
}

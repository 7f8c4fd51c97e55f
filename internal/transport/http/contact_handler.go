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

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/provdir/provdir/internal/contact"
)

// ContactRequest represents contact create/update data
type ContactRequest struct {
	NIN       string `json:"nin"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Mail      string `json:"mail"`
	Mobile    string `json:"mobile"`
}

// CreateContact registers a new contact.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := &contact.Contact{
		NIN:       req.NIN,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mail:      req.Mail,
		Mobile:    req.Mobile,
	}
	if err := h.contactService.Create(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// ListContacts lists every contact.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactService.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

// GetContact returns one contact by national identity number.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveContact(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// UpdateContact updates mutable contact attributes.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveContact(w, r)
	if !ok {
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.FirstName = req.FirstName
	c.LastName = req.LastName
	c.Mail = req.Mail
	c.Mobile = req.Mobile

	if err := h.contactService.Update(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update contact")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteContact removes the contact entry.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveContact(w, r)
	if !ok {
		return
	}
	if err := h.contactService.Delete(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}

// AddContactRole grants a role to the contact.
func (h *Handler) AddContactRole(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveContact(w, r)
	if !ok {
		return
	}
	if err := h.contactService.AddRole(r.Context(), c, chi.URLParam(r, "role")); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to add role")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// RemoveContactRole revokes a role from the contact.
func (h *Handler) RemoveContactRole(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveContact(w, r)
	if !ok {
		return
	}
	if err := h.contactService.RemoveRole(r.Context(), c, chi.URLParam(r, "role")); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to remove role")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) resolveContact(w http.ResponseWriter, r *http.Request) (*contact.Contact, bool) {
	nin := chi.URLParam(r, "nin")
	c, err := h.contactService.Get(r.Context(), nin)
	if errors.Is(err, contact.ErrContactNotFound) {
		respondError(w, http.StatusNotFound, "contact not found")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load contact")
		return nil, false
	}
	return c, true
}

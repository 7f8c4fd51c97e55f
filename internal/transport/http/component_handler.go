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
	"github.com/provdir/provdir/internal/component"
)

// ComponentRequest represents component create/update data
type ComponentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateComponent registers a new component. Creating a component that
// already exists is a no-op and answers with the stored one.
func (h *Handler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	var req ComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := &component.Component{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.componentService.Create(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create component")
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// ListComponents lists every component.
func (h *Handler) ListComponents(w http.ResponseWriter, r *http.Request) {
	components, err := h.componentService.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list components")
		return
	}
	respondJSON(w, http.StatusOK, components)
}

// GetComponent returns one component by logical name.
func (h *Handler) GetComponent(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveComponent(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// UpdateComponent updates mutable component attributes.
func (h *Handler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveComponent(w, r)
	if !ok {
		return
	}

	var req ComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.Description = req.Description

	if err := h.componentService.Update(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update component")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteComponent removes the component after unlinking its member clients.
func (h *Handler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveComponent(w, r)
	if !ok {
		return
	}
	if err := h.componentService.Delete(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete component")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "component deleted"})
}

func (h *Handler) resolveComponent(w http.ResponseWriter, r *http.Request) (*component.Component, bool) {
	name := chi.URLParam(r, "componentName")
	c, err := h.componentService.GetByName(r.Context(), name)
	if errors.Is(err, component.ErrComponentNotFound) {
		respondError(w, http.StatusNotFound, "component not found")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load component")
		return nil, false
	}
	return c, true
}

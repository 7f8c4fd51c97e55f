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
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/provdir/provdir/internal/adapter"
	"github.com/provdir/provdir/internal/credentials"
	"github.com/provdir/provdir/internal/observability/logger"
)

// AdapterRequest represents adapter create/update data
type AdapterRequest struct {
	Name             string `json:"name"`
	ShortDescription string `json:"shortDescription"`
	Note             string `json:"note"`
}

// CreateAdapter provisions a new adapter under the organisation.
func (h *Handler) CreateAdapter(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}

	var req AdapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a := &adapter.Adapter{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Note:             req.Note,
	}
	if err := h.adapterService.Create(r.Context(), a, org); err != nil {
		slog.ErrorContext(r.Context(), "failed to create adapter",
			logger.Error(err),
			logger.String("adapter", req.Name),
			logger.String("org", org.Name),
		)
		respondError(w, http.StatusInternalServerError, "failed to create adapter")
		return
	}

	respondJSON(w, http.StatusCreated, a)
}

// ListAdapters lists the organisation's adapters.
func (h *Handler) ListAdapters(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}
	adapters, err := h.adapterService.GetAll(r.Context(), org)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list adapters")
		return
	}
	respondJSON(w, http.StatusOK, adapters)
}

// GetAdapter returns one adapter by name.
func (h *Handler) GetAdapter(w http.ResponseWriter, r *http.Request) {
	a, ok := h.resolveAdapter(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// UpdateAdapter updates mutable adapter attributes.
func (h *Handler) UpdateAdapter(w http.ResponseWriter, r *http.Request) {
	a, ok := h.resolveAdapter(w, r)
	if !ok {
		return
	}

	var req AdapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a.ShortDescription = req.ShortDescription
	a.Note = req.Note

	if err := h.adapterService.Update(r.Context(), a); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update adapter")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// DeleteAdapter removes the adapter, its credential and its asset links.
func (h *Handler) DeleteAdapter(w http.ResponseWriter, r *http.Request) {
	a, ok := h.resolveAdapter(w, r)
	if !ok {
		return
	}
	if err := h.adapterService.Delete(r.Context(), a); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete adapter")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "adapter deleted"})
}

// ResetAdapterPassword rotates the adapter's password and returns the new one.
func (h *Handler) ResetAdapterPassword(w http.ResponseWriter, r *http.Request) {
	a, ok := h.resolveAdapter(w, r)
	if !ok {
		return
	}
	password := credentials.GeneratePassword(32)
	if err := h.adapterService.ResetPassword(r.Context(), a, password); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"password": password})
}

// GetAdapterSecret returns the adapter's secret from the credential registry.
func (h *Handler) GetAdapterSecret(w http.ResponseWriter, r *http.Request) {
	a, ok := h.resolveAdapter(w, r)
	if !ok {
		return
	}
	secret, err := h.adapterService.Secret(r.Context(), a)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch adapter secret")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"clientId":     a.ClientID,
		"clientSecret": secret,
	})
}

func (h *Handler) resolveAdapter(w http.ResponseWriter, r *http.Request) (*adapter.Adapter, bool) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return nil, false
	}
	name := chi.URLParam(r, "adapterName")
	a, err := h.adapterService.GetBySimpleName(r.Context(), name, org)
	if errors.Is(err, adapter.ErrAdapterNotFound) {
		respondError(w, http.StatusNotFound, "adapter not found")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load adapter")
		return nil, false
	}
	return a, true
}

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
	"github.com/provdir/provdir/internal/observability/logger"
	"github.com/provdir/provdir/internal/organisation"
)

// OrganisationRequest represents organisation create/update data
type OrganisationRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	OrgNumber   string `json:"orgNumber"`
}

// CreateOrganisation registers a new organisation and bootstraps its primary
// asset.
func (h *Handler) CreateOrganisation(w http.ResponseWriter, r *http.Request) {
	var req OrganisationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	org := &organisation.Organisation{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		OrgNumber:   req.OrgNumber,
	}
	if err := h.orgService.Create(r.Context(), org); err != nil {
		slog.ErrorContext(r.Context(), "failed to create organisation",
			logger.Error(err),
			logger.String("org", req.Name),
		)
		respondError(w, http.StatusInternalServerError, "failed to create organisation")
		return
	}

	respondJSON(w, http.StatusCreated, org)
}

// ListOrganisations lists every organisation.
func (h *Handler) ListOrganisations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgService.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list organisations")
		return
	}
	respondJSON(w, http.StatusOK, orgs)
}

// GetOrganisation returns one organisation by name.
func (h *Handler) GetOrganisation(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, org)
}

// UpdateOrganisation updates mutable organisation attributes.
func (h *Handler) UpdateOrganisation(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}

	var req OrganisationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	org.DisplayName = req.DisplayName
	org.OrgNumber = req.OrgNumber

	if err := h.orgService.Update(r.Context(), org); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update organisation")
		return
	}
	respondJSON(w, http.StatusOK, org)
}

// DeleteOrganisation removes the organisation entry.
func (h *Handler) DeleteOrganisation(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}
	if err := h.orgService.Delete(r.Context(), org); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete organisation")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "organisation deleted"})
}

// ListAssets lists the organisation's assets.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}
	assets, err := h.assetService.GetAll(r.Context(), org)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

// resolveOrganisation loads the organisation named in the route, writing the
// error response itself when the lookup fails.
func (h *Handler) resolveOrganisation(w http.ResponseWriter, r *http.Request) (*organisation.Organisation, bool) {
	name := chi.URLParam(r, "orgName")
	org, err := h.orgService.Get(r.Context(), name)
	if errors.Is(err, organisation.ErrOrganisationNotFound) {
		respondError(w, http.StatusNotFound, "organisation not found")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load organisation")
		return nil, false
	}
	return org, true
}

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
	"github.com/provdir/provdir/internal/access"
	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/observability/logger"
)

// AccessPackageRequest represents access package create data
type AccessPackageRequest struct {
	Name string `json:"name"`
}

// AccessPackageUpdateRequest carries the desired member set for a
// reconciling update.
type AccessPackageUpdateRequest struct {
	Clients []directory.DN `json:"clients"`
}

// CreateAccessPackage registers a new access package under the organisation.
func (h *Handler) CreateAccessPackage(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}

	var req AccessPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pkg := &access.Package{Name: req.Name}
	if err := h.accessService.Add(r.Context(), pkg, org); err != nil {
		slog.ErrorContext(r.Context(), "failed to create access package",
			logger.Error(err),
			logger.String("package", req.Name),
			logger.String("org", org.Name),
		)
		respondError(w, http.StatusInternalServerError, "failed to create access package")
		return
	}
	respondJSON(w, http.StatusCreated, pkg)
}

// ListAccessPackages lists the organisation's access packages.
func (h *Handler) ListAccessPackages(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}
	pkgs, err := h.accessService.GetAll(r.Context(), org)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list access packages")
		return
	}
	respondJSON(w, http.StatusOK, pkgs)
}

// GetAccessPackage returns one access package by name.
func (h *Handler) GetAccessPackage(w http.ResponseWriter, r *http.Request) {
	pkg, ok := h.resolveAccessPackage(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, pkg)
}

// UpdateAccessPackage replaces the package's member set and reconciles every
// affected client.
func (h *Handler) UpdateAccessPackage(w http.ResponseWriter, r *http.Request) {
	pkg, ok := h.resolveAccessPackage(w, r)
	if !ok {
		return
	}

	var req AccessPackageUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pkg.Clients = req.Clients

	if err := h.accessService.Update(r.Context(), pkg); err != nil {
		slog.ErrorContext(r.Context(), "failed to update access package",
			logger.Error(err),
			logger.String("package", pkg.Name),
		)
		respondError(w, http.StatusInternalServerError, "failed to update access package")
		return
	}
	respondJSON(w, http.StatusOK, pkg)
}

// DeleteAccessPackage removes the package after unlinking its members.
func (h *Handler) DeleteAccessPackage(w http.ResponseWriter, r *http.Request) {
	pkg, ok := h.resolveAccessPackage(w, r)
	if !ok {
		return
	}
	if err := h.accessService.Remove(r.Context(), pkg); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete access package")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "access package deleted"})
}

// LinkAccessClient adds the named client to the package.
func (h *Handler) LinkAccessClient(w http.ResponseWriter, r *http.Request) {
	pkg, ok := h.resolveAccessPackage(w, r)
	if !ok {
		return
	}
	cl, _, ok := h.resolveClient(w, r)
	if !ok {
		return
	}
	if err := h.accessService.LinkClient(r.Context(), pkg, cl); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to link client")
		return
	}
	respondJSON(w, http.StatusOK, pkg)
}

// UnlinkAccessClient removes the named client from the package.
func (h *Handler) UnlinkAccessClient(w http.ResponseWriter, r *http.Request) {
	pkg, ok := h.resolveAccessPackage(w, r)
	if !ok {
		return
	}
	cl, _, ok := h.resolveClient(w, r)
	if !ok {
		return
	}
	if err := h.accessService.UnlinkClient(r.Context(), pkg, cl); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to unlink client")
		return
	}
	respondJSON(w, http.StatusOK, pkg)
}

func (h *Handler) resolveAccessPackage(w http.ResponseWriter, r *http.Request) (*access.Package, bool) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return nil, false
	}
	name := chi.URLParam(r, "packageName")
	pkg, err := h.accessService.Get(r.Context(), name, org)
	if errors.Is(err, access.ErrPackageNotFound) {
		respondError(w, http.StatusNotFound, "access package not found")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load access package")
		return nil, false
	}
	return pkg, true
}

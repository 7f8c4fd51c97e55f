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
	"github.com/provdir/provdir/internal/client"
	"github.com/provdir/provdir/internal/credentials"
	"github.com/provdir/provdir/internal/observability/logger"
	"github.com/provdir/provdir/internal/organisation"
)

// ClientRequest represents client create/update data
type ClientRequest struct {
	Name             string `json:"name"`
	ShortDescription string `json:"shortDescription"`
	Note             string `json:"note"`
}

// CreateClient provisions a new client under the organisation.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cl := &client.Client{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Note:             req.Note,
	}
	if err := h.clientService.Create(r.Context(), cl, org); err != nil {
		slog.ErrorContext(r.Context(), "failed to create client",
			logger.Error(err),
			logger.String("client", req.Name),
			logger.String("org", org.Name),
		)
		respondError(w, http.StatusInternalServerError, "failed to create client")
		return
	}

	respondJSON(w, http.StatusCreated, cl)
}

// ListClients lists the organisation's clients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return
	}
	clients, err := h.clientService.GetAll(r.Context(), org)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

// GetClient returns one client by name.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	cl, _, ok := h.resolveClient(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, cl)
}

// UpdateClient updates mutable client attributes.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	cl, _, ok := h.resolveClient(w, r)
	if !ok {
		return
	}

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cl.ShortDescription = req.ShortDescription
	cl.Note = req.Note

	if err := h.clientService.Update(r.Context(), cl); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update client")
		return
	}
	respondJSON(w, http.StatusOK, cl)
}

// DeleteClient removes the client, its credential and every back-reference.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	cl, _, ok := h.resolveClient(w, r)
	if !ok {
		return
	}
	if err := h.clientService.Delete(r.Context(), cl); err != nil {
		slog.ErrorContext(r.Context(), "failed to delete client",
			logger.Error(err),
			logger.String("client", cl.Name),
		)
		respondError(w, http.StatusInternalServerError, "failed to delete client")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "client deleted"})
}

// ResetClientPassword rotates the client's password and returns the new one.
func (h *Handler) ResetClientPassword(w http.ResponseWriter, r *http.Request) {
	cl, _, ok := h.resolveClient(w, r)
	if !ok {
		return
	}
	password := credentials.GeneratePassword(32)
	if err := h.clientService.ResetPassword(r.Context(), cl, password); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"password": password})
}

// GetClientSecret returns the client's secret from the credential registry.
func (h *Handler) GetClientSecret(w http.ResponseWriter, r *http.Request) {
	cl, _, ok := h.resolveClient(w, r)
	if !ok {
		return
	}
	secret, err := h.clientService.Secret(r.Context(), cl)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch client secret")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"clientId":     cl.ClientID,
		"clientSecret": secret,
	})
}

func (h *Handler) resolveClient(w http.ResponseWriter, r *http.Request) (*client.Client, *organisation.Organisation, bool) {
	org, ok := h.resolveOrganisation(w, r)
	if !ok {
		return nil, nil, false
	}
	name := chi.URLParam(r, "clientName")
	cl, err := h.clientService.GetBySimpleName(r.Context(), name, org)
	if errors.Is(err, client.ErrClientNotFound) {
		respondError(w, http.StatusNotFound, "client not found")
		return nil, nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load client")
		return nil, nil, false
	}
	return cl, org, true
}

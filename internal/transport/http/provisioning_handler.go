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
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/provdir/provdir/internal/observability/logger"
	"github.com/provdir/provdir/internal/provisioning"
)

// ProvisionCreate bridges a synchronous HTTP call onto the provisioning
// create topic and waits for the reply.
func (h *Handler) ProvisionCreate(w http.ResponseWriter, r *http.Request) {
	h.bridge(w, r, provisioning.TopicClientCreate)
}

// ProvisionUpdate bridges onto the update topic.
func (h *Handler) ProvisionUpdate(w http.ResponseWriter, r *http.Request) {
	h.bridge(w, r, provisioning.TopicClientUpdate)
}

// ProvisionDelete bridges onto the delete topic.
func (h *Handler) ProvisionDelete(w http.ResponseWriter, r *http.Request) {
	h.bridge(w, r, provisioning.TopicClientDelete)
}

// ProvisionGet bridges onto the get topic.
func (h *Handler) ProvisionGet(w http.ResponseWriter, r *http.Request) {
	h.bridge(w, r, provisioning.TopicClientGet)
}

// bridge forwards the raw request body onto the topic and relays the reply
// payload verbatim. The workflow owns the request schema; the bridge only
// moves bytes and enforces the reply timeout.
func (h *Handler) bridge(w http.ResponseWriter, r *http.Request, topic string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	reply, err := h.requests.Request(ctx, topic, body)
	if errors.Is(err, context.DeadlineExceeded) {
		respondError(w, http.StatusGatewayTimeout, "provisioning request timed out")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "provisioning request failed",
			logger.Error(err),
			logger.Topic(topic),
		)
		respondError(w, http.StatusInternalServerError, "provisioning request failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(reply)
}

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
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/provdir/provdir/internal/access"
	"github.com/provdir/provdir/internal/adapter"
	"github.com/provdir/provdir/internal/asset"
	"github.com/provdir/provdir/internal/client"
	"github.com/provdir/provdir/internal/component"
	"github.com/provdir/provdir/internal/contact"
	"github.com/provdir/provdir/internal/organisation"
	"github.com/provdir/provdir/internal/transport/queue"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	orgService       *organisation.Service
	assetService     *asset.Service
	clientService    *client.Service
	adapterService   *adapter.Service
	accessService    *access.Service
	componentService *component.Service
	contactService   *contact.Service
	requests         *queue.RequestClient
	authConfig       AuthConfig
	requestTimeout   time.Duration
}

// AuthConfig holds bearer token validation configuration
type AuthConfig struct {
	JWTSecret []byte
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orgService *organisation.Service,
	assetService *asset.Service,
	clientService *client.Service,
	adapterService *adapter.Service,
	accessService *access.Service,
	componentService *component.Service,
	contactService *contact.Service,
	requests *queue.RequestClient,
	authConfig AuthConfig,
	requestTimeout time.Duration,
) *Handler {
	return &Handler{
		orgService:       orgService,
		assetService:     assetService,
		clientService:    clientService,
		adapterService:   adapterService,
		accessService:    accessService,
		componentService: componentService,
		contactService:   contactService,
		requests:         requests,
		authConfig:       authConfig,
		requestTimeout:   requestTimeout,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Route("/organisations", func(r chi.Router) {
			r.Post("/", h.CreateOrganisation)
			r.Get("/", h.ListOrganisations)

			r.Route("/{orgName}", func(r chi.Router) {
				r.Get("/", h.GetOrganisation)
				r.Put("/", h.UpdateOrganisation)
				r.Delete("/", h.DeleteOrganisation)

				r.Get("/assets", h.ListAssets)

				r.Route("/clients", func(r chi.Router) {
					r.Post("/", h.CreateClient)
					r.Get("/", h.ListClients)
					r.Route("/{clientName}", func(r chi.Router) {
						r.Get("/", h.GetClient)
						r.Put("/", h.UpdateClient)
						r.Delete("/", h.DeleteClient)
						r.Post("/password", h.ResetClientPassword)
						r.Get("/secret", h.GetClientSecret)
					})
				})

				r.Route("/adapters", func(r chi.Router) {
					r.Post("/", h.CreateAdapter)
					r.Get("/", h.ListAdapters)
					r.Route("/{adapterName}", func(r chi.Router) {
						r.Get("/", h.GetAdapter)
						r.Put("/", h.UpdateAdapter)
						r.Delete("/", h.DeleteAdapter)
						r.Post("/password", h.ResetAdapterPassword)
						r.Get("/secret", h.GetAdapterSecret)
					})
				})

				r.Route("/access", func(r chi.Router) {
					r.Post("/", h.CreateAccessPackage)
					r.Get("/", h.ListAccessPackages)
					r.Route("/{packageName}", func(r chi.Router) {
						r.Get("/", h.GetAccessPackage)
						r.Put("/", h.UpdateAccessPackage)
						r.Delete("/", h.DeleteAccessPackage)
						r.Put("/clients/{clientName}", h.LinkAccessClient)
						r.Delete("/clients/{clientName}", h.UnlinkAccessClient)
					})
				})
			})
		})

		r.Route("/components", func(r chi.Router) {
			r.Post("/", h.CreateComponent)
			r.Get("/", h.ListComponents)
			r.Route("/{componentName}", func(r chi.Router) {
				r.Get("/", h.GetComponent)
				r.Put("/", h.UpdateComponent)
				r.Delete("/", h.DeleteComponent)
			})
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", h.CreateContact)
			r.Get("/", h.ListContacts)
			r.Route("/{nin}", func(r chi.Router) {
				r.Get("/", h.GetContact)
				r.Put("/", h.UpdateContact)
				r.Delete("/", h.DeleteContact)
				r.Put("/roles/{role}", h.AddContactRole)
				r.Delete("/roles/{role}", h.RemoveContactRole)
			})
		})

		// Synchronous bridge into the provisioning queue
		r.Route("/provisioning/clients", func(r chi.Router) {
			r.Post("/create", h.ProvisionCreate)
			r.Post("/update", h.ProvisionUpdate)
			r.Post("/delete", h.ProvisionDelete)
			r.Post("/get", h.ProvisionGet)
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "provdir",
	})
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

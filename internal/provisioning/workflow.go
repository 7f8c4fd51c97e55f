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

// Package provisioning implements the asynchronous client lifecycle workflow.
// Requests arrive over an at-least-once transport, so every handler is written
// to be safely re-runnable: a redelivered create converges on the same client
// and simply rotates its password again.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/provdir/provdir/internal/client"
	"github.com/provdir/provdir/internal/component"
	"github.com/provdir/provdir/internal/credentials"
	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/organisation"
)

const generatedPasswordLength = 32

// Workflow executes provisioning requests against the directory services.
//
// Failure handling is deliberately asymmetric. An unknown organisation on
// create is answered with an unsuccessful reply, because the requester may
// legitimately race ahead of organisation onboarding and must be told to give
// up. Everything else that fails returns an error, which the transport
// answers with redelivery.
type Workflow struct {
	orgs       *organisation.Service
	clients    *client.Service
	components *component.Service
	logger     *slog.Logger
}

// NewWorkflow creates a workflow over the given services.
func NewWorkflow(orgs *organisation.Service, clients *client.Service, components *component.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		orgs:       orgs,
		clients:    clients,
		components: components,
		logger:     logger,
	}
}

// HandleCreate provisions the requested client. An existing client with the
// same name is updated in place rather than recreated. The password is
// rotated on every call and the full credential set goes back in the reply;
// nothing but the reply ever exposes the password.
func (w *Workflow) HandleCreate(ctx context.Context, req *ClientRequest) (*ClientReply, error) {
	org, err := w.orgs.Get(ctx, req.OrgID)
	if errors.Is(err, organisation.ErrOrganisationNotFound) {
		w.logger.Warn("create request for unknown organisation", "org_id", req.OrgID, "client", req.Name)
		return &ClientReply{
			ErrorMessage: fmt.Sprintf("organisation %s not found", req.OrgID),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	cl, err := w.clients.GetBySimpleName(ctx, req.Name, org)
	if errors.Is(err, client.ErrClientNotFound) {
		cl = &client.Client{Name: req.Name}
		applyRequest(cl, req)
		if err := w.clients.Create(ctx, cl, org); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		applyRequest(cl, req)
		if err := w.clients.Update(ctx, cl); err != nil {
			return nil, err
		}
		if !cl.IsProvisioned() {
			if err := w.clients.Provision(ctx, cl, org); err != nil {
				return nil, err
			}
		}
	}

	if err := w.reconcileComponents(ctx, cl, req.Components); err != nil {
		return nil, err
	}

	password := credentials.GeneratePassword(generatedPasswordLength)
	if err := w.clients.ResetPassword(ctx, cl, password); err != nil {
		return nil, err
	}

	secret, err := w.clients.Secret(ctx, cl)
	if err != nil {
		return nil, err
	}

	w.logger.Info("provisioned client", "client", cl.DN.String(), "org_id", req.OrgID)
	return &ClientReply{
		Successful:   true,
		Username:     cl.Name,
		Password:     password,
		ClientID:     cl.ClientID,
		ClientSecret: secret,
		OrgID:        replyOrgID(cl.AssetID),
	}, nil
}

// HandleUpdate applies the request to an existing client. Unlike create, a
// missing organisation or client is an error: an update can only follow a
// create, so absence means the directory and the requester have diverged and
// redelivery is the right answer.
func (w *Workflow) HandleUpdate(ctx context.Context, req *ClientRequest) (*ClientReply, error) {
	org, err := w.orgs.Get(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}
	cl, err := w.clients.GetBySimpleName(ctx, req.Name, org)
	if err != nil {
		return nil, err
	}

	applyRequest(cl, req)
	if err := w.clients.Update(ctx, cl); err != nil {
		return nil, err
	}
	if err := w.reconcileComponents(ctx, cl, req.Components); err != nil {
		return nil, err
	}

	secret, err := w.clients.Secret(ctx, cl)
	if err != nil {
		return nil, err
	}

	return &ClientReply{
		Username:     cl.Name,
		ClientID:     cl.ClientID,
		ClientSecret: secret,
		OrgID:        replyOrgID(cl.AssetID),
	}, nil
}

// HandleDelete removes the client and answers with an empty acknowledgement.
func (w *Workflow) HandleDelete(ctx context.Context, req *ClientRequest) (*ClientReply, error) {
	org, err := w.orgs.Get(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}
	cl, err := w.clients.GetBySimpleName(ctx, req.Name, org)
	if err != nil {
		return nil, err
	}
	if err := w.clients.Delete(ctx, cl); err != nil {
		return nil, err
	}

	w.logger.Info("deprovisioned client", "client", cl.DN.String(), "org_id", req.OrgID)
	return &ClientReply{}, nil
}

// HandleGet looks the client up. An absent client yields a nil reply, which
// the transport serializes as an explicit null so the requester can tell
// "does not exist" from "never answered".
func (w *Workflow) HandleGet(ctx context.Context, req *ClientRequest) (*ClientReply, error) {
	org, err := w.orgs.Get(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}
	cl, err := w.clients.GetBySimpleName(ctx, req.Name, org)
	if errors.Is(err, client.ErrClientNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	secret, err := w.clients.Secret(ctx, cl)
	if err != nil {
		return nil, err
	}

	return &ClientReply{
		Username:     cl.Name,
		ClientID:     cl.ClientID,
		ClientSecret: secret,
		OrgID:        replyOrgID(cl.AssetID),
	}, nil
}

// reconcileComponents makes the client's component membership exactly the set
// named in the request. Component names are logical and must already exist; a
// request naming an unknown component cannot be satisfied until the component
// is registered, so resolution happens up front, before any membership is
// touched. Memberships the request no longer names are unlinked; DNs that no
// longer resolve to a component are skipped as already cleaned up.
func (w *Workflow) reconcileComponents(ctx context.Context, cl *client.Client, names []string) error {
	desired := make(map[directory.DN]*component.Component, len(names))
	for _, name := range names {
		comp, err := w.components.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to resolve component %q: %w", name, err)
		}
		desired[comp.DN] = comp
	}

	for _, dn := range append([]directory.DN(nil), cl.Components...) {
		if _, keep := desired[dn]; keep {
			continue
		}
		comp, err := w.components.GetByDN(ctx, dn)
		if errors.Is(err, component.ErrComponentNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := w.components.UnlinkClient(ctx, comp, cl); err != nil {
			return err
		}
	}

	for _, comp := range desired {
		if comp.HasClient(cl.DN) && cl.HasComponent(comp.DN) {
			continue
		}
		if err := w.components.LinkClient(ctx, comp, cl); err != nil {
			return err
		}
	}
	return nil
}

func applyRequest(cl *client.Client, req *ClientRequest) {
	if req.Note != nil {
		cl.Note = *req.Note
	}
	if req.ShortDescription != nil {
		cl.ShortDescription = *req.ShortDescription
	}
}

// replyOrgID derives the underscored organisation id from the client's dotted
// asset id, e.g. "acme.no" answers as "acme_no".
func replyOrgID(assetID string) string {
	return strings.ReplaceAll(assetID, ".", "_")
}

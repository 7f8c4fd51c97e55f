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

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/provdir/provdir/internal/observability/metrics"
	"github.com/provdir/provdir/internal/transport/queue"
)

// Topics the consumer listens on. Requesters publish a ClientRequest and name
// their own reply topic per message.
const (
	TopicClientCreate = "client-create"
	TopicClientUpdate = "client-update"
	TopicClientDelete = "client-delete"
	TopicClientGet    = "client-get"
)

// Consumer binds the workflow's handlers to the broker's request topics.
type Consumer struct {
	workflow *Workflow
	metrics  *metrics.ProvisioningMetrics
}

// NewConsumer creates a consumer for the workflow. metrics may be nil.
func NewConsumer(workflow *Workflow, metrics *metrics.ProvisioningMetrics) *Consumer {
	return &Consumer{workflow: workflow, metrics: metrics}
}

// Bind subscribes all four request topics.
func (c *Consumer) Bind(broker queue.Broker) error {
	bindings := map[string]func(context.Context, *ClientRequest) (*ClientReply, error){
		TopicClientCreate: c.workflow.HandleCreate,
		TopicClientUpdate: c.workflow.HandleUpdate,
		TopicClientDelete: c.workflow.HandleDelete,
		TopicClientGet:    c.workflow.HandleGet,
	}
	for topic, handle := range bindings {
		if err := broker.Subscribe(topic, c.wrap(topic, handle)); err != nil {
			return fmt.Errorf("failed to bind topic %s: %w", topic, err)
		}
	}
	return nil
}

// wrap adapts a workflow handler to the broker's message contract. A nil
// reply from the handler is serialized as JSON null rather than suppressed,
// so the requester always gets an answer.
func (c *Consumer) wrap(topic string, handle func(context.Context, *ClientRequest) (*ClientReply, error)) queue.Handler {
	return func(ctx context.Context, msg queue.Message) (*queue.Message, error) {
		req := &ClientRequest{}
		if err := json.Unmarshal(msg.Payload, req); err != nil {
			return nil, fmt.Errorf("malformed client request: %w", err)
		}

		start := time.Now()
		reply, err := handle(ctx, req)
		c.metrics.Observe(ctx, topic, time.Since(start), err)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(reply)
		if err != nil {
			return nil, err
		}
		return &queue.Message{Payload: payload}, nil
	}
}

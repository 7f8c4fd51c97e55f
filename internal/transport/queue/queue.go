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

// Package queue defines the messaging abstraction the provisioning workflow
// runs over. Delivery is at-least-once: a handler error requeues the message,
// so handlers must tolerate redelivery of a request whose effects were
// already applied.
package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed broker.
var ErrClosed = errors.New("queue: broker closed")

// Message is a single unit of work on a topic. CorrelationID ties a reply to
// its request; ReplyTopic names the topic the handler's reply is published
// on.
type Message struct {
	CorrelationID string
	ReplyTopic    string
	Payload       []byte
}

// Handler consumes one message. A non-nil error signals the broker to
// redeliver; a nil reply with a nil error acknowledges without replying.
type Handler func(ctx context.Context, msg Message) (*Message, error)

// Broker is the transport contract. Implementations must deliver each
// published message to the topic's subscriber at least once.
type Broker interface {
	// Publish enqueues a message on the topic.
	Publish(ctx context.Context, topic string, msg Message) error

	// Subscribe binds the handler to the topic. When the handler returns a
	// reply, the broker publishes it on the message's ReplyTopic with the
	// request's correlation id. One handler per topic.
	Subscribe(topic string, handler Handler) error
}

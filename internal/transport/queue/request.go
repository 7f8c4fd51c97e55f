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

package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RequestClient turns the broker's fire-and-forget topics into a synchronous
// request/reply call. It subscribes once to a reply topic and matches
// incoming replies to waiting callers by correlation id. Replies with no
// waiter, such as a late redelivery after the caller timed out, are dropped.
type RequestClient struct {
	broker     Broker
	replyTopic string

	mu      sync.Mutex
	pending map[string]chan Message
}

// NewRequestClient creates a client and binds its reply topic.
func NewRequestClient(broker Broker, replyTopic string) (*RequestClient, error) {
	c := &RequestClient{
		broker:     broker,
		replyTopic: replyTopic,
		pending:    make(map[string]chan Message),
	}
	if err := broker.Subscribe(replyTopic, c.onReply); err != nil {
		return nil, fmt.Errorf("queue: failed to subscribe reply topic %q: %w", replyTopic, err)
	}
	return c, nil
}

// Request publishes the payload on the topic and blocks until a reply with
// the matching correlation id arrives or ctx expires.
func (c *RequestClient) Request(ctx context.Context, topic string, payload []byte) ([]byte, error) {
	correlationID := uuid.NewString()
	ch := make(chan Message, 1)

	c.mu.Lock()
	c.pending[correlationID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, correlationID)
		c.mu.Unlock()
	}()

	msg := Message{
		CorrelationID: correlationID,
		ReplyTopic:    c.replyTopic,
		Payload:       payload,
	}
	if err := c.broker.Publish(ctx, topic, msg); err != nil {
		return nil, err
	}

	select {
	case reply := <-ch:
		return reply.Payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *RequestClient) onReply(_ context.Context, msg Message) (*Message, error) {
	c.mu.Lock()
	ch, ok := c.pending[msg.CorrelationID]
	c.mu.Unlock()
	if ok {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil, nil
}

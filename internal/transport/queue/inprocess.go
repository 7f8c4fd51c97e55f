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
	"log/slog"
	"sync"
)

const defaultQueueDepth = 64

// InProcessBroker is a channel-backed Broker for single-process deployments
// and tests. Each topic gets its own buffered lane drained by one goroutine,
// so messages on a topic are handled in order. A failed delivery is retried
// up to MaxAttempts times before the message is dropped and logged.
type InProcessBroker struct {
	logger      *slog.Logger
	maxAttempts int

	mu     sync.Mutex
	topics map[string]chan delivery
	subs   map[string]Handler
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type delivery struct {
	msg     Message
	attempt int
}

// NewInProcessBroker creates a broker. maxAttempts bounds redelivery of a
// message whose handler keeps failing; values below 1 are treated as 1.
func NewInProcessBroker(logger *slog.Logger, maxAttempts int) *InProcessBroker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &InProcessBroker{
		logger:      logger,
		maxAttempts: maxAttempts,
		topics:      make(map[string]chan delivery),
		subs:        make(map[string]Handler),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Publish enqueues the message on the topic's lane, creating the lane on
// first use.
func (b *InProcessBroker) Publish(ctx context.Context, topic string, msg Message) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	lane := b.lane(topic)
	b.mu.Unlock()

	select {
	case lane <- delivery{msg: msg, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.ctx.Done():
		return ErrClosed
	}
}

// Subscribe binds the handler and starts the topic's drain goroutine.
func (b *InProcessBroker) Subscribe(topic string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if _, ok := b.subs[topic]; ok {
		return fmt.Errorf("queue: topic %q already has a subscriber", topic)
	}
	b.subs[topic] = handler
	lane := b.lane(topic)

	b.wg.Add(1)
	go b.drain(topic, lane, handler)
	return nil
}

// Close stops delivery and waits for in-flight handlers to return.
func (b *InProcessBroker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
}

func (b *InProcessBroker) lane(topic string) chan delivery {
	lane, ok := b.topics[topic]
	if !ok {
		lane = make(chan delivery, defaultQueueDepth)
		b.topics[topic] = lane
	}
	return lane
}

func (b *InProcessBroker) drain(topic string, lane chan delivery, handler Handler) {
	defer b.wg.Done()
	for {
		select {
		case d := <-lane:
			b.handle(topic, lane, handler, d)
		case <-b.ctx.Done():
			return
		}
	}
}

func (b *InProcessBroker) handle(topic string, lane chan delivery, handler Handler, d delivery) {
	reply, err := handler(b.ctx, d.msg)
	if err != nil {
		if d.attempt >= b.maxAttempts {
			b.logger.Error("dropping message after repeated handler failures",
				"topic", topic,
				"correlation_id", d.msg.CorrelationID,
				"attempts", d.attempt,
				"error", err)
			return
		}
		b.logger.Warn("handler failed, requeueing message",
			"topic", topic,
			"correlation_id", d.msg.CorrelationID,
			"attempt", d.attempt,
			"error", err)
		select {
		case lane <- delivery{msg: d.msg, attempt: d.attempt + 1}:
		case <-b.ctx.Done():
		}
		return
	}

	if reply == nil || d.msg.ReplyTopic == "" {
		return
	}
	reply.CorrelationID = d.msg.CorrelationID
	if err := b.Publish(b.ctx, d.msg.ReplyTopic, *reply); err != nil {
		b.logger.Error("failed to publish reply",
			"topic", d.msg.ReplyTopic,
			"correlation_id", d.msg.CorrelationID,
			"error", err)
	}
}

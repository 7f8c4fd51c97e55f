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
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInProcessBroker_DeliversPublishedMessages(t *testing.T) {
	broker := NewInProcessBroker(testLogger(), 1)
	defer broker.Close()

	received := make(chan Message, 3)
	require.NoError(t, broker.Subscribe("topic", func(ctx context.Context, msg Message) (*Message, error) {
		received <- msg
		return nil, nil
	}))

	for _, payload := range []string{"one", "two", "three"} {
		require.NoError(t, broker.Publish(context.Background(), "topic", Message{Payload: []byte(payload)}))
	}

	for _, want := range []string{"one", "two", "three"} {
		select {
		case msg := <-received:
			assert.Equal(t, want, string(msg.Payload))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
}

func TestInProcessBroker_RedeliversOnHandlerFailure(t *testing.T) {
	broker := NewInProcessBroker(testLogger(), 5)
	defer broker.Close()

	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})
	require.NoError(t, broker.Subscribe("topic", func(ctx context.Context, msg Message) (*Message, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient failure")
		}
		close(done)
		return nil, nil
	}))

	require.NoError(t, broker.Publish(context.Background(), "topic", Message{Payload: []byte("x")}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not redelivered")
	}
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
}

func TestInProcessBroker_DropsAfterMaxAttempts(t *testing.T) {
	broker := NewInProcessBroker(testLogger(), 2)
	defer broker.Close()

	attempts := make(chan int, 8)
	count := 0
	require.NoError(t, broker.Subscribe("topic", func(ctx context.Context, msg Message) (*Message, error) {
		count++
		attempts <- count
		return nil, errors.New("permanent failure")
	}))

	require.NoError(t, broker.Publish(context.Background(), "topic", Message{Payload: []byte("x")}))

	// Two attempts, then the message is dropped
	<-attempts
	<-attempts
	select {
	case <-attempts:
		t.Fatal("message delivered past the attempt limit")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestInProcessBroker_PublishesReplies(t *testing.T) {
	broker := NewInProcessBroker(testLogger(), 1)
	defer broker.Close()

	require.NoError(t, broker.Subscribe("request", func(ctx context.Context, msg Message) (*Message, error) {
		return &Message{Payload: append([]byte("echo:"), msg.Payload...)}, nil
	}))

	replies := make(chan Message, 1)
	require.NoError(t, broker.Subscribe("reply", func(ctx context.Context, msg Message) (*Message, error) {
		replies <- msg
		return nil, nil
	}))

	require.NoError(t, broker.Publish(context.Background(), "request", Message{
		CorrelationID: "corr-1",
		ReplyTopic:    "reply",
		Payload:       []byte("hello"),
	}))

	select {
	case reply := <-replies:
		assert.Equal(t, "corr-1", reply.CorrelationID)
		assert.Equal(t, "echo:hello", string(reply.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

func TestInProcessBroker_ClosedBrokerRejectsPublish(t *testing.T) {
	broker := NewInProcessBroker(testLogger(), 1)
	broker.Close()

	err := broker.Publish(context.Background(), "topic", Message{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRequestClient_RoundTrip(t *testing.T) {
	broker := NewInProcessBroker(testLogger(), 1)
	defer broker.Close()

	require.NoError(t, broker.Subscribe("request", func(ctx context.Context, msg Message) (*Message, error) {
		return &Message{Payload: append([]byte("echo:"), msg.Payload...)}, nil
	}))

	client, err := NewRequestClient(broker, "reply")
	require.NoError(t, err)

	reply, err := client.Request(context.Background(), "request", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hello", string(reply))
}

func TestRequestClient_TimesOutWithoutReply(t *testing.T) {
	broker := NewInProcessBroker(testLogger(), 1)
	defer broker.Close()

	// Subscriber that never replies
	require.NoError(t, broker.Subscribe("request", func(ctx context.Context, msg Message) (*Message, error) {
		return nil, nil
	}))

	client, err := NewRequestClient(broker, "reply")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = client.Request(ctx, "request", []byte("hello"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

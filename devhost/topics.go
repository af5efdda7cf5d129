package devhost

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-functions/contract"
)

// MaxTopicMessage is the largest message a topic accepts.
const MaxTopicMessage = 4 << 20

// Topics records every published message and fans it out to subscribers.
type Topics struct {
	logger    *zap.Logger
	messages  map[string][]string
	listeners map[string][]func(string)
	mu        sync.Mutex
}

func newTopics(logger *zap.Logger) *Topics {
	return &Topics{
		logger:    logger,
		messages:  make(map[string][]string),
		listeners: make(map[string][]func(string)),
	}
}

func (t *Topics) Publish(_ context.Context, topic, value string) error {
	if topic == "" {
		return fail(contract.TopicInvalidArgument, "topic name must not be empty")
	}
	if len(value) > MaxTopicMessage {
		return fail(contract.TopicLimitExceeded, "message size %d exceeds %d bytes", len(value), MaxTopicMessage)
	}
	t.mu.Lock()
	t.messages[topic] = append(t.messages[topic], value)
	listeners := append([]func(string){}, t.listeners[topic]...)
	t.mu.Unlock()

	t.logger.Debug("topic publish", zap.String("topic", topic), zap.Int("bytes", len(value)))
	for _, fn := range listeners {
		fn(value)
	}
	return nil
}

// Subscribe calls fn for every later message on topic.
func (t *Topics) Subscribe(topic string, fn func(string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners[topic] = append(t.listeners[topic], fn)
}

// Messages returns what was published to topic, oldest first.
func (t *Topics) Messages(topic string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.messages[topic]...)
}

package topics_test

import (
	"context"
	"strings"
	"testing"

	"github.com/wippyai/wasm-functions/devhost"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/topics"
)

func TestPublish(t *testing.T) {
	ctx := context.Background()
	h, err := devhost.New()
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	c := topics.New(h.Bindings())

	var seen []string
	h.Topics.Subscribe("orders", func(v string) { seen = append(seen, v) })

	if err := c.Publish(ctx, "orders", "one"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := topics.PublishJSON(ctx, c, "orders", map[string]int{"id": 2}); err != nil {
		t.Fatalf("PublishJSON: %v", err)
	}

	msgs := h.Topics.Messages("orders")
	if len(msgs) != 2 || msgs[0] != "one" || msgs[1] != `{"id":2}` {
		t.Errorf("Messages = %q", msgs)
	}
	if len(seen) != 2 {
		t.Errorf("subscriber saw %d messages, want 2", len(seen))
	}
}

func TestPublish_Errors(t *testing.T) {
	h, err := devhost.New()
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	c := topics.New(h.Bindings())

	tests := []struct {
		name  string
		topic string
		value string
		want  errors.Kind
	}{
		{name: "empty topic", topic: "", value: "x", want: errors.KindMalformed},
		{name: "oversized", topic: "t", value: strings.Repeat("x", devhost.MaxTopicMessage+1), want: errors.KindLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(context.Background(), tt.topic, tt.value)
			if !errors.IsKind(err, tt.want) {
				t.Errorf("Publish = %v, want %v", err, tt.want)
			}
		})
	}
}

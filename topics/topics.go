// Package topics publishes messages to pub/sub topics.
package topics

import (
	"context"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
)

const capability = "topic"

// Client publishes through one set of bindings.
type Client struct {
	topic contract.Topic
}

func New(b *contract.Bindings) *Client {
	return &Client{topic: b.Topic}
}

func Default() *Client {
	return New(bindings.Current())
}

// Publish sends value to topic.
func (c *Client) Publish(ctx context.Context, topic, value string) error {
	h, err := bindings.Require(c.topic, capability)
	if err != nil {
		return err
	}
	if topic == "" {
		return errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, "publish").
			Detail("topic name cannot be empty").
			Build()
	}
	return errors.Host(capability, "publish", h.Publish(ctx, topic, value))
}

// PublishJSON encodes v as JSON and publishes it as a string.
func PublishJSON[T any](ctx context.Context, c *Client, topic string, v T) error {
	data, err := encoding.JSON[T]().Encode(v)
	if err != nil {
		return err
	}
	return c.Publish(ctx, topic, string(data))
}

// Publish calls Publish on the default client.
func Publish(ctx context.Context, topic, value string) error {
	return Default().Publish(ctx, topic, value)
}

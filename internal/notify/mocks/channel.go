package mocks

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Published captures one message sent via MockChannel.
type Published struct {
	Exchange   string
	RoutingKey string
	Msg        amqp.Publishing
}

// MockChannel records exchange declarations and publishes.
type MockChannel struct {
	mu sync.Mutex

	Declared  []string
	Published []Published
	Closed    bool

	// DeclareError allows simulating ExchangeDeclare failures.
	DeclareError error
	// PublishError allows simulating PublishWithContext failures.
	PublishError error
}

// ExchangeDeclare records the exchange name.
func (c *MockChannel) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DeclareError != nil {
		return c.DeclareError
	}
	c.Declared = append(c.Declared, name)
	return nil
}

// PublishWithContext records the message.
func (c *MockChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PublishError != nil {
		return c.PublishError
	}
	c.Published = append(c.Published, Published{Exchange: exchange, RoutingKey: key, Msg: msg})
	return nil
}

// Close marks the channel closed.
func (c *MockChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

// PublishedCount returns the number of published messages.
func (c *MockChannel) PublishedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Published)
}

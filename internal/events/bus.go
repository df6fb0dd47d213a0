// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/dishatlas/internal/config"
	"github.com/tomtom215/dishatlas/internal/journey"
	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/metrics"
	"github.com/tomtom215/dishatlas/internal/models"
)

// Backends.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

var (
	// ErrBusClosed is returned when publishing after Close.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrNATSUnavailable is returned for the nats backend in a binary built
	// without -tags nats.
	ErrNATSUnavailable = errors.New("nats backend not compiled in (build with -tags nats)")
)

// Bus publishes and subscribes to history events.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter
	backend    string
	now        func() time.Time

	mu      sync.RWMutex
	closed  bool
	closers []func() error
}

// NewBus opens the backend selected in cfg.
func NewBus(cfg config.EventsConfig) (*Bus, error) {
	logger := NewLogger()
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryBus(logger), nil
	case BackendNATS:
		return newNATSBus(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// NewMemoryBus returns an in-process bus. Messages published while nobody is
// subscribed are dropped.
func NewMemoryBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)

	return &Bus{
		publisher:  pubSub,
		subscriber: pubSub,
		logger:     logger,
		backend:    BackendMemory,
		now:        nowUTC,
		closers:    []func() error{pubSub.Close},
	}
}

// Backend names the transport in use.
func (b *Bus) Backend() string {
	return b.backend
}

// Publish sends payload on topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}

	if err := b.publisher.Publish(topic, msg); err != nil {
		metrics.EventsFailed.WithLabelValues(topic, "publish").Inc()
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// PublishGenerated announces a newly generated history.
func (b *Bus) PublishGenerated(ctx context.Context, h *models.History, summary journey.Summary) error {
	data, err := Encode(ptr(NewHistoryGenerated(watermill.NewUUID(), h, summary, b.now())))
	if err != nil {
		return err
	}
	return b.Publish(ctx, TopicHistoryGenerated, data)
}

// PublishSearched announces a history lookup.
func (b *Bus) PublishSearched(ctx context.Context, h *models.History, summary journey.Summary, origin string) error {
	data, err := Encode(ptr(NewHistorySearched(watermill.NewUUID(), h, summary, origin, b.now())))
	if err != nil {
		return err
	}
	return b.Publish(ctx, TopicHistorySearched, data)
}

// Subscribe returns the message stream for topic. Every message must be
// acked or nacked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close shuts the transport down. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func ptr[T any](v T) *T {
	return &v
}

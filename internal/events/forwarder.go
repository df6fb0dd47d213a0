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

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/metrics"
)

// GeneratedHandler consumes history.generated events.
type GeneratedHandler func(ctx context.Context, ev HistoryGenerated) error

// SearchedHandler consumes history.searched events.
type SearchedHandler func(ctx context.Context, ev HistorySearched) error

type namedGenerated struct {
	name string
	fn   GeneratedHandler
}

type namedSearched struct {
	name string
	fn   SearchedHandler
}

// Forwarder subscribes to the history topics and fans every event out to the
// registered handlers. A failing handler is logged and does not stop the
// others. It implements suture.Service.
type Forwarder struct {
	bus *Bus

	mu        sync.RWMutex
	generated []namedGenerated
	searched  []namedSearched

	readyOnce sync.Once
	ready     chan struct{}
}

// NewForwarder creates a forwarder reading from bus.
func NewForwarder(bus *Bus) *Forwarder {
	return &Forwarder{bus: bus, ready: make(chan struct{})}
}

// OnGenerated registers a handler for history.generated.
func (f *Forwarder) OnGenerated(name string, fn GeneratedHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated = append(f.generated, namedGenerated{name: name, fn: fn})
}

// OnSearched registers a handler for history.searched.
func (f *Forwarder) OnSearched(name string, fn SearchedHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, namedSearched{name: name, fn: fn})
}

// Ready is closed once both subscriptions are in place.
func (f *Forwarder) Ready() <-chan struct{} {
	return f.ready
}

// Serve consumes until ctx is cancelled.
func (f *Forwarder) Serve(ctx context.Context) error {
	generated, err := f.bus.Subscribe(ctx, TopicHistoryGenerated)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", TopicHistoryGenerated, err)
	}
	searched, err := f.bus.Subscribe(ctx, TopicHistorySearched)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", TopicHistorySearched, err)
	}
	f.readyOnce.Do(func() { close(f.ready) })

	logging.Info().Str("backend", f.bus.Backend()).Msg("Event forwarder started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-generated:
			if !ok {
				return f.closedErr(ctx)
			}
			f.handleGenerated(msg)
		case msg, ok := <-searched:
			if !ok {
				return f.closedErr(ctx)
			}
			f.handleSearched(msg)
		}
	}
}

// closedErr distinguishes shutdown from a transport dropping the stream,
// which the supervisor should restart.
func (f *Forwarder) closedErr(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("event subscription closed")
}

func (f *Forwarder) handleGenerated(msg *message.Message) {
	defer msg.Ack()

	ev, err := DecodeGenerated(msg.Payload)
	if err != nil {
		metrics.EventsFailed.WithLabelValues(TopicHistoryGenerated, "decode").Inc()
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed event")
		return
	}
	metrics.EventsConsumed.WithLabelValues(TopicHistoryGenerated).Inc()

	ctx := messageContext(msg)
	f.mu.RLock()
	handlers := f.generated
	f.mu.RUnlock()
	for _, h := range handlers {
		if err := h.fn(ctx, ev); err != nil {
			metrics.EventsFailed.WithLabelValues(TopicHistoryGenerated, h.name).Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("handler", h.name).Str("dish", ev.Dish).Msg("Event handler failed")
		}
	}
}

func (f *Forwarder) handleSearched(msg *message.Message) {
	defer msg.Ack()

	ev, err := DecodeSearched(msg.Payload)
	if err != nil {
		metrics.EventsFailed.WithLabelValues(TopicHistorySearched, "decode").Inc()
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed event")
		return
	}
	metrics.EventsConsumed.WithLabelValues(TopicHistorySearched).Inc()

	ctx := messageContext(msg)
	f.mu.RLock()
	handlers := f.searched
	f.mu.RUnlock()
	for _, h := range handlers {
		if err := h.fn(ctx, ev); err != nil {
			metrics.EventsFailed.WithLabelValues(TopicHistorySearched, h.name).Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("handler", h.name).Str("dish", ev.Dish).Msg("Event handler failed")
		}
	}
}

// messageContext carries the publisher's correlation ID into handler logs.
// Handlers get a fresh context so a finished HTTP request does not cancel them.
func messageContext(msg *message.Message) context.Context {
	ctx := context.Background()
	if id := msg.Metadata.Get("correlation_id"); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	return ctx
}

// String names the service for supervisor logs.
func (f *Forwarder) String() string {
	return "event-forwarder"
}

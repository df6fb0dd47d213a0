// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

//go:build nats

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/dishatlas/internal/config"
)

const natsReadyTimeout = 30 * time.Second

// startEmbeddedServer runs an in-process NATS server on a random loopback
// port and returns it with its client URL.
func startEmbeddedServer() (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "dishatlas-events",
		Host:       "127.0.0.1",
		Port:       server.RANDOM_PORT,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(natsReadyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within %s", natsReadyTimeout)
	}
	return ns, nil
}

func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("dishatlas"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

// newNATSBus connects Watermill to core NATS subjects, optionally starting an
// embedded server first. History events are notifications, so no JetStream
// persistence is used.
func newNATSBus(cfg config.EventsConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	url := cfg.NATSURL
	var closers []func() error

	if cfg.Embedded {
		ns, err := startEmbeddedServer()
		if err != nil {
			return nil, err
		}
		url = ns.ClientURL()
		closers = append(closers, func() error {
			ns.Shutdown()
			ns.WaitForShutdown()
			return nil
		})
		logger.Info("Embedded NATS server started", watermill.LogFields{"url": url})
	}

	shutdown := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	opts := natsOptions(logger)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		shutdown()
		return nil, fmt.Errorf("create watermill nats publisher: %w", err)
	}
	closers = append(closers, pub.Close)

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		// No queue group: every instance sees every event.
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      opts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		shutdown()
		return nil, fmt.Errorf("create watermill nats subscriber: %w", err)
	}
	closers = append(closers, sub.Close)

	return &Bus{
		publisher:  pub,
		subscriber: sub,
		logger:     logger,
		backend:    BackendNATS,
		now:        nowUTC,
		closers:    closers,
	}, nil
}

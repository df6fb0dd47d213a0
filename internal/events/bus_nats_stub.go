// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

//go:build !nats

package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/dishatlas/internal/config"
)

func newNATSBus(_ config.EventsConfig, _ watermill.LoggerAdapter) (*Bus, error) {
	return nil, ErrNATSUnavailable
}

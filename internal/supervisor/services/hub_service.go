// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package services

import "context"

// Hub is the part of websocket.Hub the supervisor needs.
type Hub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService supervises the websocket hub's broadcast loop.
type WebSocketHubService struct {
	hub Hub
}

// NewWebSocketHubService wraps hub.
func NewWebSocketHubService(hub Hub) *WebSocketHubService {
	return &WebSocketHubService{hub: hub}
}

// Serve implements suture.Service.
func (s *WebSocketHubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String names the service in supervisor logs.
func (s *WebSocketHubService) String() string {
	return "websocket-hub"
}

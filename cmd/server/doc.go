// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

/*
Package main is the entry point for the Dish Atlas server.

Dish Atlas tells the story of a dish as a journey across the globe: a model
(or, without one, a small curated catalogue) writes a dated sequence of
places, and the server turns it into map clusters, a great-circle route and
summary statistics for the frontend globe.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("dishatlas")
	├── DataSupervisor ("data-layer")
	│   └── Maintenance (badger value-log GC, history cache expiry)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (history_generated broadcasts)
	│   └── Event Forwarder (history.generated, history.searched)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Storage: BadgerDB history store and DuckDB search analytics
 4. Events: in-process Watermill bus, or NATS when built with -tags nats
 5. Narrative service: LLM client, LFU cache, curated fallback
 6. Authentication: JWT admin login and Casbin authorization (optional)
 7. Supervisor tree and HTTP server

# Configuration

Priority: environment variables > config file > defaults.

	HTTP_PORT=3857               # HTTP server port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	LLM_API_KEY=<key>            # without it only curated histories are served
	LLM_BASE_URL=https://api.openai.com/v1
	LLM_MODEL=gpt-4o-mini
	LLM_FALLBACK_MODEL=gpt-3.5-turbo

	BADGER_PATH=/data/histories  # empty keeps histories in memory
	DUCKDB_PATH=/data/dishatlas.duckdb

	AUTH_MODE=jwt                # jwt or none (admin API disabled)
	JWT_SECRET=<32+ chars>
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD_HASH=<bcrypt hash>

	EVENTS_BACKEND=memory        # memory or nats
	NATS_URL=nats://127.0.0.1:4222
	NATS_EMBEDDED=true

# Build Tags

	go build ./cmd/server                # in-process event bus
	go build -tags nats ./cmd/server     # NATS event bus, optionally embedded

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server (draining in-flight requests), the forwarder and the hub, after which
the bus and both databases are closed.

# Port 3857

The default port 3857 references EPSG:3857 (Web Mercator projection), the
coordinate system used by web mapping libraries.
*/
package main

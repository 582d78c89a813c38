// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package server implements the local chat endpoint started by `davut serve`.

It answers the same wire contract the client speaks:

	POST /chat?msg=<text>   ->  200 {"response": "<reply>"}

The path and parameter name follow the [endpoint] section of the config
(WithEndpoint), so `davut serve` and the client agree on the route.

A missing msg parameter is a 400 with {"error": "..."}; an empty one is a
valid message (an attachment-only send). Replies come from a Replier: the
echo replier needs nothing, the openai replier forwards the message as a
single-turn chat completion.

Other routes:

	GET /health    liveness probe used by `davut status` and the TUI header
	GET /metrics   Prometheus exposition

Requests pass through recovery, zerolog request logging, Prometheus
instrumentation and a per-IP token bucket that answers 429 when exhausted.
*/
package server

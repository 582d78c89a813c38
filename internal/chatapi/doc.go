// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatapi provides the HTTP client for the remote chat endpoint.
//
// One user utterance is one request: the text travels URL-encoded in a query
// parameter of an empty-bodied POST, and the reply is the "response" string
// of a JSON object. There is no retry and no streaming.
//
// # Key Types
//
//   - Client: Posts utterances and probes endpoint health
//   - ClientConfig: Endpoint location and timeout
//   - TransportError: Every failure, tagged with a Kind
//
// # Usage
//
//	client := chatapi.NewClient(chatapi.FromEndpoint(cfg.Endpoint))
//	reply, err := client.Send(ctx, "hello & goodbye?")
//	if err != nil {
//	    // the caller shows its fallback text; err is for the log
//	}
package chatapi

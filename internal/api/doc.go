// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the typed HTTP client for the Local Operator
// backend: health checks, agent management, asynchronous chat submission,
// job polling, and paginated conversation history.
//
// All calls take a context and return typed errors (*ClientError) that
// callers inspect with IsNotRunning, IsTimeout, and IsNotFound. Requests
// are rate limited client-side because the job poller and the UI share
// one backend that is usually busy running the agent itself.
package api

// Copyright 2026 The Servant Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"log/slog"
	"time"

	"github.com/codedmart/servant/codec"
)

// Option defines functional options for engine configuration.
type Option func(*Engine)

// WithRegistry sets the codec registry used to resolve the content-type
// identifiers endpoints declare. Defaults to codec.Default() (JSON and
// plain text).
//
// Example:
//
//	registry := codec.Default()
//	yaml.Register(registry)
//	engine := dispatch.MustNew(tree, dispatch.WithRegistry(registry))
func WithRegistry(registry *codec.Registry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithLogger sets the engine's structured logger. The engine logs only
// at debug level (rejected candidates, decode failures); the per-request
// access log is the observability recorder's concern. Defaults to a
// no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = noopLogger
		}
		e.logger = logger
	}
}

// WithRecorder sets the observability recorder for the HTTP adapter.
// Pass nil to disable observability (the default).
func WithRecorder(recorder Recorder) Option {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// WithH2C enables HTTP/2 Cleartext support for Serve.
//
// Only use in development or behind a trusted load balancer; do not
// enable on public-facing servers without TLS.
func WithH2C(enable bool) Option {
	return func(e *Engine) {
		e.enableH2C = enable
	}
}

// WithServerTimeouts configures the timeouts Serve applies to its
// http.Server. These prevent slowloris attacks and resource exhaustion.
//
// Defaults (if not set):
//
//	ReadHeaderTimeout: 5s
//	ReadTimeout:       15s
//	WriteTimeout:      30s
//	IdleTimeout:       60s
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(e *Engine) {
		e.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package logging

import (
	"log/slog"
	"os"
	"strings"
)

// LogLevelEnvVar is the environment variable consulted when no explicit
// log level is provided.
const LogLevelEnvVar = "LOG_LEVEL"

// ParseLevel converts a level name to a slog.Level. Unknown or empty values
// default to info. Matching is case-insensitive.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewStructuredLogger creates a JSON slog.Logger writing to stderr with
// module and version attributes. Debug level enables source location.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	lvl := ParseLevel(level)

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})

	return slog.New(handler).With(
		"module", module,
		"version", version,
	)
}

// SetDefaultStructuredLogger installs the default logger using the
// LOG_LEVEL environment variable for verbosity.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, os.Getenv(LogLevelEnvVar))
}

// SetDefaultStructuredLoggerWithLevel installs the default logger with an
// explicit level, falling back to LOG_LEVEL and then info when empty.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	if strings.TrimSpace(level) == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	slog.SetDefault(NewStructuredLogger(module, version, level))
}

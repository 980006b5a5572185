// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events is an in-process pub/sub bus. It defines power-action,
// log-rotation, and follower-overflow event types; only the
// orchestrator publishes (the power-action types), and the HTTP layer
// does not subscribe.
package events

import "strings"

// matchPattern checks if an event type matches a pattern. Patterns
// support wildcards:
//   - "service.*" matches "service.power.start", "service.power.stop"
//   - "*.overflow" matches "logs.follower.overflow"
//   - "*" matches everything
func matchPattern(eventType, pattern string) bool {
	if pattern == "" || eventType == "" {
		return false
	}
	if pattern == "*" {
		return true
	}
	if pattern == eventType {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		prefix := strings.TrimSuffix(pattern, ".*")
		return strings.HasPrefix(eventType, prefix+".")
	}
	if strings.HasPrefix(pattern, "*.") {
		suffix := strings.TrimPrefix(pattern, "*.")
		return strings.HasSuffix(eventType, "."+suffix)
	}
	return false
}

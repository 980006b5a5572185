// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher provides small filesystem-event coalescing helpers
// shared by the log follower.
package watcher

import (
	"sync"
	"time"
)

const defaultCoalesceWindow = 50 * time.Millisecond

// Coalescer collapses a burst of keyed triggers arriving within a short
// window into a single call. Unlike a plain debounce, the caller is
// expected to track its own read offset, so coalescing only reduces the
// number of read syscalls — it never loses appended bytes, because the
// final call always observes everything written since the last one.
type Coalescer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*time.Timer
}

// NewCoalescer creates a Coalescer with the given window.
func NewCoalescer(window time.Duration) *Coalescer {
	if window <= 0 {
		window = defaultCoalesceWindow
	}
	return &Coalescer{window: window, pending: make(map[string]*time.Timer)}
}

// Trigger schedules fn to run after the coalescing window. A Trigger
// for the same key before the window elapses resets the timer.
func (c *Coalescer) Trigger(key string, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleLocked(key, fn, c.window)
}

// TriggerNow schedules fn to run on the next event loop tick, skipping
// the coalescing window. A key with a pending windowed Trigger has that
// timer cancelled in favor of the immediate one. Used for events after
// which waiting out the window risks coalescing away state the caller
// needs to observe untouched — a rotation, for instance, replaces the
// file a tracked read offset refers to, so the offset reset has to land
// before any write to the new file gets a chance to land in the same
// window and be coalesced with it.
func (c *Coalescer) TriggerNow(key string, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleLocked(key, fn, 0)
}

func (c *Coalescer) scheduleLocked(key string, fn func(), after time.Duration) {
	if t, ok := c.pending[key]; ok {
		t.Stop()
	}
	c.pending[key] = time.AfterFunc(after, func() {
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
		fn()
	})
}

// Cancel drops any pending trigger for key without running it.
func (c *Coalescer) Cancel(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.pending[key]; ok {
		t.Stop()
		delete(c.pending, key)
	}
}

// Stop cancels every pending trigger.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, t := range c.pending {
		t.Stop()
		delete(c.pending, key)
	}
}

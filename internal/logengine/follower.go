// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fleetops/dockside/internal/watcher"
)

// subscriberQueueSize bounds each subscriber's outbound queue. On
// overflow the oldest queued line is dropped and the overflow counter
// increments.
const subscriberQueueSize = 1000

// Subscriber is one live-follow client: a filter, a bounded outbound
// queue, and an overflow counter.
type Subscriber struct {
	filter   string
	queue    chan string
	overflow uint64
	closed   atomic.Bool
	mu       sync.Mutex // serializes deliver against close
}

// Lines returns the channel of delivered lines. It is closed when the
// subscriber is cancelled.
func (s *Subscriber) Lines() <-chan string { return s.queue }

// Overflow returns how many lines have been dropped for this subscriber
// because its queue was full.
func (s *Subscriber) Overflow() uint64 { return atomic.LoadUint64(&s.overflow) }

func newSubscriber(filter string) *Subscriber {
	return &Subscriber{filter: filter, queue: make(chan string, subscriberQueueSize)}
}

// deliver sends line to the subscriber if it matches the filter,
// dropping the oldest queued line on overflow rather than blocking.
func (s *Subscriber) deliver(line string) {
	if s.filter != "" && !strings.Contains(line, s.filter) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return
	}
	select {
	case s.queue <- line:
		return
	default:
	}
	select {
	case <-s.queue:
	default:
	}
	atomic.AddUint64(&s.overflow, 1)
	select {
	case s.queue <- line:
	default:
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.CompareAndSwap(false, true) {
		close(s.queue)
	}
}

// Cancel stops delivery to a subscriber. It is idempotent and, once it
// returns, no further callbacks are invoked for that subscriber.
type Cancel func()

// follower owns a watcher on one active file path and fans lines out to
// its subscriber set. It is created lazily on first subscribe and torn
// down on last unsubscribe (see FollowerRegistry).
type follower struct {
	path string

	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	offset      int64
	inode       uint64
	partial     []byte

	clock     *Clock
	fsWatcher *fsnotify.Watcher
	coalescer *watcher.Coalescer
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

func newFollower(path string, clock *Clock) (*follower, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ioErr("follow", path, err)
	}
	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, ioErr("follow", path, err)
	}

	f := &follower{
		path:        path,
		subscribers: make(map[*Subscriber]struct{}),
		clock:       clock,
		fsWatcher:   fsWatcher,
		coalescer:   watcher.NewCoalescer(50 * time.Millisecond),
		closeCh:     make(chan struct{}),
	}

	if info, err := os.Stat(path); err == nil {
		f.offset = info.Size()
		f.inode = fileInode(info)
	}

	f.wg.Add(1)
	go f.processEvents()

	return f, nil
}

func (f *follower) processEvents() {
	defer f.wg.Done()
	for {
		select {
		case <-f.closeCh:
			return
		case event, ok := <-f.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				// The file may be recreated momentarily (rotation);
				// try to re-add the watch and keep going.
				_ = f.fsWatcher.Add(f.path)
				// The tracked offset belongs to an inode that may no
				// longer exist; poll immediately rather than risk a
				// write to the recreated file landing in the same
				// coalescing window and resetting the offset under it.
				f.coalescer.TriggerNow(f.path, f.poll)
				continue
			}
			f.coalescer.Trigger(f.path, f.poll)
		case _, ok := <-f.fsWatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// poll reads bytes appended since the last known offset, resetting to
// the new head on rotation (inode change or truncation), and delivers
// complete lines to every current subscriber.
func (f *follower) poll() {
	info, err := os.Stat(f.path)
	if err != nil {
		return
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return
	}
	defer fh.Close()

	f.mu.Lock()
	inode := fileInode(info)
	if inode != f.inode || info.Size() < f.offset {
		f.offset = 0
		f.partial = nil
		f.inode = inode
	}
	offset := f.offset
	size := info.Size()
	f.mu.Unlock()

	if size <= offset {
		return
	}

	buf := make([]byte, size-offset)
	if _, err := fh.ReadAt(buf, offset); err != nil {
		return
	}

	f.mu.Lock()
	data := append(f.partial, buf...)
	lines, rest := splitComplete(data)
	f.partial = rest
	f.offset = size
	subs := make([]*Subscriber, 0, len(f.subscribers))
	for s := range f.subscribers {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	for _, line := range lines {
		for _, s := range subs {
			s.deliver(line)
		}
	}
}

// splitComplete splits data on '\n', returning complete lines and any
// trailing partial line to be prefixed onto the next read.
func splitComplete(data []byte) (lines []string, rest []byte) {
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		rest = append([]byte(nil), data[start:]...)
	}
	return lines, rest
}

func (f *follower) subscribe(filter string) *Subscriber {
	s := newSubscriber(filter)
	f.mu.Lock()
	f.subscribers[s] = struct{}{}
	f.mu.Unlock()
	return s
}

func (f *follower) unsubscribe(s *Subscriber) int {
	f.mu.Lock()
	delete(f.subscribers, s)
	remaining := len(f.subscribers)
	f.mu.Unlock()
	s.close()
	return remaining
}

func (f *follower) close() {
	close(f.closeCh)
	f.coalescer.Stop()
	f.fsWatcher.Close()
	f.wg.Wait()

	f.mu.Lock()
	subs := make([]*Subscriber, 0, len(f.subscribers))
	for s := range f.subscribers {
		subs = append(subs, s)
	}
	f.subscribers = nil
	f.mu.Unlock()
	for _, s := range subs {
		s.close()
	}
}

// FollowerRegistry is the process-wide map from canonical file path to
// follower. Mutation is serialized under a single mutex;
// each follower's own subscriber set is mutated under the follower's
// mutex.
type FollowerRegistry struct {
	mu        sync.Mutex
	followers map[string]*follower
	clock     *Clock
}

// NewFollowerRegistry creates an empty registry.
func NewFollowerRegistry(clock *Clock) *FollowerRegistry {
	return &FollowerRegistry{followers: make(map[string]*follower), clock: clock}
}

// Subscribe registers a subscriber on path, creating the follower
// lazily if this is the first subscriber, and returns a Subscriber plus
// an idempotent Cancel.
func (r *FollowerRegistry) Subscribe(path, filter string) (*Subscriber, Cancel, error) {
	r.mu.Lock()
	f, ok := r.followers[path]
	if !ok {
		var err error
		f, err = newFollower(path, r.clock)
		if err != nil {
			r.mu.Unlock()
			return nil, nil, err
		}
		r.followers[path] = f
	}
	sub := f.subscribe(filter)
	r.mu.Unlock()

	// The create-or-reuse above and the decrement-or-delete below both
	// hold r.mu for their whole critical section so a subscribe can
	// never land on a follower that is concurrently being torn down.
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			remaining := f.unsubscribe(sub)
			if remaining == 0 && r.followers[path] == f {
				delete(r.followers, path)
			}
			r.mu.Unlock()
			if remaining == 0 {
				f.close()
			}
		})
	}
	return sub, cancel, nil
}

// Shutdown cancels every follower and releases all resources. Used on
// engine teardown.
func (r *FollowerRegistry) Shutdown() {
	r.mu.Lock()
	followers := make([]*follower, 0, len(r.followers))
	for _, f := range r.followers {
		followers = append(followers, f)
	}
	r.followers = make(map[string]*follower)
	r.mu.Unlock()

	for _, f := range followers {
		f.close()
	}
}

// ActiveFollowers returns the number of paths currently being followed,
// mainly for status reporting.
func (r *FollowerRegistry) ActiveFollowers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.followers)
}

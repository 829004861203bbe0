// Package chat implements the broker core: per-user mailboxes, the shared
// routing registry, and the per-connection session driver.
package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/quipchat/quipd/internal/wire"
)

// Status is the mailbox lifecycle flag.
type Status int

const (
	// StatusCache marks a mailbox buffering messages for a known user who
	// has not logged in. Pushes do not signal the notifier.
	StatusCache Status = iota
	// StatusAuth marks a mailbox bound to a live authenticated connection.
	StatusAuth
)

// String returns the status name for log output.
func (s Status) String() string {
	switch s {
	case StatusCache:
		return "cache"
	case StatusAuth:
		return "auth"
	}
	return "unknown"
}

// Mailbox is a per-user FIFO of pending responses with an edge-triggered
// notifier. Cross-connection traffic flows through it: senders push, the
// owner's writer task awaits the signal and drains.
type Mailbox struct {
	mu     sync.Mutex
	name   string
	status Status
	queue  []wire.Response

	// signal coalesces: multiple pushes may collapse into one wake, so the
	// writer drains the whole queue on every wake.
	signal chan struct{}
}

func newMailbox(name string, status Status) *Mailbox {
	return &Mailbox{
		name:   name,
		status: status,
		signal: make(chan struct{}, 1),
	}
}

// Name returns the mailbox's current user name.
func (m *Mailbox) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Status returns the current lifecycle flag.
func (m *Mailbox) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Push appends resp to the queue. The notifier fires only while the mailbox
// is Auth; a Cache mailbox accumulates silently until its owner logs in.
func (m *Mailbox) Push(resp wire.Response) {
	m.mu.Lock()
	m.queue = append(m.queue, resp)
	auth := m.status == StatusAuth
	m.mu.Unlock()

	if auth {
		m.notify()
	}
}

// Drain writes every queued response to w in FIFO order and reports how many
// were written. The mailbox lock is held across the write loop; only the
// owning writer task drains, so no other session blocks on it for long.
func (m *Mailbox) Drain(w *wire.Writer) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for len(m.queue) > 0 {
		resp := m.queue[0]
		m.queue = m.queue[1:]
		if err := w.WriteResponse(resp); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// AwaitSignal blocks until the notifier fires or ctx is cancelled. A push on
// an Auth mailbox guarantees a subsequent AwaitSignal returns.
func (m *Mailbox) AwaitSignal(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.signal:
		return nil
	}
}

// SetStatus transitions the lifecycle flag. Cache→Auth signals the notifier
// so responses buffered while offline get delivered. Auth→Cache is not a
// legal transition; unload and re-ensure instead.
func (m *Mailbox) SetStatus(status Status) error {
	m.mu.Lock()
	if status == StatusCache && m.status == StatusAuth {
		m.mu.Unlock()
		return errors.New("auth mailbox cannot revert to cache")
	}
	changed := m.status != status
	m.status = status
	m.mu.Unlock()

	if changed && status == StatusAuth {
		m.notify()
	}
	return nil
}

// promote flips Cache to Auth without signaling, so the registry can perform
// the check-and-flip under its own lock and signal after releasing it.
// Reports false if the mailbox was already Auth.
func (m *Mailbox) promote() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusAuth {
		return false
	}
	m.status = StatusAuth
	return true
}

func (m *Mailbox) rename(name string) {
	m.mu.Lock()
	m.name = name
	m.mu.Unlock()
}

func (m *Mailbox) notify() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

package chat

import (
	"errors"
	"sync"

	"github.com/quipchat/quipd/internal/userdir"
	"github.com/quipchat/quipd/internal/wire"
)

var (
	// ErrNotFound reports a name absent from the user directory, or a
	// rename whose source mailbox is gone.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate reports a login colliding with a live session, or a
	// rename into a taken name.
	ErrDuplicate = errors.New("name already in use")
	// ErrUnauthorized reports a failed credential check.
	ErrUnauthorized = errors.New("bad credentials")
)

// ErrorCode translates a registry error into its wire code.
func ErrorCode(err error) wire.Code {
	switch {
	case errors.Is(err, ErrNotFound):
		return wire.CodeNotFound
	case errors.Is(err, ErrDuplicate):
		return wire.CodeDuplicate
	case errors.Is(err, ErrUnauthorized):
		return wire.CodeUnauthorized
	}
	return wire.CodeBadCommand
}

// Registry is the process-wide name→mailbox table. It is the only shared
// mutable state in the broker; a single mutex protects the map. The mutex is
// never held across blocking I/O or notifier signaling.
type Registry struct {
	dir *userdir.Directory

	mu    sync.Mutex
	boxes map[string]*Mailbox
}

// NewRegistry builds a Registry over the immutable user directory.
func NewRegistry(dir *userdir.Directory) *Registry {
	return &Registry{
		dir:   dir,
		boxes: make(map[string]*Mailbox),
	}
}

// Load authenticates name and binds an Auth mailbox to it.
//
// Unknown name → ErrNotFound; wrong password → ErrUnauthorized; a live Auth
// mailbox → ErrDuplicate. An existing Cache mailbox flips to Auth and is
// returned with its buffered messages intact, the notifier signaled after the
// registry lock is released. Otherwise a fresh Auth mailbox is inserted.
func (r *Registry) Load(name, password string) (*Mailbox, error) {
	if err := r.dir.Verify(name, password); err != nil {
		switch {
		case errors.Is(err, userdir.ErrUnknownUser):
			return nil, ErrNotFound
		case errors.Is(err, userdir.ErrBadPassword):
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	r.mu.Lock()
	if box, ok := r.boxes[name]; ok {
		if !box.promote() {
			r.mu.Unlock()
			return nil, ErrDuplicate
		}
		r.mu.Unlock()
		// Wake the writer so responses buffered while in Cache drain.
		box.notify()
		return box, nil
	}

	box := newMailbox(name, StatusAuth)
	r.boxes[name] = box
	r.mu.Unlock()
	return box, nil
}

// Unload removes name's mailbox, discarding any undelivered responses.
// Idempotent.
func (r *Registry) Unload(name string) {
	r.mu.Lock()
	delete(r.boxes, name)
	r.mu.Unlock()
}

// Find returns name's mailbox if one exists. Lookup only.
func (r *Registry) Find(name string) (*Mailbox, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	box, ok := r.boxes[name]
	return box, ok
}

// Ensure returns name's mailbox, inserting a fresh Cache mailbox if none
// exists. Names absent from the user directory fail with ErrNotFound; a Cache
// mailbox may exist only for known users.
func (r *Registry) Ensure(name string) (*Mailbox, error) {
	if _, ok := r.dir.Lookup(name); !ok {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if box, ok := r.boxes[name]; ok {
		return box, nil
	}
	box := newMailbox(name, StatusCache)
	r.boxes[name] = box
	return box, nil
}

// Rename moves oldName's mailbox under newName and updates its identity
// atomically. Renaming to the current name succeeds without effect. A taken
// target → ErrDuplicate; a missing source → ErrNotFound.
func (r *Registry) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.boxes[newName]; taken {
		return ErrDuplicate
	}
	box, ok := r.boxes[oldName]
	if !ok {
		return ErrNotFound
	}

	delete(r.boxes, oldName)
	r.boxes[newName] = box
	box.rename(newName)
	return nil
}

// Len reports the number of registered mailboxes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boxes)
}

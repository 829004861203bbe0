// Package userdir holds the static user directory the broker authenticates
// against. The directory is loaded once at startup, from a JSON document or
// from Redis, and never mutates afterwards; no locking is needed around reads.
package userdir

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnknownUser reports a name with no directory entry.
	ErrUnknownUser = errors.New("unknown user")
	// ErrBadPassword reports a failed credential check for a known user.
	ErrBadPassword = errors.New("incorrect password")
)

// User is one directory entry. Password is either a bcrypt hash (recognized
// by its $2a$/$2b$/$2y$ prefix) or a plaintext secret.
type User struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Group is a named set of users. Groups are parsed and validated but the
// broker does not route to them in this revision; G:<name> addressing is
// reserved.
type Group struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

// Directory is the immutable name→user mapping.
type Directory struct {
	users  map[string]User
	groups map[string]Group
}

// New builds a Directory from raw entries. Names must be unique and non-empty
// and every group member must name an existing user.
func New(users []User, groups []Group) (*Directory, error) {
	d := &Directory{
		users:  make(map[string]User, len(users)),
		groups: make(map[string]Group, len(groups)),
	}

	for _, u := range users {
		if u.Name == "" {
			return nil, errors.New("user with empty name")
		}
		if _, ok := d.users[u.Name]; ok {
			return nil, fmt.Errorf("duplicate user %q", u.Name)
		}
		d.users[u.Name] = u
	}

	for _, g := range groups {
		if g.Name == "" {
			return nil, errors.New("group with empty name")
		}
		if _, ok := d.groups[g.Name]; ok {
			return nil, fmt.Errorf("duplicate group %q", g.Name)
		}
		for _, member := range g.Users {
			if _, ok := d.users[member]; !ok {
				return nil, fmt.Errorf("user %q required in group %q does not exist", member, g.Name)
			}
		}
		d.groups[g.Name] = g
	}

	return d, nil
}

// Lookup returns the entry for name.
func (d *Directory) Lookup(name string) (User, bool) {
	u, ok := d.users[name]
	return u, ok
}

// Verify checks name's credentials. It returns ErrUnknownUser for a missing
// entry and ErrBadPassword for a credential mismatch.
func (d *Directory) Verify(name, password string) error {
	u, ok := d.users[name]
	if !ok {
		return ErrUnknownUser
	}

	if isBcryptHash(u.Password) {
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			return ErrBadPassword
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return ErrBadPassword
	}
	return nil
}

// Len returns the number of users.
func (d *Directory) Len() int {
	return len(d.users)
}

// Groups returns the parsed group definitions.
func (d *Directory) Groups() map[string]Group {
	return d.groups
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}

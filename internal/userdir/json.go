package userdir

import (
	"encoding/json"
	"fmt"
	"os"
)

// document is the on-disk shape of the directory file:
//
//	{ "users": [ {"name": ..., "password": ...} ], "groups": [ ... ] }
type document struct {
	Users  []User  `json:"users"`
	Groups []Group `json:"groups"`
}

// LoadFile reads and validates a JSON directory document. A failure here is
// fatal at startup; the broker cannot run without its user directory.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading user directory: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing user directory %s: %w", path, err)
	}

	d, err := New(doc.Users, doc.Groups)
	if err != nil {
		return nil, fmt.Errorf("invalid user directory %s: %w", path, err)
	}
	return d, nil
}

package userdir

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		users   []User
		groups  []Group
		wantErr bool
	}{
		{
			name:  "valid",
			users: []User{{Name: "Dessera", Password: "Pass"}, {Name: "Scarlet", Password: "Pass"}},
			groups: []Group{
				{Name: "touhou", Users: []string{"Scarlet"}},
			},
		},
		{
			name:    "empty user name",
			users:   []User{{Name: "", Password: "x"}},
			wantErr: true,
		},
		{
			name:    "duplicate user",
			users:   []User{{Name: "Dessera", Password: "a"}, {Name: "Dessera", Password: "b"}},
			wantErr: true,
		},
		{
			name:    "group references unknown user",
			users:   []User{{Name: "Dessera", Password: "Pass"}},
			groups:  []Group{{Name: "ghosts", Users: []string{"Casper"}}},
			wantErr: true,
		},
		{
			name:    "duplicate group",
			users:   []User{{Name: "Dessera", Password: "Pass"}},
			groups:  []Group{{Name: "g"}, {Name: "g"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.users, tt.groups)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirectory_Verify(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	d, err := New([]User{
		{Name: "Dessera", Password: "Pass"},
		{Name: "Scarlet", Password: string(hash)},
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  error
	}{
		{"plaintext match", "Dessera", "Pass", nil},
		{"plaintext mismatch", "Dessera", "Wrong", ErrBadPassword},
		{"bcrypt match", "Scarlet", "Secret", nil},
		{"bcrypt mismatch", "Scarlet", "Pass", ErrBadPassword},
		{"unknown user", "Ghost", "Pass", ErrUnknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Verify(tt.user, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify(%q, %q) = %v, want %v", tt.user, tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestDirectory_Lookup(t *testing.T) {
	d, err := New([]User{{Name: "Dessera", Password: "Pass"}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if u, ok := d.Lookup("Dessera"); !ok || u.Name != "Dessera" {
		t.Errorf("Lookup(Dessera) = %#v, %v", u, ok)
	}
	if _, ok := d.Lookup("Ghost"); ok {
		t.Error("Lookup(Ghost) succeeded, want miss")
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
}

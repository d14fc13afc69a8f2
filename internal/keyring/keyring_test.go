package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/keepup/internal/constants"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://keepup@localhost:5432/keepup?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()
	if err := SetConnectionString("  "); err == nil {
		t.Error("SetConnectionString with blank input should fail")
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://keepup@localhost/keepup"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() after delete error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestResolveConnectionString(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()

	stored := "postgres://keepup@keyring-host/keepup"
	fromEnv := "postgres://keepup@env-host/keepup"

	tests := []struct {
		name     string
		explicit string
		env      string
		keyring  string
		want     string
		wantErr  error
	}{
		{"explicit wins", "postgres://keepup@flag/keepup", fromEnv, stored, "postgres://keepup@flag/keepup", nil},
		{"env before keyring", "", fromEnv, stored, fromEnv, nil},
		{"keyring fallback", "", "", stored, stored, nil},
		{"keyring forced", "keyring", fromEnv, stored, stored, nil},
		{"nothing configured", "", "", "", "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(constants.ConnectionEnvVar, tt.env)
			_ = DeleteConnectionString()
			if tt.keyring != "" {
				if err := SetConnectionString(tt.keyring); err != nil {
					t.Fatal(err)
				}
			}

			got, err := ResolveConnectionString(tt.explicit)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResolveConnectionString() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveConnectionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

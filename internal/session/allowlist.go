package session

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator validates credentials and produces an Identity. The
// returned Identity must be stable: authenticating twice with the same
// credentials yields the same SubjectID.
type Authenticator interface {
	Authenticate(ctx context.Context, email, secret string) (Identity, error)
}

// AllowlistEntry is one authorized operator. Secrets are stored as bcrypt
// hashes; plaintext never appears in configuration.
type AllowlistEntry struct {
	Email        string `yaml:"email"`
	SecretHash   string `yaml:"secret_hash"`
	SubjectID    string `yaml:"subject_id"`
	Role         string `yaml:"role"`
	DisplayLabel string `yaml:"display_label,omitempty"`
}

// Allowlist is an offline Authenticator backed by an injected set of
// authorized operators.
type Allowlist struct {
	entries map[string]AllowlistEntry
}

// NewAllowlist builds an allow-list from entries, keyed by normalized email.
func NewAllowlist(entries []AllowlistEntry) (*Allowlist, error) {
	byEmail := make(map[string]AllowlistEntry, len(entries))
	for _, e := range entries {
		email := NormalizeEmail(e.Email)
		if email == "" || e.SubjectID == "" || e.SecretHash == "" {
			return nil, fmt.Errorf("incomplete allowlist entry for %q", e.Email)
		}
		if _, err := ParseRole(e.Role); err != nil {
			return nil, fmt.Errorf("allowlist entry %s: %w", email, err)
		}
		if _, err := uuid.Parse(e.SubjectID); err != nil {
			return nil, fmt.Errorf("allowlist entry %s: subject_id is not a UUID: %w", email, err)
		}
		byEmail[email] = e
	}
	return &Allowlist{entries: byEmail}, nil
}

// LoadAllowlist reads a YAML allow-list file.
func LoadAllowlist(path string) (*Allowlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read allowlist: %w", err)
	}

	var file struct {
		Operators []AllowlistEntry `yaml:"operators"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse allowlist: %w", err)
	}

	return NewAllowlist(file.Operators)
}

// Authenticate checks email membership and the bcrypt secret hash.
// The two failure modes are distinct so the UI can report "not authorized"
// separately from "wrong password".
func (a *Allowlist) Authenticate(_ context.Context, email, secret string) (Identity, error) {
	entry, ok := a.entries[NormalizeEmail(email)]
	if !ok {
		return Identity{}, ErrUnauthorizedEmail
	}

	if err := bcrypt.CompareHashAndPassword([]byte(entry.SecretHash), []byte(secret)); err != nil {
		return Identity{}, ErrInvalidCredential
	}

	label := entry.DisplayLabel
	if label == "" {
		label = LabelFromEmail(entry.Email)
	}

	role, _ := ParseRole(entry.Role)
	return Identity{
		SubjectID:    entry.SubjectID,
		DisplayLabel: label,
		Role:         role,
	}, nil
}

package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the operator's permission level.
type Role string

const (
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a persisted or remote role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOperator:
		return RoleOperator, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity is the authenticated operator's credential record. It is
// immutable once created; a role or subject change requires a new login.
type Identity struct {
	SubjectID    string
	DisplayLabel string
	Role         Role
	IssuedAt     time.Time
}

// Session binds an Identity to the process, with a flag recording whether
// it was restored from persisted state rather than a fresh login.
type Session struct {
	Identity  Identity
	Persisted bool
}

// Login-time errors. The session stays untouched when these occur.
var (
	ErrUnauthorizedEmail = errors.New("email not authorized")
	ErrInvalidCredential = errors.New("invalid credential")
)

// NormalizeEmail lowercases and trims an email for lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LabelFromEmail derives a display label from the local part of an email.
func LabelFromEmail(email string) string {
	name, _, _ := strings.Cut(NormalizeEmail(email), "@")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

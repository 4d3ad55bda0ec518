package adminapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/ecombuddha/console-core/internal/gateway"
	"github.com/ecombuddha/console-core/internal/session"
)

// RemoteAuthenticator performs logins through the backend instead of an
// offline allow-list. It satisfies session.Authenticator so the session
// manager does not know which variant it is running against.
type RemoteAuthenticator struct {
	svc *Service
}

// NewRemoteAuthenticator wraps the admin service as an authenticator.
func NewRemoteAuthenticator(svc *Service) *RemoteAuthenticator {
	return &RemoteAuthenticator{svc: svc}
}

// Authenticate delegates to POST /auth/login and maps backend rejections
// onto the session error taxonomy. Transport failures pass through
// unchanged so the caller can distinguish "rejected" from "unreachable".
func (a *RemoteAuthenticator) Authenticate(ctx context.Context, email, secret string) (session.Identity, error) {
	result, err := a.svc.Login(ctx, email, secret)
	if err != nil {
		return session.Identity{}, mapLoginError(err)
	}

	role, parseErr := session.ParseRole(result.Role)
	if parseErr != nil {
		// Backends predating the role field only issued admin logins.
		role = session.RoleAdmin
	}

	return session.Identity{
		SubjectID:    result.UUID,
		DisplayLabel: session.LabelFromEmail(result.Email),
		Role:         role,
	}, nil
}

func mapLoginError(err error) error {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return session.ErrInvalidCredential
	}

	var remote *gateway.RemoteError
	if errors.As(err, &remote) && remote.Status == http.StatusForbidden {
		return session.ErrUnauthorizedEmail
	}
	return err
}

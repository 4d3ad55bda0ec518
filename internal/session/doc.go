// Package session owns the authenticated operator state for the lifetime
// of the client process.
//
// A Manager holds at most one Session at a time and is the only writer of
// identity state. It restores a persisted session at startup, performs
// logins against an Authenticator (offline allow-list or remote), and
// handles both operator-initiated and server-forced logouts. The gateway
// client reads the current Identity on every call and triggers ForceLogout
// when the backend reports the session invalid.
package session

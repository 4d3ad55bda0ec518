package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecombuddha/console-core/internal/logging"
	"github.com/ecombuddha/console-core/internal/store"
)

// Persisted session layout. All four keys must be present and well-formed
// for Restore to succeed; partial presence is treated as corrupt.
const (
	KeySubjectID    = "session.subjectId"
	KeyDisplayLabel = "session.displayLabel"
	KeyRole         = "session.role"
	KeyIssuedAt     = "session.issuedAt"
)

var sessionKeys = []string{KeySubjectID, KeyDisplayLabel, KeyRole, KeyIssuedAt}

// Manager is the single source of truth for who is operating this client.
// It is safe for concurrent use; the mutex covers the one point where
// concurrent writers are possible, simultaneous forced logouts.
type Manager struct {
	store store.Store
	auth  Authenticator
	log   *logging.Logger
	now   func() time.Time

	mu           sync.RWMutex
	current      *Session
	logoutReason string
}

// NewManager creates a session manager over the given persistence surface
// and authenticator. A nil logger is replaced with a no-op one.
func NewManager(st store.Store, auth Authenticator, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		store: st,
		auth:  auth,
		log:   log,
		now:   time.Now,
	}
}

// SetAuthenticator installs the authenticator after construction. The
// networked variant needs this: the remote authenticator calls through
// the gateway, and the gateway is built around this manager.
func (m *Manager) SetAuthenticator(auth Authenticator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = auth
}

// Restore re-establishes a session persisted by a previous process. It
// returns false on missing or malformed data; malformed data is purged so
// it is not retried. A first run with no stored session is not an error.
func (m *Manager) Restore() (*Session, bool) {
	values := make(map[string]string, len(sessionKeys))
	present := 0
	for _, key := range sessionKeys {
		v, ok, err := m.store.Get(key)
		if err != nil {
			m.log.Warn("session store read failed", zap.String("key", key), zap.Error(err))
			return nil, false
		}
		if ok {
			present++
		}
		values[key] = v
	}

	if present == 0 {
		return nil, false
	}

	identity, ok := m.validate(values)
	if present < len(sessionKeys) || !ok {
		m.log.Warn("purging malformed persisted session")
		m.purge()
		return nil, false
	}

	sess := &Session{Identity: identity, Persisted: true}

	m.mu.Lock()
	m.current = sess
	m.logoutReason = ""
	m.mu.Unlock()

	m.log.Info("session restored",
		zap.String("subject", identity.SubjectID),
		zap.String("role", string(identity.Role)))
	return sess, true
}

// Login authenticates and replaces any current session. Login failures
// never mutate session state. The operation is idempotent under retry:
// the same valid credentials always produce the same SubjectID.
func (m *Manager) Login(ctx context.Context, email, secret string) (Identity, error) {
	m.mu.RLock()
	auth := m.auth
	m.mu.RUnlock()

	identity, err := auth.Authenticate(ctx, email, secret)
	if err != nil {
		return Identity{}, err
	}

	identity.IssuedAt = m.now()

	m.mu.Lock()
	m.current = &Session{Identity: identity}
	m.logoutReason = ""
	m.mu.Unlock()

	m.persist(identity)

	m.log.Info("login succeeded",
		zap.String("subject", identity.SubjectID),
		zap.String("role", string(identity.Role)))
	return identity, nil
}

// Logout clears the session and purges persisted state. Safe to call when
// no session exists.
func (m *Manager) Logout() {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.mu.Unlock()

	m.purge()
	if had {
		m.log.Info("logged out")
	}
}

// ForceLogout handles server-initiated session termination. When several
// concurrent requests each hit a 401, only the first caller runs the
// logout sequence; the rest observe an already-cleared session and no-op.
func (m *Manager) ForceLogout(reason string) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.current = nil
	m.logoutReason = reason
	m.mu.Unlock()

	m.purge()
	m.log.Warn("forced logout", zap.String("reason", reason))
}

// Current returns the current Identity, if any. It never blocks on I/O.
func (m *Manager) Current() (Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Identity{}, false
	}
	return m.current.Identity, true
}

// Session returns the current Session, including the persisted flag.
func (m *Manager) Session() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, false
	}
	sess := *m.current
	return &sess, true
}

// LogoutReason returns the reason recorded by the last forced logout, for
// the UI layer to display on the login surface.
func (m *Manager) LogoutReason() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logoutReason
}

// validate checks that persisted values form a well-formed Identity.
func (m *Manager) validate(values map[string]string) (Identity, bool) {
	if values[KeySubjectID] == "" {
		return Identity{}, false
	}

	role, err := ParseRole(values[KeyRole])
	if err != nil {
		return Identity{}, false
	}

	issuedAt, err := time.Parse(time.RFC3339, values[KeyIssuedAt])
	if err != nil {
		return Identity{}, false
	}

	return Identity{
		SubjectID:    values[KeySubjectID],
		DisplayLabel: values[KeyDisplayLabel],
		Role:         role,
		IssuedAt:     issuedAt,
	}, true
}

// persist writes the session keys. Storage failure does not fail the
// login; the session simply will not survive a restart.
func (m *Manager) persist(identity Identity) {
	pairs := map[string]string{
		KeySubjectID:    identity.SubjectID,
		KeyDisplayLabel: identity.DisplayLabel,
		KeyRole:         string(identity.Role),
		KeyIssuedAt:     identity.IssuedAt.Format(time.RFC3339),
	}
	for key, value := range pairs {
		if err := m.store.Set(key, value); err != nil {
			m.log.Warn("session persist failed", zap.String("key", key), zap.Error(err))
			return
		}
	}
}

// purge best-effort removes all persisted session keys.
func (m *Manager) purge() {
	if err := m.store.Delete(sessionKeys...); err != nil {
		m.log.Warn("session purge failed", zap.Error(err))
	}
}

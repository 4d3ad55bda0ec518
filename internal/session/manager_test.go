package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecombuddha/console-core/internal/store"
)

func testAllowlist(t *testing.T) *Allowlist {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Naveen@123"), bcrypt.MinCost)
	require.NoError(t, err)

	list, err := NewAllowlist([]AllowlistEntry{
		{
			Email:      "naveen@ecombuddha.example",
			SecretHash: string(hash),
			SubjectID:  "d1633d8a-00a1-7073-16e2-d2805d998a9f",
			Role:       "admin",
		},
	})
	require.NoError(t, err)
	return list
}

func TestLoginUnauthorizedEmail(t *testing.T) {
	m := NewManager(store.NewMemory(), testAllowlist(t), nil)

	_, err := m.Login(context.Background(), "ops@example.com", "whatever")
	assert.ErrorIs(t, err, ErrUnauthorizedEmail)

	_, ok := m.Current()
	assert.False(t, ok, "failed login must not create a session")
}

func TestLoginWrongSecret(t *testing.T) {
	m := NewManager(store.NewMemory(), testAllowlist(t), nil)

	_, err := m.Login(context.Background(), "naveen@ecombuddha.example", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, ok := m.Current()
	assert.False(t, ok)
}

func TestLoginSuccessPersists(t *testing.T) {
	st := store.NewMemory()
	m := NewManager(st, testAllowlist(t), nil)

	identity, err := m.Login(context.Background(), "Naveen@Ecombuddha.example ", "Naveen@123")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, identity.Role)
	assert.Equal(t, "d1633d8a-00a1-7073-16e2-d2805d998a9f", identity.SubjectID)
	assert.Equal(t, "Naveen", identity.DisplayLabel)

	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, identity, current)

	for _, key := range sessionKeys {
		_, present, err := st.Get(key)
		require.NoError(t, err)
		assert.True(t, present, "expected %s in storage", key)
	}
}

func TestLoginIdempotent(t *testing.T) {
	m := NewManager(store.NewMemory(), testAllowlist(t), nil)
	ctx := context.Background()

	first, err := m.Login(ctx, "naveen@ecombuddha.example", "Naveen@123")
	require.NoError(t, err)
	second, err := m.Login(ctx, "naveen@ecombuddha.example", "Naveen@123")
	require.NoError(t, err)

	assert.Equal(t, first.SubjectID, second.SubjectID)
}

func TestRestoreRoundTrip(t *testing.T) {
	st := store.NewMemory()
	m := NewManager(st, testAllowlist(t), nil)

	identity, err := m.Login(context.Background(), "naveen@ecombuddha.example", "Naveen@123")
	require.NoError(t, err)

	// Simulate a restart: a fresh manager over the same store.
	m2 := NewManager(st, testAllowlist(t), nil)
	sess, ok := m2.Restore()
	require.True(t, ok)
	assert.True(t, sess.Persisted)
	assert.Equal(t, identity.SubjectID, sess.Identity.SubjectID)
	assert.Equal(t, identity.Role, sess.Identity.Role)

	current, ok := m2.Current()
	require.True(t, ok)
	assert.Equal(t, identity.SubjectID, current.SubjectID)
}

func TestRestoreFirstRun(t *testing.T) {
	m := NewManager(store.NewMemory(), testAllowlist(t), nil)

	_, ok := m.Restore()
	assert.False(t, ok)
}

func TestRestorePurgesCorruptState(t *testing.T) {
	st := store.NewMemory()
	// session.role missing: partial state is corrupt.
	require.NoError(t, st.Set(KeySubjectID, "abc"))
	require.NoError(t, st.Set(KeyDisplayLabel, "Abc"))
	require.NoError(t, st.Set(KeyIssuedAt, time.Now().Format(time.RFC3339)))

	m := NewManager(st, testAllowlist(t), nil)
	_, ok := m.Restore()
	assert.False(t, ok)

	for _, key := range sessionKeys {
		_, present, err := st.Get(key)
		require.NoError(t, err)
		assert.False(t, present, "expected %s purged", key)
	}
}

func TestRestoreRejectsUnknownRole(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Set(KeySubjectID, "abc"))
	require.NoError(t, st.Set(KeyDisplayLabel, "Abc"))
	require.NoError(t, st.Set(KeyRole, "superuser"))
	require.NoError(t, st.Set(KeyIssuedAt, time.Now().Format(time.RFC3339)))

	m := NewManager(st, testAllowlist(t), nil)
	_, ok := m.Restore()
	assert.False(t, ok)

	_, present, err := st.Get(KeyRole)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestLogoutIsNoopWithoutSession(t *testing.T) {
	m := NewManager(store.NewMemory(), testAllowlist(t), nil)
	m.Logout()
	m.ForceLogout("session expired")

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Empty(t, m.LogoutReason())
}

// countingStore counts Delete calls so the test can observe how many
// logout sequences actually ran.
type countingStore struct {
	*store.Memory
	mu      sync.Mutex
	deletes int
}

func (c *countingStore) Delete(keys ...string) error {
	c.mu.Lock()
	c.deletes++
	c.mu.Unlock()
	return c.Memory.Delete(keys...)
}

func TestForceLogoutRunsOnce(t *testing.T) {
	st := &countingStore{Memory: store.NewMemory()}
	m := NewManager(st, testAllowlist(t), nil)

	_, err := m.Login(context.Background(), "naveen@ecombuddha.example", "Naveen@123")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ForceLogout("session expired")
		}()
	}
	wg.Wait()

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Equal(t, "session expired", m.LogoutReason())
	assert.Equal(t, 1, st.deletes, "purge must run exactly once")
}

func TestLoginClearsLogoutReason(t *testing.T) {
	m := NewManager(store.NewMemory(), testAllowlist(t), nil)
	ctx := context.Background()

	_, err := m.Login(ctx, "naveen@ecombuddha.example", "Naveen@123")
	require.NoError(t, err)
	m.ForceLogout("session expired")
	require.Equal(t, "session expired", m.LogoutReason())

	_, err = m.Login(ctx, "naveen@ecombuddha.example", "Naveen@123")
	require.NoError(t, err)
	assert.Empty(t, m.LogoutReason())
}

package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadAllowlist(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sahaj@123"), bcrypt.MinCost)
	require.NoError(t, err)

	content := fmt.Sprintf(`operators:
  - email: sahaj@ecombuddha.example
    secret_hash: %q
    subject_id: a113fd5a-1011-7063-3cf9-7ac0110aafe4
    role: admin
  - email: ops@ecombuddha.example
    secret_hash: %q
    subject_id: 41d34dda-4061-7054-e597-123c1efef594
    role: operator
    display_label: Operations
`, hash, hash)

	path := filepath.Join(t.TempDir(), "allowlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	list, err := LoadAllowlist(path)
	require.NoError(t, err)

	identity, err := list.Authenticate(context.Background(), "SAHAJ@ecombuddha.example", "Sahaj@123")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, identity.Role)
	assert.Equal(t, "Sahaj", identity.DisplayLabel)

	identity, err = list.Authenticate(context.Background(), "ops@ecombuddha.example", "Sahaj@123")
	require.NoError(t, err)
	assert.Equal(t, RoleOperator, identity.Role)
	assert.Equal(t, "Operations", identity.DisplayLabel)
}

func TestNewAllowlistRejectsBadEntries(t *testing.T) {
	_, err := NewAllowlist([]AllowlistEntry{{Email: "x@example.com", Role: "admin"}})
	assert.Error(t, err, "missing subject_id and secret_hash")

	_, err = NewAllowlist([]AllowlistEntry{{
		Email:      "x@example.com",
		SecretHash: "$2a$04$abcdefghijklmnopqrstuv",
		SubjectID:  "id-1",
		Role:       "root",
	}})
	assert.Error(t, err, "unknown role")
}

func TestLabelFromEmail(t *testing.T) {
	assert.Equal(t, "Naveen", LabelFromEmail("naveen@ecombuddha.example"))
	assert.Equal(t, "Karthik", LabelFromEmail(" Karthik@Ecombuddha.example "))
	assert.Equal(t, "", LabelFromEmail(""))
}

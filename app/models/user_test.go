package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIssueAPIKey(t *testing.T) {
	u := &User{ID: 1}

	key, err := u.IssueAPIKey()
	require.NoError(t, err)
	require.NotEmpty(t, key)

	assert.True(t, strings.HasPrefix(key, "evg_"))
	assert.NotEmpty(t, u.APIKeyHash)
	assert.NotEmpty(t, u.APIKeyPrefix)
	assert.NotNil(t, u.APIKeyCreatedAt)
	assert.Nil(t, u.APIKeyLastUsedAt)
	assert.True(t, u.HasActiveAPIKey())
	assert.Equal(t, HashAPIKey(key), u.APIKeyHash)
}

func TestUserRevokeAPIKey(t *testing.T) {
	u := &User{ID: 99}
	_, err := u.IssueAPIKey()
	require.NoError(t, err)

	u.RevokeAPIKey()

	assert.False(t, u.HasActiveAPIKey())
	assert.Equal(t, "", u.APIKeyHash)
	assert.Equal(t, "", u.APIKeyPrefix)
	assert.NotNil(t, u.APIKeyRevokedAt)
}

func TestHashAPIKeyTrimsWhitespace(t *testing.T) {
	assert.Equal(t, HashAPIKey("evg_abc"), HashAPIKey("  evg_abc \n"))
	assert.NotEqual(t, HashAPIKey("evg_abc"), HashAPIKey("evg_abd"))
}

func TestCreateUserHashesPassword(t *testing.T) {
	u, err := CreateUser("Maria Souza", "maria@example.com", "s3cret-pw", 3)
	require.NoError(t, err)

	assert.Equal(t, ROLE_STAFF, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.NotEqual(t, "s3cret-pw", u.Password)
	assert.True(t, u.CheckPassword("s3cret-pw"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestCreateUserRejectsInvalidInput(t *testing.T) {
	_, err := CreateUser("Jo", "not-an-email", "s3cret-pw", 3)
	assert.Error(t, err)

	_, err = CreateUser("Maria Souza", "maria@example.com", "short", 3)
	assert.Error(t, err)
}

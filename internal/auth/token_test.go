package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-user-go/treks/internal/auth"
)

func TestManager_IssueAndVerify(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)
	require.True(t, m.Enabled())

	token, err := m.Issue("Asha", "asha@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestManager_VerifyRejectsBadTokens(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestManager_VerifyRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret-one", time.Hour)
	verifier := auth.NewManager("secret-two", time.Hour)

	token, err := issuer.Issue("Asha", "asha@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestManager_VerifyRejectsExpiredToken(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	token, err := m.Issue("Asha", "asha@example.com")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestManager_Disabled(t *testing.T) {
	m := auth.NewManager("", time.Hour)
	assert.False(t, m.Enabled())

	_, err := m.Issue("Asha", "asha@example.com")
	assert.Error(t, err)

	m = auth.NewManager("   ", time.Hour)
	assert.False(t, m.Enabled())
}

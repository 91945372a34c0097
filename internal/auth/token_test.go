package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Issue(Principal{DisplayName: "Desk", Email: "desk@example.com", IsAdmin: true})
	require.NoError(t, err)

	p, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, &Principal{DisplayName: "Desk", Email: "desk@example.com", IsAdmin: true}, p)
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(Principal{Email: "desk@example.com", IsAdmin: true})
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", time.Hour).Parse(token)
	assert.Error(t, err)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	assert.Error(t, err)

	_, err = m.Parse("not.a.token")
	assert.Error(t, err)
}

func TestTokenManagerRequiresSecret(t *testing.T) {
	m := NewTokenManager("", time.Hour)

	_, err := m.Issue(Principal{IsAdmin: true})
	assert.Error(t, err)
	_, err = m.Parse("anything")
	assert.Error(t, err)
}

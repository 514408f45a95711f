package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	user := User{Roles: []Role{{Name: "ROLE_USER"}, {Name: "ROLE_SALE"}}}

	assert.True(t, user.HasRole("ROLE_SALE"))
	assert.False(t, user.HasRole("ROLE_ADMIN"))

	var noRoles User
	assert.False(t, noRoles.HasRole("ROLE_USER"))
}

func TestPasswordResetTokenExpiry(t *testing.T) {
	token := PasswordResetToken{
		UserId:    10,
		Token:     "abc123",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	assert.True(t, token.ExpiresAt.After(time.Now()))
	assert.True(t, time.Now().After(PasswordResetToken{ExpiresAt: time.Now().Add(-time.Minute)}.ExpiresAt))
}

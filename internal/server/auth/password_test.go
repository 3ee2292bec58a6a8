package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("p1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, PasswordHashCost, cost)

	assert.True(t, CheckPassword(h, "p1"))
	assert.False(t, CheckPassword(h, "p2"))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	assert.False(t, CheckPassword("", ""))
	assert.False(t, CheckPassword("", "anything"))
}

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("pass1234")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))
	assert.NotContains(t, encoded, "pass1234")

	ok, err := VerifyPassword("pass1234", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("pass1234")
	require.NoError(t, err)
	second, err := HashPassword("pass1234")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"pass1234",
		"$argon2id$v=19$m=65536,t=2,p=1$short",
		"$bcrypt$v=19$m=65536,t=2,p=1$c2FsdA$a2V5",
	} {
		_, err := VerifyPassword("pass1234", encoded)
		assert.Error(t, err, "hash %q", encoded)
	}
}

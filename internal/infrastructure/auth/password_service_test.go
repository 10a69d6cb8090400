package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mulandii/Clinic-cms/domain"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordServiceWithCost(bcrypt.MinCost)

	hash, err := svc.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, svc.Verify(hash, "correct horse"))
	assert.False(t, svc.Verify(hash, "wrong horse"))
	assert.False(t, svc.Verify("", "correct horse"))
	assert.False(t, svc.Verify("not-a-bcrypt-hash", "correct horse"))
}

func TestPasswordService_SaltedHashes(t *testing.T) {
	svc := NewPasswordServiceWithCost(bcrypt.MinCost)

	a, err := svc.Hash("123456")
	require.NoError(t, err)
	b, err := svc.Hash("123456")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "same input must produce different salted hashes")
	assert.True(t, svc.Verify(a, "123456"))
	assert.True(t, svc.Verify(b, "123456"))
}

func TestPasswordService_EmptyPassword(t *testing.T) {
	svc := NewPasswordServiceWithCost(bcrypt.MinCost)

	_, err := svc.Hash("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

package password

import (
	"FolderVaultBot/internal/common"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)

	assert.True(t, h.Verify("pw123", hash))
	assert.False(t, h.Verify("wrong", hash))
	assert.False(t, h.Verify("pw123", "not-a-hash"))
}

func TestHash_UsesConfiguredCost(t *testing.T) {
	h := NewHasher(5)

	hash, err := h.Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestNewHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewHasher(1).cost)
	assert.Equal(t, bcrypt.MaxCost, NewHasher(99).cost)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate("abc"), common.ErrValidation)
	assert.NoError(t, Validate("abcd"))
	assert.NoError(t, Validate("пароль"))
	assert.NoError(t, Validate(strings.Repeat("я", MaxLength)))
	assert.ErrorIs(t, Validate(strings.Repeat("я", MaxLength+1)), common.ErrValidation)
}

func TestHash_SecretsLongerThanBcryptLimit(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	// 84 байта в UTF-8
	long := strings.Repeat("пароль", 7)
	hash, err := h.Hash(long)
	require.NoError(t, err)

	assert.True(t, h.Verify(long, hash))
	// отличие после 72-го байта тоже учитывается
	assert.False(t, h.Verify(strings.Repeat("пароль", 6)+"парола", hash))
}

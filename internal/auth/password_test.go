package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, hasher.Verify("s3cret-password", hash))
	assert.False(t, hasher.Verify("wrong-password", hash))
}

func TestPasswordHasher_FreshSaltPerHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("same-password", first))
	assert.True(t, hasher.Verify("same-password", second))
}

func TestPasswordHasher_CorruptHashFailsClosed(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	assert.False(t, hasher.Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Verify("anything", ""))
}

func TestNewPasswordHasher_ClampsInvalidCost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{name: "below minimum", cost: 0, want: bcrypt.DefaultCost},
		{name: "above maximum", cost: 99, want: bcrypt.DefaultCost},
		{name: "valid", cost: 10, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPasswordHasher(tt.cost)
			assert.Equal(t, tt.want, h.cost)
		})
	}
}

package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestHashIsSaltedAndVerifiable(t *testing.T) {
	first, err := Hash("secreto1")
	require.NoError(t, err)
	second, err := Hash("secreto1")
	require.NoError(t, err)

	assert.NotEqual(t, "secreto1", first)
	assert.NotEqual(t, first, second)
	assert.True(t, Matches(first, "secreto1"))
	assert.True(t, Matches(second, "secreto1"))
	assert.False(t, Matches(first, "otro"))
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := Hash("")
	assert.ErrorIs(t, err, ErrEmpty)
	assert.False(t, Matches("", ""))
}

func TestHashIfChanged(t *testing.T) {
	stored, err := Hash("original")
	require.NoError(t, err)

	tests := []struct {
		name      string
		candidate string
		changed   bool
	}{
		{name: "empty keeps stored hash", candidate: "", changed: false},
		{name: "echoed hash keeps stored hash", candidate: stored, changed: false},
		{name: "same plaintext is rehashed", candidate: "original", changed: true},
		{name: "new plaintext is hashed", candidate: "nuevo123", changed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := HashIfChanged(stored, tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
			if !tt.changed {
				assert.Equal(t, stored, got)
				return
			}
			assert.NotEqual(t, stored, got)
			assert.True(t, Matches(got, tt.candidate))
		})
	}
}

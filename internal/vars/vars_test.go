package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVariable(t *testing.T) {
	tests := []struct {
		name string
		tok  any
		want bool
	}{
		{"non-nullable", "?x", true},
		{"nullable", "!x", true},
		{"ungrounding", "!!x", true},
		{"ignored", "_", true},
		{"bare string constant", "x", false},
		{"int constant", 7, false},
		{"float constant", 1.5, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVariable(tt.tok))
		})
	}
}

func TestNullability(t *testing.T) {
	assert.True(t, IsNonNullable("?x"))
	assert.False(t, IsNonNullable("!x"))
	assert.True(t, IsNullable("!x"))
	assert.True(t, IsNullable("!!x"))
	assert.False(t, IsNullable("?x"))
	assert.True(t, IsUngrounding("!!x"))
	assert.False(t, IsUngrounding("!x"))
}

func TestGeneratedNamesAreNullable(t *testing.T) {
	name := NewName(UUIDGenerator{})
	assert.True(t, IsVariable(name))
	assert.True(t, IsNullable(name))
	assert.False(t, IsNonNullable(name))
	assert.True(t, IsGenerated(name))
}

func TestGround(t *testing.T) {
	assert.True(t, Ground([]string{"?a", "?b"}))
	assert.True(t, Ground(nil))
	assert.False(t, Ground([]string{"?a", "!b"}))
	assert.False(t, Ground([]string{"!!a"}))
	assert.False(t, Ground([]string{"?a", NewName(UUIDGenerator{})}))
}

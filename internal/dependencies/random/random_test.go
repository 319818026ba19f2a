package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringUsesAlphabet(t *testing.T) {
	const alphabet = "AB23"
	r := New()

	for range 50 {
		s := r.String(6, alphabet)
		assert.Len(t, s, 6)
		for _, ch := range s {
			assert.True(t, strings.ContainsRune(alphabet, ch), "unexpected %q in %q", ch, s)
		}
	}
}

func TestStringDegenerateInputs(t *testing.T) {
	r := New()
	assert.Empty(t, r.String(0, "ABC"))
	assert.Empty(t, r.String(4, ""))
	assert.Equal(t, "ZZZ", r.String(3, "Z"))
}

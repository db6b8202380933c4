package random

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func TestLetters(t *testing.T) {
	tests := []struct {
		name   string
		length uint
	}{
		{
			name:   "zero length",
			length: 0,
		},
		{
			name:   "32 length",
			length: 32,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Letters(tt.length)
			require.NoError(t, err)
			require.Len(t, got, int(tt.length))
			for _, r := range got {
				require.True(t, unicode.IsLetter(r), "unexpected rune %q", r)
			}
		})
	}
}

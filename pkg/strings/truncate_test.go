package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "short", input: "Europe 3x", width: 20, want: "Europe 3x"},
		{name: "exact", input: "hello", width: 5, want: "hello"},
		{name: "cut", input: "New tribes arrive in spring", width: 15, want: "New tribes a..."},
		{name: "flattened", input: "Patch\n\nnotes\t1.2", width: 30, want: "Patch notes 1.2"},
		{name: "runes", input: "Čeština je krásná", width: 8, want: "Češti..."},
		{name: "tiny width", input: "abcdefgh", width: 1, want: "a..."},
		{name: "empty", input: "", width: 10, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.width))
		})
	}
}

package title

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Matrix", "matrix"},
		{"Léon: The Professional", "leon professional"},
		{"Spider-Man: No Way Home", "spider man no way home"},
		{"Mr. Robot", "mr robot"},
		{"Fast & Furious", "fast and furious"},
		{"A Beautiful Mind", "beautiful mind"},
		{"An American Tail", "american tail"},
		{"Ocean's Eleven", "oceans eleven"},
		{"  spaced   out  ", "spaced out"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in), "Clean(%q)", tt.in)
	}
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "fast and furious", NormalizeQuery("fast & furious"))
	assert.Equal(t, "The Matrix", NormalizeQuery("  The   Matrix "))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRecognisedFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"docs/intro.md", true},
		{"docs/page.mdx", true},
		{"notes.txt", true},
		{"data/config.json", true},
		{"README.MD", true},
		{"image.png", false},
		{"main.go", false},
		{"noext", false},
		{"archive.md.gz", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRecognisedFile(tt.path))
		})
	}
}

package index_test

import (
	"testing"

	"github.com/contentgrid/content-search/internal/index"
	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "lowercases and splits on whitespace",
			input:    "This is the first TEST",
			expected: []string{"this", "is", "the", "first", "test"},
		},
		{
			name:     "splits on punctuation",
			input:    "another.txt, a test-file",
			expected: []string{"another", "txt", "a", "test", "file"},
		},
		{
			name:     "deduplicates preserving first occurrence",
			input:    "test Test TEST file",
			expected: []string{"test", "file"},
		},
		{
			name:     "keeps digits",
			input:    "user1 file2",
			expected: []string{"user1", "file2"},
		},
		{
			name:     "empty input yields no terms",
			input:    "",
			expected: []string{},
		},
		{
			name:     "punctuation only yields no terms",
			input:    "... !!! ---",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, index.Tokenize(tt.input))
		})
	}
}

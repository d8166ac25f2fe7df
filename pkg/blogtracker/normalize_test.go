package blogtracker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

func TestNormalizeCategoryName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Tech", "tech"},
		{"trims whitespace", "  Tech  ", "tech"},
		{"trims and lowercases", " READING List ", "reading list"},
		{"blank collapses to empty", "   ", ""},
		{"interior spacing preserved", "machine  learning", "machine  learning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, blogtracker.NormalizeCategoryName(tt.input))
		})
	}
}

func TestNormalizeTagName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims whitespace", "  golang  ", "golang"},
		{"case preserved", "GoLang", "GoLang"},
		{"blank collapses to empty", "\t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, blogtracker.NormalizeTagName(tt.input))
		})
	}
}

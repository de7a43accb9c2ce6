package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"aarch64", "x86_64"}, SortedUnique([]string{"x86_64", " aarch64", "", "x86_64"}))
	assert.Empty(t, SortedUnique(nil))
}

func TestToSetAndContains(t *testing.T) {
	set := ToSet([]string{"a", "b"})
	assert.Len(t, set, 2)
	assert.Contains(t, set, "a")
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains(nil, "b"))
}

func TestTrimDebugSuffix(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		ok       bool
	}{
		{"zlib-debug", "zlib", true},
		{"zlib", "zlib", false},
		{"-debug", "-debug", false},
	}
	for _, tt := range tests {
		got, ok := TrimDebugSuffix(tt.name, "-debug")
		assert.Equal(t, tt.expected, got, tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Empty(t, SplitList(""))
}

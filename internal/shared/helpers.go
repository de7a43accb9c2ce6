// Package shared provides common utility functions used across multiple
// packages in the repolint codebase.
package shared

import (
	"sort"
	"strings"
)

// SortedUnique returns the distinct non-empty values in sorted order.
func SortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

// ToSet builds a membership set from values.
func ToSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		out[value] = struct{}{}
	}
	return out
}

// Contains reports whether want is one of values.
func Contains(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}

// TrimDebugSuffix strips suffix from name. The second result is false
// when name does not carry it.
func TrimDebugSuffix(name string, suffix string) (string, bool) {
	if !strings.HasSuffix(name, suffix) || len(name) == len(suffix) {
		return name, false
	}
	return strings.TrimSuffix(name, suffix), true
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

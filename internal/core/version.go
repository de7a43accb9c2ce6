package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"repolint/internal/types"
)

// ParseVersion splits a version string of the form
// [epoch:]segment[-release]. The epoch is taken up to the first colon
// and defaults to "0"; the release follows the last dash.
func ParseVersion(value string) (types.Version, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return types.Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty version")
	}
	v := types.Version{Epoch: "0"}
	if idx := strings.Index(raw, ":"); idx >= 0 {
		if idx > 0 {
			v.Epoch = raw[:idx]
		}
		raw = raw[idx+1:]
	}
	if idx := strings.LastIndex(raw, "-"); idx >= 0 {
		v.Release = raw[idx+1:]
		raw = raw[:idx]
	}
	if raw == "" {
		return types.Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("version without segment: %s", value))
	}
	v.Segment = raw
	return v, nil
}

// MustParseVersion is ParseVersion for values that were already
// validated; a failure means the caller broke an invariant.
func MustParseVersion(value string) types.Version {
	v, err := ParseVersion(value)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseForeignVersion wraps an upstream version string that carries no
// distro packaging syntax.
func ParseForeignVersion(value string) types.Version {
	return types.Version{Segment: strings.TrimSpace(value), Foreign: true}
}

// CompareVersions returns -1, 0 or 1. Epochs are compared first, then
// segments, then releases. A missing release sorts below any present
// one. When either side is foreign only the segments are compared.
func CompareVersions(a types.Version, b types.Version) int {
	if a.Foreign || b.Foreign {
		return compareSegment(a.Segment, b.Segment)
	}
	if c := compareOptional(a.Epoch, b.Epoch); c != 0 {
		return c
	}
	if c := compareSegment(a.Segment, b.Segment); c != 0 {
		return c
	}
	return compareOptional(a.Release, b.Release)
}

// VersionLess is a sort helper.
func VersionLess(a types.Version, b types.Version) bool {
	return CompareVersions(a, b) < 0
}

// SortVersions orders versions ascending in place.
func SortVersions(versions []types.Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return VersionLess(versions[i], versions[j])
	})
}

func compareOptional(a string, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	default:
		return compareSegment(a, b)
	}
}

// compareSegment walks both strings run by run. Digit runs compare as
// integers, letter runs byte-wise. A numeric run beats a letter run.
// When one side has runs left over it is newer, unless the leftover
// starts with a letter (1.0alpha < 1.0).
func compareSegment(a string, b string) int {
	if a == b {
		return 0
	}
	i, j := 0, 0
	for {
		for i < len(a) && !isAlnum(a[i]) {
			i++
		}
		for j < len(b) && !isAlnum(b[j]) {
			j++
		}
		if i >= len(a) || j >= len(b) {
			break
		}
		numeric := isDigit(a[i])
		runA, nextI := takeRun(a, i, numeric)
		runB, nextJ := takeRun(b, j, numeric)
		if runB == "" {
			if numeric {
				return 1
			}
			return -1
		}
		var c int
		if numeric {
			c = compareNumeric(runA, runB)
		} else {
			c = strings.Compare(runA, runB)
		}
		if c != 0 {
			return sign(c)
		}
		i, j = nextI, nextJ
	}
	restA := i < len(a)
	restB := j < len(b)
	switch {
	case !restA && !restB:
		return 0
	case restA:
		if isAlpha(a[i]) {
			return -1
		}
		return 1
	default:
		if isAlpha(b[j]) {
			return 1
		}
		return -1
	}
}

func takeRun(s string, start int, numeric bool) (string, int) {
	end := start
	for end < len(s) {
		if numeric && !isDigit(s[end]) {
			break
		}
		if !numeric && !isAlpha(s[end]) {
			break
		}
		end++
	}
	return s[start:end], end
}

func compareNumeric(a string, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func sign(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	default:
		return 0
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isDigit(c) || isAlpha(c)
}

package types

import "strings"

// Version is a distro version of the form [epoch:]segment[-release].
// Release is empty when absent. Foreign versions come from upstream
// sources and only carry a segment.
type Version struct {
	Epoch   string
	Segment string
	Release string
	Foreign bool
}

func (v Version) String() string {
	if v.Foreign {
		return v.Segment
	}
	var b strings.Builder
	if v.Epoch != "" && v.Epoch != "0" {
		b.WriteString(v.Epoch)
		b.WriteByte(':')
	}
	b.WriteString(v.Segment)
	if v.Release != "" {
		b.WriteByte('-')
		b.WriteString(v.Release)
	}
	return b.String()
}

// IsZero reports whether the version was never set.
func (v Version) IsZero() bool {
	return v.Segment == ""
}

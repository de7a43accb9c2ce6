package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repolint/internal/types"
)

func TestParseDepSpec(t *testing.T) {
	tests := []struct {
		raw     string
		op      types.ConstraintOp
		name    string
		version string
	}{
		{"libfoo=1.2.3", types.ConstraintOpEq, "libfoo", "1.2.3"},
		{"libfoo==1.2.3", types.ConstraintOpEq2, "libfoo", "1.2.3"},
		{"libfoo>=1.2.3", types.ConstraintOpGte, "libfoo", "1.2.3"},
		{"libfoo<=1.2.3", types.ConstraintOpLte, "libfoo", "1.2.3"},
		{"libfoo>1.2.3", types.ConstraintOpGt, "libfoo", "1.2.3"},
		{"libfoo<1.2.3", types.ConstraintOpLt, "libfoo", "1.2.3"},
		{"libfoo>=1:2.0-1", types.ConstraintOpGte, "libfoo", "1:2.0-1"},
		{" libfoo ", types.ConstraintOpNone, "libfoo", ""},
		{"sh", types.ConstraintOpNone, "sh", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			spec, err := ParseDepSpec(tt.raw)
			require.NoError(t, err)
			want := types.Constraint{Name: tt.name, Op: tt.op, Version: tt.version}
			if diff := cmp.Diff(want, spec); diff != "" {
				t.Fatalf("unexpected spec (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDepSpecInvalid(t *testing.T) {
	for _, raw := range []string{"", ">=1.0", "libfoo>=", "  "} {
		_, err := ParseDepSpec(raw)
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestStripVersion(t *testing.T) {
	assert.Equal(t, "libfoo", StripVersion("libfoo>=1.0"))
	assert.Equal(t, "libfoo.so", StripVersion("libfoo.so=3-64"))
	assert.Equal(t, "bare", StripVersion("bare"))
	assert.Equal(t, ">=1.0", StripVersion(" >=1.0 "))
}

func TestConstraintString(t *testing.T) {
	spec, err := ParseDepSpec("glibc>=2.38")
	require.NoError(t, err)
	assert.True(t, spec.HasVersion())
	assert.Equal(t, "glibc>=2.38", spec.String())
}

func TestSatisfiesOp(t *testing.T) {
	have := MustParseVersion("2.0-1")
	tests := []struct {
		op       types.ConstraintOp
		want     string
		expected bool
	}{
		{types.ConstraintOpEq, "2.0-1", true},
		{types.ConstraintOpEq2, "2.0-1", true},
		{types.ConstraintOpEq, "2.0", false},
		{types.ConstraintOpGte, "1.0", true},
		{types.ConstraintOpGte, "3.0", false},
		{types.ConstraintOpLte, "2.0-1", true},
		{types.ConstraintOpGt, "2.0", true},
		{types.ConstraintOpLt, "2.0-2", true},
		{types.ConstraintOpLt, "2.0", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.op)+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.expected, satisfiesOp(tt.op, have, MustParseVersion(tt.want)))
		})
	}
}

func TestSatisfiesOpUnknownOperatorPanics(t *testing.T) {
	assert.Panics(t, func() {
		satisfiesOp(types.ConstraintOp("~="), MustParseVersion("1"), MustParseVersion("1"))
	})
}

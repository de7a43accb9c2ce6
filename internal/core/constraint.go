package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"repolint/internal/types"
)

// opTokens is the ordered list of operators tried while splitting a
// dependency specifier. Two-character operators must precede their
// one-character prefixes (">=" before ">" and "=").
var opTokens = []types.ConstraintOp{
	types.ConstraintOpEq2,
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
	types.ConstraintOpEq,
}

// ParseDepSpec splits a raw "name>=version" specifier. Without an
// operator the specifier is a bare name any provider satisfies.
func ParseDepSpec(raw string) (types.Constraint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Constraint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty dependency specifier")
	}
	for _, op := range opTokens {
		if !strings.Contains(raw, string(op)) {
			continue
		}
		parts := strings.SplitN(raw, string(op), 2)
		name := strings.TrimSpace(parts[0])
		version := strings.TrimSpace(parts[1])
		if name == "" || version == "" {
			return types.Constraint{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid dependency specifier: %s", raw))
		}
		return types.Constraint{Name: name, Op: op, Version: version}, nil
	}
	return types.Constraint{Name: raw, Op: types.ConstraintOpNone}, nil
}

// StripVersion returns the bare name of a specifier. Malformed
// specifiers are returned trimmed but otherwise untouched.
func StripVersion(raw string) string {
	spec, err := ParseDepSpec(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return spec.Name
}

// satisfiesOp applies op to the comparison of have against want. An
// operator outside the known set means the operator table is broken.
func satisfiesOp(op types.ConstraintOp, have types.Version, want types.Version) bool {
	c := CompareVersions(have, want)
	switch op {
	case types.ConstraintOpEq, types.ConstraintOpEq2:
		return c == 0
	case types.ConstraintOpGte:
		return c >= 0
	case types.ConstraintOpLte:
		return c <= 0
	case types.ConstraintOpGt:
		return c > 0
	case types.ConstraintOpLt:
		return c < 0
	default:
		panic(fmt.Sprintf("unsupported constraint operator %q", op))
	}
}

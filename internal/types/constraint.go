package types

// Constraint is a parsed dependency specifier such as "glibc>=2.38".
type Constraint struct {
	Name    string
	Op      ConstraintOp
	Version string
}

// HasVersion reports whether the specifier carries a version requirement.
func (c Constraint) HasVersion() bool {
	return c.Op != ConstraintOpNone
}

func (c Constraint) String() string {
	if c.Op == ConstraintOpNone {
		return c.Name
	}
	return c.Name + string(c.Op) + c.Version
}

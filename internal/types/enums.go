package types

type EntityKind string

const (
	EntityKindRecipe     EntityKind = "recipe"
	EntityKindRepoEntry  EntityKind = "repo_entry"
	EntityKindArtifact   EntityKind = "artifact"
	EntityKindSigningKey EntityKind = "signing_key"
)

// EntityKinds lists every kind in the order the linter walks them.
var EntityKinds = []EntityKind{
	EntityKindRecipe,
	EntityKindRepoEntry,
	EntityKindArtifact,
	EntityKindSigningKey,
}

type ConstraintOp string

const (
	ConstraintOpNone ConstraintOp = ""
	ConstraintOpEq   ConstraintOp = "="
	ConstraintOpEq2  ConstraintOp = "=="
	ConstraintOpGte  ConstraintOp = ">="
	ConstraintOpLte  ConstraintOp = "<="
	ConstraintOpGt   ConstraintOp = ">"
	ConstraintOpLt   ConstraintOp = "<"
)

// ArchAny marks architecture independent recipes and packages.
const ArchAny = "any"

// DebugSuffix is appended to the names of split debug packages.
const DebugSuffix = "-debug"

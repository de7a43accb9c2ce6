package ports

import (
	"context"

	"repolint/internal/types"
)

// Rule is one lint check bound to a single entity kind. Check reports
// at most one issue per entity and must not mutate the entity graph.
type Rule interface {
	ID() string
	Header() string
	Kind() types.EntityKind
	Check(ctx context.Context, entity types.Entity) (types.CheckIssue, bool)
}

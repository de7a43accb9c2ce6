package ports

import (
	"context"

	"repolint/internal/types"
)

type RecipeSourcePort interface {
	ListRecipes(ctx context.Context, dir string, arches []string) ([]types.RecipeBlob, error)
}

type RepoDatabasePort interface {
	ReadEntries(ctx context.Context, dir string, repo string, arches []string) ([]types.EntryBlob, error)
}

type ArtifactReaderPort interface {
	ReadArtifacts(ctx context.Context, dir string, arches []string) ([]types.ArtifactBlob, error)
}

package ports

import (
	"context"

	"repolint/internal/types"
)

type KeyringPort interface {
	LoadKeys(ctx context.Context, path string) ([]*types.SigningKey, error)
}

type UpstreamVersionsPort interface {
	LoadVersions(ctx context.Context, path string) (map[string]string, error)
}

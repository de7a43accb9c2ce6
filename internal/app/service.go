package app

import (
	"os"
	"time"

	"repolint/internal/adapters"
	"repolint/internal/ports"
)

type Service struct {
	Recipes      ports.RecipeSourcePort
	Database     ports.RepoDatabasePort
	Artifacts    ports.ArtifactReaderPort
	Keyring      ports.KeyringPort
	Upstream     ports.UpstreamVersionsPort
	ReportWriter ports.ReportWriterPort
	Clock        func() time.Time
	Hostname     func() (string, error)
}

// NewService wires the filesystem adapters. workers bounds concurrent
// package file extraction; 0 picks the default.
func NewService(workers int) Service {
	return Service{
		Recipes:      adapters.NewRecipeTreeAdapter(),
		Database:     adapters.NewRepoDatabaseAdapter(),
		Artifacts:    adapters.NewPackageArchiveAdapter(adapters.NewMemoryMetadataCache(), workers),
		Keyring:      adapters.NewKeyringAdapter(),
		Upstream:     adapters.NewUpstreamVersionsFileAdapter(),
		ReportWriter: adapters.NewReportFileAdapter(),
		Clock:        time.Now,
		Hostname:     os.Hostname,
	}
}

// WithMetadataCache returns a copy of s whose artifact reader keeps
// parsed package metadata in cache.
func (s Service) WithMetadataCache(cache ports.MetadataCachePort, workers int) Service {
	s.Artifacts = adapters.NewPackageArchiveAdapter(cache, workers)
	return s
}

package app

import "repolint/internal/types"

type LoadRequest struct {
	Paths   types.RepositoryPaths
	Arches  []string
	Workers int
}

type LintRequest struct {
	Arches  []string
	Repos   []types.RepositoryPaths
	Keyring string
	// KeyExpiryDays is the warning window for key expiry; 0 reports
	// expired keys only.
	KeyExpiryDays    int
	Checks           []string
	SkipChecks       []string
	Workers          int
	UpstreamVersions string
	ReportPath       string
}

type LintResult struct {
	Report       types.LintReport
	Issues       int
	Repositories int
	ReportPath   string
}

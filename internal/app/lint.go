package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"repolint/internal/core"
	"repolint/internal/policies"
	"repolint/internal/shared"
	"repolint/internal/types"
)

// Lint loads every configured repository, runs the enabled checks over
// the non-reference ones and optionally writes the report.
func (s Service) Lint(ctx context.Context, req LintRequest) (LintResult, error) {
	arches := shared.SortedUnique(req.Arches)
	if len(arches) == 0 {
		return LintResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one architecture is required")
	}
	if len(req.Repos) == 0 {
		return LintResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one repository is required")
	}
	if err := checkRepoNames(req.Repos); err != nil {
		return LintResult{}, err
	}

	repos := make([]*types.Repository, 0, len(req.Repos))
	for _, paths := range req.Repos {
		repo, err := s.LoadRepository(ctx, LoadRequest{Paths: paths, Arches: arches, Workers: req.Workers})
		if err != nil {
			return LintResult{}, err
		}
		repos = append(repos, repo)
	}

	streams := types.EntityStreams{}
	for _, repo := range repos {
		if repo.Reference {
			continue
		}
		repoStreams := repo.Streams()
		streams.Recipes = append(streams.Recipes, repoStreams.Recipes...)
		streams.Entries = append(streams.Entries, repoStreams.Entries...)
		streams.Artifacts = append(streams.Artifacts, repoStreams.Artifacts...)
	}

	if path := strings.TrimSpace(req.Keyring); path != "" {
		keys, err := s.Keyring.LoadKeys(ctx, path)
		if err != nil {
			return LintResult{}, err
		}
		attachSignedArtifacts(keys, streams.Artifacts)
		streams.Keys = keys
	}

	upstream := map[string]string{}
	if path := strings.TrimSpace(req.UpstreamVersions); path != "" {
		versions, err := s.Upstream.LoadVersions(ctx, path)
		if err != nil {
			return LintResult{}, err
		}
		upstream = versions
	}

	env := policies.Env{
		Arches:     arches,
		Repos:      repos,
		Keys:       streams.Keys,
		KeyHorizon: time.Duration(req.KeyExpiryDays) * 24 * time.Hour,
		Upstream:   upstream,
		Clock:      s.Clock,
	}
	linter, err := core.NewLinter(policies.DefaultRules(env)...)
	if err != nil {
		return LintResult{}, err
	}
	ruleIDs, err := linter.Select(req.Checks, req.SkipChecks)
	if err != nil {
		return LintResult{}, err
	}
	results, err := linter.RunChecks(ctx, ruleIDs, streams)
	if err != nil {
		return LintResult{}, err
	}

	report := core.BuildReport(linter.Infos(), results, s.now(), s.hostname(ctx))
	result := LintResult{
		Report:       report,
		Issues:       core.IssueCount(report),
		Repositories: len(repos),
	}
	if path := strings.TrimSpace(req.ReportPath); path != "" {
		if err := s.ReportWriter.WriteReport(ctx, path, report); err != nil {
			return LintResult{}, err
		}
		result.ReportPath = path
	}
	log.Ctx(ctx).Info().
		Int("repositories", result.Repositories).
		Int("checks", len(ruleIDs)).
		Int("issues", result.Issues).
		Msg("lint finished")
	return result, nil
}

// ListChecks describes every built-in check.
func (s Service) ListChecks() ([]types.RuleInfo, error) {
	linter, err := core.NewLinter(policies.DefaultRules(policies.Env{})...)
	if err != nil {
		return nil, err
	}
	return linter.Infos(), nil
}

// attachSignedArtifacts records on each key the artifacts whose detached
// signature it issued.
func attachSignedArtifacts(keys []*types.SigningKey, artifacts []*types.Artifact) {
	signed := map[string][]string{}
	for _, artifact := range artifacts {
		if artifact.SigKeyID == "" {
			continue
		}
		id := strings.ToUpper(artifact.SigKeyID)
		signed[id] = append(signed[id], artifact.String())
	}
	for _, key := range keys {
		list := signed[strings.ToUpper(key.KeyID)]
		sort.Strings(list)
		key.Signed = list
	}
}

func checkRepoNames(repos []types.RepositoryPaths) error {
	seen := map[string]struct{}{}
	for _, repo := range repos {
		name := strings.TrimSpace(repo.Name)
		if _, ok := seen[name]; ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("repository " + name + " configured twice")
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s Service) hostname(ctx context.Context) string {
	if s.Hostname == nil {
		return ""
	}
	host, err := s.Hostname()
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("hostname unavailable")
		return ""
	}
	return host
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repolint/internal/adapters"
	"repolint/internal/app"
	"repolint/internal/core"
	"repolint/internal/types"
)

const (
	defaultKeyExpiryDays = 90
	defaultWorkers       = 4
)

type lintOptions struct {
	Arches           []string
	Repo             string
	RecipeDir        string
	PackageDir       string
	Keyring          string
	KeyExpiryDays    int
	Checks           []string
	SkipChecks       []string
	CachePath        string
	Workers          int
	UpstreamVersions string
	Report           string
	Summary          bool
	FailOnIssues     bool
}

func newLintCommand() *cobra.Command {
	opts := lintOptions{}
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check recipes, database entries and package files for consistency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLint(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Arches, "arch", nil, "Architectures to check (repeatable)")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Name of an ad-hoc repository added to the configured ones")
	cmd.Flags().StringVar(&opts.RecipeDir, "recipe-dir", "", "Recipe tree of the ad-hoc repository")
	cmd.Flags().StringVar(&opts.PackageDir, "package-dir", "", "Package tree of the ad-hoc repository")
	cmd.Flags().StringVar(&opts.Keyring, "keyring", "", "OpenPGP keyring holding the trusted packager keys")
	cmd.Flags().IntVar(&opts.KeyExpiryDays, "key-expiry-days", defaultKeyExpiryDays, "Warn about keys expiring within this many days")
	cmd.Flags().StringSliceVar(&opts.Checks, "check", nil, "Run only these checks")
	cmd.Flags().StringSliceVar(&opts.SkipChecks, "skip-check", nil, "Skip these checks")
	cmd.Flags().StringVar(&opts.CachePath, "cache-path", "", "Persistent package metadata cache file")
	cmd.Flags().IntVar(&opts.Workers, "workers", defaultWorkers, "Concurrent parse workers (0 = default)")
	cmd.Flags().StringVar(&opts.UpstreamVersions, "upstream-versions", "", "YAML map of upstream versions per pkgbase")
	cmd.Flags().StringVar(&opts.Report, "report", "", "Also write the report as YAML to this path")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "Print issue counts per check only")
	cmd.Flags().BoolVar(&opts.FailOnIssues, "fail-on-issues", false, "Exit non-zero when any issue is found")

	_ = viper.BindPFlag("arches", cmd.Flags().Lookup("arch"))
	_ = viper.BindPFlag("keyring", cmd.Flags().Lookup("keyring"))
	_ = viper.BindPFlag("key_expiry_days", cmd.Flags().Lookup("key-expiry-days"))
	_ = viper.BindPFlag("checks", cmd.Flags().Lookup("check"))
	_ = viper.BindPFlag("skip_checks", cmd.Flags().Lookup("skip-check"))
	_ = viper.BindPFlag("cache_path", cmd.Flags().Lookup("cache-path"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("upstream_versions", cmd.Flags().Lookup("upstream-versions"))
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))
	_ = viper.BindPFlag("summary", cmd.Flags().Lookup("summary"))
	_ = viper.BindPFlag("fail_on_issues", cmd.Flags().Lookup("fail-on-issues"))

	return cmd
}

func runLint(ctx context.Context, cmd *cobra.Command, opts lintOptions) error {
	repos, err := configuredRepos(opts)
	if err != nil {
		return err
	}
	workers := resolveInt(cmd, opts.Workers, "workers", "workers")

	service := newAppService(workers)
	if path := resolveString(cmd, opts.CachePath, "cache_path", "cache-path"); path != "" {
		cache, err := adapters.OpenBoltMetadataCache(path)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				log.Ctx(ctx).Warn().Err(err).Msg("failed to close metadata cache")
			}
		}()
		service = service.WithMetadataCache(cache, workers)
	}

	result, err := service.Lint(ctx, app.LintRequest{
		Arches:           resolveStrings(cmd, opts.Arches, "arches", "arch"),
		Repos:            repos,
		Keyring:          resolveString(cmd, opts.Keyring, "keyring", "keyring"),
		KeyExpiryDays:    resolveInt(cmd, opts.KeyExpiryDays, "key_expiry_days", "key-expiry-days"),
		Checks:           resolveStrings(cmd, opts.Checks, "checks", "check"),
		SkipChecks:       resolveStrings(cmd, opts.SkipChecks, "skip_checks", "skip-check"),
		Workers:          workers,
		UpstreamVersions: resolveString(cmd, opts.UpstreamVersions, "upstream_versions", "upstream-versions"),
		ReportPath:       resolveString(cmd, opts.Report, "report", "report"),
	})
	if err != nil {
		return err
	}

	if resolveBool(cmd, opts.Summary, "summary", "summary") {
		fmt.Print(core.FormatSummary(result.Report))
	} else {
		fmt.Print(core.FormatReport(result.Report))
	}
	if result.ReportPath != "" {
		fmt.Printf("wrote report: %s\n", result.ReportPath)
	}
	if result.Issues > 0 && resolveBool(cmd, opts.FailOnIssues, "fail_on_issues", "fail-on-issues") {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("lint found %d issues", result.Issues))
	}
	return nil
}

// configuredRepos reads the repos list from config and appends the
// repository described by the ad-hoc flags, if any.
func configuredRepos(opts lintOptions) ([]types.RepositoryPaths, error) {
	var repos []types.RepositoryPaths
	if err := viper.UnmarshalKey("repos", &repos); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid repos configuration").
			WithCause(err)
	}
	name := strings.TrimSpace(opts.Repo)
	if name == "" {
		if opts.RecipeDir != "" || opts.PackageDir != "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("--recipe-dir and --package-dir require --repo")
		}
		return repos, nil
	}
	return append(repos, types.RepositoryPaths{
		Name:       name,
		RecipeDir:  opts.RecipeDir,
		PackageDir: opts.PackageDir,
	}), nil
}

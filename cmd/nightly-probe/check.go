// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/fatih/color"
	"github.com/sirseerhq/nightly-probe/internal/config"
	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
	"github.com/sirseerhq/nightly-probe/internal/history"
	"github.com/sirseerhq/nightly-probe/internal/manifest"
	"github.com/sirseerhq/nightly-probe/internal/metadata"
	"github.com/sirseerhq/nightly-probe/internal/output"
	"github.com/sirseerhq/nightly-probe/pkg/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envFile is read from the working directory before configuration is loaded.
const envFile = ".env"

type checkOptions struct {
	configPath      string
	token           string
	user            string
	manifestURL     string
	repo            string
	format          string
	metadataDir     string
	timeout         time.Duration
	stopOnExhausted bool
	debug           bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "nightly-probe [commit]",
		Short: "Check whether a commit has made it into the Rust nightly",
		Long: `nightly-probe resolves the commit the current Rust nightly was built from.

Given a commit, it also walks the nightly's history on GitHub, 100 commits per
request and at most 5 requests, and reports whether the commit was found.

A GitHub token is required to search:
  - Use --token to provide it directly
  - Or set USER_TOKEN (or GITHUB_TOKEN), optionally in a .env file
USER_NAME, when set, is sent as the User-Agent.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			commit := ""
			if len(args) == 1 {
				commit = args[0]
			}
			return runCheck(cmd.Context(), cmd.Flags(), opts, commit, stdout, stderr)
		},
	}

	bindFlags(cmd.Flags(), &opts)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, opts *checkOptions) {
	fs.StringVar(&opts.configPath, "config", "", "Path to a config file (default: .nightly-probe.yaml or ~/.nightly-probe/config.yaml)")
	fs.StringVar(&opts.token, "token", "", "GitHub token (overrides USER_TOKEN and GITHUB_TOKEN)")
	fs.StringVar(&opts.user, "user", "", "User-Agent sent to GitHub (overrides USER_NAME)")
	fs.StringVar(&opts.manifestURL, "manifest-url", "", "Release manifest to read the nightly from")
	fs.StringVar(&opts.repo, "repo", "", "Repository to search, as <owner>/<name>")
	fs.StringVar(&opts.format, "format", "", "Output format: text or json")
	fs.StringVar(&opts.metadataDir, "metadata-dir", "", "Write a JSON run report to this directory")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Overall time limit for the run (default 1m)")
	fs.BoolVar(&opts.stopOnExhausted, "stop-on-exhausted", false, "Report not found as soon as the history runs out")
	fs.BoolVar(&opts.debug, "debug", false, "Log requests and search progress to stderr")
}

// applyFlags overrides cfg with the flags the user actually set.
func applyFlags(cfg *config.Config, fs *pflag.FlagSet, opts checkOptions) {
	if fs.Changed("manifest-url") {
		cfg.Manifest.URL = opts.manifestURL
	}
	if fs.Changed("repo") {
		cfg.GitHub.Repository = opts.repo
	}
	if fs.Changed("format") {
		cfg.Defaults.OutputFormat = opts.format
	}
	if fs.Changed("metadata-dir") {
		cfg.Defaults.MetadataDir = opts.metadataDir
	}
	if fs.Changed("timeout") {
		cfg.Defaults.Timeout = opts.timeout
	}
	if fs.Changed("stop-on-exhausted") {
		cfg.Search.StopOnExhausted = opts.stopOnExhausted
	}
}

func newLogger(w io.Writer, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// runCheck executes the probe
func runCheck(ctx context.Context, fs *pflag.FlagSet, opts checkOptions, commit string, stdout, stderr io.Writer) error {
	log := newLogger(stderr, opts.debug)

	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, fs, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	writer, err := output.New(cfg.Defaults.OutputFormat, stdout, stdout == os.Stdout && !color.NoColor)
	if err != nil {
		return err
	}
	defer writer.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Defaults.Timeout)
	defer cancel()

	tracker := metadata.New()
	outcome, runErr := probe(ctx, cfg, opts, commit, writer, tracker, log)

	if cfg.Defaults.MetadataDir != "" {
		params := metadata.RunParams{
			Repository:      cfg.GitHub.Repository,
			ManifestURL:     cfg.Manifest.URL,
			Commit:          commit,
			MaxAttempts:     history.MaxAttempts,
			PageSize:        history.PageSize,
			StopOnExhausted: cfg.Search.StopOnExhausted,
		}
		md := tracker.GenerateMetadata(version.Version, params, outcome, runErr)
		path, err := metadata.SaveMetadata(md, cfg.Defaults.MetadataDir)
		if err != nil {
			if runErr == nil {
				return err
			}
			log.WithError(err).Warn("could not save run metadata")
		} else {
			log.WithField("path", path).Debug("run metadata saved")
		}
	}

	return runErr
}

// probe resolves the nightly and, when commit is set, searches its history.
// It returns the run outcome for the metadata report.
func probe(ctx context.Context, cfg *config.Config, opts checkOptions, commit string, writer output.OutputWriter, tracker *metadata.Tracker, log logrus.FieldLogger) (string, error) {
	creds := cfg.Credentials(opts.token, opts.user)
	userAgent := creds.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}

	resolver := manifest.NewResolver(cfg.Manifest.URL,
		manifest.WithUserAgent(userAgent),
		manifest.WithLogger(log),
	)
	nightly, err := resolver.Resolve(ctx)
	tracker.IncrementAPICall()
	if err != nil {
		return metadata.OutcomeFailed, errors.WithMessage(err, "cannot get nightly version")
	}
	tracker.RecordManifest(nightly.Version, nightly.CommitHash)

	if err := writer.Write(output.NightlyRecord{
		Version: nightly.Version,
		Hash:    nightly.CommitHash,
		Date:    nightly.Date,
	}); err != nil {
		return metadata.OutcomeFailed, err
	}

	if commit == "" {
		return metadata.OutcomeResolved, nil
	}

	if creds.Token == "" {
		return metadata.OutcomeFailed, errors.Wrapf(relaierrors.ErrInvalidArgument,
			"check commit failed: GitHub token not found, set %s or %s or use --token",
			cfg.GitHub.TokenEnv, config.FallbackTokenEnv)
	}

	repo, err := cfg.Repository()
	if err != nil {
		return metadata.OutcomeFailed, err
	}

	searcher, err := history.New(history.Config{
		Endpoint:               cfg.GitHub.GraphQLEndpoint,
		Repository:             repo,
		Credentials:            creds,
		StopOnExhaustedHistory: cfg.Search.StopOnExhausted,
	},
		history.WithLogger(log),
		history.WithPageObserver(tracker.RecordPage),
	)
	if err != nil {
		return metadata.OutcomeFailed, errors.WithMessage(err, "check commit failed")
	}

	result, err := searcher.Search(ctx, nightly.CommitHash, commit)
	if err != nil {
		return metadata.OutcomeFailed, errors.WithMessage(err, "check commit failed")
	}

	if err := writer.Write(output.SearchRecord{
		Commit:         commit,
		Root:           result.Root,
		Found:          result.Outcome == history.Found,
		Pages:          result.Attempts,
		CommitsScanned: result.CommitsScanned,
		MatchedPage:    result.MatchedPage,
	}); err != nil {
		return metadata.OutcomeFailed, err
	}

	if result.Outcome == history.Found {
		return metadata.OutcomeFound, nil
	}
	return metadata.OutcomeNotFound, nil
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, relaierrors.ErrAuth) ||
		errors.Is(err, relaierrors.ErrRepoNotFound) ||
		errors.Is(err, relaierrors.ErrRateLimit) {
		return 2 // GitHub refused the request
	}

	if errors.Is(err, relaierrors.ErrTransport) ||
		errors.Is(err, relaierrors.ErrFetch) {
		return 3 // Network errors
	}

	if errors.Is(err, relaierrors.ErrInvalidResponse) ||
		errors.Is(err, relaierrors.ErrParse) {
		return 4 // Unusable data
	}

	return 1 // General error
}

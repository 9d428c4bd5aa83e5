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

package history

import (
	"context"
	"slices"

	"emperror.dev/errors"
	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
	"github.com/sirseerhq/nightly-probe/internal/github"
	"github.com/sirupsen/logrus"
)

const (
	// MaxAttempts is the number of history pages a search may fetch.
	MaxAttempts = 5

	// PageSize is the number of commits requested per page.
	PageSize = github.MaxPageSize
)

// Outcome is the verdict of a completed search.
type Outcome int

const (
	// NotFound means the target was not seen within the pages fetched.
	NotFound Outcome = iota
	// Found means the target appeared on one of the pages.
	Found
)

func (o Outcome) String() string {
	if o == Found {
		return "found"
	}
	return "not found"
}

// Result describes a completed search.
type Result struct {
	Outcome Outcome
	Root    string
	Target  string

	// Attempts is the number of pages fetched.
	Attempts int

	// CommitsScanned counts the commit IDs compared against the target.
	CommitsScanned int

	// MatchedPage is the 1-indexed page holding the target, 0 if not found.
	MatchedPage int

	// LastCursor is the end cursor of the last page fetched.
	LastCursor string
}

// Config holds everything a Searcher needs to talk to GitHub. Nothing is read
// from the environment.
type Config struct {
	// Endpoint is the GraphQL URL. Empty uses github.DefaultGraphQLEndpoint.
	Endpoint string

	// Repository to search. The zero value uses github.DefaultRepository.
	Repository github.Repository

	// Credentials authenticate every page request. A token is required.
	Credentials github.Credentials

	// StopOnExhaustedHistory ends the search early with NotFound once GitHub
	// reports no further pages or hands back the cursor it was given.
	StopOnExhaustedHistory bool
}

// PageObserver is called after every page fetched, with the 1-indexed page
// number.
type PageObserver func(page int, p *github.HistoryPage)

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger for search progress and GitHub queries.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Searcher) {
		s.log = log
	}
}

// WithPageObserver registers fn to be called for every page fetched.
func WithPageObserver(fn PageObserver) Option {
	return func(s *Searcher) {
		s.observer = fn
	}
}

// WithStopOnExhaustedHistory toggles the early NotFound on an exhausted
// history. See Config.StopOnExhaustedHistory.
func WithStopOnExhaustedHistory(stop bool) Option {
	return func(s *Searcher) {
		s.stopOnExhausted = stop
	}
}

// Searcher runs bounded history searches. It holds no per-search state, so
// one Searcher may serve any number of sequential searches.
type Searcher struct {
	client          github.HistoryClient
	log             logrus.FieldLogger
	observer        PageObserver
	stopOnExhausted bool
}

// New creates a Searcher backed by the GitHub GraphQL API.
func New(cfg Config, opts ...Option) (*Searcher, error) {
	if cfg.Credentials.Token == "" {
		return nil, errors.Wrap(relaierrors.ErrInvalidArgument, "a GitHub token is required to search history")
	}

	repo := cfg.Repository
	if repo == (github.Repository{}) {
		repo = github.DefaultRepository
	}

	s := newSearcher(nil, append([]Option{WithStopOnExhaustedHistory(cfg.StopOnExhaustedHistory)}, opts...))
	s.client = github.NewGraphQLClient(cfg.Endpoint, repo, cfg.Credentials, github.WithLogger(s.log))
	return s, nil
}

// NewWithClient creates a Searcher that fetches pages through client.
func NewWithClient(client github.HistoryClient, opts ...Option) *Searcher {
	return newSearcher(client, opts)
}

func newSearcher(client github.HistoryClient, opts []Option) *Searcher {
	s := &Searcher{
		client: client,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search looks for target in the history of root, newest commits first.
// Matching is exact and case-sensitive. At most MaxAttempts pages are
// fetched; any failure aborts the search with no further requests.
func (s *Searcher) Search(ctx context.Context, root, target string) (*Result, error) {
	if root == "" {
		return nil, errors.Wrap(relaierrors.ErrInvalidArgument, "root commit must not be empty")
	}
	if target == "" {
		return nil, errors.Wrap(relaierrors.ErrInvalidArgument, "target commit must not be empty")
	}

	log := s.log.WithFields(logrus.Fields{
		"root":   root,
		"target": target,
	})
	result := &Result{
		Outcome: NotFound,
		Root:    root,
		Target:  target,
	}

	cursor := ""
	for result.Attempts < MaxAttempts {
		page, err := s.client.FetchHistory(ctx, root, github.HistoryOptions{
			PageSize: PageSize,
			After:    cursor,
		})
		if err != nil {
			return nil, errors.WithMessagef(err, "history page %d of %d", result.Attempts+1, MaxAttempts)
		}

		result.Attempts++
		result.CommitsScanned += len(page.Commits)
		result.LastCursor = page.EndCursor
		if s.observer != nil {
			s.observer(result.Attempts, page)
		}

		log.WithFields(logrus.Fields{
			"page":    result.Attempts,
			"commits": len(page.Commits),
			"cursor":  page.EndCursor,
		}).Debug("scanned history page")

		if slices.Contains(page.Commits, target) {
			result.Outcome = Found
			result.MatchedPage = result.Attempts
			log.WithField("page", result.Attempts).Info("target found in history")
			return result, nil
		}

		if s.stopOnExhausted && (!page.HasNextPage || page.EndCursor == cursor) {
			log.WithField("page", result.Attempts).Debug("history exhausted, stopping early")
			break
		}
		cursor = page.EndCursor
	}

	log.WithField("pages", result.Attempts).Info("target not found in history")
	return result, nil
}

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

package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/shurcooL/githubv4"
	"github.com/shurcooL/graphql"
	relaierrors "github.com/sirseerhq/nightly-probe/internal/errors"
	"github.com/sirseerhq/nightly-probe/internal/giterror"
	"github.com/sirupsen/logrus"
)

// DefaultGraphQLEndpoint is the public GitHub GraphQL API.
const DefaultGraphQLEndpoint = "https://api.github.com/graphql"

// GraphQLClient implements the HistoryClient interface using GraphQL API.
type GraphQLClient struct {
	client    *graphql.Client
	repo      Repository
	inspector giterror.Inspector
	log       logrus.FieldLogger
}

// ClientOption configures a GraphQLClient.
type ClientOption func(*clientOptions)

type clientOptions struct {
	log  logrus.FieldLogger
	base http.RoundTripper
}

// WithLogger sets the logger used for per-query debug logging.
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(o *clientOptions) {
		o.log = log
	}
}

// WithBaseTransport replaces the pooled base transport underneath auth and
// identity handling.
func WithBaseTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.base = rt
	}
}

// NewGraphQLClient creates a history client for repo that talks to endpoint
// with the given credentials.
func NewGraphQLClient(endpoint string, repo Repository, creds Credentials, opts ...ClientOption) *GraphQLClient {
	o := clientOptions{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if endpoint == "" {
		endpoint = DefaultGraphQLEndpoint
	}

	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, newHTTPClient(creds, o.base)),
		repo:      repo,
		inspector: giterror.NewInspector(),
		log:       o.log,
	}
}

// historyQuery is the fixed shape of a history page request. Pointer fields
// stay nil when GitHub omits or nulls them, which is how a structurally
// invalid response is detected.
type historyQuery struct {
	Repository *struct {
		Object *struct {
			Commit struct {
				History *struct {
					Nodes []struct {
						OID *githubv4.GitObjectID `graphql:"oid"`
					}
					PageInfo struct {
						EndCursor   *githubv4.String
						HasNextPage *githubv4.Boolean
					}
				} `graphql:"history(first: $first, after: $after)"`
			} `graphql:"... on Commit"`
		} `graphql:"object(expression: $expression)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// FetchHistory fetches one page of the ancestor history of root.
func (c *GraphQLClient) FetchHistory(ctx context.Context, root string, opts HistoryOptions) (*HistoryPage, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	variables := map[string]interface{}{
		"owner":      githubv4.String(c.repo.Owner),
		"name":       githubv4.String(c.repo.Name),
		"expression": githubv4.String(root),
		"first":      githubv4.Int(int32(pageSize)), // #nosec G115 - pageSize is capped at 100
		"after":      (*githubv4.String)(nil),
	}
	if opts.After != "" {
		variables["after"] = githubv4.NewString(githubv4.String(opts.After))
	}

	var query historyQuery
	if err := c.query(ctx, &query, variables, root, opts.After); err != nil {
		return nil, c.mapError(err)
	}

	return query.page()
}

func (c *GraphQLClient) query(ctx context.Context, q *historyQuery, variables map[string]interface{}, root, after string) (reterr error) {
	log := c.log.WithFields(logrus.Fields{
		"repository": c.repo.String(),
		"root":       root,
		"after":      after,
	})
	log.Debug("executing GitHub history query...")
	startTime := time.Now()
	defer func() {
		log := log.WithField("elapsed", time.Since(startTime))
		if reterr != nil {
			log.WithError(reterr).Debug("GitHub history query failed")
		} else {
			log.Debug("GitHub history query succeeded")
		}
	}()
	return c.client.Query(ctx, q, variables)
}

// page converts the decoded response into a HistoryPage, rejecting any
// response that lacks a piece of the expected structure.
func (q *historyQuery) page() (*HistoryPage, error) {
	if q.Repository == nil {
		return nil, errors.Wrap(relaierrors.ErrInvalidResponse, "response has no repository")
	}
	if q.Repository.Object == nil {
		return nil, errors.Wrap(relaierrors.ErrInvalidResponse, "response has no object for the root commit")
	}

	history := q.Repository.Object.Commit.History
	if history == nil {
		return nil, errors.Wrap(relaierrors.ErrInvalidResponse, "response has no commit history")
	}
	if history.Nodes == nil {
		return nil, errors.Wrap(relaierrors.ErrInvalidResponse, "response has no history.nodes")
	}
	if history.PageInfo.EndCursor == nil {
		return nil, errors.Wrap(relaierrors.ErrInvalidResponse, "response has no pageInfo.endCursor")
	}

	page := &HistoryPage{
		Commits:     make([]string, 0, len(history.Nodes)),
		EndCursor:   string(*history.PageInfo.EndCursor),
		HasNextPage: history.PageInfo.HasNextPage == nil || bool(*history.PageInfo.HasNextPage),
	}
	for i, node := range history.Nodes {
		if node.OID == nil || *node.OID == "" {
			return nil, errors.Wrapf(relaierrors.ErrInvalidResponse, "history.nodes[%d] has no oid", i)
		}
		page.Commits = append(page.Commits, string(*node.OID))
	}

	return page, nil
}

// mapError maps GraphQL errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(err error) error {
	if err == nil {
		return nil
	}

	// Check rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return errors.WithStack(fmt.Errorf("GitHub API rate limit exceeded, wait before retrying: %w: %w", relaierrors.ErrRateLimit, err))
	}

	if c.inspector.IsAuthError(err) {
		return errors.WithStack(fmt.Errorf("GitHub rejected the token, set USER_TOKEN or use --token: %w: %w", relaierrors.ErrAuth, err))
	}

	if c.inspector.IsNotFoundError(err) {
		return errors.WithStack(fmt.Errorf("repository %s not found or not accessible: %w: %w", c.repo, relaierrors.ErrRepoNotFound, err))
	}

	if c.inspector.IsNetworkError(err) {
		return errors.WithStack(fmt.Errorf("could not reach the GitHub API: %w: %w", relaierrors.ErrTransport, err))
	}

	// Whatever is left came back as a body we could not use.
	return errors.WithStack(fmt.Errorf("unusable response from the GitHub API: %w: %w", relaierrors.ErrInvalidResponse, err))
}

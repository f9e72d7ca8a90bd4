// Package github provides a minimal client for querying GitHub pull
// request state, used to detect squash-merged branches that local git
// cannot see as merged.
package github

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
)

// Client wraps GitHub API access.
type Client struct {
	rest *api.RESTClient
}

// NewClient creates a GitHub client. It attempts to use authentication from
// the gh CLI config, falling back to the provided token, falling back to
// unauthenticated access.
func NewClient(token string) *Client {
	c := &Client{}

	rest, err := api.DefaultRESTClient()
	if err == nil {
		slog.Debug("using gh CLI authentication")
		c.rest = rest
		return c
	}
	slog.Debug("gh CLI auth not available", "error", err)

	if token != "" {
		rest, err = api.NewRESTClient(api.ClientOptions{AuthToken: token})
		if err == nil {
			slog.Debug("using explicit token authentication")
			c.rest = rest
			return c
		}
		slog.Debug("token auth failed", "error", err)
	}

	// Unauthenticated -- will hit rate limits quickly.
	rest, err = api.NewRESTClient(api.ClientOptions{})
	if err != nil {
		slog.Warn("could not create REST client", "error", err)
		return c
	}
	c.rest = rest
	return c
}

// PRState represents the state of a GitHub pull request for a branch.
type PRState string

const (
	// PRStateNone means no PR was found for the branch.
	PRStateNone PRState = "none"
	// PRStateOpen means a PR is currently open.
	PRStateOpen PRState = "open"
	// PRStateMerged means the PR was merged.
	PRStateMerged PRState = "merged"
	// PRStateClosed means the PR was closed without merging.
	PRStateClosed PRState = "closed"
)

// prResponse holds the fields we care about from the pulls API.
type prResponse struct {
	State    string `json:"state"`
	MergedAt string `json:"merged_at"`
}

// BranchPRState returns the PR state for a branch, checking the most
// recently updated PR with the branch as head. Returns PRStateNone when no
// PR exists.
func (c *Client) BranchPRState(owner, repo, branch string) (PRState, error) {
	if c.rest == nil {
		return PRStateNone, fmt.Errorf("no GitHub API client available")
	}

	var prs []prResponse
	err := c.rest.Get(
		fmt.Sprintf("repos/%s/%s/pulls?head=%s:%s&state=all&per_page=1&sort=updated&direction=desc",
			owner, repo, owner, branch),
		&prs,
	)
	if err != nil {
		return PRStateNone, fmt.Errorf("querying PRs for %s/%s branch %s: %w", owner, repo, branch, err)
	}
	if len(prs) == 0 {
		return PRStateNone, nil
	}

	pr := prs[0]
	switch {
	case pr.MergedAt != "":
		return PRStateMerged, nil
	case pr.State == "open":
		return PRStateOpen, nil
	default:
		return PRStateClosed, nil
	}
}

var remotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^git@github\.com:([^/]+)/(.+?)(?:\.git)?$`),
	regexp.MustCompile(`^https?://github\.com/([^/]+)/(.+?)(?:\.git)?/?$`),
	regexp.MustCompile(`^ssh://git@github\.com/([^/]+)/(.+?)(?:\.git)?$`),
}

// ParseGitHubRemote extracts owner and repo from a GitHub remote URL.
// Returns ok=false for non-GitHub remotes.
func ParseGitHubRemote(url string) (owner, repo string, ok bool) {
	url = strings.TrimSpace(url)
	for _, p := range remotePatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

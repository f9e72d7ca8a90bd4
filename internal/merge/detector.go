// Package merge provides hybrid merged-ness detection that combines the
// local git ancestry check with GitHub PR state. This catches squash-merges
// and rebase-merges that leave the local branch looking unmerged.
package merge

import (
	"log/slog"

	"github.com/hskuroda/teire/internal/github"
)

// GitChecker defines the git operations needed for merge detection.
// RemoteURL is included because the detector needs it to determine the
// GitHub owner/repo for the API fallback.
type GitChecker interface {
	IsAncestor(repoPath, ancestor, descendant string) bool
	RemoteURL(repoPath, remote string) (string, error)
}

// PRChecker defines the GitHub API operation needed for merge detection.
type PRChecker interface {
	BranchPRState(owner, repo, branch string) (github.PRState, error)
}

// Detector answers "has this branch been merged into trunk". When no
// PRChecker is provided it operates in git-only mode.
type Detector struct {
	git    GitChecker
	pr     PRChecker
	remote string
}

// NewDetector creates a Detector. If pr is nil, only local ancestry is
// checked. API errors degrade gracefully to the git-only result.
func NewDetector(git GitChecker, pr PRChecker, remote string) *Detector {
	return &Detector{git: git, pr: pr, remote: remote}
}

// Check reports whether branch is merged into trunk. viaAPI is true when
// the branch only looks merged through GitHub PR state; such branches need
// a forced local delete because git does not consider them merged.
func (d *Detector) Check(repoPath, branch, trunk string) (merged, viaAPI bool) {
	if d.git.IsAncestor(repoPath, branch, trunk) {
		return true, false
	}
	if d.pr == nil {
		return false, false
	}

	owner, repo, ok := d.resolveGitHubRepo(repoPath)
	if !ok {
		return false, false
	}

	state, err := d.pr.BranchPRState(owner, repo, branch)
	if err != nil {
		slog.Debug("PR check failed, assuming not merged",
			"repo", owner+"/"+repo, "branch", branch, "error", err)
		return false, false
	}
	if state == github.PRStateMerged {
		return true, true
	}
	return false, false
}

// resolveGitHubRepo parses the remote URL into a GitHub owner/repo pair.
// Returns ok=false for non-GitHub remotes or when the remote is missing.
func (d *Detector) resolveGitHubRepo(repoPath string) (owner, repo string, ok bool) {
	url, err := d.git.RemoteURL(repoPath, d.remote)
	if err != nil {
		slog.Debug("could not get remote URL, skipping PR check",
			"repo", repoPath, "error", err)
		return "", "", false
	}
	owner, repo, ok = github.ParseGitHubRemote(url)
	if !ok {
		slog.Debug("non-GitHub remote, skipping PR check",
			"repo", repoPath, "url", url)
	}
	return owner, repo, ok
}

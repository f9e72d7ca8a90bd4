package merge

import "github.com/hskuroda/teire/pkg/git"

// RealGitChecker implements GitChecker using the pkg/git package.
type RealGitChecker struct{}

// IsAncestor returns true if ancestor is reachable from descendant.
func (RealGitChecker) IsAncestor(repoPath, ancestor, descendant string) bool {
	return git.IsAncestor(repoPath, ancestor, descendant)
}

// RemoteURL returns the fetch URL of the given remote.
func (RealGitChecker) RemoteURL(repoPath, remote string) (string, error) {
	return git.RemoteURL(repoPath, remote)
}

// GitOnlyDetector returns a Detector without any GitHub API fallback.
// Intended for tests and environments without GitHub access.
func GitOnlyDetector(remote string) *Detector {
	return NewDetector(RealGitChecker{}, nil, remote)
}

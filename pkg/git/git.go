// Package git provides functions for interacting with git repositories
// by shelling out to the git CLI.
package git

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// run executes a git command in the given directory and returns its output.
func run(repoPath string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = repoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out)), nil
}

// RepoRoot returns the top-level directory of the working tree containing path.
func RepoRoot(path string) (string, error) {
	return run(path, "rev-parse", "--show-toplevel")
}

// CurrentBranch returns the name of the currently checked-out branch.
// The result is empty for a detached HEAD.
func CurrentBranch(repoPath string) (string, error) {
	return run(repoPath, "branch", "--show-current")
}

// Identity holds the configured git user identity.
type Identity struct {
	Name  string
	Email string
}

// UserIdentity returns the configured user.name and user.email. An error is
// returned when user.name is not configured, since branch classification
// cannot compare authors without it.
func UserIdentity(repoPath string) (Identity, error) {
	name, err := run(repoPath, "config", "user.name")
	if err != nil || name == "" {
		return Identity{}, fmt.Errorf("git user.name is not configured")
	}
	// Email is informational only; a missing value is tolerated.
	email, _ := run(repoPath, "config", "user.email")
	return Identity{Name: name, Email: email}, nil
}

// TrunkBranch returns the repository's trunk branch name. It consults the
// origin HEAD symref first and falls back to the first candidate that exists
// locally.
func TrunkBranch(repoPath string, candidates []string) (string, error) {
	out, err := run(repoPath, "symbolic-ref", "refs/remotes/origin/HEAD", "--short")
	if err == nil {
		parts := strings.SplitN(out, "/", 2)
		if len(parts) == 2 {
			return parts[1], nil
		}
		return out, nil
	}

	branches, err := ListBranches(repoPath)
	if err != nil {
		return "", err
	}
	existing := make(map[string]bool, len(branches))
	for _, b := range branches {
		existing[b] = true
	}
	for _, c := range candidates {
		if existing[c] {
			return c, nil
		}
	}
	return "", fmt.Errorf("could not determine trunk branch for %s", repoPath)
}

// ListBranches returns all local branch names.
func ListBranches(repoPath string) ([]string, error) {
	out, err := run(repoPath, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitNonEmpty(out), nil
}

// BranchMeta holds the metadata git reports for a single local branch head.
type BranchMeta struct {
	Name       string
	Hash       string
	Author     string
	CommitDate time.Time
	Subject    string
}

// branchFormat asks for-each-ref for tab-separated fields in one call.
// Tabs cannot appear in ref names or hashes; a subject containing a tab is
// absorbed into the final field.
const branchFormat = "%(refname:short)%09%(objectname)%09%(authorname)%09%(committerdate:iso-strict)%09%(subject)"

// ListBranchMeta enumerates local branches with commit metadata, sorted by
// committer date ascending. Branches whose metadata cannot be parsed (e.g.
// an unborn branch with no commits) are skipped.
func ListBranchMeta(repoPath string) ([]BranchMeta, error) {
	out, err := run(repoPath, "for-each-ref", "refs/heads",
		"--sort=committerdate", "--format="+branchFormat)
	if err != nil {
		return nil, err
	}

	var metas []BranchMeta
	for _, line := range splitNonEmpty(out) {
		fields := strings.SplitN(line, "\t", 5)
		if len(fields) < 5 {
			continue
		}
		date, err := time.Parse(time.RFC3339, fields[3])
		if err != nil {
			continue
		}
		metas = append(metas, BranchMeta{
			Name:       fields[0],
			Hash:       fields[1],
			Author:     fields[2],
			CommitDate: date,
			Subject:    fields[4],
		})
	}
	return metas, nil
}

// IsAncestor returns true if ancestor is reachable from descendant. Any
// failure, including an unknown ref on either side, is reported as false so
// callers can treat it as "predicate does not hold".
func IsAncestor(repoPath, ancestor, descendant string) bool {
	cmd := exec.Command("git", "-C", repoPath, "merge-base", "--is-ancestor", ancestor, descendant)
	return cmd.Run() == nil
}

// ResolveCommit resolves a ref to its full commit hash.
func ResolveCommit(repoPath, ref string) (string, error) {
	return run(repoPath, "rev-parse", "--verify", ref+"^{commit}")
}

// BranchExists returns true if a local branch of the given name exists.
func BranchExists(repoPath, branch string) bool {
	_, err := ResolveCommit(repoPath, "refs/heads/"+branch)
	return err == nil
}

// HasRemoteBranch returns true if the remote-tracking ref for branch exists.
func HasRemoteBranch(repoPath, remote, branch string) bool {
	_, err := ResolveCommit(repoPath, "refs/remotes/"+remote+"/"+branch)
	return err == nil
}

// RemoteBranchTip returns the commit hash of the remote-tracking ref for
// branch, or an error if the ref does not exist.
func RemoteBranchTip(repoPath, remote, branch string) (string, error) {
	return ResolveCommit(repoPath, "refs/remotes/"+remote+"/"+branch)
}

// RemoteURL returns the fetch URL of the given remote (usually "origin").
func RemoteURL(repoPath, remote string) (string, error) {
	return run(repoPath, "remote", "get-url", remote)
}

// HasRemote returns true if the given remote exists.
func HasRemote(repoPath, remote string) bool {
	_, err := run(repoPath, "remote", "get-url", remote)
	return err == nil
}

// Fetch fetches from the given remote.
func Fetch(repoPath, remote string) error {
	_, err := run(repoPath, "fetch", remote)
	return err
}

// DeleteLocalBranch deletes a local branch. If force is true, uses -D instead of -d.
func DeleteLocalBranch(repoPath, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := run(repoPath, "branch", flag, branch)
	return err
}

// DeleteRemoteBranch deletes a branch on the given remote.
func DeleteRemoteBranch(repoPath, remote, branch string) error {
	_, err := run(repoPath, "push", remote, "--delete", branch)
	return err
}

// CommitAuthor returns the author name of the latest commit on the given ref.
func CommitAuthor(repoPath, ref string) (string, error) {
	return run(repoPath, "log", "-1", "--format=%an", ref)
}

// RecentAuthors returns the author names of the last n commits on the given
// ref, most recent first. Duplicates are preserved.
func RecentAuthors(repoPath, ref string, n int) ([]string, error) {
	out, err := run(repoPath, "log", "-"+strconv.Itoa(n), "--format=%an", ref)
	if err != nil {
		return nil, err
	}
	return splitNonEmpty(out), nil
}

// MergeCommitFor attempts to locate the merge commit that brought branch into
// trunk. It first greps trunk's merge subjects for the conventional
// "Merge branch '<name>'" message, then falls back to scanning merge commits
// on trunk for one whose second parent contains the branch tip. Both paths
// are heuristics; squash-merged or rebased branches may yield no result, in
// which case the empty string is returned with a nil error.
func MergeCommitFor(repoPath, branch, trunk string) (string, error) {
	out, err := run(repoPath, "log", trunk, "--merges", "-1",
		"--grep=Merge branch '"+branch+"'", "--fixed-strings", "--format=%H")
	if err == nil && out != "" {
		return out, nil
	}

	tip, err := ResolveCommit(repoPath, branch)
	if err != nil {
		return "", err
	}

	out, err = run(repoPath, "rev-list", "--merges", "--reverse", tip+".."+trunk)
	if err != nil {
		return "", err
	}
	// Oldest first, so the first merge reaching the tip through its second
	// parent is the one that merged the branch.
	for _, merge := range splitNonEmpty(out) {
		if IsAncestor(repoPath, tip, merge+"^2") {
			return merge, nil
		}
	}
	return "", nil
}

// IsClean returns true if the working tree has no uncommitted changes.
func IsClean(repoPath string) (bool, error) {
	out, err := run(repoPath, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

// splitNonEmpty splits a newline-separated string and returns non-empty lines.
func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}

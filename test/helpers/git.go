// Package helpers provides test utilities for creating git repositories and scenarios.
package helpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestRepo represents a test git repository
type TestRepo struct {
	Path string
	t    *testing.T
}

// NewTestRepo creates a new test repository in a temporary directory
func NewTestRepo(t *testing.T, name string) *TestRepo {
	t.Helper()

	tmpDir := t.TempDir()
	repoPath := filepath.Join(tmpDir, name)

	if err := os.MkdirAll(repoPath, 0750); err != nil {
		t.Fatalf("Failed to create test repo directory: %v", err)
	}

	repo := &TestRepo{
		Path: repoPath,
		t:    t,
	}

	// Initialize git repo with a deterministic default branch
	repo.run("git", "init", "-b", "main")
	repo.run("git", "config", "user.name", "Test User")
	repo.run("git", "config", "user.email", "test@example.com")

	// Create initial commit
	repo.WriteFile("README.md", "# Test Repository\n")
	repo.run("git", "add", "README.md")
	repo.CommitWithDate("Initial commit", time.Now())

	return repo
}

// WriteFile writes a file to the repository
func (r *TestRepo) WriteFile(filename, content string) {
	r.t.Helper()
	path := filepath.Join(r.Path, filename)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		r.t.Fatalf("Failed to write file %s: %v", filename, err)
	}
}

// AddFile stages a file for commit
func (r *TestRepo) AddFile(filename string) {
	r.t.Helper()
	r.run("git", "add", filename)
}

// Commit creates a commit with the current timestamp
func (r *TestRepo) Commit(message string) {
	r.t.Helper()
	r.CommitWithDate(message, time.Now())
}

// CommitWithDate creates a commit with a specific timestamp.
// Branch classification sorts by commit date, so tests need control over it.
func (r *TestRepo) CommitWithDate(message string, date time.Time) {
	r.t.Helper()
	r.commit(message, "", "", date)
}

// CommitWithAuthor creates a commit attributed to a different author, for
// exercising the authored-by-current-user filters.
func (r *TestRepo) CommitWithAuthor(message, author, email string) {
	r.t.Helper()
	r.commit(message, author, email, time.Now())
}

func (r *TestRepo) commit(message, author, email string, date time.Time) {
	r.t.Helper()
	dateStr := date.Format(time.RFC3339)
	args := []string{"commit", "--allow-empty", "-m", message, "--date", dateStr}
	if author != "" {
		args = append(args, "--author", fmt.Sprintf("%s <%s>", author, email))
	}
	// #nosec G204 - git command with controlled inputs in test code
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("GIT_AUTHOR_DATE=%s", dateStr),
		fmt.Sprintf("GIT_COMMITTER_DATE=%s", dateStr),
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("Failed to commit: %v\n%s", err, output)
	}
}

// CreateBranch creates and checks out a new branch
func (r *TestRepo) CreateBranch(name string) {
	r.t.Helper()
	r.run("git", "checkout", "-b", name)
}

// Checkout switches to a branch
func (r *TestRepo) Checkout(branch string) {
	r.t.Helper()
	r.run("git", "checkout", branch)
}

// Merge merges a branch into the current branch
func (r *TestRepo) Merge(branch string) {
	r.t.Helper()
	r.run("git", "merge", "--no-ff", branch, "-m", fmt.Sprintf("Merge branch '%s'", branch))
}

// SquashMerge applies a branch's changes as a single regular commit, leaving
// the branch looking unmerged to ancestry checks.
func (r *TestRepo) SquashMerge(branch string) {
	r.t.Helper()
	r.run("git", "merge", "--squash", branch)
	r.run("git", "commit", "-m", fmt.Sprintf("Squash branch '%s'", branch))
}

// AddBareRemote creates a bare repository in a temp directory and registers
// it as a remote, so push and remote-tracking checks work without a network.
func (r *TestRepo) AddBareRemote(name string) string {
	r.t.Helper()
	bare := filepath.Join(r.t.TempDir(), name+".git")
	cmd := exec.Command("git", "init", "--bare", bare)
	if output, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("Failed to init bare remote: %v\n%s", err, output)
	}
	r.run("git", "remote", "add", name, bare)
	return bare
}

// Push pushes to a remote
func (r *TestRepo) Push(remote, branch string) {
	r.t.Helper()
	r.run("git", "push", remote, branch)
}

// AddWorktree creates a worktree for an existing branch
func (r *TestRepo) AddWorktree(path, branch string) {
	r.t.Helper()
	r.run("git", "worktree", "add", path, branch)
}

// Head returns the commit hash a ref points to
func (r *TestRepo) Head(ref string) string {
	r.t.Helper()
	return r.output("git", "rev-parse", "--verify", ref)
}

// CurrentBranch returns the current branch name
func (r *TestRepo) CurrentBranch() string {
	r.t.Helper()
	return r.output("git", "branch", "--show-current")
}

// Branches returns a list of all branch names
func (r *TestRepo) Branches() []string {
	r.t.Helper()
	out := r.output("git", "branch", "--format=%(refname:short)")
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			branches = append(branches, line)
		}
	}
	return branches
}

// run executes a git command in the repository
func (r *TestRepo) run(args ...string) {
	r.t.Helper()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = r.Path
	if output, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("Command failed: %v\n%s", args, output)
	}
}

// output executes a command in the repository and returns trimmed stdout
func (r *TestRepo) output(args ...string) string {
	r.t.Helper()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = r.Path
	out, err := cmd.Output()
	if err != nil {
		r.t.Fatalf("Command failed: %v: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

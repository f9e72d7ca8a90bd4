package git

import "strings"

// Worktree holds the metadata git reports for a single worktree entry.
type Worktree struct {
	Path string
	// Branch is the short branch name, empty for a detached HEAD.
	Branch     string
	Head       string
	Bare       bool
	Detached   bool
	Locked     bool
	LockReason string
}

// ListWorktrees returns all worktrees of the repository, parsed from
// `git worktree list --porcelain`.
func ListWorktrees(repoPath string) ([]Worktree, error) {
	out, err := run(repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(out), nil
}

// parseWorktreeList parses porcelain output. Entries are blocks of
// "key value" lines separated by blank lines; "bare", "detached" and
// "locked" appear as bare markers, "locked" optionally carrying a reason.
func parseWorktreeList(out string) []Worktree {
	var worktrees []Worktree
	var current *Worktree

	flush := func() {
		if current != nil {
			worktrees = append(worktrees, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			flush()
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "worktree":
			flush()
			current = &Worktree{Path: value}
		case "HEAD":
			if current != nil {
				current.Head = value
			}
		case "branch":
			if current != nil {
				current.Branch = strings.TrimPrefix(value, "refs/heads/")
			}
		case "bare":
			if current != nil {
				current.Bare = true
			}
		case "detached":
			if current != nil {
				current.Detached = true
			}
		case "locked":
			if current != nil {
				current.Locked = true
				current.LockReason = value
			}
		}
	}
	flush()
	return worktrees
}

// AddWorktree creates a worktree at path. When newBranch is non-empty a new
// branch of that name is created at startPoint (HEAD when startPoint is
// empty); otherwise checkout is the existing branch to check out.
func AddWorktree(repoPath, path, checkout, newBranch, startPoint string) error {
	args := []string{"worktree", "add"}
	if newBranch != "" {
		args = append(args, "-b", newBranch, path)
		if startPoint != "" {
			args = append(args, startPoint)
		}
	} else {
		args = append(args, path, checkout)
	}
	_, err := run(repoPath, args...)
	return err
}

// RemoveWorktree removes the worktree at path. force is required for
// worktrees with uncommitted changes or locked worktrees.
func RemoveWorktree(repoPath, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := run(repoPath, args...)
	return err
}

// PruneWorktrees removes stale administrative files for worktrees whose
// directories no longer exist. The returned output lists what was pruned.
func PruneWorktrees(repoPath string) (string, error) {
	return run(repoPath, "worktree", "prune", "--verbose")
}

// LockWorktree locks the worktree at path with an optional reason.
func LockWorktree(repoPath, path, reason string) error {
	args := []string{"worktree", "lock"}
	if reason != "" {
		args = append(args, "--reason", reason)
	}
	args = append(args, path)
	_, err := run(repoPath, args...)
	return err
}

// UnlockWorktree unlocks the worktree at path.
func UnlockWorktree(repoPath, path string) error {
	_, err := run(repoPath, "worktree", "unlock", path)
	return err
}

// MoveWorktree moves the worktree at path to newPath.
func MoveWorktree(repoPath, path, newPath string) error {
	_, err := run(repoPath, "worktree", "move", path, newPath)
	return err
}

// RepairWorktrees repairs worktree administrative files after the repository
// or a worktree has been moved manually.
func RepairWorktrees(repoPath string) (string, error) {
	return run(repoPath, "worktree", "repair")
}

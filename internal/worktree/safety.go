package worktree

import (
	"log/slog"

	"github.com/hskuroda/teire/pkg/git"
)

// RemovalState classifies how carefully a worktree removal must be
// confirmed.
type RemovalState int

const (
	// CleanAndPushed means the worktree has no uncommitted changes and its
	// branch tip matches the remote exactly. A single confirmation suffices.
	CleanAndPushed RemovalState = iota
	// DirtyOrUnpushed means removing the worktree can lose work. The user
	// sees every concrete reason and must confirm twice.
	DirtyOrUnpushed
)

// RemovalCheck is the outcome of assessing a worktree for removal.
type RemovalCheck struct {
	State RemovalState
	// Reasons names each specific hazard when State is DirtyOrUnpushed.
	Reasons []string
}

// AssessRemoval determines the removal state of a worktree. Any check that
// cannot be performed counts as a hazard: losing work is worse than an
// extra confirmation.
func AssessRemoval(repoPath, remote string, wt git.Worktree) RemovalCheck {
	var reasons []string

	clean, err := git.IsClean(wt.Path)
	if err != nil {
		slog.Debug("could not determine worktree status", "path", wt.Path, "error", err)
		reasons = append(reasons, "working tree status could not be determined")
	} else if !clean {
		reasons = append(reasons, "uncommitted changes in the working tree")
	}

	switch {
	case wt.Branch == "":
		reasons = append(reasons, "detached HEAD, no branch to compare against the remote")
	case !git.HasRemoteBranch(repoPath, remote, wt.Branch):
		reasons = append(reasons, "branch "+wt.Branch+" does not exist on "+remote)
	default:
		remoteTip, err := git.RemoteBranchTip(repoPath, remote, wt.Branch)
		if err != nil || remoteTip != wt.Head {
			reasons = append(reasons, "remote "+remote+"/"+wt.Branch+" diverges from the local head")
		}
	}

	if len(reasons) > 0 {
		return RemovalCheck{State: DirtyOrUnpushed, Reasons: reasons}
	}
	return RemovalCheck{State: CleanAndPushed}
}

// Package classify enumerates local branches that satisfy a cleanup mode's
// predicate: merged into trunk, never pushed, exactly in sync with the
// remote, or diverged from trunk while pushed. All information comes from
// git at call time; nothing is persisted.
package classify

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hskuroda/teire/internal/merge"
	"github.com/hskuroda/teire/pkg/git"
)

// Mode selects which cleanup predicate is applied.
type Mode int

const (
	// ModeMerged selects branches merged into trunk and authored by the
	// current user.
	ModeMerged Mode = iota
	// ModeUnpushed selects branches with no remote-tracking ref, authored
	// by the current user.
	ModeUnpushed
	// ModeSynced selects branches whose local and remote tips are
	// identical.
	ModeSynced
	// ModeUnmerged selects pushed branches that are not merged into trunk,
	// authored by the current user.
	ModeUnmerged
)

// String returns the mode name used in titles and log lines.
func (m Mode) String() string {
	switch m {
	case ModeMerged:
		return "merged"
	case ModeUnpushed:
		return "unpushed"
	case ModeSynced:
		return "synced"
	case ModeUnmerged:
		return "unmerged"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Branch is one classified cleanup candidate. It is a snapshot: the backing
// repository can change between listing and acting, which is why Recheck
// exists.
type Branch struct {
	Name       string
	Hash       string
	Author     string
	CommitDate time.Time
	Subject    string
	HasRemote  bool
	RemoteHash string
	// MergeCommit is the best-effort located merge commit for merged-mode
	// branches; empty when the heuristic found nothing.
	MergeCommit string
	// ForceDelete is true when merged-ness was detected via the GitHub API
	// (squash/rebase merge); git branch -d would refuse these.
	ForceDelete bool
}

// Label returns the display string for the branch in menus.
func (b Branch) Label() string {
	label := fmt.Sprintf("%s  (%s)", b.Name, b.CommitDate.Format("2006-01-02"))
	if b.HasRemote {
		label += " [remote]"
	}
	return label
}

// Options carries the static inputs every predicate needs.
type Options struct {
	Trunk  string
	Remote string
	// User is the current user's git author name.
	User string
	// IsProtected excludes branches by name or prefix.
	IsProtected func(name string) bool
	// SkipRecentAuthorCommits excludes synced branches whose last
	// RecentCommitWindow commits include User as author.
	SkipRecentAuthorCommits bool
	RecentCommitWindow      int
	// Detector answers merged-ness for ModeMerged. Required.
	Detector *merge.Detector
}

// List returns the branches satisfying mode's predicate, sorted by commit
// timestamp ascending. The trunk branch and the currently checked-out
// branch are never candidates. Per-branch git failures are logged and the
// branch skipped; only the initial enumeration can fail the whole call.
func List(repoPath string, mode Mode, opts Options) ([]Branch, error) {
	metas, err := git.ListBranchMeta(repoPath)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}

	current, err := git.CurrentBranch(repoPath)
	if err != nil {
		return nil, fmt.Errorf("determining current branch: %w", err)
	}

	var results []Branch
	for _, meta := range metas {
		if meta.Name == opts.Trunk || (current != "" && meta.Name == current) {
			continue
		}
		if opts.IsProtected != nil && opts.IsProtected(meta.Name) {
			continue
		}

		verdict := evaluate(repoPath, mode, meta.Name, opts)
		if !verdict.ok {
			slog.Debug("branch excluded", "branch", meta.Name, "mode", mode.String(),
				"reason", verdict.reason)
			continue
		}

		b := Branch{
			Name:        meta.Name,
			Hash:        meta.Hash,
			Author:      meta.Author,
			CommitDate:  meta.CommitDate,
			Subject:     meta.Subject,
			HasRemote:   verdict.hasRemote,
			RemoteHash:  verdict.remoteHash,
			ForceDelete: verdict.viaAPI,
		}
		if mode == ModeMerged {
			mc, err := git.MergeCommitFor(repoPath, meta.Name, opts.Trunk)
			if err != nil {
				slog.Debug("merge commit lookup failed", "branch", meta.Name, "error", err)
			}
			b.MergeCommit = mc
		}
		results = append(results, b)
	}
	return results, nil
}

// Recheck re-runs mode's predicate against the current repository state for
// a branch selected earlier. A nil return means the branch still qualifies;
// otherwise the error explains what changed so the caller can report the
// stale snapshot and abort.
func Recheck(repoPath string, mode Mode, branch string, opts Options) error {
	verdict := evaluate(repoPath, mode, branch, opts)
	if !verdict.ok {
		return fmt.Errorf("branch %s no longer qualifies: %s", branch, verdict.reason)
	}
	return nil
}

// verdict is the outcome of one predicate evaluation.
type verdict struct {
	ok         bool
	reason     string
	hasRemote  bool
	remoteHash string
	viaAPI     bool
}

func exclude(reason string) verdict {
	return verdict{reason: reason}
}

// evaluate applies mode's predicate to a single branch. Git failures for
// individual sub-checks are treated as "condition false", never as errors,
// so a stale or unknown ref can not crash classification.
func evaluate(repoPath string, mode Mode, branch string, opts Options) verdict {
	author, err := git.CommitAuthor(repoPath, branch)
	if err != nil {
		// No resolvable commit means no author to compare.
		return exclude("branch has no commits")
	}

	switch mode {
	case ModeMerged:
		if author != opts.User {
			return exclude(fmt.Sprintf("last commit authored by %q, not you", author))
		}
		merged, viaAPI := opts.Detector.Check(repoPath, branch, opts.Trunk)
		if !merged {
			return exclude("not merged into " + opts.Trunk)
		}
		v := verdict{ok: true, viaAPI: viaAPI}
		v.hasRemote = git.HasRemoteBranch(repoPath, opts.Remote, branch)
		if v.hasRemote {
			v.remoteHash, _ = git.RemoteBranchTip(repoPath, opts.Remote, branch)
		}
		return v

	case ModeUnpushed:
		if author != opts.User {
			return exclude(fmt.Sprintf("last commit authored by %q, not you", author))
		}
		if git.HasRemoteBranch(repoPath, opts.Remote, branch) {
			return exclude("has a remote-tracking ref")
		}
		return verdict{ok: true}

	case ModeSynced:
		if !git.HasRemoteBranch(repoPath, opts.Remote, branch) {
			return exclude("has no remote-tracking ref")
		}
		localTip, err := git.ResolveCommit(repoPath, branch)
		if err != nil {
			return exclude("local tip cannot be resolved")
		}
		remoteTip, err := git.RemoteBranchTip(repoPath, opts.Remote, branch)
		if err != nil {
			return exclude("remote tip cannot be resolved")
		}
		if localTip != remoteTip {
			return exclude("local and remote tips differ")
		}
		if opts.SkipRecentAuthorCommits {
			authors, err := git.RecentAuthors(repoPath, branch, opts.RecentCommitWindow)
			if err == nil {
				for _, a := range authors {
					if a == opts.User {
						return exclude("you authored one of the recent commits")
					}
				}
			}
		}
		return verdict{ok: true, hasRemote: true, remoteHash: remoteTip}

	case ModeUnmerged:
		if author != opts.User {
			return exclude(fmt.Sprintf("last commit authored by %q, not you", author))
		}
		if !git.HasRemoteBranch(repoPath, opts.Remote, branch) {
			return exclude("has no remote-tracking ref")
		}
		if git.IsAncestor(repoPath, branch, opts.Trunk) {
			return exclude("now merged into " + opts.Trunk)
		}
		remoteTip, _ := git.RemoteBranchTip(repoPath, opts.Remote, branch)
		return verdict{ok: true, hasRemote: true, remoteHash: remoteTip}

	default:
		return exclude("unknown mode")
	}
}

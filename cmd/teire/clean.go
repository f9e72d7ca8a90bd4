package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"

	"github.com/hskuroda/teire/internal/classify"
	"github.com/hskuroda/teire/internal/config"
	"github.com/hskuroda/teire/internal/github"
	"github.com/hskuroda/teire/internal/journal"
	"github.com/hskuroda/teire/internal/merge"
	"github.com/hskuroda/teire/internal/ui"
	"github.com/hskuroda/teire/pkg/git"
)

// CleanCmd classifies branches by one cleanup mode and walks an interactive
// delete loop over the result.
type CleanCmd struct {
	Merged   bool `help:"Branches merged into trunk and authored by you." xor:"mode"`
	Unpushed bool `help:"Branches with no remote-tracking ref, authored by you." xor:"mode"`
	Synced   bool `help:"Branches whose local and remote tips are identical." xor:"mode"`
	Unmerged bool `help:"Pushed branches not merged into trunk, authored by you." xor:"mode"`
}

func (c *CleanCmd) mode() classify.Mode {
	switch {
	case c.Unpushed:
		return classify.ModeUnpushed
	case c.Synced:
		return classify.ModeSynced
	case c.Unmerged:
		return classify.ModeUnmerged
	default:
		return classify.ModeMerged
	}
}

// Run executes the clean command.
func (c *CleanCmd) Run(globals *CLI) error {
	if !c.Merged && !c.Unpushed && !c.Synced && !c.Unmerged {
		return fmt.Errorf("specify --merged, --unpushed, --synced, or --unmerged")
	}
	if globals.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	mode := c.mode()

	// Fatal preconditions: outside a repository or without a configured
	// identity there is nothing meaningful to classify.
	root, err := git.RepoRoot(".")
	if err != nil {
		return fmt.Errorf("not inside a git repository")
	}
	user, err := git.UserIdentity(root)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	trunk, err := git.TrunkBranch(root, cfg.TrunkCandidates)
	if err != nil {
		return err
	}

	// Remote-tracking refs drive the unpushed and synced predicates, so
	// refresh them when the remote exists. A failed fetch (offline) is a
	// warning; classification proceeds on the cached refs.
	if git.HasRemote(root, cfg.Remote) {
		if err := git.Fetch(root, cfg.Remote); err != nil {
			slog.Warn("fetch failed, using cached remote refs", "remote", cfg.Remote, "error", err)
		}
	}

	// GitHub PR lookups only run when a token is configured; the default
	// merged predicate is pure git ancestry.
	var pr merge.PRChecker
	if cfg.GithubToken != "" {
		pr = github.NewClient(cfg.GithubToken)
	}

	opts := classify.Options{
		Trunk:                   trunk,
		Remote:                  cfg.Remote,
		User:                    user.Name,
		IsProtected:             cfg.IsProtected,
		SkipRecentAuthorCommits: cfg.Synced.SkipRecentAuthorCommits,
		RecentCommitWindow:      cfg.Synced.RecentCommitWindow,
		Detector:                merge.NewDetector(merge.RealGitChecker{}, pr, cfg.Remote),
	}

	slog.Debug("classifying branches", "mode", mode.String(), "trunk", trunk, "user", user.Name)

	branches, err := classify.List(root, mode, opts)
	if err != nil {
		return err
	}
	if len(branches) == 0 {
		fmt.Printf("No %s branches found.\n", mode)
		return nil
	}

	printCleanSummary(mode, branches)

	if globals.DryRun {
		return nil
	}

	return runDeleteLoop(ui.NewHuhPrompter(), root, mode, opts, branches)
}

func printCleanSummary(mode classify.Mode, branches []classify.Branch) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Printf("\n%s\n\n", bold.Sprintf("Found %d %s branch(es):", len(branches), mode))
	for _, b := range branches {
		fmt.Printf("  %s  %s  %s\n",
			b.Name,
			dim.Sprintf("(%s)", formatAge(b.CommitDate)),
			dim.Sprint(truncate(b.Subject, maxSubjectLen)))
	}
	fmt.Println()
}

// runDeleteLoop presents the menu, re-validates the selection, asks for
// confirmation, and deletes. The user picks one branch per round, or the
// trailing "all" entry to sweep every listed branch through the same
// pipeline. It only returns a non-nil error for prompt machinery failures;
// every per-branch failure is reported inline and the loop continues.
func runDeleteLoop(prompter ui.Prompter, root string, mode classify.Mode, opts classify.Options, branches []classify.Branch) error {
	session := ui.NewSession(branches)

	// Journal failures are intentionally discarded: recording what was
	// deleted must never prevent the deletion itself.
	jl := journal.NewOrNil()
	defer func() { _ = jl.Close() }()

	title := fmt.Sprintf("Select a %s branch to delete (esc to quit)", mode)

	for session.Len() > 0 {
		labels := make([]string, session.Len(), session.Len()+1)
		for i, b := range session.Items() {
			labels[i] = b.Label()
		}
		if session.Len() > 1 {
			labels = append(labels, fmt.Sprintf("All %d branches", session.Len()))
		}

		idx, err := prompter.Select(title, labels, session.Index())
		if errors.Is(err, ui.ErrCancelled) {
			break
		}
		if err != nil {
			return err
		}

		if idx >= session.Len() {
			// The "all" entry: every branch gets the same recheck and
			// confirmations as a single pick.
			snapshot := append([]classify.Branch(nil), session.Items()...)
			for _, branch := range snapshot {
				deleted, err := deleteBranch(prompter, root, mode, opts, branch, jl)
				if err != nil {
					return err
				}
				if deleted {
					session.RecordDeletion()
					session.Remove(indexOf(session, branch.Name))
				}
			}
			continue
		}

		session.SetIndex(idx)
		deleted, err := deleteBranch(prompter, root, mode, opts, session.Item(idx), jl)
		if err != nil {
			return err
		}
		if deleted {
			session.RecordDeletion()
			session.Remove(idx)
		}
	}

	if session.Deleted() > 0 {
		fmt.Println()
		color.New(color.Bold).Printf("Deleted %d branch(es).\n", session.Deleted())
	}
	return nil
}

// deleteBranch runs the recheck, confirmation and deletion pipeline for a
// single branch and reports whether it was deleted. Declining or cancelling
// a confirmation skips the branch; only prompt machinery failures are
// returned as errors.
func deleteBranch(prompter ui.Prompter, root string, mode classify.Mode, opts classify.Options, branch classify.Branch, jl *journal.Logger) (bool, error) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	// The listing is a snapshot; re-verify before anything destructive.
	if err := classify.Recheck(root, mode, branch.Name, opts); err != nil {
		red.Printf("Not deleting: %v\n", err)
		return false, nil
	}

	printBranchDetails(mode, branch)
	confirmed, err := prompter.Confirm(
		fmt.Sprintf("Delete branch %s?", branch.Name), "")
	if errors.Is(err, ui.ErrCancelled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}

	deleteRemote := false
	if branch.HasRemote {
		deleteRemote, err = prompter.Confirm(
			fmt.Sprintf("Also delete %s/%s?", opts.Remote, branch.Name),
			"remote deletion is best-effort")
		if errors.Is(err, ui.ErrCancelled) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}

	// Unmerged branches would always fail the safe delete; API-detected
	// squash merges likewise. Everything else gets the safe path first.
	force := mode == classify.ModeUnmerged || branch.ForceDelete
	if err := git.DeleteLocalBranch(root, branch.Name, force); err != nil {
		if force {
			red.Printf("Failed to delete %s: %v\n", branch.Name, err)
			return false, nil
		}
		slog.Debug("safe delete refused, forcing", "branch", branch.Name, "error", err)
		if err := git.DeleteLocalBranch(root, branch.Name, true); err != nil {
			red.Printf("Failed to delete %s: %v\n", branch.Name, err)
			return false, nil
		}
	}

	remoteDeleted := false
	if deleteRemote {
		if err := git.DeleteRemoteBranch(root, opts.Remote, branch.Name); err != nil {
			yellow.Printf("Could not delete %s/%s: %v\n", opts.Remote, branch.Name, err)
		} else {
			remoteDeleted = true
		}
	}

	_ = jl.Log(journal.Entry{
		RepoPath:      root,
		Branch:        branch.Name,
		Hash:          branch.Hash,
		Mode:          mode.String(),
		RemoteDeleted: remoteDeleted,
	})

	color.New(color.FgGreen).Printf("Deleted %s\n", branch.Name)
	return true, nil
}

// indexOf returns the session index of the branch with the given name, or
// -1 when it is no longer listed.
func indexOf(session *ui.Session[classify.Branch], name string) int {
	for i, b := range session.Items() {
		if b.Name == name {
			return i
		}
	}
	return -1
}

func printBranchDetails(mode classify.Mode, b classify.Branch) {
	dim := color.New(color.FgHiBlack)

	fmt.Println()
	fmt.Printf("  %s\n", color.New(color.Bold).Sprint(b.Name))
	fmt.Printf("    commit:  %s\n", b.Hash)
	fmt.Printf("    author:  %s\n", b.Author)
	fmt.Printf("    date:    %s %s\n", b.CommitDate.Format(time.RFC1123), dim.Sprintf("(%s)", formatAge(b.CommitDate)))
	fmt.Printf("    subject: %s\n", b.Subject)
	if mode == classify.ModeMerged {
		mc := b.MergeCommit
		if mc == "" {
			mc = dim.Sprint("(not located)")
		}
		fmt.Printf("    merged:  %s\n", mc)
	}
	fmt.Println()
}

// Maximum characters for commit message display.
const maxSubjectLen = 50

// truncate shortens s to maxLen runes. Slicing runes rather than bytes keeps
// multibyte subjects intact.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	days := int(time.Since(t).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "1 day ago"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		months := days / 30
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := days / 365
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

// Package worktree implements the interactive handlers for worktree
// administration. Each git worktree subcommand gets one handler behind a
// common interface; the menu dispatches on a closed set of operation kinds.
package worktree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/hskuroda/teire/internal/ui"
	"github.com/hskuroda/teire/pkg/git"
)

// Kind identifies one worktree operation.
type Kind int

const (
	// KindList shows all worktrees.
	KindList Kind = iota
	// KindAdd creates a new worktree.
	KindAdd
	// KindRemove removes a worktree after the safety checks.
	KindRemove
	// KindPrune drops administrative files of vanished worktrees.
	KindPrune
	// KindLock protects a worktree from pruning and removal.
	KindLock
	// KindUnlock releases a lock.
	KindUnlock
	// KindMove relocates a worktree directory.
	KindMove
	// KindRepair fixes administrative files after manual moves.
	KindRepair
)

// Kinds returns all operation kinds in menu order.
func Kinds() []Kind {
	return []Kind{KindList, KindAdd, KindRemove, KindPrune, KindLock, KindUnlock, KindMove, KindRepair}
}

// Title returns the menu label for the operation.
func (k Kind) Title() string {
	switch k {
	case KindList:
		return "List worktrees"
	case KindAdd:
		return "Add a worktree"
	case KindRemove:
		return "Remove a worktree"
	case KindPrune:
		return "Prune stale worktree entries"
	case KindLock:
		return "Lock a worktree"
	case KindUnlock:
		return "Unlock a worktree"
	case KindMove:
		return "Move a worktree"
	case KindRepair:
		return "Repair worktree metadata"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Env carries everything a handler needs: the repository, the remote used
// for push checks, the trunk used as a start point, and the prompter.
type Env struct {
	RepoPath string
	Remote   string
	Trunk    string
	Prompter ui.Prompter
}

// Handler runs one worktree operation. Returning ui.ErrCancelled means the
// user backed out; any other error is reported by the menu loop, which then
// continues. A handler never terminates the process.
type Handler interface {
	Run() error
}

// HandlerFor maps an operation kind to its handler.
func HandlerFor(kind Kind, env Env) Handler {
	switch kind {
	case KindList:
		return &listHandler{env}
	case KindAdd:
		return &addHandler{env}
	case KindRemove:
		return &removeHandler{env}
	case KindPrune:
		return &pruneHandler{env}
	case KindLock:
		return &lockHandler{env}
	case KindUnlock:
		return &unlockHandler{env}
	case KindMove:
		return &moveHandler{env}
	case KindRepair:
		return &repairHandler{env}
	default:
		return nil
	}
}

type listHandler struct{ env Env }

func (h *listHandler) Run() error {
	worktrees, err := git.ListWorktrees(h.env.RepoPath)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	fmt.Printf("\n%s\n\n", bold.Sprintf("%d worktree(s):", len(worktrees)))
	for _, wt := range worktrees {
		branch := wt.Branch
		switch {
		case wt.Bare:
			branch = yellow.Sprint("(bare)")
		case branch == "":
			branch = yellow.Sprint("(detached)")
		}
		line := fmt.Sprintf("  %s  %s", wt.Path, branch)
		if len(wt.Head) >= 7 {
			line += "  " + dim.Sprint(wt.Head[:7])
		}
		if wt.Locked {
			reason := wt.LockReason
			if reason == "" {
				reason = "no reason given"
			}
			line += "  " + red.Sprintf("[locked: %s]", reason)
		}
		fmt.Println(line)
	}
	fmt.Println()
	return nil
}

type addHandler struct{ env Env }

func (h *addHandler) Run() error {
	name, err := promptBranchName(h.env.Prompter)
	if err != nil {
		return err
	}

	repoName := filepath.Base(h.env.RepoPath)
	suggested := filepath.Join("..", repoName+"-"+strings.ReplaceAll(name, "/", "-"))
	path, err := promptRequired(h.env.Prompter, "Worktree path", suggested)
	if err != nil {
		return err
	}

	if git.BranchExists(h.env.RepoPath, name) {
		err = git.AddWorktree(h.env.RepoPath, path, name, "", "")
	} else {
		err = git.AddWorktree(h.env.RepoPath, path, "", name, h.env.Trunk)
	}
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Printf("Created worktree %s on branch %s\n", path, name)
	return nil
}

type removeHandler struct{ env Env }

func (h *removeHandler) Run() error {
	wt, ok, err := selectLinkedWorktree(h.env, "Remove which worktree?", nil)
	if err != nil || !ok {
		return err
	}

	check := AssessRemoval(h.env.RepoPath, h.env.Remote, wt)
	switch check.State {
	case CleanAndPushed:
		confirmed, err := h.env.Prompter.Confirm(
			fmt.Sprintf("Remove worktree %s?", wt.Path),
			fmt.Sprintf("branch %s, fully pushed to %s", wt.Branch, h.env.Remote))
		if err != nil {
			return err
		}
		if !confirmed {
			return nil
		}

	case DirtyOrUnpushed:
		yellow := color.New(color.FgYellow)
		fmt.Println()
		yellow.Printf("Removing %s may lose work:\n", wt.Path)
		for _, reason := range check.Reasons {
			yellow.Printf("  - %s\n", reason)
		}
		fmt.Println()

		confirmed, err := h.env.Prompter.Confirm(
			fmt.Sprintf("Remove worktree %s anyway?", wt.Path),
			strings.Join(check.Reasons, "; "))
		if err != nil {
			return err
		}
		if !confirmed {
			return nil
		}
		confirmed, err = h.env.Prompter.Confirm(
			"Really remove? This discards the work listed above.",
			"this cannot be undone")
		if err != nil {
			return err
		}
		if !confirmed {
			return nil
		}
	}

	force := check.State == DirtyOrUnpushed
	if err := git.RemoveWorktree(h.env.RepoPath, wt.Path, force); err != nil {
		return err
	}
	color.New(color.FgGreen).Printf("Removed worktree %s\n", wt.Path)
	return nil
}

type pruneHandler struct{ env Env }

func (h *pruneHandler) Run() error {
	confirmed, err := h.env.Prompter.Confirm(
		"Prune stale worktree entries?",
		"removes administrative files for worktree directories that no longer exist")
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	out, err := git.PruneWorktrees(h.env.RepoPath)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println("Nothing to prune.")
		return nil
	}
	fmt.Println(out)
	return nil
}

type lockHandler struct{ env Env }

func (h *lockHandler) Run() error {
	wt, ok, err := selectLinkedWorktree(h.env, "Lock which worktree?",
		func(wt git.Worktree) bool { return !wt.Locked })
	if err != nil || !ok {
		return err
	}

	// An empty reason is allowed; git records the lock without one.
	reason, err := h.env.Prompter.Input("Lock reason (optional)", "on a portable drive")
	if err != nil {
		return err
	}
	if err := git.LockWorktree(h.env.RepoPath, wt.Path, strings.TrimSpace(reason)); err != nil {
		return err
	}
	color.New(color.FgGreen).Printf("Locked worktree %s\n", wt.Path)
	return nil
}

type unlockHandler struct{ env Env }

func (h *unlockHandler) Run() error {
	wt, ok, err := selectLinkedWorktree(h.env, "Unlock which worktree?",
		func(wt git.Worktree) bool { return wt.Locked })
	if err != nil || !ok {
		return err
	}
	if err := git.UnlockWorktree(h.env.RepoPath, wt.Path); err != nil {
		return err
	}
	color.New(color.FgGreen).Printf("Unlocked worktree %s\n", wt.Path)
	return nil
}

type moveHandler struct{ env Env }

func (h *moveHandler) Run() error {
	wt, ok, err := selectLinkedWorktree(h.env, "Move which worktree?", nil)
	if err != nil || !ok {
		return err
	}
	newPath, err := promptRequired(h.env.Prompter, "New path", wt.Path)
	if err != nil {
		return err
	}
	if err := git.MoveWorktree(h.env.RepoPath, wt.Path, newPath); err != nil {
		return err
	}
	color.New(color.FgGreen).Printf("Moved worktree to %s\n", newPath)
	return nil
}

type repairHandler struct{ env Env }

func (h *repairHandler) Run() error {
	out, err := git.RepairWorktrees(h.env.RepoPath)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println("Nothing to repair.")
		return nil
	}
	fmt.Println(out)
	return nil
}

// selectLinkedWorktree snapshots the linked worktrees (the main working
// tree and bare entries are never candidates), optionally filters them, and
// asks the user to pick one. ok is false when there is nothing to pick;
// cancellation propagates as ui.ErrCancelled.
func selectLinkedWorktree(env Env, title string, keep func(git.Worktree) bool) (git.Worktree, bool, error) {
	worktrees, err := git.ListWorktrees(env.RepoPath)
	if err != nil {
		return git.Worktree{}, false, err
	}

	root, err := git.RepoRoot(env.RepoPath)
	if err != nil {
		return git.Worktree{}, false, err
	}

	var candidates []git.Worktree
	for _, wt := range worktrees {
		if wt.Bare || wt.Path == root {
			continue
		}
		if keep != nil && !keep(wt) {
			continue
		}
		candidates = append(candidates, wt)
	}
	if len(candidates) == 0 {
		color.New(color.FgHiBlack).Println("No matching worktrees.")
		return git.Worktree{}, false, nil
	}

	labels := make([]string, len(candidates))
	for i, wt := range candidates {
		branch := wt.Branch
		if branch == "" {
			branch = "(detached)"
		}
		labels[i] = fmt.Sprintf("%s  %s", wt.Path, branch)
	}

	idx, err := env.Prompter.Select(title, labels, 0)
	if err != nil {
		return git.Worktree{}, false, err
	}
	return candidates[idx], true, nil
}

// promptBranchName reads and normalizes a branch name, re-prompting while
// the input normalizes to nothing.
func promptBranchName(p ui.Prompter) (string, error) {
	for {
		raw, err := p.Input("Branch name for the new worktree", "feature/my-change")
		if err != nil {
			return "", err
		}
		name, err := NormalizeBranchName(raw)
		if err != nil {
			color.New(color.FgYellow).Println(err.Error())
			continue
		}
		return name, nil
	}
}

// promptRequired reads a line of text, re-prompting while it is empty.
func promptRequired(p ui.Prompter, title, placeholder string) (string, error) {
	for {
		value, err := p.Input(title, placeholder)
		if err != nil {
			return "", err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			color.New(color.FgYellow).Println(title + " must not be empty.")
			continue
		}
		return value, nil
	}
}

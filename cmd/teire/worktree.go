package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"

	"github.com/hskuroda/teire/internal/config"
	"github.com/hskuroda/teire/internal/ui"
	"github.com/hskuroda/teire/internal/worktree"
	"github.com/hskuroda/teire/pkg/git"
)

// WorktreeCmd presents the worktree operations menu and dispatches to the
// per-operation handlers.
type WorktreeCmd struct{}

// Run executes the worktree command.
func (c *WorktreeCmd) Run(globals *CLI) error {
	if globals.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	root, err := git.RepoRoot(".")
	if err != nil {
		return fmt.Errorf("not inside a git repository")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// New worktree branches start at trunk when it can be determined,
	// otherwise at HEAD.
	trunk, err := git.TrunkBranch(root, cfg.TrunkCandidates)
	if err != nil {
		slog.Debug("could not determine trunk, new branches start at HEAD", "error", err)
		trunk = ""
	}

	env := worktree.Env{
		RepoPath: root,
		Remote:   cfg.Remote,
		Trunk:    trunk,
		Prompter: ui.NewHuhPrompter(),
	}

	kinds := worktree.Kinds()
	labels := make([]string, len(kinds))
	for i, k := range kinds {
		labels[i] = k.Title()
	}

	red := color.New(color.FgRed)
	index := 0
	for {
		idx, err := env.Prompter.Select("Worktree operations (esc to quit)", labels, index)
		if errors.Is(err, ui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		index = idx

		handler := worktree.HandlerFor(kinds[idx], env)
		if err := handler.Run(); err != nil {
			if errors.Is(err, ui.ErrCancelled) {
				continue
			}
			// git failures are shown verbatim; the menu keeps running.
			red.Println(err.Error())
		}
	}
}

// Package main provides the teire CLI for branch cleanup and worktree
// administration.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI defines the top-level command structure for teire.
type CLI struct {
	DryRun  bool `name:"dry-run" short:"n" help:"Show what would be done without making changes."`
	Verbose bool `name:"verbose" short:"v" help:"Verbose output."`

	Clean    CleanCmd    `cmd:"" help:"Classify and delete stale branches."`
	Worktree WorktreeCmd `cmd:"" help:"Administer worktrees."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run() error {
	fmt.Printf("teire %s (commit: %s, built: %s)\n", version, commit, date)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("teire"),
		kong.Description(`teire (手入れ) - "upkeep"

Interactive menus over the git CLI for pruning your own stale branches
(merged, unpushed, synced, or diverged) and for administering worktrees,
without memorizing the underlying commands.`),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
	// Explicitly exit with 0 on normal quit so tests can verify exit behavior.
	os.Exit(0)
}

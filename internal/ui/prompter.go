// Package ui provides the interactive prompting layer: a Prompter
// interface the rest of the system depends on, a charmbracelet/huh
// implementation of it, and the menu session state threaded through
// cleanup and worktree flows.
package ui

import "errors"

// ErrCancelled is returned when the user dismisses a prompt (escape or
// ctrl-c) instead of making a choice. Callers treat it as "return to the
// previous menu with no side effects".
var ErrCancelled = errors.New("cancelled")

// Prompter abstracts interactive terminal input. Raw-mode handling, escape
// sequence decoding and echo restoration are the implementation's concern;
// callers only see decoded results.
type Prompter interface {
	// Select renders a menu of options with the cursor starting at initial
	// and returns the chosen index, or ErrCancelled.
	Select(title string, options []string, initial int) (int, error)
	// Confirm asks a yes/no question. Any non-affirmative answer is false.
	Confirm(title, description string) (bool, error)
	// Input reads a single line of free text.
	Input(title, placeholder string) (string, error)
}

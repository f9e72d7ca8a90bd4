package ui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// HuhPrompter implements Prompter using charmbracelet/huh forms.
type HuhPrompter struct{}

// NewHuhPrompter returns a Prompter backed by huh.
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{}
}

// Select renders a single-choice menu. The cursor starts on initial when it
// is a valid index, otherwise on the first option.
func (p *HuhPrompter) Select(title string, options []string, initial int) (int, error) {
	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, i)
	}

	selected := 0
	if initial >= 0 && initial < len(options) {
		selected = initial
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Options(opts...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return 0, mapAbort(err)
	}
	return selected, nil
}

// Confirm asks a yes/no question. The default answer is "no" so that an
// accidental enter never confirms a destructive action.
func (p *HuhPrompter) Confirm(title, description string) (bool, error) {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, mapAbort(err)
	}
	return confirmed, nil
}

// Input reads a single line of free text.
func (p *HuhPrompter) Input(title, placeholder string) (string, error) {
	value := ""
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder(placeholder).
				Value(&value),
		),
	)
	if err := form.Run(); err != nil {
		return "", mapAbort(err)
	}
	return value, nil
}

// mapAbort translates huh's abort error into ErrCancelled so callers never
// depend on the prompt library.
func mapAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

package worktree

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	invalidRe = regexp.MustCompile(`[^a-z0-9._/-]+`)
	dashRe    = regexp.MustCompile(`-{2,}`)
	slashRe   = regexp.MustCompile(`/{2,}`)
)

// NormalizeBranchName turns free-text input into a valid branch name:
// lowercased, whitespace runs become single dashes, characters outside
// [a-z0-9._/-] are stripped, runs of separators are collapsed, leading and
// trailing separators are trimmed, and the reserved ".lock" suffix is
// removed. An input that normalizes to nothing is an error.
func NormalizeBranchName(input string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = spaceRe.ReplaceAllString(s, "-")
	s = invalidRe.ReplaceAllString(s, "")
	s = dashRe.ReplaceAllString(s, "-")
	s = slashRe.ReplaceAllString(s, "/")
	for strings.HasSuffix(s, ".lock") {
		s = strings.TrimSuffix(s, ".lock")
	}
	s = strings.Trim(s, "-/.")
	if s == "" {
		return "", fmt.Errorf("branch name %q resolves to nothing usable", input)
	}
	return s, nil
}

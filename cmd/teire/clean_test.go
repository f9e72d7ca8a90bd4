package main

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/hskuroda/teire/internal/classify"
	"github.com/hskuroda/teire/internal/merge"
	"github.com/hskuroda/teire/internal/ui"
	"github.com/hskuroda/teire/pkg/git"
	"github.com/hskuroda/teire/test/helpers"
)

// scriptedPrompter replays queued answers and fails the test on any prompt
// it was not scripted for. Select falls back to selectErr once its queue is
// drained so loops can be ended like a user pressing escape.
type scriptedPrompter struct {
	t         *testing.T
	selects   []int
	confirms  []bool
	inputs    []string
	selectErr error
}

func (p *scriptedPrompter) Select(title string, options []string, initial int) (int, error) {
	if len(p.selects) == 0 {
		if p.selectErr != nil {
			return 0, p.selectErr
		}
		p.t.Fatalf("unscripted Select(%q)", title)
	}
	idx := p.selects[0]
	p.selects = p.selects[1:]
	return idx, nil
}

func (p *scriptedPrompter) Confirm(title, description string) (bool, error) {
	if len(p.confirms) == 0 {
		p.t.Fatalf("unscripted Confirm(%q)", title)
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

func (p *scriptedPrompter) Input(title, placeholder string) (string, error) {
	if len(p.inputs) == 0 {
		p.t.Fatalf("unscripted Input(%q)", title)
	}
	value := p.inputs[0]
	p.inputs = p.inputs[1:]
	return value, nil
}

func TestCleanCmd_Mode(t *testing.T) {
	tests := []struct {
		cmd  CleanCmd
		want classify.Mode
	}{
		{CleanCmd{Merged: true}, classify.ModeMerged},
		{CleanCmd{Unpushed: true}, classify.ModeUnpushed},
		{CleanCmd{Synced: true}, classify.ModeSynced},
		{CleanCmd{Unmerged: true}, classify.ModeUnmerged},
	}
	for _, tt := range tests {
		if got := tt.cmd.mode(); got != tt.want {
			t.Errorf("mode() = %v, want %v", got, tt.want)
		}
	}
}

func TestRunDeleteLoop_DeletesSelectedBranchAndRemote(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	repo := helpers.NewTestRepo(t, "delete-loop")
	repo.AddBareRemote("origin")

	// Three branches: two merged and authored by the current user, one
	// authored by someone else. Only the first two are candidates.
	repo.CreateBranch("feature/older")
	repo.WriteFile("a.txt", "a")
	repo.AddFile("a.txt")
	repo.CommitWithDate("older work", time.Now().AddDate(0, 0, -30))
	repo.Push("origin", "feature/older")
	repo.Checkout("main")
	repo.Merge("feature/older")

	repo.CreateBranch("feature/newer")
	repo.WriteFile("b.txt", "b")
	repo.AddFile("b.txt")
	repo.CommitWithDate("newer work", time.Now().AddDate(0, 0, -5))
	repo.Checkout("main")
	repo.Merge("feature/newer")

	repo.CreateBranch("feature/theirs")
	repo.CommitWithAuthor("their work", "Other Dev", "other@example.com")
	repo.Checkout("main")
	repo.Merge("feature/theirs")

	opts := classify.Options{
		Trunk:              "main",
		Remote:             "origin",
		User:               "Test User",
		IsProtected:        func(string) bool { return false },
		RecentCommitWindow: 10,
		Detector:           merge.GitOnlyDetector("origin"),
	}

	branches, err := classify.List(repo.Path, classify.ModeMerged, opts)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(branches) != 2 || branches[0].Name != "feature/older" {
		t.Fatalf("unexpected candidates: %+v", branches)
	}

	// Pick the first branch, confirm the local delete and the remote delete,
	// then cancel out of the menu.
	p := &scriptedPrompter{
		t:         t,
		selects:   []int{0},
		confirms:  []bool{true, true},
		selectErr: ui.ErrCancelled,
	}

	if err := runDeleteLoop(p, repo.Path, classify.ModeMerged, opts, branches); err != nil {
		t.Fatalf("runDeleteLoop failed: %v", err)
	}

	for _, b := range repo.Branches() {
		if b == "feature/older" {
			t.Error("feature/older should be deleted")
		}
	}
	if git.HasRemoteBranch(repo.Path, "origin", "feature/older") {
		t.Error("origin/feature/older should be deleted")
	}
	if !git.BranchExists(repo.Path, "feature/newer") {
		t.Error("feature/newer should remain")
	}
	if !git.BranchExists(repo.Path, "feature/theirs") {
		t.Error("feature/theirs should remain")
	}
}

func TestRunDeleteLoop_RecheckBlocksStaleDeletion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	repo := helpers.NewTestRepo(t, "delete-stale")

	repo.CreateBranch("feature/was-merged")
	repo.WriteFile("w.txt", "w")
	repo.AddFile("w.txt")
	repo.Commit("merged work")
	repo.Checkout("main")
	repo.Merge("feature/was-merged")

	opts := classify.Options{
		Trunk:              "main",
		Remote:             "origin",
		User:               "Test User",
		IsProtected:        func(string) bool { return false },
		RecentCommitWindow: 10,
		Detector:           merge.GitOnlyDetector("origin"),
	}

	branches, err := classify.List(repo.Path, classify.ModeMerged, opts)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(branches) != 1 {
		t.Fatalf("unexpected candidates: %+v", branches)
	}

	// The branch advances between listing and the deletion attempt.
	repo.Checkout("feature/was-merged")
	repo.WriteFile("w2.txt", "w2")
	repo.AddFile("w2.txt")
	repo.Commit("new work after merge")
	repo.Checkout("main")

	// No confirms scripted: the recheck must skip the branch before any
	// confirmation is asked.
	p := &scriptedPrompter{t: t, selects: []int{0}, selectErr: ui.ErrCancelled}

	if err := runDeleteLoop(p, repo.Path, classify.ModeMerged, opts, branches); err != nil {
		t.Fatalf("runDeleteLoop failed: %v", err)
	}
	if !git.BranchExists(repo.Path, "feature/was-merged") {
		t.Error("the advanced branch must not be deleted")
	}
}

func TestRunDeleteLoop_AllEntryDeletesEveryBranch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	repo := helpers.NewTestRepo(t, "delete-all")

	repo.CreateBranch("feature/first")
	repo.WriteFile("f.txt", "f")
	repo.AddFile("f.txt")
	repo.CommitWithDate("first work", time.Now().AddDate(0, 0, -20))
	repo.Checkout("main")
	repo.Merge("feature/first")

	repo.CreateBranch("feature/second")
	repo.WriteFile("s.txt", "s")
	repo.AddFile("s.txt")
	repo.CommitWithDate("second work", time.Now().AddDate(0, 0, -5))
	repo.Checkout("main")
	repo.Merge("feature/second")

	opts := classify.Options{
		Trunk:              "main",
		Remote:             "origin",
		User:               "Test User",
		IsProtected:        func(string) bool { return false },
		RecentCommitWindow: 10,
		Detector:           merge.GitOnlyDetector("origin"),
	}

	branches, err := classify.List(repo.Path, classify.ModeMerged, opts)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(branches) != 2 {
		t.Fatalf("unexpected candidates: %+v", branches)
	}

	// Index 2 is the trailing "all" entry behind the two branch labels.
	// Each branch still gets its own confirmation.
	p := &scriptedPrompter{
		t:        t,
		selects:  []int{2},
		confirms: []bool{true, true},
	}

	if err := runDeleteLoop(p, repo.Path, classify.ModeMerged, opts, branches); err != nil {
		t.Fatalf("runDeleteLoop failed: %v", err)
	}

	if git.BranchExists(repo.Path, "feature/first") {
		t.Error("feature/first should be deleted")
	}
	if git.BranchExists(repo.Path, "feature/second") {
		t.Error("feature/second should be deleted")
	}
	if len(p.confirms) != 0 {
		t.Error("expected one confirmation per branch")
	}
}

func TestRunDeleteLoop_AllEntrySkipsDeclinedBranch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	repo := helpers.NewTestRepo(t, "delete-all-decline")

	repo.CreateBranch("feature/yes")
	repo.WriteFile("y.txt", "y")
	repo.AddFile("y.txt")
	repo.CommitWithDate("accepted work", time.Now().AddDate(0, 0, -20))
	repo.Checkout("main")
	repo.Merge("feature/yes")

	repo.CreateBranch("feature/no")
	repo.WriteFile("n.txt", "n")
	repo.AddFile("n.txt")
	repo.CommitWithDate("declined work", time.Now().AddDate(0, 0, -5))
	repo.Checkout("main")
	repo.Merge("feature/no")

	opts := classify.Options{
		Trunk:              "main",
		Remote:             "origin",
		User:               "Test User",
		IsProtected:        func(string) bool { return false },
		RecentCommitWindow: 10,
		Detector:           merge.GitOnlyDetector("origin"),
	}

	branches, err := classify.List(repo.Path, classify.ModeMerged, opts)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(branches) != 2 {
		t.Fatalf("unexpected candidates: %+v", branches)
	}

	// Sweep via the "all" entry, confirm the first branch, decline the
	// second, then cancel out of the remaining single-item menu.
	p := &scriptedPrompter{
		t:         t,
		selects:   []int{2},
		confirms:  []bool{true, false},
		selectErr: ui.ErrCancelled,
	}

	if err := runDeleteLoop(p, repo.Path, classify.ModeMerged, opts, branches); err != nil {
		t.Fatalf("runDeleteLoop failed: %v", err)
	}

	if git.BranchExists(repo.Path, "feature/yes") {
		t.Error("feature/yes should be deleted")
	}
	if !git.BranchExists(repo.Path, "feature/no") {
		t.Error("feature/no should remain after being declined")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 50); got != "short" {
		t.Errorf("short strings pass through, got %q", got)
	}
	long := "this subject line is quite a bit longer than the column width allows"
	got := truncate(long, 50)
	if len(got) != 50 {
		t.Errorf("expected length 50, got %d", len(got))
	}
	if got[47:] != "..." {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
}

func TestTruncate_MultibyteSubject(t *testing.T) {
	subject := strings.Repeat("ブランチ整理", 10)
	got := truncate(subject, 20)
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune: %q", got)
	}
	if utf8.RuneCountInString(got) != 20 {
		t.Errorf("expected 20 runes, got %d in %q", utf8.RuneCountInString(got), got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "unknown date"},
		{now, "today"},
		{now.AddDate(0, 0, -1), "1 day ago"},
		{now.AddDate(0, 0, -12), "12 days ago"},
		{now.AddDate(0, 0, -31), "1 month ago"},
		{now.AddDate(0, 0, -95), "3 months ago"},
		{now.AddDate(0, 0, -370), "1 year ago"},
		{now.AddDate(0, 0, -800), "2 years ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.t); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

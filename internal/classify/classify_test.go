package classify_test

import (
	"strings"
	"testing"
	"time"

	"github.com/hskuroda/teire/internal/classify"
	"github.com/hskuroda/teire/internal/merge"
	"github.com/hskuroda/teire/test/helpers"
)

func testOpts() classify.Options {
	return classify.Options{
		Trunk:  "main",
		Remote: "origin",
		User:   "Test User",
		IsProtected: func(name string) bool {
			return name == "develop" || strings.HasPrefix(name, "release/")
		},
		RecentCommitWindow: 10,
		Detector:           merge.GitOnlyDetector("origin"),
	}
}

func TestList_Merged_OnlyUserAuthoredOldestFirst(t *testing.T) {
	repo := helpers.NewTestRepo(t, "merged-scenario")
	repo.AddBareRemote("origin")

	// Two merged branches authored by the current user, one by someone else.
	repo.CreateBranch("feature/older")
	repo.WriteFile("a.txt", "a")
	repo.AddFile("a.txt")
	repo.CommitWithDate("older work", time.Now().AddDate(0, 0, -40))
	repo.Checkout("main")
	repo.Merge("feature/older")

	repo.CreateBranch("feature/newer")
	repo.WriteFile("b.txt", "b")
	repo.AddFile("b.txt")
	repo.CommitWithDate("newer work", time.Now().AddDate(0, 0, -10))
	repo.Checkout("main")
	repo.Merge("feature/newer")

	repo.CreateBranch("feature/theirs")
	repo.CommitWithAuthor("their work", "Other Dev", "other@example.com")
	repo.Checkout("main")
	repo.Merge("feature/theirs")

	branches, err := classify.List(repo.Path, classify.ModeMerged, testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %d: %+v", len(branches), branches)
	}
	if branches[0].Name != "feature/older" || branches[1].Name != "feature/newer" {
		t.Errorf("expected oldest first, got %s then %s", branches[0].Name, branches[1].Name)
	}
	if branches[0].MergeCommit == "" {
		t.Error("expected the merge commit to be located for a conventional merge")
	}
	if branches[0].ForceDelete {
		t.Error("git-detected merge should not require a forced delete")
	}
}

func TestList_Merged_ExcludesProtected(t *testing.T) {
	repo := helpers.NewTestRepo(t, "merged-protected")

	repo.CreateBranch("release/1.0")
	repo.WriteFile("r.txt", "r")
	repo.AddFile("r.txt")
	repo.Commit("release work")
	repo.Checkout("main")
	repo.Merge("release/1.0")

	branches, err := classify.List(repo.Path, classify.ModeMerged, testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range branches {
		if b.Name == "release/1.0" {
			t.Error("protected prefix should exclude release/1.0")
		}
	}
}

func TestList_Merged_ExcludesCurrentBranch(t *testing.T) {
	repo := helpers.NewTestRepo(t, "merged-current")

	repo.CreateBranch("feature/checked-out")
	repo.WriteFile("c.txt", "c")
	repo.AddFile("c.txt")
	repo.Commit("work")
	repo.Checkout("main")
	repo.Merge("feature/checked-out")
	repo.Checkout("feature/checked-out")

	branches, err := classify.List(repo.Path, classify.ModeMerged, testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 0 {
		t.Errorf("the checked-out branch must never be a candidate, got %+v", branches)
	}
}

func TestList_Unpushed(t *testing.T) {
	repo := helpers.NewTestRepo(t, "unpushed")
	repo.AddBareRemote("origin")

	repo.CreateBranch("feature/local-only")
	repo.WriteFile("l.txt", "l")
	repo.AddFile("l.txt")
	repo.Commit("local work")
	repo.Checkout("main")

	repo.CreateBranch("feature/pushed")
	repo.WriteFile("p.txt", "p")
	repo.AddFile("p.txt")
	repo.Commit("pushed work")
	repo.Push("origin", "feature/pushed")
	repo.Checkout("main")

	repo.CreateBranch("feature/their-local")
	repo.CommitWithAuthor("their local work", "Other Dev", "other@example.com")
	repo.Checkout("main")

	branches, err := classify.List(repo.Path, classify.ModeUnpushed, testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 1 || branches[0].Name != "feature/local-only" {
		t.Errorf("expected only feature/local-only, got %+v", branches)
	}
	if branches[0].HasRemote {
		t.Error("unpushed branch should not report a remote")
	}
}

func TestList_Synced_MembershipFlipsOnLocalCommit(t *testing.T) {
	repo := helpers.NewTestRepo(t, "synced")
	repo.AddBareRemote("origin")

	repo.CreateBranch("feature/synced")
	repo.WriteFile("s.txt", "s")
	repo.AddFile("s.txt")
	repo.Commit("synced work")
	repo.Push("origin", "feature/synced")
	repo.Checkout("main")

	branches, err := classify.List(repo.Path, classify.ModeSynced, testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 1 || branches[0].Name != "feature/synced" {
		t.Fatalf("expected feature/synced, got %+v", branches)
	}
	if branches[0].RemoteHash != branches[0].Hash {
		t.Error("synced branch must have identical local and remote tips")
	}

	// Advance the local tip; the branch must drop out on the next query.
	repo.Checkout("feature/synced")
	repo.WriteFile("s2.txt", "s2")
	repo.AddFile("s2.txt")
	repo.Commit("diverging work")
	repo.Checkout("main")

	branches, err = classify.List(repo.Path, classify.ModeSynced, testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 0 {
		t.Errorf("expected no synced branches after local commit, got %+v", branches)
	}
}

func TestList_Synced_SkipRecentAuthorCommits(t *testing.T) {
	repo := helpers.NewTestRepo(t, "synced-recent")
	repo.AddBareRemote("origin")

	repo.CreateBranch("feature/mine")
	repo.WriteFile("m.txt", "m")
	repo.AddFile("m.txt")
	repo.Commit("my work")
	repo.Push("origin", "feature/mine")
	repo.Checkout("main")

	repo.CreateBranch("feature/theirs")
	repo.CommitWithAuthor("their work", "Other Dev", "other@example.com")
	repo.Push("origin", "feature/theirs")
	repo.Checkout("main")

	opts := testOpts()
	opts.SkipRecentAuthorCommits = true
	// Window of 1 looks at the branch tip only; the initial commit on main
	// (authored by the test user) is shared history and must not count
	// against feature/theirs.
	opts.RecentCommitWindow = 1

	branches, err := classify.List(repo.Path, classify.ModeSynced, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 1 || branches[0].Name != "feature/theirs" {
		t.Errorf("expected only feature/theirs, got %+v", branches)
	}
}

func TestList_Unmerged(t *testing.T) {
	repo := helpers.NewTestRepo(t, "unmerged")
	repo.AddBareRemote("origin")

	repo.CreateBranch("feature/diverged")
	repo.WriteFile("d.txt", "d")
	repo.AddFile("d.txt")
	repo.Commit("diverged work")
	repo.Push("origin", "feature/diverged")
	repo.Checkout("main")

	repo.CreateBranch("feature/merged")
	repo.WriteFile("m.txt", "m")
	repo.AddFile("m.txt")
	repo.Commit("merged work")
	repo.Push("origin", "feature/merged")
	repo.Checkout("main")
	repo.Merge("feature/merged")

	branches, err := classify.List(repo.Path, classify.ModeUnmerged, testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 1 || branches[0].Name != "feature/diverged" {
		t.Errorf("expected only feature/diverged, got %+v", branches)
	}
}

func TestRecheck_FailsAfterBranchAdvances(t *testing.T) {
	repo := helpers.NewTestRepo(t, "recheck")

	repo.CreateBranch("feature/was-merged")
	repo.WriteFile("w.txt", "w")
	repo.AddFile("w.txt")
	repo.Commit("merged work")
	repo.Checkout("main")
	repo.Merge("feature/was-merged")

	opts := testOpts()
	if err := classify.Recheck(repo.Path, classify.ModeMerged, "feature/was-merged", opts); err != nil {
		t.Fatalf("expected recheck to pass while merged: %v", err)
	}

	// Someone advances the branch between listing and confirming.
	repo.Checkout("feature/was-merged")
	repo.WriteFile("w2.txt", "w2")
	repo.AddFile("w2.txt")
	repo.Commit("new work after merge")
	repo.Checkout("main")

	err := classify.Recheck(repo.Path, classify.ModeMerged, "feature/was-merged", opts)
	if err == nil {
		t.Fatal("expected recheck to fail after the branch advanced past trunk")
	}
	if !strings.Contains(err.Error(), "no longer qualifies") {
		t.Errorf("expected a stale-state explanation, got: %v", err)
	}
}

func TestList_ZeroCommitBranchExcluded(t *testing.T) {
	repo := helpers.NewTestRepo(t, "empty-list")

	branches, err := classify.List(repo.Path, classify.ModeMerged, testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 0 {
		t.Errorf("expected no candidates in a repo with only trunk, got %+v", branches)
	}
}

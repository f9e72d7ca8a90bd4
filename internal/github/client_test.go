package github

import "testing"

func TestParseGitHubRemote(t *testing.T) {
	tests := []struct {
		url   string
		owner string
		repo  string
		ok    bool
	}{
		{"git@github.com:acme/widgets.git", "acme", "widgets", true},
		{"git@github.com:acme/widgets", "acme", "widgets", true},
		{"https://github.com/acme/widgets.git", "acme", "widgets", true},
		{"https://github.com/acme/widgets", "acme", "widgets", true},
		{"https://github.com/acme/widgets/", "acme", "widgets", true},
		{"http://github.com/acme/widgets", "acme", "widgets", true},
		{"ssh://git@github.com/acme/widgets.git", "acme", "widgets", true},
		{"  git@github.com:acme/widgets.git\n", "acme", "widgets", true},
		{"git@github.com:acme/my.dotted.repo.git", "acme", "my.dotted.repo", true},
		{"git@gitlab.com:acme/widgets.git", "", "", false},
		{"https://bitbucket.org/acme/widgets", "", "", false},
		{"/srv/git/widgets.git", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		owner, repo, ok := ParseGitHubRemote(tt.url)
		if ok != tt.ok || owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseGitHubRemote(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.url, owner, repo, ok, tt.owner, tt.repo, tt.ok)
		}
	}
}

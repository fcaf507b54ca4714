package giturl

import "testing"

func TestIsGitPatternShorthand(t *testing.T) {
	if !IsGitPattern("user/repo") {
		t.Fatal("expected user/repo to be recognized")
	}
}

func TestIsGitPatternRejectsLeadingGitPrefix(t *testing.T) {
	if IsGitPattern("package@git@bitbucket.org:team/repo.git") {
		t.Fatal("leading non-git prefix should disqualify the specifier")
	}
}

func TestIsGitPatternRejectsArchiveURL(t *testing.T) {
	if IsGitPattern("https://github.com/user/repo/archive/v1.0.0.tar.gz") {
		t.Fatal("a three-segment path on a hosted host must not be a git pattern")
	}
}

func TestNormalizeShorthandToHTTPSHosted(t *testing.T) {
	g, err := Normalize("user/repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Protocol != "https:" {
		t.Fatalf("expected https: protocol, got %q", g.Protocol)
	}
	if g.Repository != "https://github.com/user/repo.git" {
		t.Fatalf("unexpected repository: %q", g.Repository)
	}
	if g.HostedGit == nil || g.HostedGit.User != "user" || g.HostedGit.Repo != "repo" {
		t.Fatalf("expected hostedGit fragment, got %+v", g.HostedGit)
	}
}

func TestNormalizeScpLikeWithNumericPortIsNotScpLike(t *testing.T) {
	g, err := Normalize("git+ssh://git@gitlab.tld:10202/p/m.git")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Protocol != "ssh:" {
		t.Fatalf("expected ssh: protocol, got %q", g.Protocol)
	}
	if g.Hostname != "gitlab.tld" {
		t.Fatalf("expected hostname gitlab.tld, got %q", g.Hostname)
	}
}

func TestNormalizeBareGitAt(t *testing.T) {
	g, err := Normalize("git@github.com:user/repo.git")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Protocol != "ssh:" {
		t.Fatalf("expected ssh:, got %q", g.Protocol)
	}
	if g.Hostname != "github.com" {
		t.Fatalf("expected github.com, got %q", g.Hostname)
	}
}

func TestNormalizeHostedAliasGitlab(t *testing.T) {
	g, err := Normalize("gitlab:group/project#feature")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Hostname != "gitlab.com" {
		t.Fatalf("gitlab alias must resolve to gitlab.com, got %q", g.Hostname)
	}
	if g.HostedGit == nil || g.HostedGit.Hash != "feature" {
		t.Fatalf("expected hash fragment 'feature', got %+v", g.HostedGit)
	}
}

func TestProviderHostnamesAreSelfReferential(t *testing.T) {
	gitlab, _ := providerByAlias("gitlab")
	for _, h := range gitlab.Hostnames {
		if h == "github.com" {
			t.Fatal("gitlab provider must not recognize github.com as one of its hostnames")
		}
	}
}

func TestExplodeHostedGitFragmentRoundTrip(t *testing.T) {
	f, err := ExplodeHostedGitFragment("github:user/repo#deadbeef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.User != "user" || f.Repo != "repo" || f.Hash != "deadbeef" {
		t.Fatalf("unexpected fragment: %+v", f)
	}
}

func TestIsGitPatternGitPlusScheme(t *testing.T) {
	if !IsGitPattern("git+https://example.com/user/repo.git") {
		t.Fatal("git+ scheme must be recognized")
	}
	g, err := Normalize("git+https://example.com/user/repo.git")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Protocol != "https:" {
		t.Fatalf("expected https: after stripping git+, got %q", g.Protocol)
	}
}

package gitarchive

import (
	"context"
	"testing"

	"github.com/EmundoT/git-resolve/pkg/giturl"
)

func TestHasCapabilityGithubSeededFalse(t *testing.T) {
	c := NewCache(0)
	g := giturl.GitURL{Protocol: "ssh:", Hostname: "github.com", Repository: "ssh://git@github.com/x/y.git"}
	called := false
	got := c.HasCapability(context.Background(), g, func(ctx context.Context, repo string) (string, error) {
		called = true
		return "", nil
	})
	if got {
		t.Fatal("expected github.com to be seeded as incapable")
	}
	if called {
		t.Fatal("seeded entries must not re-probe")
	}
}

func TestHasCapabilityDetectsSupportFromStderr(t *testing.T) {
	c := NewCache(0)
	g := giturl.GitURL{Protocol: "ssh:", Hostname: "git.example.com", Repository: "ssh://git@git.example.com/x/y.git"}
	got := c.HasCapability(context.Background(), g, func(ctx context.Context, repo string) (string, error) {
		return "fatal: pathspec did not match any files", errFailed
	})
	if !got {
		t.Fatal("expected capability to be detected from stderr substring")
	}
}

func TestHasCapabilityCachesResult(t *testing.T) {
	c := NewCache(0)
	g := giturl.GitURL{Protocol: "ssh:", Hostname: "git.example.com", Repository: "ssh://git@git.example.com/x/y.git"}
	calls := 0
	probe := func(ctx context.Context, repo string) (string, error) {
		calls++
		return "fatal: did not match any files", errFailed
	}
	c.HasCapability(context.Background(), g, probe)
	c.HasCapability(context.Background(), g, probe)
	if calls != 1 {
		t.Fatalf("expected probe to run exactly once, ran %d times", calls)
	}
}

func TestHasCapabilityOtherFailureMeansNoCapability(t *testing.T) {
	c := NewCache(0)
	g := giturl.GitURL{Protocol: "ssh:", Hostname: "auth-fails.example.com", Repository: "ssh://git@auth-fails.example.com/x/y.git"}
	got := c.HasCapability(context.Background(), g, func(ctx context.Context, repo string) (string, error) {
		return "Permission denied (publickey)", errFailed
	})
	if got {
		t.Fatal("expected auth failure to mean no capability")
	}
}

var errFailed = fakeErr("probe failed")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

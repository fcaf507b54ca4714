package resolver

import (
	"context"
	"testing"

	"github.com/EmundoT/git-resolve/internal/gittestutil"
	"github.com/EmundoT/git-resolve/internal/rconfig"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	cfg := rconfig.Default()
	cfg.TempRoot = t.TempDir()
	return New(cfg)
}

func TestResolveParsesRegistryManifest(t *testing.T) {
	repo := gittestutil.New(t)
	repo.Commit("initial", map[string]string{"package.json": `{"name":"demo","version":"1.2.3"}`})
	remote := repo.BareClone(t)

	r := newTestResolver(t)
	manifest, err := r.Resolve(context.Background(), "file://"+remote)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.Raw["name"] != "demo" {
		t.Fatalf("expected manifest name demo, got %v", manifest.Raw["name"])
	}
	if len(manifest.UID) != 40 {
		t.Fatalf("expected 40-hex uid, got %q", manifest.UID)
	}
	if manifest.Remote.Type != "git" {
		t.Fatalf("expected remote type git, got %q", manifest.Remote.Type)
	}
	if manifest.Remote.Registry != "package.json" {
		t.Fatalf("expected registry package.json, got %q", manifest.Remote.Registry)
	}
}

func TestResolveSynthesizesManifestWhenRegistryFileAbsent(t *testing.T) {
	repo := gittestutil.New(t)
	repo.Commit("initial", map[string]string{"README.md": "hello"})
	remote := repo.BareClone(t)

	r := newTestResolver(t)
	manifest, err := r.Resolve(context.Background(), "file://"+remote)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.Raw["version"] != "0.0.0" {
		t.Fatalf("expected synthesized version 0.0.0, got %v", manifest.Raw["version"])
	}
	if manifest.Remote.Registry != "" {
		t.Fatalf("expected empty registry for synthesized manifest, got %q", manifest.Remote.Registry)
	}
}

func TestResolveRejectsNonGitSpecifier(t *testing.T) {
	r := newTestResolver(t)
	_, err := r.Resolve(context.Background(), "not a specifier at all!!")
	if err == nil {
		t.Fatal("expected error for non-git specifier")
	}
}

func TestResolveReplaysLockedGitEntry(t *testing.T) {
	r := newTestResolver(t)
	locked := &Manifest{Raw: map[string]any{"name": "pinned"}, UID: "deadbeef"}
	r.LoadLockEntry(LockEntry{Specifier: "user/repo", Type: "git", Manifest: locked})

	manifest, err := r.Resolve(context.Background(), "user/repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest != locked {
		t.Fatal("expected the locked manifest to be replayed unchanged")
	}
}

func TestGuessNameStripsGitSuffix(t *testing.T) {
	if got := guessName("https://github.com/user/my-repo.git"); got != "my-repo" {
		t.Fatalf("expected my-repo, got %q", got)
	}
}

func TestResolveWithOptionsFallsBackToMirror(t *testing.T) {
	repo := gittestutil.New(t)
	repo.Commit("initial", map[string]string{"package.json": `{"name":"demo","version":"1.2.3"}`})
	remote := repo.BareClone(t)

	r := newTestResolver(t)
	opts := ResolveOptions{Mirrors: []string{"file://" + remote}}

	manifest, err := r.ResolveWithOptions(context.Background(), "file:///nonexistent/broken-primary.git", opts)
	if err != nil {
		t.Fatalf("expected fallback to mirror to succeed, got: %v", err)
	}
	if manifest.Raw["name"] != "demo" {
		t.Fatalf("expected manifest resolved from mirror, got %v", manifest.Raw["name"])
	}
}

func TestResolveWithOptionsReturnsLastErrorWhenAllCandidatesFail(t *testing.T) {
	r := newTestResolver(t)
	opts := ResolveOptions{Mirrors: []string{"file:///nonexistent/also-broken.git"}}

	_, err := r.ResolveWithOptions(context.Background(), "file:///nonexistent/broken-primary.git", opts)
	if err == nil {
		t.Fatal("expected an error when primary and every mirror fail")
	}
}

package gitversion

import (
	"context"
	"testing"

	"github.com/EmundoT/git-resolve/internal/rerrors"
	"github.com/EmundoT/git-resolve/pkg/gitrefs"
)

func sampleRefs() gitrefs.Refs {
	return gitrefs.Refs{
		"refs/heads/1.1":   "A000000000000000000000000000000000000000",
		"refs/tags/v1.1.0": "B000000000000000000000000000000000000000",
		"refs/tags/both":   "C000000000000000000000000000000000000000",
		"refs/heads/both":  "D000000000000000000000000000000000000000",
	}
}

func TestResolveEmptyYieldsDefaultBranchSentinel(t *testing.T) {
	res, err := Resolve(context.Background(), "", gitrefs.Refs{}, nil, "remote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Default {
		t.Fatalf("expected default-branch sentinel, got %+v", res)
	}
}

func TestResolveWildcardYieldsDefaultBranchSentinel(t *testing.T) {
	res, err := Resolve(context.Background(), "*", gitrefs.Refs{}, nil, "remote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Default {
		t.Fatalf("expected default-branch sentinel for wildcard, got %+v", res)
	}
}

func TestResolveTagBeatsBranchAndFullRefIsLiteral(t *testing.T) {
	refs := sampleRefs()

	res, err := Resolve(context.Background(), "both", refs, nil, "remote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SHA != "C000000000000000000000000000000000000000" || res.Ref != "refs/tags/both" {
		t.Fatalf("tags must beat branches for exact name match, got %+v", res)
	}

	res, err = Resolve(context.Background(), "refs/heads/both", refs, nil, "remote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SHA != "D000000000000000000000000000000000000000" {
		t.Fatalf("expected explicit full ref to win, got %+v", res)
	}
}

func TestResolveExactBranchNameBeatsSemver(t *testing.T) {
	refs := sampleRefs()
	res, err := Resolve(context.Background(), "1.1", refs, nil, "remote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SHA != "A000000000000000000000000000000000000000" || res.Ref != "refs/heads/1.1" {
		t.Fatalf("a branch literally named 1.1 must win over any semver match, got %+v", res)
	}
}

func TestResolveSemverRangeAgainstTags(t *testing.T) {
	refs := sampleRefs()
	res, err := Resolve(context.Background(), "~1.1", refs, nil, "remote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SHA != "B000000000000000000000000000000000000000" || res.Ref != "refs/tags/v1.1.0" {
		t.Fatalf("expected semver match against tags, got %+v", res)
	}
}

func TestResolveCommitPrefixAgainstRefs(t *testing.T) {
	refs := gitrefs.Refs{"refs/heads/main": "deadbeef00000000000000000000000000000000"}
	res, err := Resolve(context.Background(), "DEADBEEF", refs, nil, "remote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Ref != "refs/heads/main" {
		t.Fatalf("expected commit prefix to resolve via listed ref, got %+v", res)
	}
}

func TestResolveCommitPrefixFallsBackToLiveLookup(t *testing.T) {
	called := false
	resolver := func(ctx context.Context, commitish string) (string, bool, error) {
		called = true
		if commitish == "abcde" {
			return "abcde00000000000000000000000000000000000", true, nil
		}
		return "", false, nil
	}
	res, err := Resolve(context.Background(), "abcde", gitrefs.Refs{}, resolver, "remote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected live commit resolver to be consulted")
	}
	if res.Ref != "" {
		t.Fatalf("expected no ref for an unlisted commit, got %+v", res)
	}
}

func TestResolveNotFound(t *testing.T) {
	_, err := Resolve(context.Background(), "v9.9.9-does-not-exist", gitrefs.Refs{"refs/tags/v1.0.0": "a"}, nil, "https://example.com/x.git")
	if !rerrors.IsNotFoundError(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

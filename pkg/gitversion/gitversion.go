// Package gitversion maps a user-supplied version token plus a listed
// ref table to a concrete commit resolution, applying the ordered
// strategies from exact match through semver range to the default
// branch wildcard.
package gitversion

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/EmundoT/git-resolve/internal/rerrors"
	"github.com/EmundoT/git-resolve/pkg/gitrefs"
	"github.com/EmundoT/git-resolve/pkg/gitsecure"
)

// Resolution is the outcome of resolving a version token.
type Resolution struct {
	// Default means "resolve HEAD's symbolic target lazily via the
	// live remote" — the caller must materialize SHA/Ref separately.
	Default bool
	SHA     string
	// Ref is empty when SHA was resolved to a raw commit not known to
	// belong to any listed ref.
	Ref string
}

// CommitResolver looks up an arbitrary commit-ish string inside the
// repository's working copy (git rev-list -n 1 --no-abbrev-commit),
// for commit prefixes that are not present in the listed refs.
type CommitResolver func(ctx context.Context, commitish string) (sha string, found bool, err error)

// Resolve applies the ordered strategies from spec §4.5 and returns the
// first non-nil result. remote is used only to decorate a NotFoundError.
func Resolve(ctx context.Context, version string, refs gitrefs.Refs, resolveCommit CommitResolver, remote string) (Resolution, error) {
	trimmed := strings.TrimSpace(version)

	// 1. Empty: default-branch sentinel.
	if trimmed == "" {
		return Resolution{Default: true}, nil
	}

	// 2. Commit SHA (5-40 hex, case-insensitive).
	if gitsecure.LooksLikeCommit(trimmed) {
		lower := strings.ToLower(trimmed)
		for ref, sha := range refs {
			if strings.HasPrefix(sha, lower) {
				return Resolution{SHA: sha, Ref: ref}, nil
			}
		}
		if resolveCommit != nil {
			sha, found, err := resolveCommit(ctx, lower)
			if err != nil {
				return Resolution{}, err
			}
			if found {
				return Resolution{SHA: sha}, nil
			}
		}
	}

	// 3. Full ref.
	if strings.HasPrefix(trimmed, "refs/") {
		if sha, ok := refs[trimmed]; ok {
			return Resolution{SHA: sha, Ref: trimmed}, nil
		}
	}

	// 4. Tag name.
	if sha, ok := refs.Tag(trimmed); ok {
		return Resolution{SHA: sha, Ref: "refs/tags/" + trimmed}, nil
	}

	// 5. Branch name.
	if sha, ok := refs.Branch(trimmed); ok {
		return Resolution{SHA: sha, Ref: "refs/heads/" + trimmed}, nil
	}

	// 6. Semver range against tags, 7. against branches.
	if constraint, err := semver.NewConstraint(trimmed); err == nil {
		if res, ok := bestSemverMatch(refs.TagNames(), constraint, refs.Tag, "refs/tags/"); ok {
			return res, nil
		}
		if res, ok := bestSemverMatch(refs.BranchNames(), constraint, refs.Branch, "refs/heads/"); ok {
			return res, nil
		}
	}

	// 8. Wildcard.
	if trimmed == "*" {
		return Resolution{Default: true}, nil
	}

	return Resolution{}, &rerrors.NotFoundError{Version: version, Remote: remote, Known: refs.Names()}
}

func bestSemverMatch(names []string, constraint *semver.Constraints, lookup func(string) (string, bool), prefix string) (Resolution, bool) {
	var best *semver.Version
	var bestName string
	for _, name := range names {
		v, err := semver.NewVersion(name)
		if err != nil {
			continue
		}
		if !constraint.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestName = name
		}
	}
	if best == nil {
		return Resolution{}, false
	}
	sha, _ := lookup(bestName)
	return Resolution{SHA: sha, Ref: prefix + bestName}, true
}

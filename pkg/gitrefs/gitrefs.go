// Package gitrefs parses the output of `git ls-remote --tags --heads`
// (or an equivalent hosted-git info-refs response) into a ref-name to
// commit-SHA mapping, applying peeled-tag override semantics.
package gitrefs

import (
	"regexp"
	"strings"
)

var refLine = regexp.MustCompile(`^([0-9a-fA-F]+)\s+(refs/(?:tags|heads)/.*)$`)

// Refs maps a full ref name (e.g. "refs/tags/v1.0.0") to its 40-hex
// commit SHA.
type Refs map[string]string

// Parse parses raw ls-remote stdout. Lines that are not a hash
// followed by a refs/tags/ or refs/heads/ name (banners, comments,
// merge-request refs) are ignored. A peeled-tag suffix "^{}" is
// stripped from the ref name before insertion, and the peeled SHA
// overwrites any prior entry for that name — so annotated tags end up
// pointing at the underlying commit, not the tag object.
func Parse(output string) Refs {
	refs := make(Refs)
	for _, line := range strings.Split(output, "\n") {
		m := refLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		sha := strings.ToLower(m[1])
		name := strings.TrimSuffix(m[2], "^{}")
		refs[name] = sha
	}
	return refs
}

// Tag looks up "refs/tags/<name>".
func (r Refs) Tag(name string) (string, bool) {
	sha, ok := r["refs/tags/"+name]
	return sha, ok
}

// Branch looks up "refs/heads/<name>".
func (r Refs) Branch(name string) (string, bool) {
	sha, ok := r["refs/heads/"+name]
	return sha, ok
}

// TagNames returns the bare tail of every refs/tags/ entry, e.g.
// "v1.0.0" for "refs/tags/v1.0.0".
func (r Refs) TagNames() []string {
	return tails(r, "refs/tags/")
}

// BranchNames returns the bare tail of every refs/heads/ entry.
func (r Refs) BranchNames() []string {
	return tails(r, "refs/heads/")
}

func tails(r Refs, prefix string) []string {
	var out []string
	for name := range r {
		if strings.HasPrefix(name, prefix) {
			out = append(out, strings.TrimPrefix(name, prefix))
		}
	}
	return out
}

// Names returns every known ref name, for error messages that list
// what was available.
func (r Refs) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	return out
}

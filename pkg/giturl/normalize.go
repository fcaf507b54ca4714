package giturl

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize converts a recognized specifier into its canonical GitURL.
// Callers should check IsGitPattern first; Normalize itself applies the
// same rule ordering and returns an error only for a specifier that
// matches none of them.
func Normalize(s string) (GitURL, error) {
	if m := scpLikeRe.FindStringSubmatch(s); m != nil {
		rest := m[3]
		if !isAllDigits(firstSegment(rest)) {
			host := m[2]
			userAt := m[1]
			repo := fmt.Sprintf("ssh://%s%s/%s", userAt, host, rest)
			return GitURL{Protocol: "ssh:", Hostname: host, Repository: repo}, nil
		}
	}

	if shorthandRe.MatchString(s) {
		return normalizeHostedAlias("github:" + s)
	}

	if m := bareGitAtRe.FindStringSubmatch(s); m != nil {
		host := m[1]
		repo := fmt.Sprintf("ssh://git@%s/%s", host, m[2])
		return GitURL{Protocol: "ssh:", Hostname: host, Repository: repo}, nil
	}

	if hostedAliasRe.MatchString(s) {
		return normalizeHostedAlias(s)
	}

	stripped := strings.TrimPrefix(s, "git+")
	u, err := url.Parse(stripped)
	if err != nil {
		return GitURL{}, fmt.Errorf("giturl: unparsable specifier %q: %w", s, err)
	}
	protocol := u.Scheme
	if protocol == "" {
		protocol = "file"
	}
	return GitURL{
		Protocol:   protocol + ":",
		Hostname:   u.Hostname(),
		Repository: stripped,
	}, nil
}

func normalizeHostedAlias(s string) (GitURL, error) {
	m := hostedAliasRe.FindStringSubmatch(s)
	if m == nil {
		return GitURL{}, fmt.Errorf("giturl: not a hosted-alias specifier: %q", s)
	}
	alias, user, repo, hash := m[1], m[2], m[3], m[4]
	provider, ok := providerByAlias(alias)
	if !ok {
		return GitURL{}, fmt.Errorf("giturl: unknown hosted provider %q", alias)
	}
	repo = strings.TrimSuffix(repo, ".git")
	repository := fmt.Sprintf("https://%s/%s/%s.git", provider.DefaultHost, user, repo)
	return GitURL{
		Protocol:   "https:",
		Hostname:   provider.DefaultHost,
		Repository: repository,
		HostedGit:  &HostedGitFragment{User: user, Repo: repo, Hash: hash},
	}, nil
}

// ExplodeHostedGitFragment recovers the {user, repo, hash} tuple from a
// hosted-alias or github-shorthand specifier, for round-trip tests and
// for computing alternate (ssh, archive, reflog) URLs from a Manifest's
// retained HostedGit fragment.
func ExplodeHostedGitFragment(s string) (*HostedGitFragment, error) {
	candidate := s
	if shorthandRe.MatchString(s) {
		candidate = "github:" + s
	}
	m := hostedAliasRe.FindStringSubmatch(candidate)
	if m == nil {
		return nil, fmt.Errorf("giturl: %q has no hosted-git fragment", s)
	}
	repo := strings.TrimSuffix(m[3], ".git")
	return &HostedGitFragment{User: m[2], Repo: repo, Hash: m[4]}, nil
}

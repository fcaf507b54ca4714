// Package gitsecure enforces the transport-security policy: a fetch of
// mutable content (a branch or tag, not a commit pin) must be
// integrity-protected by TLS, or must be upgraded to it, or refused.
package gitsecure

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/EmundoT/git-resolve/internal/rerrors"
	"github.com/EmundoT/git-resolve/pkg/giturl"
)

var commitShaRe = regexp.MustCompile(`^[0-9a-fA-F]{5,40}$`)

// LooksLikeCommit reports whether userHash is a 5-40 hex digit string,
// the threshold at which a fetch is considered pinned and therefore
// self-authenticating over any transport.
func LooksLikeCommit(userHash string) bool {
	return commitShaRe.MatchString(userHash)
}

// RemoteProbe checks whether a remote exists and is reachable, used to
// decide whether an https upgrade (or an http fallback) is viable.
// Implementations typically run `git ls-remote -t <repo>`.
type RemoteProbe func(ctx context.Context, repository string) (exists bool)

// Secure applies the upgrade policy to g given the user-supplied
// version token. It never mutates g; it returns the URL to actually use.
func Secure(ctx context.Context, g giturl.GitURL, userHash string, probe RemoteProbe) (giturl.GitURL, error) {
	if LooksLikeCommit(userHash) {
		return g, nil
	}

	switch g.Protocol {
	case "git:":
		httpsURL := rewriteScheme(g, "https:")
		if probe(ctx, httpsURL.Repository) {
			return httpsURL, nil
		}
		return giturl.GitURL{}, &rerrors.SecurityError{URL: g.Repository, Reason: "refusing git:// without commit pin"}

	case "http:":
		httpsURL := rewriteScheme(g, "https:")
		if probe(ctx, httpsURL.Repository) {
			return httpsURL, nil
		}
		if probe(ctx, g.Repository) {
			return g, nil
		}
		return giturl.GitURL{}, &rerrors.SecurityError{URL: g.Repository, Reason: "refusing http:// without commit pin and no https mirror"}

	case "https:":
		if probe(ctx, g.Repository) {
			return g, nil
		}
		return giturl.GitURL{}, &rerrors.SecurityError{URL: g.Repository, Reason: "https remote unreachable"}

	default: // "ssh:", "file:"
		return g, nil
	}
}

// SanitizeURL strips embedded userinfo credentials from rawURL so log
// and error output never display them. SCP-style ssh URLs (git@host:path)
// are returned unchanged: "git" there is a fixed username, not a secret.
func SanitizeURL(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User != nil {
		u.User = nil
		return u.String()
	}
	return rawURL
}

// rewriteScheme swaps g's scheme, reusing its hostname/path.
func rewriteScheme(g giturl.GitURL, scheme string) giturl.GitURL {
	u, err := url.Parse(g.Repository)
	if err != nil {
		return giturl.GitURL{Protocol: scheme, Hostname: g.Hostname, Repository: g.Repository, HostedGit: g.HostedGit}
	}
	u.Scheme = strings.TrimSuffix(scheme, ":")
	return giturl.GitURL{
		Protocol:   scheme,
		Hostname:   g.Hostname,
		Repository: u.String(),
		HostedGit:  g.HostedGit,
	}
}

package giturl

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// Rule 1: scp-like git+ssh://[user@]host:path. The colon separator
	// (not a slash) distinguishes this from an ordinary URL with a port.
	scpLikeRe = regexp.MustCompile(`^git\+ssh://([^/@]+@)?([^:/]+):(.+)$`)

	// Rule 2: github shorthand "user/repo[#hash]". No leading
	// dot/hyphen/colon/at/percent/slash/whitespace, exactly one slash.
	shorthandRe = regexp.MustCompile(`^[^:@%/\s.-][^:@%/\s]*/[^:@\s/%]+(?:#(.*))?$`)

	// Rule 3: bare "git@host[:/]user/repo[#hash]" without a scheme.
	bareGitAtRe = regexp.MustCompile(`^git@([^:/]+)[:/](.+?)(?:\.git)?(?:#(.*))?$`)

	// Rule 4: hosted alias "<provider>:user/repo[.git][#hash]".
	hostedAliasRe = regexp.MustCompile(`^(github|gitlab|bitbucket):([^/]+)/([^#]+?)(?:\.git)?(?:#(.*))?$`)
)

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

// IsGitPattern reports whether s designates a git-hosted package under
// any of the recognized specifier rules.
func IsGitPattern(s string) bool {
	if m := scpLikeRe.FindStringSubmatch(s); m != nil {
		if !isAllDigits(firstSegment(m[3])) {
			return true
		}
	}
	if shorthandRe.MatchString(s) {
		return true
	}
	if bareGitAtRe.MatchString(s) {
		return true
	}
	if hostedAliasRe.MatchString(s) {
		return true
	}

	stripped := strings.TrimPrefix(s, "git+")
	u, err := url.Parse(stripped)
	if err != nil || u.Scheme == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if strings.HasPrefix(s, "git+") || scheme == "git" || scheme == "ssh" {
		return true
	}
	if strings.HasSuffix(u.Path, ".git") {
		return true
	}
	if isKnownHostedHost(u.Host) {
		segs := nonEmptySegments(u.Path)
		if len(segs) == 2 {
			return true
		}
	}
	return false
}

func nonEmptySegments(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

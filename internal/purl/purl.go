// Package purl builds Package URLs (https://github.com/package-url/purl-spec)
// for a resolved git package, giving the façade's Manifest decoration a
// standard cross-ecosystem identifier alongside the _uid/_remote
// provenance fields.
package purl

import (
	"net/url"
	"strings"

	"github.com/EmundoT/git-resolve/pkg/giturl"
)

// Type is the PURL "type" segment.
type Type string

const (
	TypeGitHub    Type = "github"
	TypeGitLab    Type = "gitlab"
	TypeBitbucket Type = "bitbucket"
	TypeGeneric   Type = "generic"
)

// PURL is a parsed/constructed Package URL.
type PURL struct {
	Type      Type
	Namespace string
	Name      string
	Version   string
}

// String formats p as a standard PURL string, or "" if Type/Name are
// unset.
func (p *PURL) String() string {
	if p.Type == "" || p.Name == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("pkg:")
	sb.WriteString(string(p.Type))
	sb.WriteRune('/')
	if p.Namespace != "" {
		sb.WriteString(url.PathEscape(p.Namespace))
		sb.WriteRune('/')
	}
	sb.WriteString(url.PathEscape(p.Name))
	if p.Version != "" {
		sb.WriteRune('@')
		sb.WriteString(url.PathEscape(p.Version))
	}
	return sb.String()
}

// FromGitURL builds a PURL from a normalized GitURL and a resolved
// version/commit. Returns nil when the repository path does not carry
// at least an owner and a name (e.g. a bare local file path).
func FromGitURL(g giturl.GitURL, version string) *PURL {
	owner, name, ok := ownerAndName(g)
	if !ok {
		return nil
	}
	return &PURL{
		Type:      typeForHostname(g.Hostname),
		Namespace: owner,
		Name:      name,
		Version:   version,
	}
}

func ownerAndName(g giturl.GitURL) (owner, name string, ok bool) {
	if g.HostedGit != nil {
		return g.HostedGit.User, g.HostedGit.Repo, true
	}
	u, err := url.Parse(g.Repository)
	if err != nil || u.Host == "" {
		return "", "", false
	}
	segs := make([]string, 0, 2)
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	if len(segs) < 2 {
		return "", "", false
	}
	owner = strings.Join(segs[:len(segs)-1], "/")
	name = strings.TrimSuffix(segs[len(segs)-1], ".git")
	return owner, name, true
}

func typeForHostname(host string) Type {
	switch {
	case strings.Contains(host, "github"):
		return TypeGitHub
	case strings.Contains(host, "gitlab"):
		return TypeGitLab
	case strings.Contains(host, "bitbucket"):
		return TypeBitbucket
	default:
		return TypeGeneric
	}
}

package giturl

import "strings"

// HostedProvider is a known git-hosting alias with a default hostname.
type HostedProvider struct {
	Alias        string   // the "<provider>:" prefix, e.g. "github"
	DefaultHost  string   // the canonical hostname for the template-built URL
	Hostnames    []string // hostnames recognized as belonging to this provider
}

// providers is the static hosted-provider table. Each provider's
// Hostnames set is self-referential: earlier lineages of this table
// carried an entry where the gitlab provider's recognized hostname set
// included github.com, a copy-paste bug. Every provider here lists only
// its own real hostnames.
var providers = []HostedProvider{
	{Alias: "github", DefaultHost: "github.com", Hostnames: []string{"github.com"}},
	{Alias: "gitlab", DefaultHost: "gitlab.com", Hostnames: []string{"gitlab.com"}},
	{Alias: "bitbucket", DefaultHost: "bitbucket.org", Hostnames: []string{"bitbucket.org", "bitbucket.com"}},
}

// providerByAlias finds a provider by its "<alias>:" prefix.
func providerByAlias(alias string) (HostedProvider, bool) {
	for _, p := range providers {
		if p.Alias == alias {
			return p, true
		}
	}
	return HostedProvider{}, false
}

// isKnownHostedHost reports whether host belongs to any provider's
// recognized hostname set (used by rule 7: a bare host/user/repo path
// on a known hosted-git host).
func isKnownHostedHost(host string) bool {
	host = strings.ToLower(host)
	for _, p := range providers {
		for _, h := range p.Hostnames {
			if h == host {
				return true
			}
		}
	}
	return false
}

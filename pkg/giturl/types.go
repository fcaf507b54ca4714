// Package giturl classifies free-form dependency specifiers as
// git-hosted or not, and normalizes recognized ones into a canonical
// GitURL that lower layers hand verbatim to the git binary.
package giturl

// GitURL is the canonical, normalized form of a specifier.
type GitURL struct {
	// Protocol includes the trailing colon: "ssh:", "https:", "git:",
	// "http:", or "file:".
	Protocol string
	// Hostname is empty for file: URLs.
	Hostname string
	// Repository is the string handed verbatim to git.
	Repository string
	// HostedGit is set when the specifier matched a hosted-provider
	// rule, preserving the exploded fragment for later HTTPS-mirror or
	// reflog-URL computation.
	HostedGit *HostedGitFragment
}

// HostedGitFragment is the exploded {user, repo, hash} captured from a
// hosted-alias or github-shorthand specifier.
type HostedGitFragment struct {
	User string
	Repo string
	Hash string
}

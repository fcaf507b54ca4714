// Package resolver implements the resolve façade: it ties together URL
// recognition, transport security, session management, and registry
// manifest retrieval into the single entry point the outer system calls
// with a raw specifier string.
package resolver

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/EmundoT/git-resolve/internal/lockqueue"
	"github.com/EmundoT/git-resolve/internal/purl"
	"github.com/EmundoT/git-resolve/internal/rconfig"
	"github.com/EmundoT/git-resolve/internal/rerrors"
	"github.com/EmundoT/git-resolve/pkg/gitarchive"
	"github.com/EmundoT/git-resolve/pkg/gitsecure"
	"github.com/EmundoT/git-resolve/pkg/gitsession"
	"github.com/EmundoT/git-resolve/pkg/giturl"
)

// LockEntry is one previously-resolved specifier, as persisted by the
// outer system's lockfile. A matching entry short-circuits resolve
// entirely, making repeated resolves of an already-locked specifier
// idempotent and clone-free.
type LockEntry struct {
	Specifier string
	Type      string
	Manifest  *Manifest
}

// Resolver holds the process-wide state shared across resolve calls:
// configuration, the archive-capability cache, and the fetch lock
// queue. Construct one per process and reuse it for every resolve.
type Resolver struct {
	config       rconfig.Config
	archiveCache *gitarchive.Cache
	lockQueue    *lockqueue.Queue
	logHook      func(event string, fields map[string]any)
	lockfile     map[string]LockEntry
}

// New constructs a Resolver from cfg. An empty cfg.Registries falls
// back to rconfig.Default()'s list.
func New(cfg rconfig.Config) *Resolver {
	if len(cfg.Registries) == 0 {
		cfg.Registries = rconfig.Default().Registries
	}
	return &Resolver{
		config:       cfg,
		archiveCache: gitarchive.NewCache(cfg.ArchiveCacheTTL),
		lockQueue:    lockqueue.New(),
		lockfile:     map[string]LockEntry{},
	}
}

// WithLogHook attaches a structured-event hook propagated to every
// session this Resolver creates.
func (r *Resolver) WithLogHook(hook func(event string, fields map[string]any)) *Resolver {
	r.logHook = hook
	return r
}

// LoadLockEntry seeds the resolver's idempotent-replay table with a
// previously-persisted lock entry.
func (r *Resolver) LoadLockEntry(entry LockEntry) {
	r.lockfile[entry.Specifier] = entry
}

// ResolveOptions carries optional, non-default resolve behavior. The
// zero value matches Resolve's own behavior.
type ResolveOptions struct {
	// Mirrors lists alternate repository URLs tried in order after the
	// primary, for registries that replicate a repository across
	// multiple remotes. A mirror is only consulted when resolving the
	// previous URL in the list returns an error of any kind; it is not
	// a load-balancing mechanism.
	Mirrors []string
}

// Resolve is the façade's single entry point: given a raw specifier, it
// returns a fully decorated Manifest or a taxonomy error
// (rerrors.SecurityError, rerrors.MessageError, rerrors.NotFoundError).
func (r *Resolver) Resolve(ctx context.Context, specifier string) (*Manifest, error) {
	return r.ResolveWithOptions(ctx, specifier, ResolveOptions{})
}

// ResolveWithOptions is Resolve with mirror fallback: see
// ResolveOptions.Mirrors.
func (r *Resolver) ResolveWithOptions(ctx context.Context, specifier string, opts ResolveOptions) (*Manifest, error) {
	if entry, ok := r.lockfile[specifier]; ok && entry.Type == "git" {
		return entry.Manifest, nil
	}

	if !giturl.IsGitPattern(specifier) {
		return nil, &rerrors.MessageError{Context: "not a recognized git specifier", Detail: specifier}
	}

	g, version, err := splitVersion(specifier)
	if err != nil {
		return nil, err
	}

	if g.HostedGit != nil {
		return r.resolveHostedGit(ctx, g, version, opts.Mirrors)
	}

	return r.resolvePlain(ctx, g, version, opts.Mirrors)
}

// splitVersion normalizes specifier and separates any trailing #hash
// fragment (already captured on HostedGit.Hash by Normalize) into a
// plain version token understood by gitversion.Resolve.
func splitVersion(specifier string) (giturl.GitURL, string, error) {
	g, err := giturl.Normalize(specifier)
	if err != nil {
		return giturl.GitURL{}, "", &rerrors.MessageError{Context: "unparsable specifier", Detail: specifier, Err: err}
	}
	version := ""
	if g.HostedGit != nil {
		version = g.HostedGit.Hash
	} else if i := strings.LastIndex(specifier, "#"); i >= 0 {
		version = specifier[i+1:]
		g, err = giturl.Normalize(specifier[:i])
		if err != nil {
			return giturl.GitURL{}, "", &rerrors.MessageError{Context: "unparsable specifier", Detail: specifier, Err: err}
		}
	}
	return g, version, nil
}

// resolveHostedGit implements the HostedGit fast path: the resolve is
// tried first through the remote's ssh form (built from the HostedGit
// fragment, without mirrors), so an ssh host that supports `git
// archive` is served without a clone. A NotFoundError from the ssh form
// would reproduce identically over https, so it is returned directly;
// any other ssh failure falls back to the https form (g, unchanged,
// with mirrors). If both fail, both errors are kept in the returned
// MessageError.
func (r *Resolver) resolveHostedGit(ctx context.Context, g giturl.GitURL, version string, mirrors []string) (*Manifest, error) {
	sshURL := giturl.GitURL{
		Protocol:   "ssh:",
		Hostname:   g.Hostname,
		Repository: "ssh://git@" + g.Hostname + "/" + g.HostedGit.User + "/" + g.HostedGit.Repo + ".git",
		HostedGit:  g.HostedGit,
	}

	manifest, sshErr := r.resolvePlain(ctx, sshURL, version, nil)
	if sshErr == nil {
		return manifest, nil
	}
	if rerrors.IsNotFoundError(sshErr) {
		return nil, sshErr
	}

	manifest, httpsErr := r.resolvePlain(ctx, g, version, mirrors)
	if httpsErr != nil {
		return nil, &rerrors.MessageError{
			Context: "hosted git resolve failed over both ssh and https",
			Detail:  gitsecure.SanitizeURL(g.Repository),
			Err:     fmt.Errorf("ssh: %w; https: %v", sshErr, httpsErr),
		}
	}
	return manifest, nil
}

// resolvePlain resolves g, then each of mirrors in order, returning the
// first that succeeds. A mirror is only attempted once the previous
// candidate fails (at Init, file retrieval, or manifest parsing); a
// resolved manifest is never compared across candidates.
func (r *Resolver) resolvePlain(ctx context.Context, g giturl.GitURL, version string, mirrors []string) (*Manifest, error) {
	candidates := append([]giturl.GitURL{g}, mirrorURLs(mirrors)...)

	var lastErr error
	for _, candidate := range candidates {
		manifest, err := r.resolveOne(ctx, candidate, version)
		if err == nil {
			return manifest, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// mirrorURLs normalizes each raw mirror specifier into a GitURL,
// silently skipping any that fail to parse: an unusable mirror entry
// should not itself abort a resolve that might still succeed on the
// primary or a later mirror.
func mirrorURLs(mirrors []string) []giturl.GitURL {
	urls := make([]giturl.GitURL, 0, len(mirrors))
	for _, m := range mirrors {
		g, err := giturl.Normalize(m)
		if err != nil {
			continue
		}
		urls = append(urls, g)
	}
	return urls
}

func (r *Resolver) resolveOne(ctx context.Context, g giturl.GitURL, version string) (*Manifest, error) {
	session := gitsession.New(r.config, g, version, r.archiveCache, r.lockQueue)
	if r.logHook != nil {
		session.WithLogHook(r.logHook)
	}

	sha, err := session.Init(ctx)
	if err != nil {
		return nil, err
	}

	resolvedURL := gitsecure.SanitizeURL(g.Repository) + "#" + sha
	pkgPURL := ""
	if p := purl.FromGitURL(g, sha); p != nil {
		pkgPURL = p.String()
	}

	for _, registry := range r.config.Registries {
		content, ok, err := session.GetFile(ctx, registry)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		raw, err := parseManifestJSON(content)
		if err != nil {
			return nil, &rerrors.MessageError{Context: "malformed registry manifest", Detail: registry, Err: err}
		}
		remote := RemoteRecord{Resolved: resolvedURL, Type: "git", Reference: session.Ref(), Hash: sha, Registry: registry}
		return decorate(raw, sha, remote, pkgPURL), nil
	}

	remote := RemoteRecord{Resolved: resolvedURL, Type: "git", Reference: session.Ref(), Hash: sha, Registry: ""}
	raw := synthesize(guessName(g.Repository))
	return decorate(raw, sha, remote, pkgPURL), nil
}

// guessName derives a package name from a repository URL's final path
// segment: strip a trailing ".git" and URL-decode the remainder.
func guessName(repository string) string {
	trimmed := strings.TrimSuffix(repository, ".git")
	base := path.Base(trimmed)
	if decoded, err := url.QueryUnescape(base); err == nil {
		return decoded
	}
	return base
}

// Package gitsession implements the stateful per-resolve handle: it
// secures a URL, lists and resolves refs, probes archive capability,
// and streams a single file or a full snapshot from the resolved
// commit into a local destination.
package gitsession

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/EmundoT/git-resolve/internal/lockqueue"
	"github.com/EmundoT/git-resolve/internal/rconfig"
	"github.com/EmundoT/git-resolve/internal/rerrors"
	"github.com/EmundoT/git-resolve/pkg/gitarchive"
	"github.com/EmundoT/git-resolve/pkg/gitproc"
	"github.com/EmundoT/git-resolve/pkg/gitrefs"
	"github.com/EmundoT/git-resolve/pkg/gitsecure"
	"github.com/EmundoT/git-resolve/pkg/giturl"
	"github.com/EmundoT/git-resolve/pkg/gitversion"
)

// Session is owned by a single resolve call.
type Session struct {
	config rconfig.Config
	gitURL giturl.GitURL
	hash   string // the live, resolved 40-hex commit SHA
	ref    string // the live ref the commit was resolved through, may be empty
	userVersion string

	cwd             string
	supportsArchive bool
	fetched         bool

	archiveCache *gitarchive.Cache
	lockQueue    *lockqueue.Queue
	logHook      func(event string, fields map[string]any)
}

// New constructs a Session for one resolve call. archiveCache and
// lockQueue are shared process-wide across sessions.
func New(cfg rconfig.Config, g giturl.GitURL, version string, archiveCache *gitarchive.Cache, lockQueue *lockqueue.Queue) *Session {
	return &Session{
		config:       cfg,
		gitURL:       g,
		userVersion:  version,
		cwd:          cfg.WorkDirFor(hashRepository(g.Repository)),
		archiveCache: archiveCache,
		lockQueue:    lockQueue,
	}
}

// WithLogHook attaches a structured-event hook used for diagnostics.
func (s *Session) WithLogHook(hook func(event string, fields map[string]any)) *Session {
	s.logHook = hook
	return s
}

func (s *Session) log(event string, fields map[string]any) {
	if s.logHook != nil {
		s.logHook(event, fields)
	}
}

func hashRepository(repository string) string {
	sum := sha256.Sum256([]byte(repository))
	return hex.EncodeToString(sum[:])
}

// sanitizedRepo returns the session's repository URL with any embedded
// userinfo credentials stripped, for use in log events and error
// messages that reach the caller or a terminal.
func (s *Session) sanitizedRepo() string {
	return gitsecure.SanitizeURL(s.gitURL.Repository)
}

// Cwd returns the content-addressed working directory for this
// session's repository, deterministic so concurrent resolves of the
// same remote share one working copy under the lock queue.
func (s *Session) Cwd() string { return s.cwd }

// Hash returns the resolved 40-hex commit, valid only after Init.
func (s *Session) Hash() string { return s.hash }

// Ref returns the ref the commit was resolved through, empty if the
// commit is not known to belong to any listed ref.
func (s *Session) Ref() string { return s.ref }

func (s *Session) bareRunner() *gitproc.Runner {
	r := gitproc.New("")
	r.Exe = s.config.GitExe
	r.LogHook = s.logHook
	return r
}

func (s *Session) cwdRunner() *gitproc.Runner {
	r := gitproc.New(s.cwd)
	r.Exe = s.config.GitExe
	r.LogHook = s.logHook
	return r
}

// Init orchestrates: secure the URL, list refs, resolve the version,
// probe archive capability (or eagerly fetch), and returns the
// resolved 40-hex commit.
func (s *Session) Init(ctx context.Context) (string, error) {
	secured, err := gitsecure.Secure(ctx, s.gitURL, s.userVersion, s.remoteExistsProbe)
	if err != nil {
		return "", err
	}
	s.gitURL = secured
	s.log("secured", map[string]any{"repository": s.sanitizedRepo()})

	refs, err := s.listRefs(ctx)
	if err != nil {
		return "", err
	}
	s.log("refs-listed", map[string]any{"count": len(refs)})

	resolution, err := gitversion.Resolve(ctx, s.userVersion, refs, s.resolveCommit, s.gitURL.Repository)
	if err != nil {
		return "", err
	}

	if resolution.Default {
		ref, sha, err := s.resolveDefaultBranch(ctx)
		if err != nil {
			return "", err
		}
		s.ref, s.hash = ref, sha
	} else {
		s.ref, s.hash = resolution.Ref, resolution.SHA
	}
	s.log("version-resolved", map[string]any{"sha": s.hash, "ref": s.ref})

	if s.ref != "" && s.gitURL.Protocol == "ssh:" && s.gitURL.Hostname != "" {
		s.supportsArchive = s.archiveCache.HasCapability(ctx, s.gitURL, s.probeArchiveCapability)
	}
	s.log("archive-probe", map[string]any{"supported": s.supportsArchive})

	if !s.supportsArchive {
		if err := s.fetch(ctx); err != nil {
			return "", err
		}
	}

	return s.hash, nil
}

func (s *Session) listRefs(ctx context.Context) (gitrefs.Refs, error) {
	out, err := s.bareRunner().Run(ctx, "ls-remote", "--tags", "--heads", s.gitURL.Repository)
	if err != nil {
		return nil, &rerrors.MessageError{Context: "listing refs failed", Detail: s.sanitizedRepo(), Err: err}
	}
	return gitrefs.Parse(out), nil
}

func (s *Session) remoteExistsProbe(ctx context.Context, repository string) bool {
	_, err := s.bareRunner().Run(ctx, "ls-remote", "-t", repository)
	return err == nil
}

func (s *Session) probeArchiveCapability(ctx context.Context, repository string) (string, error) {
	filename := gitarchive.ProbeFilename()
	_, err := s.bareRunner().Run(ctx, "archive", "--remote="+repository, "HEAD", filename)
	if err == nil {
		return "", nil
	}
	return gitproc.StderrOf(err), err
}

// resolveCommit satisfies gitversion.CommitResolver: it runs
// `git rev-list -n 1 --no-abbrev-commit --format=oneline <commitish>`
// inside the working copy, fetching first (clone, or pull when the copy
// already exists) unless this session has already fetched.
func (s *Session) resolveCommit(ctx context.Context, commitish string) (string, bool, error) {
	if err := s.fetch(ctx); err != nil {
		return "", false, err
	}
	out, err := s.cwdRunner().Run(ctx, "rev-list", "-n", "1", "--no-abbrev-commit", "--format=oneline", commitish)
	if err != nil {
		return "", false, nil
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", false, nil
	}
	return strings.ToLower(fields[0]), true, nil
}

// resolveDefaultBranch materializes the default-branch sentinel: run
// `git ls-remote --symref <repo> HEAD`, falling back to a plain HEAD
// lookup (sha only) on older git that rejects --symref.
func (s *Session) resolveDefaultBranch(ctx context.Context) (ref string, sha string, err error) {
	lines, err := s.bareRunner().RunLines(ctx, "ls-remote", "--symref", s.gitURL.Repository, "HEAD")
	if err == nil && len(lines) >= 2 {
		first := strings.Fields(lines[0])
		second := strings.Fields(lines[1])
		if len(first) >= 2 && len(second) >= 1 {
			return first[1], strings.ToLower(second[0]), nil
		}
	}

	lines, err = s.bareRunner().RunLines(ctx, "ls-remote", s.gitURL.Repository, "HEAD")
	if err != nil {
		return "", "", &rerrors.MessageError{Context: "resolving default branch failed", Detail: s.sanitizedRepo(), Err: err}
	}
	if len(lines) == 0 {
		return "", "", &rerrors.MessageError{Context: "remote HEAD not found", Detail: s.sanitizedRepo()}
	}
	fields := strings.Fields(lines[0])
	if len(fields) == 0 {
		return "", "", &rerrors.MessageError{Context: "malformed ls-remote HEAD output", Detail: lines[0]}
	}
	return "", strings.ToLower(fields[0]), nil
}

// fetch runs under the lock queue's per-repository key: clone if cwd
// does not yet exist, pull otherwise. A no-op once fetched is true.
func (s *Session) fetch(ctx context.Context) error {
	if s.fetched {
		return nil
	}
	_, err := s.lockQueue.Do(s.gitURL.Repository, func() (any, error) {
		if _, statErr := os.Stat(filepath.Join(s.cwd, ".git")); statErr == nil {
			return nil, s.cwdRunner().RunSilent(ctx, "pull")
		}
		if err := os.MkdirAll(s.cwd, 0o755); err != nil {
			return nil, err
		}
		return nil, s.bareRunner().RunSilent(ctx, "clone", s.gitURL.Repository, s.cwd)
	})
	if err != nil {
		return &rerrors.MessageError{Context: "fetch failed", Detail: s.sanitizedRepo(), Err: err}
	}
	s.fetched = true
	return nil
}

// GetFile returns the file's contents at the resolved commit, or
// ok == false meaning the file is not present there — the two outcomes
// must stay distinguishable to callers.
func (s *Session) GetFile(ctx context.Context, name string) (content string, ok bool, err error) {
	if s.supportsArchive {
		sink := newTarSingleFileSink()
		runErr := s.bareRunner().RunStreamed(ctx, sink, "archive", "--remote="+s.gitURL.Repository, s.ref, name)
		if runErr != nil {
			if strings.Contains(gitproc.StderrOf(runErr), "did not match any files") {
				return "", false, nil
			}
			return "", false, &rerrors.MessageError{Context: "archive getFile failed", Detail: name, Err: runErr}
		}
		return string(sink.content), true, nil
	}

	if !s.fetched {
		return "", false, fmt.Errorf("gitsession: getFile called before fetch completed")
	}
	out, err := s.cwdRunner().Run(ctx, "show", s.hash+":"+name)
	if err != nil {
		return "", false, nil
	}
	return out, true, nil
}

// Archive streams a `git archive` of the resolved commit through a
// hashing sink into dest, returning the hex sha256 digest.
func (s *Session) Archive(ctx context.Context, dest string) (string, error) {
	sink, err := newHashSink(dest)
	if err != nil {
		return "", err
	}

	var runErr error
	if s.supportsArchive {
		runErr = s.bareRunner().RunStreamed(ctx, sink, "archive", "--remote="+s.gitURL.Repository, s.ref)
	} else {
		runErr = s.cwdRunner().RunStreamed(ctx, sink, "archive", s.hash)
	}
	if runErr != nil {
		return "", &rerrors.MessageError{Context: "archive failed", Detail: s.sanitizedRepo(), Err: runErr}
	}
	return sink.Digest(), nil
}

// Clone streams a `git archive` of the resolved commit, extracted into
// dest with directory mode 0o555 and file mode 0o444 since the
// content is an immutable cache entry.
func (s *Session) Clone(ctx context.Context, dest string) error {
	sink := newTarExtractSink(dest)

	var runErr error
	if s.supportsArchive {
		runErr = s.bareRunner().RunStreamed(ctx, sink, "archive", "--remote="+s.gitURL.Repository, s.ref)
	} else {
		runErr = s.cwdRunner().RunStreamed(ctx, sink, "archive", s.hash)
	}
	if runErr != nil {
		return &rerrors.MessageError{Context: "clone failed", Detail: s.sanitizedRepo(), Err: runErr}
	}
	return filepath.WalkDir(dest, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.Chmod(p, 0o555)
		}
		return nil
	})
}

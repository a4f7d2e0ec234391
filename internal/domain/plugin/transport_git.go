package plugin

import (
	"context"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// GitTransport clones plugin repositories into the plugins root and runs
// their setup steps.
type GitTransport struct {
	runner      ports.CommandRunner
	fs          ports.FileSystem
	setup       *PostFetchInstaller
	uninstaller *GitUninstaller
	logger      ports.Logger
	root        string
	gitPath     string
}

// NewGitTransport creates a git transport. An empty gitPath means "git"
// from PATH.
func NewGitTransport(root, gitPath string, runner ports.CommandRunner, fsys ports.FileSystem, setup *PostFetchInstaller, uninstaller *GitUninstaller, logger ports.Logger) *GitTransport {
	if gitPath == "" {
		gitPath = "git"
	}
	if logger == nil {
		logger = discardLogger{}
	}
	return &GitTransport{
		runner:      runner,
		fs:          fsys,
		setup:       setup,
		uninstaller: uninstaller,
		logger:      logger,
		root:        root,
		gitPath:     gitPath,
	}
}

// Install clones every URL of d. All URLs are validated before the first
// clone. A failing clone stops the batch and leaves earlier clones in place.
func (g *GitTransport) Install(ctx context.Context, d Descriptor) ([]string, error) {
	urls := make([]string, 0, len(d.Files))
	for _, raw := range d.Files {
		u := NormalizeURL(raw)
		if err := ValidateURL(u); err != nil {
			logFrom(ctx, g.logger).Error(ctx, "invalid git url", ports.F("url", raw), ports.Err(err))
			return nil, err
		}
		urls = append(urls, u)
	}

	dirs := make([]string, 0, len(urls))
	for _, u := range urls {
		dir, err := g.clone(ctx, u)
		if err != nil {
			logFrom(ctx, g.logger).Error(ctx, "install(git-clone) failed", ports.F("url", u), ports.Err(err))
			return dirs, err
		}
		dirs = append(dirs, dir)

		report, err := g.setup.Run(ctx, dir)
		if err != nil {
			logFrom(ctx, g.logger).Error(ctx, "install(git-clone) setup failed", ports.F("url", u), ports.Err(err))
			return dirs, &TransportError{Method: InstallGitClone, URL: u, Err: err}
		}
		if !report.OK() {
			logFrom(ctx, g.logger).Warn(ctx, "setup finished with failures", ports.F("url", u), ports.F("failures", len(report.Failures)))
		}
	}
	return dirs, nil
}

func (g *GitTransport) clone(ctx context.Context, u string) (string, error) {
	name := RepoDirName(u)
	dir := filepath.Join(g.root, name)
	cloneURL := CloneURL(u)

	if err := g.fs.MkdirAll(g.root, 0o755); err != nil {
		return "", &TransportError{Method: InstallGitClone, URL: u, Err: err}
	}

	logFrom(ctx, g.logger).Info(ctx, "cloning plugin", ports.F("url", cloneURL), ports.F("dir", dir))
	code, err := g.runner.Run(ctx, ports.RunOptions{Dir: g.root, Env: safeGitEnv()}, g.gitPath, "clone", cloneURL, name)
	if err != nil {
		return "", &TransportError{Method: InstallGitClone, URL: u, Err: err}
	}
	if code != 0 {
		return "", &GitCloneError{URL: cloneURL, ExitCode: code}
	}
	return dir, nil
}

// Uninstall runs each plugin's hook and deletes its directory.
func (g *GitTransport) Uninstall(ctx context.Context, req RemoveRequest) error {
	return g.uninstaller.Uninstall(ctx, req.Files)
}

// safeGitEnv returns the environment for non-interactive git operations.
func safeGitEnv() []string {
	env := []string{
		// Prevent git from prompting for credentials
		"GIT_TERMINAL_PROMPT=0",
		"GIT_ASKPASS=",
	}
	for _, key := range []string{"HOME", "PATH", "USER", "USERPROFILE", "SYSTEMROOT", "LANG", "LC_ALL", "SSH_AUTH_SOCK", "HTTPS_PROXY", "HTTP_PROXY", "NO_PROXY"} {
		if val := os.Getenv(key); val != "" {
			env = append(env, key+"="+val)
		}
	}
	return env
}

// Ensure GitTransport implements Transport.
var _ Transport = (*GitTransport)(nil)

package plugin

import (
	"context"
	"path/filepath"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

const (
	uninstallScriptFile = "uninstall.py"
	disableScriptFile   = "disable.py"
)

// GitUninstaller removes cloned plugin directories after giving each plugin
// a chance to run its own uninstall or disable hook.
type GitUninstaller struct {
	runner      ports.CommandRunner
	fs          ports.FileSystem
	deleter     *RetryingDeleter
	logger      ports.Logger
	root        string
	interpreter string
}

// NewGitUninstaller creates an uninstaller for plugins cloned below root.
func NewGitUninstaller(root, interpreter string, runner ports.CommandRunner, fsys ports.FileSystem, deleter *RetryingDeleter, logger ports.Logger) *GitUninstaller {
	if logger == nil {
		logger = discardLogger{}
	}
	if interpreter == "" {
		interpreter = "python3"
	}
	return &GitUninstaller{
		runner:      runner,
		fs:          fsys,
		deleter:     deleter,
		logger:      logger,
		root:        root,
		interpreter: interpreter,
	}
}

// Uninstall removes the directory of every URL. All derived paths are
// checked before anything is touched; the first failure stops the batch.
func (u *GitUninstaller) Uninstall(ctx context.Context, files []string) error {
	dirs := make([]string, 0, len(files))
	for _, raw := range files {
		dir := filepath.Join(u.root, RepoDirName(raw))
		if reason := checkDeletePath(u.root, dir); reason != "" {
			logFrom(ctx, u.logger).Error(ctx, "uninstall aborted", ports.F("url", raw), ports.F("path", dir), ports.F("reason", reason))
			return &SafetyAbortError{URL: raw, Path: dir, Reason: reason}
		}
		dirs = append(dirs, dir)
	}

	for i, dir := range dirs {
		u.runHook(ctx, dir)

		var err error
		switch u.fs.Probe(dir) {
		case ports.PathPresent:
			err = u.deleter.Delete(ctx, dir)
		case ports.PathDisabled:
			err = u.deleter.Delete(ctx, dir+ports.DisabledSuffix)
		case ports.PathAbsent:
			logFrom(ctx, u.logger).Debug(ctx, "plugin directory already absent", ports.F("path", dir))
		}
		if err != nil {
			logFrom(ctx, u.logger).Error(ctx, "uninstall(git-clone) failed", ports.F("url", files[i]), ports.Err(err))
			return err
		}
	}
	return nil
}

// runHook runs uninstall.py, or disable.py when there is none. A failing
// hook never prevents the deletion.
func (u *GitUninstaller) runHook(ctx context.Context, dir string) {
	var script string
	switch {
	case u.fs.Exists(filepath.Join(dir, uninstallScriptFile)):
		script = uninstallScriptFile
	case u.fs.Exists(filepath.Join(dir, disableScriptFile)):
		script = disableScriptFile
	default:
		return
	}

	code, err := u.runner.Run(ctx, ports.RunOptions{Dir: dir}, u.interpreter, script)
	if err != nil || code != 0 {
		logFrom(ctx, u.logger).Warn(ctx, "hook script failed, deleting the directory anyway",
			ports.F("script", script), ports.F("dir", dir), ports.F("exit_code", code), ports.Err(err))
	}
}

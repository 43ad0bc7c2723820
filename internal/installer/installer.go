package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/bianoble/craftlaunch/internal/manifest"
	"github.com/bianoble/craftlaunch/internal/sandbox"
)

// DefaultEnvVar names the environment variable pointing the installer at the instance.
const DefaultEnvVar = "CRAFTLAUNCH_INSTANCE_DIR"

// emptyProfiles is the minimal launcher_profiles.json the installer insists on.
const emptyProfiles = `{"profiles":{},"settings":{},"version":1}` + "\n"

// InstallError reports a failed installer run.
type InstallError struct {
	Installer string
	ExitCode  int // -1 when the process did not run
	Output    string
	Err       error
	Hint      string
}

func (e *InstallError) Error() string {
	msg := fmt.Sprintf("installer %s: %s", filepath.Base(e.Installer), e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// Installer runs the mod-loader installer as an external process.
type Installer struct {
	Java   string
	EnvVar string
	Logger *slog.Logger

	// Run replaces cmd.CombinedOutput, for tests.
	Run func(cmd *exec.Cmd) ([]byte, error)
}

// Install runs the installer jar against instanceDir and succeeds only when the
// process exits zero and the descriptor for expectVersionID is in place.
// The working directory is set on the child process; ours is untouched.
func (in *Installer) Install(ctx context.Context, installerJar, instanceDir, expectVersionID string) error {
	fail := func(code int, out []byte, err error, hint string) error {
		return &InstallError{Installer: installerJar, ExitCode: code, Output: string(out), Err: err, Hint: hint}
	}

	if _, err := os.Stat(installerJar); err != nil {
		return fail(-1, nil, err, "download the installer first with 'craftlaunch install'")
	}
	absDir, err := filepath.Abs(instanceDir)
	if err != nil {
		return fail(-1, nil, err, "")
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return fail(-1, nil, fmt.Errorf("creating instance directory: %w", err), "")
	}
	if err := ensureProfiles(absDir); err != nil {
		return fail(-1, nil, err, "")
	}

	java := in.Java
	if java == "" {
		java = "java"
	}
	envVar := in.EnvVar
	if envVar == "" {
		envVar = DefaultEnvVar
	}

	cmd := exec.CommandContext(ctx, java, "-jar", installerJar, "--installClient", "--targetDir", absDir)
	cmd.Dir = absDir
	cmd.Env = append(os.Environ(), envVar+"="+absDir)

	in.logger().Info("running installer", "installer", installerJar, "dir", absDir)
	run := in.Run
	if run == nil {
		run = (*exec.Cmd).CombinedOutput
	}
	out, err := run(cmd)
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return fail(code, out, err, "see installer output with --verbose")
	}

	descriptor := filepath.Join(absDir, "versions", expectVersionID, expectVersionID+".json")
	if !manifest.IsResolved(descriptor, expectVersionID) {
		return fail(0, out, fmt.Errorf("exited successfully but %s is missing or invalid", descriptor), "check that loader.version_id matches the installer")
	}
	in.logger().Debug("installer finished", "version", expectVersionID)
	return nil
}

func ensureProfiles(dir string) error {
	path := filepath.Join(dir, "launcher_profiles.json")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := sandbox.WriteAtomic(path, []byte(emptyProfiles), 0644); err != nil {
		return fmt.Errorf("creating launcher_profiles.json: %w", err)
	}
	return nil
}

func (in *Installer) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return in.Logger
}

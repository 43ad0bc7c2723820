package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DefaultMainClass is used when the descriptor names no entry point.
const DefaultMainClass = "cpw.mods.bootstraplauncher.BootstrapLauncher"

// Defaults for Options fields left empty.
const (
	DefaultJava        = "java"
	DefaultMaxMemory   = "8192M"
	DefaultUsername    = "Player"
	DefaultAccessToken = "0"
	DefaultUserType    = "msa"
	DefaultVersionType = "release"
	LauncherBrand      = "craftlaunch"
)

// tuningFlags are passed to every launch ahead of the native directory properties.
var tuningFlags = []string{
	"-XX:MetaspaceSize=256M",
	"-Duser.language=en",
	"-Duser.country=US",
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+UseG1GC",
	"-XX:G1NewSizePercent=20",
	"-XX:G1ReservePercent=20",
	"-XX:MaxGCPauseMillis=50",
	"-XX:G1HeapRegionSize=32M",
}

// nativeDirProperties all point at the natives directory; different
// subsystems of the runtime each read their own.
var nativeDirProperties = []string{
	"java.library.path",
	"jna.tmpdir",
	"org.lwjgl.system.SharedLibraryExtractPath",
	"io.netty.native.workdir",
}

// moduleAccessFlags let the secure jar handler reach runtime internals.
var moduleAccessFlags = []string{
	"--add-modules", "ALL-MODULE-PATH",
	"--add-opens", "java.base/java.util.jar=cpw.mods.securejarhandler",
	"--add-opens", "java.base/java.lang.invoke=cpw.mods.securejarhandler",
	"--add-opens", "java.base/java.lang.invoke=ALL-UNNAMED",
	"--add-exports", "java.base/sun.security.util=cpw.mods.securejarhandler",
	"--add-exports", "jdk.naming.dns/com.sun.jndi.dns=java.naming",
}

// Plan is everything needed to start the game process.
type Plan struct {
	Classpath    []string
	ModulePath   []string
	Separator    string // classpath list separator for the target platform
	NativesDir   string
	LibrariesDir string
	AssetsDir    string
	WorkDir      string
	MainClass    string
	Version      string // base runtime version passed as --version
	AssetIndex   string
	// GameArgs are the loader descriptor's game arguments, placeholders unexpanded.
	GameArgs []string
}

// Options carries the player identity and runtime settings for a launch.
type Options struct {
	Java         string
	MinMemory    string
	MaxMemory    string
	ExtraJVMArgs []string

	Username    string
	UUID        string // random per launch when empty
	AccessToken string
	UserType    string
	VersionType string

	LauncherVersion string
}

// SpawnError reports that the game process could not be started.
type SpawnError struct {
	Java string
	Err  error
	Hint string
}

func (e *SpawnError) Error() string {
	msg := fmt.Sprintf("starting %s: %s", e.Java, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Process is a spawned, unsupervised game process.
type Process struct {
	Cmd  *exec.Cmd
	Args []string
	UUID string
}

// PID returns the process id, or 0 if the process was never started.
func (p *Process) PID() int {
	if p.Cmd == nil || p.Cmd.Process == nil {
		return 0
	}
	return p.Cmd.Process.Pid
}

// Wait blocks until the process exits.
func (p *Process) Wait() error {
	return p.Cmd.Wait()
}

// Invoker assembles the argument vector and spawns the runtime.
type Invoker struct {
	Options Options
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger

	// Start replaces cmd.Start, for tests.
	Start func(cmd *exec.Cmd) error
}

// Arguments returns the full argument vector after the executable for a
// session with the given player UUID.
func (inv *Invoker) Arguments(plan *Plan, sessionUUID string) ([]string, error) {
	o := inv.Options
	maxMem := or(o.MaxMemory, DefaultMaxMemory)
	sep := or(plan.Separator, ":")

	args := []string{"-Xmx" + maxMem}
	if o.MinMemory != "" {
		args = append(args, "-Xms"+o.MinMemory)
	}
	args = append(args, tuningFlags...)
	for _, prop := range nativeDirProperties {
		args = append(args, "-D"+prop+"="+plan.NativesDir)
	}
	args = append(args,
		"-DlibraryDirectory="+plan.LibrariesDir,
		"-Dminecraft.launcher.brand="+LauncherBrand,
		"-Dminecraft.launcher.version="+or(o.LauncherVersion, "dev"),
	)
	args = append(args, o.ExtraJVMArgs...)
	args = append(args, "-cp", strings.Join(plan.Classpath, sep))
	if len(plan.ModulePath) > 0 {
		args = append(args, "-p", strings.Join(plan.ModulePath, sep))
		args = append(args, moduleAccessFlags...)
	}
	args = append(args, or(plan.MainClass, DefaultMainClass))

	vars := map[string]string{
		"auth_player_name":    or(o.Username, DefaultUsername),
		"version_name":        plan.Version,
		"game_directory":      plan.WorkDir,
		"assets_root":         plan.AssetsDir,
		"assets_index_name":   plan.AssetIndex,
		"auth_uuid":           sessionUUID,
		"auth_access_token":   or(o.AccessToken, DefaultAccessToken),
		"user_type":           or(o.UserType, DefaultUserType),
		"version_type":        or(o.VersionType, DefaultVersionType),
		"natives_directory":   plan.NativesDir,
		"library_directory":   plan.LibrariesDir,
		"classpath_separator": sep,
		"launcher_name":       LauncherBrand,
		"launcher_version":    or(o.LauncherVersion, "dev"),
	}
	args = append(args,
		"--username", vars["auth_player_name"],
		"--version", vars["version_name"],
		"--gameDir", vars["game_directory"],
		"--assetsDir", vars["assets_root"],
		"--assetIndex", vars["assets_index_name"],
		"--uuid", vars["auth_uuid"],
		"--accessToken", vars["auth_access_token"],
		"--userType", vars["user_type"],
		"--versionType", vars["version_type"],
	)
	for _, raw := range plan.GameArgs {
		expanded, err := Expand(raw, vars)
		if err != nil {
			return nil, err
		}
		args = append(args, expanded)
	}
	return args, nil
}

// Invoke spawns the game with the plan's working directory and returns
// without waiting for it to exit.
func (inv *Invoker) Invoke(ctx context.Context, plan *Plan) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	java := or(inv.Options.Java, DefaultJava)
	session := inv.Options.UUID
	if session == "" {
		session = uuid.NewString()
	}

	args, err := inv.Arguments(plan, session)
	if err != nil {
		return nil, err
	}

	// Not CommandContext: the game outlives this call.
	cmd := exec.Command(java, args...)
	cmd.Dir = plan.WorkDir
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	start := inv.Start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		se := &SpawnError{Java: java, Err: err}
		if errors.Is(err, exec.ErrNotFound) {
			se.Hint = "install a Java runtime or set java.path in craftlaunch.yaml"
		}
		return nil, se
	}
	proc := &Process{Cmd: cmd, Args: args, UUID: session}
	inv.logger().Info("game process started", "pid", proc.PID(), "main_class", or(plan.MainClass, DefaultMainClass), "dir", plan.WorkDir)
	return proc, nil
}

var placeholder = regexp.MustCompile(`\$\{([^}]*)\}`)

// Expand substitutes ${name} placeholders from vars. Unknown names are an error.
func Expand(s string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := m[2 : len(m)-1]
		v, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("argument '%s': unknown placeholder(s) %s", s, strings.Join(missing, ", "))
	}
	return out, nil
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (inv *Invoker) logger() *slog.Logger {
	if inv.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return inv.Logger
}

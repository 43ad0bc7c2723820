package installer

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func setup(t *testing.T) (jar, dir string) {
	t.Helper()
	root := t.TempDir()
	jar = filepath.Join(root, "neoforge-21.1.77-installer.jar")
	os.WriteFile(jar, []byte("PK"), 0644)
	dir = filepath.Join(root, "instance")
	return jar, dir
}

func TestInstallRunsInInstanceDir(t *testing.T) {
	jar, dir := setup(t)
	cwd, _ := os.Getwd()

	var ran *exec.Cmd
	in := &Installer{
		Java: "/opt/jdk/bin/java",
		Run: func(cmd *exec.Cmd) ([]byte, error) {
			ran = cmd
			// The installer writes the loader descriptor.
			vdir := filepath.Join(cmd.Dir, "versions", "neoforge-21.1.77")
			os.MkdirAll(vdir, 0755)
			os.WriteFile(filepath.Join(vdir, "neoforge-21.1.77.json"), []byte(`{"id":"neoforge-21.1.77"}`), 0644)
			return []byte("ok"), nil
		},
	}

	if err := in.Install(context.Background(), jar, dir, "neoforge-21.1.77"); err != nil {
		t.Fatalf("Install: %v", err)
	}

	absDir, _ := filepath.Abs(dir)
	if ran.Dir != absDir {
		t.Errorf("Dir = %q, want %q", ran.Dir, absDir)
	}
	want := []string{"/opt/jdk/bin/java", "-jar", jar, "--installClient", "--targetDir", absDir}
	if strings.Join(ran.Args, " ") != strings.Join(want, " ") {
		t.Errorf("Args = %v, want %v", ran.Args, want)
	}
	found := false
	for _, kv := range ran.Env {
		if kv == DefaultEnvVar+"="+absDir {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s in environment", DefaultEnvVar)
	}
	if now, _ := os.Getwd(); now != cwd {
		t.Errorf("process working directory changed to %q", now)
	}

	data, err := os.ReadFile(filepath.Join(dir, "launcher_profiles.json"))
	if err != nil {
		t.Fatalf("launcher_profiles.json: %v", err)
	}
	if !strings.Contains(string(data), `"profiles":{}`) {
		t.Errorf("profiles = %s", data)
	}
}

func TestInstallKeepsExistingProfiles(t *testing.T) {
	jar, dir := setup(t)
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "launcher_profiles.json"), []byte(`{"profiles":{"x":{}}}`), 0644)

	in := &Installer{Run: func(cmd *exec.Cmd) ([]byte, error) { return nil, errors.New("stop") }}
	in.Install(context.Background(), jar, dir, "v")

	data, _ := os.ReadFile(filepath.Join(dir, "launcher_profiles.json"))
	if string(data) != `{"profiles":{"x":{}}}` {
		t.Errorf("existing profiles overwritten: %s", data)
	}
}

func TestInstallCustomEnvVar(t *testing.T) {
	jar, dir := setup(t)
	var env []string
	in := &Installer{EnvVar: "MC_DIR", Run: func(cmd *exec.Cmd) ([]byte, error) {
		env = cmd.Env
		return nil, errors.New("stop")
	}}
	in.Install(context.Background(), jar, dir, "v")

	absDir, _ := filepath.Abs(dir)
	found := false
	for _, kv := range env {
		if kv == "MC_DIR="+absDir {
			found = true
		}
	}
	if !found {
		t.Error("expected MC_DIR in environment")
	}
}

func TestInstallNonZeroExit(t *testing.T) {
	jar, dir := setup(t)
	in := &Installer{Run: func(cmd *exec.Cmd) ([]byte, error) {
		return []byte("java.lang.RuntimeException"), errors.New("exit status 1")
	}}

	err := in.Install(context.Background(), jar, dir, "neoforge-21.1.77")
	var ie *InstallError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InstallError, got %v", err)
	}
	if !strings.Contains(ie.Output, "RuntimeException") {
		t.Errorf("output = %q", ie.Output)
	}
}

func TestInstallMissingDescriptorAfterSuccess(t *testing.T) {
	jar, dir := setup(t)
	in := &Installer{Run: func(cmd *exec.Cmd) ([]byte, error) { return nil, nil }}

	err := in.Install(context.Background(), jar, dir, "neoforge-21.1.77")
	var ie *InstallError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InstallError, got %v", err)
	}
	if ie.ExitCode != 0 || !strings.Contains(err.Error(), "missing or invalid") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInstallMissingJar(t *testing.T) {
	in := &Installer{Run: func(cmd *exec.Cmd) ([]byte, error) {
		t.Fatal("installer must not run without a jar")
		return nil, nil
	}}
	err := in.Install(context.Background(), filepath.Join(t.TempDir(), "nope.jar"), t.TempDir(), "v")
	if err == nil {
		t.Fatal("expected error for missing installer jar")
	}
}

package craftlaunch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bianoble/craftlaunch/internal/config"
)

// writeConfig writes a minimal valid config and returns its path.
func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "craftlaunch.yaml")
	content := "version: 1\ninstance_root: " + filepath.Join(dir, "instance") + "\ngame_version: 1.21.1\n" + extra
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestNewDefaultConfigPath(t *testing.T) {
	client, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.opts.ConfigPath != "craftlaunch.yaml" {
		t.Errorf("ConfigPath = %q, want 'craftlaunch.yaml'", client.opts.ConfigPath)
	}
}

func TestCheckEmptyInstance(t *testing.T) {
	dir := t.TempDir()
	client, err := New(Options{ConfigPath: writeConfig(t, dir, ""), NoInherit: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := client.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.Clean() {
		t.Error("empty instance should not be clean")
	}
	if len(report.Items) != 1 || report.Items[0].Status != "missing" {
		t.Errorf("items = %+v", report.Items)
	}
}

func TestInstanceRootOverride(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "elsewhere")
	client, err := New(Options{ConfigPath: writeConfig(t, dir, ""), NoInherit: true, InstanceRoot: override})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := client.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !strings.HasPrefix(report.Items[0].Path, override) {
		t.Errorf("path %s not under %s", report.Items[0].Path, override)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	client, err := New(Options{ConfigPath: writeConfig(t, dir, "download:\n  attempts: 0\n"), NoInherit: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _, err = client.Resolve(context.Background())
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestResolveWithoutInstall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manifest.json":
			w.Write([]byte(`{"versions":[{"id":"1.21.1","url":"` + "http://" + r.Host + `/1.21.1.json"}]}`))
		case "/1.21.1.json":
			w.Write([]byte(`{"id":"1.21.1","mainClass":"net.minecraft.client.main.Main"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "endpoints:\n  version_manifest: "+srv.URL+"/manifest.json\n")
	client, err := New(Options{ConfigPath: cfgPath, NoInherit: true, HTTP: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, _, err = client.Launch(context.Background())
	var notInstalled *NotInstalledError
	if !errors.As(err, &notInstalled) {
		t.Fatalf("expected NotInstalledError, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "instance", "versions", "1.21.1", "1.21.1.json")); err != nil {
		t.Errorf("base descriptor not saved: %v", err)
	}
}

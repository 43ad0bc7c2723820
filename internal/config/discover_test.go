package config

import (
	"path/filepath"
	"runtime"
	"testing"
)

func levels(layers []ConfigLayerInfo) []ConfigLevel {
	out := make([]ConfigLevel, len(layers))
	for i, l := range layers {
		out[i] = l.Level
	}
	return out
}

func TestDiscoverPathsOrder(t *testing.T) {
	root := t.TempDir()
	layers := DiscoverPaths(DiscoverOptions{
		ProjectPath:      "./craftlaunch.yaml",
		InstanceRoot:     root,
		SystemConfigPath: "/etc/craftlaunch/craftlaunch.yaml",
		UserConfigPath:   "/home/alex/.config/craftlaunch/craftlaunch.yaml",
	})

	want := []ConfigLevel{LevelSystem, LevelUser, LevelInstance, LevelProject}
	got := levels(layers)
	if len(got) != len(want) {
		t.Fatalf("levels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("layers[%d].Level = %q, want %q", i, got[i], want[i])
		}
	}
	if layers[2].Path != filepath.Join(root, FileName) {
		t.Errorf("instance path = %q", layers[2].Path)
	}
}

func TestDiscoverPathsSkipsInstanceWithoutRoot(t *testing.T) {
	layers := DiscoverPaths(DiscoverOptions{
		ProjectPath:      "./craftlaunch.yaml",
		SystemConfigPath: "/etc/craftlaunch/craftlaunch.yaml",
		UserConfigPath:   "/home/alex/.config/craftlaunch/craftlaunch.yaml",
	})
	for _, l := range layers {
		if l.Level == LevelInstance {
			t.Errorf("unexpected instance layer %s", l.Path)
		}
	}
}

func TestDiscoverPathsProjectInsideInstance(t *testing.T) {
	// --config pointing at the instance file is merged once, as the instance layer.
	root := t.TempDir()
	layers := DiscoverPaths(DiscoverOptions{
		ProjectPath:      filepath.Join(root, FileName),
		InstanceRoot:     root,
		SystemConfigPath: "/etc/craftlaunch/craftlaunch.yaml",
		UserConfigPath:   "/home/alex/.config/craftlaunch/craftlaunch.yaml",
	})
	if len(layers) != 3 {
		t.Fatalf("levels = %v", levels(layers))
	}
	if layers[2].Level != LevelInstance {
		t.Errorf("layers[2].Level = %q, want %q", layers[2].Level, LevelInstance)
	}
}

func TestDiscoverPathsUserFromXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	layers := DiscoverPaths(DiscoverOptions{
		ProjectPath:      "./craftlaunch.yaml",
		SystemConfigPath: "/etc/craftlaunch/craftlaunch.yaml",
	})
	if len(layers) != 3 || layers[1].Level != LevelUser {
		t.Fatalf("levels = %v", levels(layers))
	}
	if want := filepath.Join("/xdg", "craftlaunch", FileName); layers[1].Path != want {
		t.Errorf("user path = %q, want %q", layers[1].Path, want)
	}
}

func TestInstanceConfigPath(t *testing.T) {
	if got := InstanceConfigPath(""); got != "" {
		t.Errorf("InstanceConfigPath(\"\") = %q", got)
	}
	if got := InstanceConfigPath("/srv/instance"); got != filepath.Join("/srv/instance", FileName) {
		t.Errorf("InstanceConfigPath = %q", got)
	}
}

func TestDefaultSystemConfigPath(t *testing.T) {
	p := defaultSystemConfigPath()
	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(p) {
			t.Errorf("system path should be absolute on Windows, got %q", p)
		}
	default:
		if p != "/etc/craftlaunch/craftlaunch.yaml" {
			t.Errorf("system path = %q, want /etc/craftlaunch/craftlaunch.yaml", p)
		}
	}
}

func TestEnvNoInherit(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"TRUE", true},
		{" true ", true},
		{"0", false},
		{"yes", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Setenv("CRAFTLAUNCH_NO_INHERIT", tt.value)
		if got := EnvNoInherit(); got != tt.want {
			t.Errorf("EnvNoInherit with %q = %v, want %v", tt.value, got, tt.want)
		}
	}
}

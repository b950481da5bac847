package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetHome_EnvVar(t *testing.T) {
	ResetHome()
	t.Setenv("UIRESOLVE_HOME", "/custom/path")

	got := GetHome()
	if got != "/custom/path" {
		t.Errorf("GetHome() = %q, want %q", got, "/custom/path")
	}
}

func TestGetHome_FallbackToCwd(t *testing.T) {
	ResetHome()
	t.Setenv("UIRESOLVE_HOME", "")

	got := GetHome()
	cwd, _ := os.Getwd()

	// When not in a bin/ directory and no env var, should fall back to cwd
	// (unless the test binary happens to be in a bin/ directory)
	if got == "" {
		t.Error("GetHome() returned empty string")
	}
	_ = cwd // cwd is valid fallback
}

func TestGetHome_Cached(t *testing.T) {
	ResetHome()
	t.Setenv("UIRESOLVE_HOME", "/first")

	first := GetHome()

	// Change env — should NOT affect cached value
	t.Setenv("UIRESOLVE_HOME", "/second")
	second := GetHome()

	if first != second {
		t.Errorf("GetHome() not cached: first=%q, second=%q", first, second)
	}
}

func TestGetLogsDir(t *testing.T) {
	ResetHome()
	t.Setenv("UIRESOLVE_HOME", "/test/home")

	got := GetLogsDir()
	want := filepath.Join("/test/home", "logs")
	if got != want {
		t.Errorf("GetLogsDir() = %q, want %q", got, want)
	}
}

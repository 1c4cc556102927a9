package cli_test

// Notes:
// - These tests exercise the config subcommand handlers exported via
//   export_test.go. Config file I/O is isolated with XDG_CONFIG_HOME
//   pointed at a temp dir, so tests using t.Setenv are NOT parallel.
// - "config get" prints to stdout; assertions read back through the
//   config package instead of capturing stdout.

import (
	"slices"
	"strings"
	"testing"

	"github.com/alnah/go-mdrefine/internal/cli"
	"github.com/alnah/go-mdrefine/internal/config"
)

func TestIsValidConfigKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"output-dir", "provider", "model"} {
		if !cli.IsValidConfigKey(key) {
			t.Errorf("IsValidConfigKey(%q) = false, want true", key)
		}
	}
	for _, key := range []string{"", "outputdir", "api-key"} {
		if cli.IsValidConfigKey(key) {
			t.Errorf("IsValidConfigKey(%q) = true, want false", key)
		}
	}
	if !slices.Contains(cli.ValidConfigKeys, config.KeyOutputDir) {
		t.Error("ValidConfigKeys missing output-dir")
	}
}

func TestRunConfigSet(t *testing.T) {
	// NO t.Parallel() - uses t.Setenv

	t.Run("rejects unknown key", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		env, _ := testEnv(t, nil, nil)

		err := cli.RunConfigSet(env, "api-key", "secret")
		if err == nil || !strings.Contains(err.Error(), "unknown config key") {
			t.Errorf("RunConfigSet(api-key) error = %v, want unknown key error", err)
		}
	})

	t.Run("persists provider after validation", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		env, stderr := testEnv(t, nil, nil)

		if err := cli.RunConfigSet(env, "provider", "openai"); err != nil {
			t.Fatalf("RunConfigSet() error = %v", err)
		}
		got, err := config.Get("provider")
		if err != nil {
			t.Fatal(err)
		}
		if got != "openai" {
			t.Errorf("provider = %q, want %q", got, "openai")
		}
		if !strings.Contains(stderr.String(), "Set provider = openai") {
			t.Errorf("stderr = %q, want confirmation", stderr.String())
		}
	})

	t.Run("rejects invalid provider", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		env, _ := testEnv(t, nil, nil)

		if err := cli.RunConfigSet(env, "provider", "claude"); err == nil {
			t.Error("RunConfigSet(provider, claude) = nil, want error")
		}
	})

	t.Run("creates and persists output-dir", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		env, _ := testEnv(t, nil, nil)
		outDir := t.TempDir() + "/md-out"

		if err := cli.RunConfigSet(env, "output-dir", outDir); err != nil {
			t.Fatalf("RunConfigSet() error = %v", err)
		}
		got, err := config.Get("output-dir")
		if err != nil {
			t.Fatal(err)
		}
		if got != outDir {
			t.Errorf("output-dir = %q, want %q", got, outDir)
		}
	})

	t.Run("persists model without validation", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		env, _ := testEnv(t, nil, nil)

		if err := cli.RunConfigSet(env, "model", "gpt-4o-mini"); err != nil {
			t.Fatalf("RunConfigSet() error = %v", err)
		}
		got, err := config.Get("model")
		if err != nil {
			t.Fatal(err)
		}
		if got != "gpt-4o-mini" {
			t.Errorf("model = %q, want %q", got, "gpt-4o-mini")
		}
	})
}

func TestRunConfigGet(t *testing.T) {
	// NO t.Parallel() - uses t.Setenv

	t.Run("rejects unknown key", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		env, _ := testEnv(t, nil, nil)

		if err := cli.RunConfigGet(env, "nope"); err == nil {
			t.Error("RunConfigGet(nope) = nil, want error")
		}
	})

	t.Run("succeeds for missing value", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		env, _ := testEnv(t, nil, nil)

		if err := cli.RunConfigGet(env, "model"); err != nil {
			t.Errorf("RunConfigGet(model) error = %v", err)
		}
	})
}

func TestRunConfigList(t *testing.T) {
	// NO t.Parallel() - uses t.Setenv

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	env, _ := testEnv(t, nil, nil)

	if err := cli.RunConfigSet(env, "provider", "deepseek"); err != nil {
		t.Fatal(err)
	}
	if err := cli.RunConfigList(env); err != nil {
		t.Errorf("RunConfigList() error = %v", err)
	}
}

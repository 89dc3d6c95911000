package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AGENTLOG_CLAUDE_HOME", "AGENTLOG_DB_PATH"} {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestDefault_DerivesDBPathFromClaudeHome(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.ClaudeHome, "data", "conversations.db"), cfg.DBPath)
}

func TestLoadMinimal_EnvOverridesClaudeHome(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTLOG_CLAUDE_HOME", "/tmp/custom-home")

	cfg, err := LoadMinimal()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom-home", cfg.ClaudeHome)
	require.Equal(t, filepath.Join("/tmp/custom-home", "data", "conversations.db"), cfg.DBPath)
}

func TestLoadMinimal_EnvDBPathWinsOverClaudeHomeDerivation(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTLOG_CLAUDE_HOME", "/tmp/custom-home")
	t.Setenv("AGENTLOG_DB_PATH", "/tmp/explicit.db")

	cfg, err := LoadMinimal()
	require.NoError(t, err)
	require.Equal(t, "/tmp/explicit.db", cfg.DBPath)
}

func TestLoadMinimal_FileOverridesEnvOnUnsetFields(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("AGENTLOG_CLAUDE_HOME", home)
	require.NoError(t, os.WriteFile(
		filepath.Join(home, configFileName),
		[]byte(`{"host": "0.0.0.0", "port": 9090}`), 0o600,
	))

	cfg, err := LoadMinimal()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Host)
	require.Equal(t, 9090, cfg.Port)
}

func TestLoadMinimal_MissingFileIsNotAnError(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTLOG_CLAUDE_HOME", t.TempDir())

	_, err := LoadMinimal()
	require.NoError(t, err)
}

func TestLoad_ExplicitFlagsOverrideEverything(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTLOG_CLAUDE_HOME", t.TempDir())

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-db-path", "/tmp/from-flag.db"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-flag.db", cfg.DBPath)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("AGENTLOG_CLAUDE_HOME", home)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(fs)
	require.NoError(t, err)
	require.Equal(t, home, cfg.ClaudeHome)
}

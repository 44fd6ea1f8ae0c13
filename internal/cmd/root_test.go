package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig writes a config that keeps every file inside a temp dir,
// runs without a sound card and leaves the control API off.
func newTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	content := fmt.Sprintf(`db_path: %s
answer_delay: 1ms
audio:
  enabled: false
control:
  addr: ""
log:
  level: error
  file: %s
`, filepath.Join(dir, "quiz.db"), filepath.Join(dir, "quiz.log"))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInitWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	out, err := execute(t, "", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_candidates: 4")

	_, err = execute(t, "", "init", "--config", path)
	require.Error(t, err, "existing file is kept without --force")

	_, err = execute(t, "", "init", "--config", path, "--force")
	require.NoError(t, err)
}

func TestSamplesListsCatalog(t *testing.T) {
	path := newTestConfig(t)

	out, err := execute(t, "", "samples", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "| ID | Composer | Title | Location |")
	assert.Contains(t, out, "Johann Sebastian Bach")
	assert.Contains(t, out, "media/bach_air_on_the_g_string.ogg")
}

func TestScoresOnFreshDatabase(t *testing.T) {
	path := newTestConfig(t)

	out, err := execute(t, "", "scores", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Current score: 0")
	assert.Contains(t, out, "High score:    0")

	out, err = execute(t, "", "history", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No games played yet.")
}

func TestPlainGameIsRecorded(t *testing.T) {
	path := newTestConfig(t)

	out, err := execute(t, "a\nquit\n", "play", "--plain", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Round 1")
	assert.Contains(t, out, "Who composed this piece?")
	assert.Contains(t, out, "It was ")

	out, err = execute(t, "", "history", "--config", path, "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "unfinished")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2, "header plus one game")
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	path := newTestConfig(t)
	t.Cleanup(func() { historyLimit = 10 })

	_, err := execute(t, "", "history", "--config", path, "--limit", "0")
	require.Error(t, err)
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_candidates: 1\n"), 0644))

	_, err := execute(t, "", "scores", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_candidates")
}

func TestBindFlagsOverridesConfig(t *testing.T) {
	path := newTestConfig(t)
	db := filepath.Join(t.TempDir(), "other.db")

	_, err := execute(t, "", "scores", "--config", path, "--db", db)
	require.NoError(t, err)
	t.Cleanup(func() {
		flag := rootCmd.PersistentFlags().Lookup("db")
		_ = flag.Value.Set("")
		flag.Changed = false
	})

	assert.Equal(t, db, cfg.DBPath)
	_, err = os.Stat(db)
	assert.NoError(t, err)
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(append(args, "--dir", dir, "--config", ""))
	require.NoError(t, RootCmd.Execute(), out.String())
	return out.String()
}

// The commands share RootCmd and keep flag values between runs, so the
// steps run in order.
func TestCommands(t *testing.T) {
	dir := t.TempDir()

	out := run(t, dir, "demo", "start")
	assert.Contains(t, out, "Save start written")
	assert.FileExists(t, filepath.Join(dir, "start.sav"))

	out = run(t, dir, "list", "--exact")
	assert.Contains(t, out, "start")

	out = run(t, dir, "inspect", "start", "--depth", "2")
	assert.Contains(t, out, "format version 1")
	assert.Contains(t, out, "map (")

	out = run(t, dir, "inspect", "start", "--json")
	assert.Contains(t, out, `"records"`)

	out = run(t, dir, "tables", "start")
	assert.Contains(t, out, "unchanged")

	content := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(content, []byte(`categories:
  terrain: [Ocean, Grassland, Plains]
  unit: [Scout, Caravel]
`), 0644))
	out = run(t, dir, "tables", "start", "--content", content, "-v")
	assert.Contains(t, out, "removed")

	out = run(t, dir, "verify", "start", "--world", "--content", "")
	assert.Contains(t, out, "ok   start")

	run(t, dir, "demo", "again")
	out = run(t, dir, "diff", "start", "again")
	assert.Contains(t, out, "No differences found")

	exported := t.TempDir()
	out = run(t, dir, "export", "start", filepath.Join(exported, "campaign.save"))
	assert.Contains(t, out, "Exported start")
	out = run(t, dir, "import", exported)
	assert.Contains(t, out, "1 imported, 0 skipped, 0 failed")
	out = run(t, dir, "import", exported)
	assert.Contains(t, out, "0 imported, 1 skipped, 0 failed")

	out = run(t, dir, "query", "--pattern", "camp*", "--max-size", "1MB")
	assert.Contains(t, out, "1 saves found")
	out = run(t, dir, "query", "--duplicates", "--pattern", "*")
	assert.Contains(t, out, "1 groups of identical saves")

	out = run(t, dir, "rotate", "--dry-run")
	assert.Contains(t, out, "0 autosaves would be deleted")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	for _, lvl := range []string{"debug", "info", "warn", "error", ""} {
		_, err := newLogger(&buf, lvl)
		assert.NoError(t, err, lvl)
	}
	_, err := newLogger(&buf, "loud")
	assert.Error(t, err)
}

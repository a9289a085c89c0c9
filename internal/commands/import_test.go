package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/sfimport/internal/config"
)

// setupRepo initializes a ledger that maps the checking account fixture and
// stages the fixture for import.
func setupRepo(t *testing.T, git bool) string {
	t.Helper()
	dir := t.TempDir()
	args := []string{"init", dir, "--name", "Household"}
	if !git {
		args = append(args, "--no-git")
	}
	_, err := runSfimport(t, args...)
	require.NoError(t, err)

	path := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Ledger.Timezone = "UTC"
	cfg.Accounts = []config.AccountConfig{
		{ID: "ACT-abc123", Name: "Total Checking", Account: "Assets:Checking:Chase"},
	}
	require.NoError(t, config.Save(path, cfg))

	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "simplefin_checking.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "checking.json"), data, 0o644))
	return dir
}

func TestImport_WritesJournal(t *testing.T) {
	dir := setupRepo(t, false)

	out, err := runSfimport(t, "import", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "checking.json: 4 imported, 0 duplicate")
	assert.Contains(t, out, "Imported 4 entries")

	data, err := os.ReadFile(filepath.Join(dir, "2024", "01", "journal.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-001a")
	assert.Contains(t, string(data), "TRN-001")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "checking.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "logs", "import-log.csv"))
	assert.NoError(t, err)
}

func TestImport_RepoFromEnv(t *testing.T) {
	dir := setupRepo(t, false)

	cmd := exec.Command(binaryPath, "import")
	cmd.Env = append(os.Environ(), "SFIMPORT_REPO="+dir)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	assert.Contains(t, string(out), "Imported 4 entries")
}

func TestImport_DryRun(t *testing.T) {
	dir := setupRepo(t, false)

	out, err := runSfimport(t, "import", "--repo", dir, "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "checking.json: 4 new, 0 duplicate")
	assert.Contains(t, out, `2024-01-15 * "Blue Bottle" "Coffee Shop"`)
	assert.Contains(t, out, "2024-01-17 balance Assets:Checking:Chase  1234.56 USD")
	assert.Contains(t, out, "Would import 4 entries")

	_, err = os.Stat(filepath.Join(dir, "2024"))
	assert.True(t, os.IsNotExist(err))
}

func TestImport_CommitsToGit(t *testing.T) {
	dir := setupRepo(t, true)

	out, err := runSfimport(t, "import", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Committed")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	msg, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "import: 4 entries from 1 files")
}

func TestImport_NothingToDo(t *testing.T) {
	dir := setupRepo(t, false)
	require.NoError(t, os.Remove(filepath.Join(dir, "import", "checking.json")))

	out, err := runSfimport(t, "import", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No files to import.")
}

func TestImport_NoConfig(t *testing.T) {
	_, err := runSfimport(t, "import", "--repo", t.TempDir())
	assert.Error(t, err)
}

func TestMap_PrintsEntries(t *testing.T) {
	dir := setupRepo(t, false)

	out, err := runSfimport(t, "map", "--repo", dir, filepath.Join(dir, "import", "checking.json"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "simplefin_id: \"TRN-002\"")
	assert.Contains(t, out, "Income:Uncategorized")
	assert.NotContains(t, out, "TRN-003", "pending excluded by default")

	out, err = runSfimport(t, "map", "--repo", dir, "--pending", filepath.Join(dir, "import", "checking.json"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "TRN-003")
}

func TestAccounts_Lists(t *testing.T) {
	dir := setupRepo(t, false)

	out, err := runSfimport(t, "accounts", "--repo", dir)
	require.NoError(t, err, out)
	assert.Regexp(t, `Assets:Checking:Chase\s+Assets\s+USD\s+ACT-abc123`, out)
	assert.Contains(t, out, "Expenses:Uncategorized")
}

func TestImport_JSONLogs(t *testing.T) {
	dir := setupRepo(t, false)

	out, err := runSfimport(t, "import", "--repo", dir, "--log-level", "info", "--log-format", "json")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"message":"import finished"`)
}

func TestImport_UnknownLogFormat(t *testing.T) {
	dir := setupRepo(t, false)

	out, err := runSfimport(t, "import", "--repo", dir, "--log-format", "xml")
	require.Error(t, err)
	assert.Contains(t, out, "unknown log format")
}

func TestLog_ListsImports(t *testing.T) {
	dir := setupRepo(t, false)

	out, err := runSfimport(t, "log", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No imports logged.")

	_, err = runSfimport(t, "import", "--repo", dir)
	require.NoError(t, err)

	out, err = runSfimport(t, "log", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "checking.json")
	assert.Contains(t, out, "2024-01-001")
	assert.Contains(t, out, "archived")

	out, err = runSfimport(t, "log", "--repo", dir, "--run", "no-such-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No imports logged.")
}

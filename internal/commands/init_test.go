package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/sfimport/internal/accounts"
	"github.com/cleared-dev/sfimport/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "sfimport-test-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmpDir, "sfimport")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/sfimport")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func runSfimport(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "SFIMPORT_REPO=", "SFIMPORT_LOG_LEVEL=", "SFIMPORT_LOG_FORMAT=")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	_, err := runSfimport(t, "init", dir, "--name", "Household")
	require.NoError(t, err)

	expectedDirs := []string{
		"accounts",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	_, err = os.Stat(filepath.Join(dir, "import", ".gitkeep"))
	assert.NoError(t, err)
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runSfimport(t, "init", dir, "--name", "My Household")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "My Household", cfg.Ledger.Name)
	assert.Equal(t, "USD", cfg.Ledger.DefaultCurrency)
	assert.Equal(t, "start_of_day", cfg.Ledger.BalanceAssertion)
}

func TestInit_Accounts(t *testing.T) {
	dir := t.TempDir()
	_, err := runSfimport(t, "init", dir, "--name", "Household")
	require.NoError(t, err)

	chart, err := accounts.Load(dir)
	require.NoError(t, err)
	assert.True(t, chart.Exists("Expenses:Uncategorized"))
	assert.True(t, chart.Exists("Income:Uncategorized"))
	assert.Len(t, chart.All(), 2)
}

func TestInit_GitRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := runSfimport(t, "init", dir, "--name", "Household")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init: Initialize Household")

	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	out, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "sfimport <sfimport@localhost>")
}

func TestInit_NoGit(t *testing.T) {
	dir := t.TempDir()
	_, err := runSfimport(t, "init", dir, "--name", "Household", "--no-git")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.True(t, os.IsNotExist(err))
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runSfimport(t, "init", dir, "--name", "Household", "--no-git")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".env")
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runSfimport(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := t.TempDir()
	_, err := runSfimport(t, "init", dir, "--name", "Household", "--no-git")
	require.NoError(t, err)

	out, err := runSfimport(t, "init", dir, "--name", "Again", "--no-git")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

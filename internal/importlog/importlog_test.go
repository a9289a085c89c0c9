package importlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

const testRun = "0b6f3c9e-4a7d-4f7e-9a43-0f6e2b1d8c55"

func testEntry() Entry {
	return Entry{
		Timestamp:   testTime,
		RunID:       testRun,
		File:        "chase.json",
		Action:      ActionImported,
		Details:     "Coffee Shop -5.50 USD",
		EntryID:     "2025-01-001",
		SimpleFINID: "TRN-001",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testEntry(), entries[0])

	data, err := os.ReadFile(filepath.Join(dir, Path))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header+"\n"))
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Action = ActionDuplicate
	e2.EntryID = ""
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionImported, entries[0].Action)
	assert.Equal(t, ActionDuplicate, entries[1].Action)

	data, err := os.ReadFile(filepath.Join(dir, Path))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "timestamp,run_id"), "header written once")
}

func TestAppend_NothingCreatesNoFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, nil))
	_, err := os.Stat(filepath.Join(dir, Path))
	assert.True(t, os.IsNotExist(err))
}

func TestRead_NoFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRun_FiltersByRunID(t *testing.T) {
	dir := t.TempDir()
	other := testEntry()
	other.RunID = NewRunID()
	require.NoError(t, Append(dir, []Entry{testEntry(), other, testEntry()}))

	entries, err := Run(dir, testRun)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	row := MarshalEntry(testEntry())

	_, err := UnmarshalEntry(row[:3])
	assert.Error(t, err)

	bad := append([]string(nil), row...)
	bad[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(bad)
	assert.ErrorContains(t, err, "parsing timestamp")

	bad = append([]string(nil), row...)
	bad[colRunID] = "run-1"
	_, err = UnmarshalEntry(bad)
	assert.ErrorContains(t, err, "parsing run_id")
}

package csvledger

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestAppend_CreatesLedgerWithHeader(t *testing.T) {
	root := t.TempDir()
	ledger := New(root)

	added, err := ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2024-01-01T02:12:30Z"),
		Conclusion:   model.ConclusionSuccess,
		CommitSHA:    "abcdef1234",
		JobID:        7,
		Throughput:   floatPtr(123.45),
	})

	require.NoError(t, err)
	assert.True(t, added)

	records := readRows(t, filepath.Join(root, "k_results.csv"))
	require.Len(t, records, 2)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"2024-01-01T02:12:30Z", "✅", "abcdef1234", "7", "123.45"}, records[1])
}

func TestAppend_MissingMetricIsEmptyColumn(t *testing.T) {
	root := t.TempDir()
	ledger := New(root)

	_, err := ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2024-01-01T00:00:00Z"),
		Conclusion:   model.ConclusionFailure,
		CommitSHA:    "abc",
		JobID:        1,
	})

	require.NoError(t, err)
	records := readRows(t, filepath.Join(root, "k_results.csv"))
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2024-01-01T00:00:00Z", "❌", "abc", "1", ""}, records[1])
}

func TestAppend_DuplicateJobIDIsNoOp(t *testing.T) {
	root := t.TempDir()
	ledger := New(root)
	path := filepath.Join(root, "k_results.csv")

	added, err := ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2024-01-01T00:00:00Z"),
		Conclusion:   model.ConclusionSuccess,
		CommitSHA:    "first",
		JobID:        7,
	})
	require.NoError(t, err)
	require.True(t, added)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	added, err = ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2024-06-01T00:00:00Z"),
		Conclusion:   model.ConclusionFailure,
		CommitSHA:    "second",
		JobID:        7,
	})
	require.NoError(t, err)
	assert.False(t, added)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "duplicate append must not rewrite the file")
}

func TestAppend_RowsSortedByRunTimestamp(t *testing.T) {
	root := t.TempDir()
	ledger := New(root)

	_, err := ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2024-02-01T00:00:00Z"),
		Conclusion:   model.ConclusionSuccess,
		CommitSHA:    "feb",
		JobID:        2,
	})
	require.NoError(t, err)
	_, err = ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2024-01-01T00:00:00Z"),
		Conclusion:   model.ConclusionSuccess,
		CommitSHA:    "jan",
		JobID:        1,
	})
	require.NoError(t, err)

	records := readRows(t, filepath.Join(root, "k_results.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, "jan", records[1][2])
	assert.Equal(t, "feb", records[2][2])
}

func TestAppend_UnparseableTimestampSkipsSort(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "k_results.csv")
	existing := strings.Join(header, ",") + "\n" +
		"not-a-timestamp,✅,zzz,9,\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	ledger := New(root)
	_, err := ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2020-01-01T00:00:00Z"),
		Conclusion:   model.ConclusionSuccess,
		CommitSHA:    "old",
		JobID:        1,
	})
	require.NoError(t, err)

	records := readRows(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, "not-a-timestamp", records[1][0], "existing order kept when sorting is skipped")
	assert.Equal(t, "old", records[2][2])
}

func TestAppend_UpgradesOlderSchema(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "k_results.csv")
	legacy := "run_started_at,conclusion,commit,job_id\n" +
		"2024-01-01T00:00:00Z,✅,aaa,1\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	ledger := New(root)
	added, err := ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2024-02-01T00:00:00Z"),
		Conclusion:   model.ConclusionFailure,
		CommitSHA:    "bbb",
		JobID:        2,
		Throughput:   floatPtr(55.5),
	})
	require.NoError(t, err)
	assert.True(t, added)

	records := readRows(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"2024-01-01T00:00:00Z", "✅", "aaa", "1", ""}, records[1], "legacy row padded with empty metric")
	assert.Equal(t, []string{"2024-02-01T00:00:00Z", "❌", "bbb", "2", "55.5"}, records[2])

	// Job IDs from the legacy schema still dedup future appends.
	added, err = ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2024-03-01T00:00:00Z"),
		Conclusion:   model.ConclusionSuccess,
		CommitSHA:    "ccc",
		JobID:        1,
	})
	require.NoError(t, err)
	assert.False(t, added)
}

func TestAppend_IncompatibleHeaderSetAside(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "k_results.csv")
	foreign := "something,else,entirely\nrow1,row2,row3\n"
	require.NoError(t, os.WriteFile(path, []byte(foreign), 0o644))

	ledger := New(root)
	added, err := ledger.Append(context.Background(), "k", model.Result{
		RunStartedAt: mustTime(t, "2024-01-01T00:00:00Z"),
		Conclusion:   model.ConclusionSuccess,
		CommitSHA:    "abc",
		JobID:        1,
	})
	require.NoError(t, err)
	assert.True(t, added)

	records := readRows(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, header, records[0])

	backups, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	saved, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, foreign, string(saved), "unrecognized ledger preserved verbatim")
}

func TestAppend_LedgersArePerKeyword(t *testing.T) {
	root := t.TempDir()
	ledger := New(root)

	_, err := ledger.Append(context.Background(), "alpha", model.Result{
		RunStartedAt: mustTime(t, "2024-01-01T00:00:00Z"),
		Conclusion:   model.ConclusionSuccess,
		CommitSHA:    "abc",
		JobID:        1,
	})
	require.NoError(t, err)

	// Same job ID under another keyword is a distinct ledger, not a dup.
	added, err := ledger.Append(context.Background(), "beta", model.Result{
		RunStartedAt: mustTime(t, "2024-01-01T00:00:00Z"),
		Conclusion:   model.ConclusionSuccess,
		CommitSHA:    "abc",
		JobID:        1,
	})
	require.NoError(t, err)
	assert.True(t, added)

	assert.FileExists(t, filepath.Join(root, "alpha_results.csv"))
	assert.FileExists(t, filepath.Join(root, "beta_results.csv"))
}

// Package csvledger persists per-keyword run results as small CSV files. A
// ledger is append-only in spirit but rewritten whole on every change, because
// rows are deduplicated by job ID and kept sorted by run timestamp. Files are
// tiny (one row per nightly run), so a full rewrite costs nothing and keeps
// the invariants trivial to enforce.
package csvledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
)

// header is the current column schema. Columns are only ever added at the end;
// ledgers written under an older, shorter header are upgraded in place by
// padding every row with empty values for the new columns.
var header = []string{"run_started_at", "conclusion", "commit", "job_id", "output_token_throughput"}

// jobIDColumn indexes the dedup key within header.
const jobIDColumn = 3

// lockRetryDelay is how often a blocked Append re-attempts the sidecar lock.
const lockRetryDelay = 100 * time.Millisecond

// Ledger stores one CSV file per keyword under root, named
// <keyword>_results.csv. Concurrent invocations against the same root are
// serialized per keyword through an advisory sidecar lock held for the whole
// read-modify-write cycle.
type Ledger struct {
	root string
}

// New returns a Ledger rooted at dir. The directory itself is created by the
// caller.
func New(dir string) *Ledger {
	return &Ledger{root: dir}
}

// Append records one result under the given keyword. A job ID that is already
// present leaves the file untouched and returns added false. Otherwise the row
// is added, the full row set is re-sorted by run timestamp, and the file is
// atomically rewritten.
func (l *Ledger) Append(ctx context.Context, keyword string, res model.Result) (bool, error) {
	path := filepath.Join(l.root, keyword+"_results.csv")

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return false, fmt.Errorf("acquire ledger lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return false, fmt.Errorf("acquire ledger lock %s: not acquired", lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release ledger lock", "path", lock.Path(), "error", err)
		}
	}()

	rows, jobIDs, err := load(path)
	if err != nil {
		return false, err
	}

	if _, exists := jobIDs[strconv.FormatInt(res.JobID, 10)]; exists {
		return false, nil
	}

	rows = append(rows, renderRow(res))
	sortByTimestamp(path, rows)

	if err := rewrite(path, rows); err != nil {
		return false, err
	}
	return true, nil
}

// load reads an existing ledger into padded rows plus the set of job IDs it
// already holds. A missing file yields an empty ledger. A file whose header is
// neither the current schema nor an older prefix of it is renamed aside with a
// timestamped .bak suffix and the ledger starts fresh, so unrecognized data is
// preserved instead of silently merged or lost.
func load(path string) ([][]string, map[string]struct{}, error) {
	jobIDs := make(map[string]struct{})

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, jobIDs, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, jobIDs, nil
	}

	if !isSchemaPrefix(records[0]) {
		backup := fmt.Sprintf("%s.%s.bak", path, time.Now().UTC().Format("20060102150405"))
		if err := os.Rename(path, backup); err != nil {
			return nil, nil, fmt.Errorf("set aside incompatible ledger %s: %w", path, err)
		}
		slog.Warn("ledger header unrecognized, set aside and starting fresh",
			"path", path,
			"backup", backup,
			"header", records[0])
		return nil, jobIDs, nil
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		rec = rec[:len(header)]
		if rec[jobIDColumn] != "" {
			jobIDs[rec[jobIDColumn]] = struct{}{}
		}
		rows = append(rows, rec)
	}
	return rows, jobIDs, nil
}

// isSchemaPrefix reports whether got is the current header or an older header
// the current one grew out of: same leading columns, new ones absent.
func isSchemaPrefix(got []string) bool {
	if len(got) == 0 || len(got) > len(header) {
		return false
	}
	for i, col := range got {
		if col != header[i] {
			return false
		}
	}
	return true
}

// sortByTimestamp orders rows ascending by the run timestamp column. If any
// row carries a timestamp that does not parse, the current order is kept for
// all rows; a half-sorted ledger would be worse than an unsorted one.
func sortByTimestamp(path string, rows [][]string) {
	type keyed struct {
		ts  time.Time
		row []string
	}
	keyedRows := make([]keyed, len(rows))
	for i, row := range rows {
		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			slog.Warn("ledger timestamp unparseable, skipping sort",
				"path", path,
				"value", row[0])
			return
		}
		keyedRows[i] = keyed{ts: ts, row: row}
	}
	sort.SliceStable(keyedRows, func(i, j int) bool {
		return keyedRows[i].ts.Before(keyedRows[j].ts)
	})
	for i := range keyedRows {
		rows[i] = keyedRows[i].row
	}
}

// renderRow converts a result into its CSV representation. The metric column
// is the empty string when no throughput was extracted.
func renderRow(res model.Result) []string {
	metric := ""
	if res.Throughput != nil {
		metric = strconv.FormatFloat(*res.Throughput, 'f', -1, 64)
	}
	return []string{
		res.RunStartedAt.UTC().Format(time.RFC3339),
		res.Conclusion.Symbol(),
		res.CommitSHA,
		strconv.FormatInt(res.JobID, 10),
		metric,
	}
}

// rewrite replaces the ledger file with header plus rows in one atomic step,
// so a crash mid-write can never leave a truncated ledger behind.
func rewrite(path string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("encode ledger header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encode ledger rows: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write ledger %s: %w", path, err)
	}
	return nil
}

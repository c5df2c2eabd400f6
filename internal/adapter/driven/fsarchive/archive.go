// Package fsarchive stores normalized job logs as write-once files on disk,
// laid out by run date.
package fsarchive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
)

const headerSeparator = 60

// Archive persists one log file per archived job under
// <root>/<YYYY-MM-DD>/<YYYY-MM-DD>_<commit|runID>_<keyword>_<jobID>.log.
type Archive struct {
	root string
}

// New returns an Archive rooted at dir. The directory itself is created by the
// caller; per-date subdirectories are created on demand.
func New(dir string) *Archive {
	return &Archive{root: dir}
}

// Store writes the log body for one job, prefixed with a provenance header.
// An entry that already exists is never rewritten; Store returns its path with
// created false.
func (a *Archive) Store(_ context.Context, run model.WorkflowRun, job model.Job, keyword, body string) (string, bool, error) {
	date := run.Date()
	dir := filepath.Join(a.root, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create archive dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, entryName(date, run, job, keyword))
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, fmt.Errorf("stat archive entry %s: %w", path, err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Run ID: %d\n", run.ID)
	fmt.Fprintf(&buf, "# Commit: %s\n", run.HeadSHA)
	fmt.Fprintf(&buf, "# Job: %s\n", job.Name)
	fmt.Fprintf(&buf, "# Date: %s\n", date)
	buf.WriteString(strings.Repeat("=", headerSeparator))
	buf.WriteString("\n\n")
	buf.WriteString(body)

	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", false, fmt.Errorf("write archive entry %s: %w", path, err)
	}
	return path, true, nil
}

// entryName builds the file name for one archived job. The commit
// discriminator falls back to the run ID when the provider reported no head
// commit.
func entryName(date string, run model.WorkflowRun, job model.Job, keyword string) string {
	discriminator := run.ShortSHA()
	if discriminator == "" {
		discriminator = strconv.FormatInt(run.ID, 10)
	}
	return fmt.Sprintf("%s_%s_%s_%d.log", date, discriminator, keyword, job.ID)
}

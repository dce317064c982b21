package loader

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/plenar/internal/logger"
)

// Skip reasons.
var (
	ErrNoProtocol       = errors.New("no protocol object")
	ErrMissingID        = errors.New("record has no id")
	ErrNotList          = errors.New("not a list")
	ErrNotObject        = errors.New("record is not an object")
	ErrInvalidSpeechID  = errors.New("speech id is not a UUID")
	ErrLookupNotSuccess = errors.New("speaker lookup not successful")
)

// Report summarizes one loader run.
type Report struct {
	RunID          string        `json:"run_id"`
	Entity         string        `json:"entity"`
	Source         string        `json:"source"`
	Files          int           `json:"files"`
	FilesSkipped   int           `json:"files_skipped"`
	Inserted       int           `json:"inserted"`
	Duplicates     int           `json:"duplicates"`
	RecordsSkipped int           `json:"records_skipped"`
	RecordsFailed  int           `json:"records_failed"`
	Backfilled     int64         `json:"backfilled,omitempty"`
	Elapsed        time.Duration `json:"elapsed_ns"`
	Skips          []Skip        `json:"skips,omitempty"`
}

// Skip records a file or record that was not loaded. Failed marks a
// record the store rejected, as opposed to one skipped before any
// write was attempted.
type Skip struct {
	File   string `json:"file"`
	Record string `json:"record,omitempty"`
	Failed bool   `json:"failed,omitempty"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (s Skip) Error() string {
	if s.Record == "" {
		return fmt.Sprintf("%s: %s", s.File, s.Reason)
	}
	return fmt.Sprintf("%s: record %s: %s", s.File, s.Record, s.Reason)
}

func (s Skip) Unwrap() error {
	return s.Err
}

// Err folds every skip into one error, or returns nil for a clean run.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, s := range r.Skips {
		result = multierror.Append(result, s)
	}
	return result.ErrorOrNil()
}

// HasFailures reports whether the store rejected any record.
func (r *Report) HasFailures() bool {
	return r.RecordsFailed > 0
}

// run carries the report and logger of one loader invocation.
type run struct {
	rep     *Report
	log     *logger.Logger
	started time.Time
}

func (r *run) skipFile(file string, err error) {
	r.rep.FilesSkipped++
	r.rep.Skips = append(r.rep.Skips, Skip{File: file, Reason: err.Error(), Err: err})
	r.log.Warn("skipping file", "file", file, "error", err)
}

func (r *run) skipRecord(file, record string, err error) {
	r.rep.RecordsSkipped++
	r.rep.Skips = append(r.rep.Skips, Skip{File: file, Record: record, Reason: err.Error(), Err: err})
	r.log.Warn("skipping record", "file", file, "record", record, "error", err)
}

func (r *run) failRecord(file, record string, err error) {
	r.rep.RecordsFailed++
	r.rep.Skips = append(r.rep.Skips, Skip{File: file, Record: record, Failed: true, Reason: err.Error(), Err: err})
	r.log.Error("record failed", "file", file, "record", record, "error", err)
}

// wrote counts the outcome of one conflict-skipping insert.
func (r *run) wrote(inserted bool) {
	if inserted {
		r.rep.Inserted++
	} else {
		r.rep.Duplicates++
	}
}

func (r *run) finish() *Report {
	r.rep.Elapsed = time.Since(r.started)
	r.log.Info("load finished",
		"files", r.rep.Files,
		"files_skipped", r.rep.FilesSkipped,
		"inserted", r.rep.Inserted,
		"duplicates", r.rep.Duplicates,
		"records_skipped", r.rep.RecordsSkipped,
		"records_failed", r.rep.RecordsFailed,
		"elapsed", r.rep.Elapsed,
	)
	return r.rep
}

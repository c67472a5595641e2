// Package status persists the outcome of a snapshot run for external monitoring.
//
// The file holds three KEY=VALUE lines:
//
//	TIMESTAMP=1672905780
//	STATUS=0
//	LAST_ERROR=Successful execution.
package status

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

const (
	// OK is recorded after a run that completed every stage.
	OK = 0
	// Error is recorded after any failed run.
	Error = 1
)

// SuccessMessage is the LAST_ERROR value of a successful run.
const SuccessMessage = "Successful execution."

// Record is the content of a status file.
type Record struct {
	// Timestamp is the end of the run in seconds since the epoch.
	Timestamp int64 `mapstructure:"TIMESTAMP"`
	// Status is OK or Error.
	Status int `mapstructure:"STATUS"`
	// LastError is the error message of the run, or SuccessMessage.
	LastError string `mapstructure:"LAST_ERROR"`
}

// NewRecord builds the record of a run that finished at now with the given error.
func NewRecord(now time.Time, runErr error) Record {
	if runErr == nil {
		return Record{Timestamp: now.Unix(), Status: OK, LastError: SuccessMessage}
	}
	return Record{Timestamp: now.Unix(), Status: Error, LastError: runErr.Error()}
}

// Time returns Timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// Failed reports whether the recorded run failed.
func (r Record) Failed() bool {
	return r.Status != OK
}

// Errors returned by Record.Check.
var (
	ErrRunFailed = errors.New("last run failed")
	ErrStale     = errors.New("last run is too old")
)

// Check turns the record into a monitoring verdict: nil when the last run succeeded
// and, if maxAge is positive, finished no longer than maxAge before now.
func (r Record) Check(now time.Time, maxAge time.Duration) error {
	if r.Failed() {
		return fmt.Errorf("%w: %s", ErrRunFailed, r.LastError)
	}
	if maxAge > 0 {
		if age := now.Sub(r.Time()); age > maxAge {
			return fmt.Errorf("%w: finished %s ago, limit %s", ErrStale, age.Truncate(time.Second), maxAge)
		}
	}
	return nil
}

// Bytes renders the record in the on-disk format. Newlines in LastError become tabs
// so the message always stays on a single line.
func (r Record) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "TIMESTAMP=%d\n", r.Timestamp)
	fmt.Fprintf(&buf, "STATUS=%d\n", r.Status)
	fmt.Fprintf(&buf, "LAST_ERROR=%s\n", strings.ReplaceAll(r.LastError, "\n", "\t"))
	return buf.Bytes()
}

// Path returns the status file of disk inside dir.
func Path(dir, disk string) string {
	return filepath.Join(dir, disk+".status")
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return nil
}

// Write replaces the status file at path with r.
//
// The record is written to a temporary file in the same directory and renamed over
// the target, so readers never observe a partially written file.
func Write(path string, r Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary status file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(r.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing status file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting status file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing status file: %w", err)
	}
	return nil
}

// Read parses the status file at path.
// Unknown keys are ignored; numeric fields are converted from their string form.
func Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}

	values := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("reading %s: %w", path, err)
	}

	for _, key := range []string{"TIMESTAMP", "STATUS"} {
		if _, err := strconv.ParseInt(values[key], 10, 64); err != nil {
			return Record{}, fmt.Errorf("invalid %s in %s: %q", key, path, values[key])
		}
	}

	var rec Record
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Record{}, err
	}
	if err := decoder.Decode(values); err != nil {
		return Record{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	return rec, nil
}

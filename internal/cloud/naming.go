package cloud

import (
	"path"
	"regexp"
	"strings"
	"time"
)

// SnapshotTimeLayout is the minute-granularity suffix appended to the disk name.
// It is fixed width and zero padded, so names of one disk sort chronologically.
const SnapshotTimeLayout = "20060102-1504"

// SnapshotName returns "<disk>-<YYYYMMDD>-<HHMM>" for the local time of t.
func SnapshotName(disk string, t time.Time) string {
	return disk + "-" + t.Local().Format(SnapshotTimeLayout)
}

// SnapshotPattern returns the regular expression selecting the snapshots of a disk:
// the disk name, a dash, six digits and any suffix.
func SnapshotPattern(disk string) string {
	return "^" + regexp.QuoteMeta(disk) + "-[0-9]{6}.*"
}

// BaseName reduces a resource URI (or path) to its last segment without extension.
//
//	https://www.googleapis.com/compute/v1/projects/p/zones/europe-west1-b -> europe-west1-b
func BaseName(uri string) string {
	base := path.Base(strings.TrimSpace(uri))
	return strings.TrimSuffix(base, path.Ext(base))
}

// ParseResourceList splits newline separated provider output into base names.
// Blank lines are skipped, so empty output yields an empty list.
func ParseResourceList(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		names = append(names, BaseName(line))
	}
	return names
}

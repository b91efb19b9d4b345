package dbx

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Timestamps are stored as TEXT. FormatTime writes fixed-width RFC 3339 in
// UTC so that lexical order is chronological; rows created by SQLite
// defaults use datetime('now') which has no zone.
const storageLayout = "2006-01-02T15:04:05.000000000Z07:00"

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(storageLayout)
}

// TimeValue returns nil for the zero time so nullable columns stay NULL.
func TimeValue(t time.Time) driver.Value {
	if t.IsZero() {
		return nil
	}
	return FormatTime(t)
}

// ParseTime parses any layout the store may hold.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ScanTime returns a sql.Scanner that parses a TEXT column into dst.
// NULL leaves dst at the zero time.
func ScanTime(dst *time.Time) *TimeScanner {
	return &TimeScanner{dst: dst}
}

// TimeScanner adapts TEXT timestamp columns to time.Time.
type TimeScanner struct {
	dst *time.Time
}

// Scan implements sql.Scanner.
func (s *TimeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.dst = time.Time{}
		return nil
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		t, err := ParseTime(v)
		if err != nil {
			return err
		}
		*s.dst = t
		return nil
	case []byte:
		t, err := ParseTime(string(v))
		if err != nil {
			return err
		}
		*s.dst = t
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

package database

import (
	"database/sql"
	"time"
)

// TimeLayout is the fixed-width UTC layout timestamps are stored in, so that
// string comparison in SQL orders them correctly on every driver.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp. RFC 3339 values written by hand are
// accepted too.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	return t.UTC(), err
}

// NullTime formats an optional timestamp; nil stays NULL.
func NullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// ParseNullTime reads an optional timestamp.
func ParseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := ParseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Bool converts a stored 0/1 flag.
func Bool(v int64) bool {
	return v != 0
}

// Flag converts a bool into the 0/1 integer stored in flag columns.
func Flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

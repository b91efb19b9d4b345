package dbx

import (
	"database/sql"
	"database/sql/driver"
)

// NullString binds "" as NULL.
func NullString(s string) driver.Value {
	if s == "" {
		return nil
	}
	return s
}

// NullInt64 binds a nil pointer as NULL.
func NullInt64(p *int64) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

// NullFloat64 binds a nil pointer as NULL.
func NullFloat64(p *float64) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

// Bool maps a flag onto SQLite's 0/1 integers.
func Bool(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Int64Ptr converts a scanned nullable integer.
func Int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// Float64Ptr converts a scanned nullable real.
func Float64Ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

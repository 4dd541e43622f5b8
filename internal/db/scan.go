package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// timeLayouts are the textual timestamp encodings SQLite drivers produce
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// nullTime scans TIMESTAMP columns from either driver, including NULL from outer joins
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (t *nullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (t *nullTime) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// timeInto adapts a *time.Time destination for Scan
type timeInto struct{ dst *time.Time }

func (t timeInto) Scan(src any) error {
	var nt nullTime
	if err := nt.Scan(src); err != nil {
		return err
	}
	*t.dst = nt.Time
	return nil
}

func scanTime(dst *time.Time) sql.Scanner { return timeInto{dst: dst} }

// now returns the write timestamp used for created_at/updated_at
func now() time.Time { return time.Now().UTC() }

type rowScanner interface {
	Scan(dest ...any) error
}

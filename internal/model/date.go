package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.  Dates in
// this layout compare lexicographically in calendar order, which the stores
// rely on.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component.  The zero value means
// "not set" and is rejected by request validation.
type Date struct {
    t time.Time
}

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
    return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
    t, err := time.Parse(DateLayout, strings.TrimSpace(s))
    if err != nil {
        return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
    }
    return Date{t: t}, nil
}

// MustParseDate is like ParseDate but panics on error.  Intended for tests
// and constants.
func MustParseDate(s string) Date {
    d, err := ParseDate(s)
    if err != nil {
        panic(err)
    }
    return d
}

func (d Date) IsZero() bool        { return d.t.IsZero() }
func (d Date) Before(o Date) bool  { return d.t.Before(o.t) }
func (d Date) After(o Date) bool   { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool   { return d.t.Equal(o.t) }
func (d Date) AddDays(n int) Date  { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Time() time.Time     { return d.t }

// String returns the date in DateLayout, or "" for the zero value.
func (d Date) String() string {
    if d.IsZero() {
        return ""
    }
    return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
    if d.IsZero() {
        return []byte("null"), nil
    }
    return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
    if string(b) == "null" {
        *d = Date{}
        return nil
    }
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return fmt.Errorf("date must be a YYYY-MM-DD string: %w", err)
    }
    parsed, err := ParseDate(s)
    if err != nil {
        return err
    }
    *d = parsed
    return nil
}

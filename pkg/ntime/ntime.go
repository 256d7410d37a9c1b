package ntime

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// NTime represents a nullable time.Time.
// It can be used as a scan destination and can be marshalled to JSON.
type NTime struct {
	time    time.Time
	isValid bool
}

// UnmarshalJSON parses a RFC3339 time string into a time.Time object.
func (nt *NTime) UnmarshalJSON(b []byte) error {
	parsedTime, err := time.Parse(time.RFC3339, string(b))
	if err != nil {
		return err
	}
	*nt = NTime{parsedTime, true}
	return nil
}

// MarshalJSON implements the Marshaller interface and operates on values rather than pointers, given NTime's heft.
func (nt NTime) MarshalJSON() ([]byte, error) {
	if nt.isValid {
		// mind the quotes
		return []byte(fmt.Sprintf("%q", nt.time.UTC().Format(time.RFC3339))), nil
	}
	return []byte("null"), nil
}

// Scan implements the Scanner interface; sqlite may hand over parsed times or
// raw RFC3339 text depending on the column's declared type.
func (nt *NTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		nt.time, nt.isValid = time.Time{}, false
	case time.Time:
		nt.time, nt.isValid = v, true
	case string:
		return nt.scanString(v)
	case []byte:
		return nt.scanString(string(v))
	default:
		return fmt.Errorf("can't scan %T into NTime", value)
	}
	return nil
}

func (nt *NTime) scanString(value string) error {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return err
	}
	nt.time, nt.isValid = parsed, true
	return nil
}

// Value implements the driver Valuer interface, storing times as RFC3339 UTC
// strings, which sort lexicographically in chronological order.
func (nt NTime) Value() (driver.Value, error) {
	if nt.isValid {
		return driver.Value(nt.time.UTC().Format(time.RFC3339)), nil
	}
	return nil, nil
}

func Now() NTime {
	return NTime{time: time.Now().UTC(), isValid: true}
}

// FromTime wraps a concrete time in a valid NTime.
func FromTime(t time.Time) NTime {
	return NTime{time: t.UTC(), isValid: true}
}

func (nt NTime) Before(compared NTime) bool {
	return nt.time.Before(compared.time)
}

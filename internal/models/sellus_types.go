package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// FlexString is a custom string type that handles Sellus' dynamic typing.
// Sellus returns `false` (boolean) or `null` for empty text fields instead of
// an empty string, and occasionally numbers where text is expected.
type FlexString string

// UnmarshalJSON handles dynamic typing from Sellus
func (fs *FlexString) UnmarshalJSON(data []byte) error {
	// 1. Try string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fs = FlexString(s)
		return nil
	}

	// 2. null -> empty
	if string(data) == "null" {
		*fs = ""
		return nil
	}

	// 3. Try boolean (false stands in for empty text)
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if !b {
			*fs = ""
			return nil
		}
		*fs = "true"
		return nil
	}

	// 4. Try number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*fs = FlexString(n.String())
		return nil
	}

	return errors.New("FlexString: cannot unmarshal value into string")
}

// Value implements driver.Valuer interface for database storage
func (fs FlexString) Value() (driver.Value, error) {
	return string(fs), nil
}

// Scan implements sql.Scanner interface for database retrieval
func (fs *FlexString) Scan(value interface{}) error {
	if value == nil {
		*fs = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*fs = FlexString(v)
	case []byte:
		*fs = FlexString(string(v))
	default:
		return fmt.Errorf("failed to scan FlexString: %v", value)
	}
	return nil
}

// String returns native string value
func (fs FlexString) String() string {
	return string(fs)
}

// FlexID is the remote system's opaque identifier. Sellus serializes it as a
// JSON number on some endpoints and as a string on others; we normalize to
// the string form everywhere.
type FlexID string

// UnmarshalJSON accepts both numeric and string ids
func (fi *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fi = FlexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*fi = FlexID(n.String())
		return nil
	}

	if string(data) == "null" || string(data) == "false" {
		*fi = ""
		return nil
	}

	return errors.New("FlexID: cannot unmarshal value into id")
}

// String returns native string value
func (fi FlexID) String() string {
	return string(fi)
}

// IsZero reports whether the id is absent
func (fi FlexID) IsZero() bool {
	return fi == ""
}

// FlexFloat handles quantities that arrive as numbers, numeric strings, or
// `false` for unset.
type FlexFloat float64

// UnmarshalJSON handles dynamic typing from Sellus
func (ff *FlexFloat) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*ff = FlexFloat(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*ff = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("FlexFloat: cannot parse %q", s)
		}
		*ff = FlexFloat(parsed)
		return nil
	}

	if string(data) == "null" || string(data) == "false" {
		*ff = 0
		return nil
	}

	return errors.New("FlexFloat: cannot unmarshal value into float")
}

// Float64 returns the native float value
func (ff FlexFloat) Float64() float64 {
	return float64(ff)
}

package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Fee is a decimal amount kept as its textual representation so no value ever
// passes through float64 between the form and the catalog database.
type Fee string

// FeeFromString trims user input.
func FeeFromString(raw string) Fee {
	return Fee(strings.TrimSpace(raw))
}

// FeeFromInt formats whole amounts.
func FeeFromInt(v int64) Fee {
	return Fee(strconv.FormatInt(v, 10))
}

// FeeFromFloat formats v with the shortest representation that round-trips.
func FeeFromFloat(v float64) Fee {
	return Fee(strconv.FormatFloat(v, 'f', -1, 64))
}

// String implements fmt.Stringer.
func (f Fee) String() string {
	return string(f)
}

// IsZero reports whether no fee was supplied.
func (f Fee) IsZero() bool {
	return strings.TrimSpace(string(f)) == ""
}

// MarshalJSON always emits a JSON string.
func (f Fee) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// UnmarshalJSON accepts a JSON string or a number literal; numbers are kept verbatim.
func (f *Fee) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Fee(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("fee must be a string or number: %w", err)
	}
	*f = Fee(n.String())
	return nil
}

// Scan reads NUMERIC columns, which drivers hand back as text.
func (f *Fee) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = ""
	case []byte:
		*f = Fee(v)
	case string:
		*f = Fee(v)
	case int64:
		*f = FeeFromInt(v)
	case float64:
		*f = FeeFromFloat(v)
	default:
		return fmt.Errorf("cannot scan %T into Fee", src)
	}
	return nil
}

// Value writes the fee as text so the database parses the decimal.
func (f Fee) Value() (driver.Value, error) {
	return string(f), nil
}

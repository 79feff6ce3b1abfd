package patient

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Age is the age field of an Input. The form front end posts it as a string
// ("34") while API callers usually send a number, so both are accepted. An
// empty string or null counts as absent.
type Age struct {
	value   int
	present bool
	valid   bool
	raw     string
}

// NewAge returns a present, well-formed Age.
func NewAge(v int) Age {
	return Age{value: v, present: true, valid: true, raw: strconv.Itoa(v)}
}

// MaxAge is the largest accepted age; it is the range of the relational
// backend's INTEGER column.
const MaxAge = math.MaxInt32

// ParseAge interprets form text. Only whole-number text is valid.
func ParseAge(s string) Age {
	s = strings.TrimSpace(s)
	if s == "" {
		return Age{}
	}
	a := Age{present: true, raw: s}
	if n, err := strconv.Atoi(s); err == nil && n >= -MaxAge && n <= MaxAge {
		a.value, a.valid = n, true
	}
	return a
}

// parseNumber interprets a bare JSON number. Integral floats such as 34.0
// are accepted there since JSON clients may not distinguish them.
func parseNumber(s string) Age {
	a := ParseAge(s)
	if a.valid {
		return a
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= MaxAge {
		a.value, a.valid = int(f), true
	}
	return a
}

// Value returns the parsed age; ok is false when absent or malformed.
func (a Age) Value() (v int, ok bool) {
	return a.value, a.present && a.valid
}

func (a Age) Present() bool { return a.present }

func (a Age) String() string { return a.raw }

func (a *Age) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = Age{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = ParseAge(s)
		return nil
	}
	if len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')) {
		*a = parseNumber(string(b))
		return nil
	}
	// booleans, objects and arrays are present but never a valid age
	*a = Age{present: true, raw: string(b)}
	return nil
}

func (a Age) MarshalJSON() ([]byte, error) {
	if !a.present {
		return []byte("null"), nil
	}
	if a.valid {
		return []byte(strconv.Itoa(a.value)), nil
	}
	return json.Marshal(a.raw)
}

package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TrimKind strips a fullname kind prefix such as "t1_" or "t3_".
func TrimKind(id string) string {
	if len(id) > 3 && id[0] == 't' && id[2] == '_' && id[1] >= '0' && id[1] <= '9' {
		return id[3:]
	}
	return id
}

// Timestamp is a Unix time in seconds that decodes from an integer, a
// float, a numeric string, false or null. False and null decode to zero,
// which is how "never edited" is reported.
type Timestamp int64

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := string(b)
	switch s {
	case "null", "false", `""`:
		*t = 0
		return nil
	case "true":
		// Very old edits only report a flag.
		*t = 1
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	*t = Timestamp(int64(f))
	return nil
}

// MarshalJSON writes the timestamp as an integer.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(t))
}

package normalisers

import (
	"encoding/json"
	"strings"
	"time"
)

// timestampLayouts are tried in order. RFC 3339 parsing also accepts
// fractional seconds such as HubSpot's ".000Z".
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// JoinName joins the non-empty parts with single spaces.
// A name with no usable parts is the empty string.
func JoinName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// ParseTimestamp parses an ISO-8601 timestamp into UTC.
// Missing or unparsable values yield nil rather than an error.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// text is a string field that decodes to "" when the value has any other
// JSON type, so one bad field never fails the whole record.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = ""
		return nil
	}
	*t = text(s)
	return nil
}

// decodeLenient fills v from raw as far as the shapes agree. Absent or
// mismatched containers leave the affected fields at their zero values.
func decodeLenient(raw json.RawMessage, v any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, v)
}

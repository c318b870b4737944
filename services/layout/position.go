package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Length is a CSS length produced by the editor. JSON numbers are pixels and
// JSON strings must be a number with a unit ("12mm", "40%"). The empty Length
// means "not provided".
type Length string

var lengthPattern = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)(px|mm|cm|in|pt|%|em|rem)$`)

// Px builds a pixel Length.
func Px(v float64) Length {
	return Length(formatPixels(v))
}

// UnmarshalJSON accepts a number, a string or null.
func (l *Length) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			*l = ""
			return nil
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			s += "px"
		}
		if !lengthPattern.MatchString(s) {
			return fmt.Errorf("invalid length %q", s)
		}
		*l = Length(s)
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid length %s: %w", data, err)
	}
	*l = Px(v)
	return nil
}

// IsZero reports whether the length was not provided.
func (l Length) IsZero() bool {
	return strings.TrimSpace(string(l)) == ""
}

// Valid reports whether the length is a plain number with a supported unit.
func (l Length) Valid() bool {
	return lengthPattern.MatchString(l.String())
}

// Pixels converts absolute lengths to pixels at 96dpi.
func (l Length) Pixels() (float64, bool) {
	return toPixels(string(l))
}

func (l Length) String() string {
	return strings.TrimSpace(string(l))
}

// Position is the box a user dragged or resized a section to. Positions are
// correlated with detected sections by index.
type Position struct {
	Left   Length `json:"left"`
	Top    Length `json:"top"`
	Width  Length `json:"width,omitempty"`
	Height Length `json:"height,omitempty"`
}

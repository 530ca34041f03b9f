// Package message implements the host/sandbox wire contract:
//
//	{ "type": "resize", "id": "<string>", "height": <number> }
//
// Decoding is lenient. Anything that is not a well-formed resize message is
// reported as not ok and callers drop it silently.
package message

import (
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// TypeResize is the only message type the host acts on
const TypeResize = "resize"

// SizeReport asserts the current rendered height of one sandbox
type SizeReport struct {
	Type   string  `json:"type"`
	ID     string  `json:"id"`
	Height float64 `json:"height"`
}

// Envelope is a message as observed on the page-level channel
type Envelope struct {
	Data   any
	Origin string
}

// NewResize builds a resize report
func NewResize(id string, height float64) SizeReport {
	return SizeReport{Type: TypeResize, ID: id, Height: height}
}

// Encode serializes a report for postMessage-style transports
func Encode(r SizeReport) ([]byte, error) {
	return sonic.ConfigStd.Marshal(r)
}

// Decode parses raw JSON into a report. Invalid JSON or a non-object payload
// yields ok=false.
func Decode(data []byte) (SizeReport, bool) {
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return SizeReport{}, false
	}
	return FromData(raw)
}

// FromData interprets an already-decoded message payload. The height is
// coerced the way the browser's Number() would; missing, non-numeric or
// non-finite values become 0.
func FromData(data any) (SizeReport, bool) {
	var fields map[string]any
	switch v := data.(type) {
	case map[string]any:
		fields = v
	case SizeReport:
		v.Height = finite(v.Height)
		return v, true
	case *SizeReport:
		if v == nil {
			return SizeReport{}, false
		}
		r := *v
		r.Height = finite(r.Height)
		return r, true
	default:
		return SizeReport{}, false
	}

	typ, _ := fields["type"].(string)
	report := SizeReport{
		Type:   typ,
		ID:     idString(fields["id"]),
		Height: Height(fields["height"]),
	}
	return report, true
}

// IsResizeFor reports whether r is a resize message addressed to id
func (r SizeReport) IsResizeFor(id string) bool {
	return r.Type == TypeResize && r.ID == id
}

// Height coerces an arbitrary decoded value into a finite height
func Height(v any) float64 {
	switch h := v.(type) {
	case float64:
		return finite(h)
	case float32:
		return finite(float64(h))
	case int:
		return float64(h)
	case int64:
		return float64(h)
	case int32:
		return float64(h)
	case uint32:
		return float64(h)
	case bool:
		if h {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(h)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return finite(f)
	default:
		return 0
	}
}

// idString only accepts string identifiers; the host compares with ===
func idString(v any) string {
	s, _ := v.(string)
	return s
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

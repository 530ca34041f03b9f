package frame

import (
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultInitialHeight is shown until the first report arrives
	DefaultInitialHeight = "100vh"
	// DefaultMinHeightPx is the detail view floor
	DefaultMinHeightPx = 200
	// ListingInitialHeight matches the browser's intrinsic iframe height
	ListingInitialHeight = "150px"
	// LockedHeight fills the parent container
	LockedHeight = "100%"
)

// Policy is the per-mount sizing configuration. It is immutable once a frame
// is mounted.
type Policy struct {
	InitialHeight   string `json:"initial_height"`
	MinHeightPx     int    `json:"min_height_px"`
	LockToContainer bool   `json:"lock_to_container"`
}

// DefaultPolicy is used by the detail view
func DefaultPolicy() Policy {
	return Policy{
		InitialHeight: DefaultInitialHeight,
		MinHeightPx:   DefaultMinHeightPx,
	}
}

// ListingPolicy is used by the listing view, which has no floor
func ListingPolicy() Policy {
	return Policy{
		InitialHeight: ListingInitialHeight,
	}
}

// LockedPolicy pins the frame to its container
func LockedPolicy(minHeightPx int) Policy {
	return Policy{
		InitialHeight:   LockedHeight,
		MinHeightPx:     minHeightPx,
		LockToContainer: true,
	}
}

// Normalized fills defaults: an empty initial height becomes 100vh and a
// negative floor becomes 0.
func (p Policy) Normalized() Policy {
	if strings.TrimSpace(p.InitialHeight) == "" {
		p.InitialHeight = DefaultInitialHeight
	}
	if p.MinHeightPx < 0 {
		p.MinHeightPx = 0
	}
	return p
}

// Height maps a reported height onto the CSS height of the frame.
// Locked frames always fill their container. Otherwise the result is
// max(MinHeightPx, reported) rounded to whole pixels; invalid heights count as 0.
func (p Policy) Height(reported float64) string {
	if p.LockToContainer {
		return LockedHeight
	}
	if math.IsNaN(reported) || math.IsInf(reported, 0) {
		reported = 0
	}
	px := math.Max(float64(p.MinHeightPx), reported)
	return strconv.FormatFloat(math.Round(px), 'f', 0, 64) + "px"
}

// ParsePx extracts the pixel count of a "<n>px" height
func ParsePx(height string) (int, bool) {
	if !strings.HasSuffix(height, "px") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(height, "px"))
	if err != nil {
		return 0, false
	}
	return n, true
}

package document

import (
	"time"
)

const (
	// DefaultCSSFrameworkURL is the utility-class CSS framework loaded by every document
	DefaultCSSFrameworkURL = "https://cdn.tailwindcss.com"
	// DefaultDrawingLibraryURL is the 2D canvas library loaded on request
	DefaultDrawingLibraryURL = "https://cdnjs.cloudflare.com/ajax/libs/p5.js/1.7.0/p5.min.js"
	// DefaultTargetOrigin is the postMessage target origin
	DefaultTargetOrigin = "*"
)

// Options controls the shell around the fragments
type Options struct {
	IncludeDrawingLibrary bool            // Preload the drawing library before the script fragment
	Fallbacks             []time.Duration // Delayed re-checks after mount
	Padding               string          // CSS padding of html and body
	Overflow              string          // CSS overflow of html and body
	Locked                bool            // Also count the viewport height when measuring
	TargetOrigin          string          // postMessage target origin
	CSSFrameworkURL       string
	DrawingLibraryURL     string
}

// VisualizationOptions is used for the script-only frame of the detail view
func VisualizationOptions() Options {
	return Options{
		IncludeDrawingLibrary: true,
		Fallbacks:             []time.Duration{50 * time.Millisecond, 300 * time.Millisecond, time.Second},
		Padding:               "0",
		Overflow:              "visible",
	}
}

// ContentOptions is used for the markup-only frame of the detail view
func ContentOptions() Options {
	return Options{
		Fallbacks: []time.Duration{50 * time.Millisecond, 300 * time.Millisecond, time.Second},
		Padding:   "8px",
		Overflow:  "visible",
	}
}

// ExcerptOptions is used for the listing view
func ExcerptOptions() Options {
	return Options{
		IncludeDrawingLibrary: true,
		Fallbacks:             []time.Duration{100 * time.Millisecond, 300 * time.Millisecond},
		Padding:               "0",
		Overflow:              "hidden",
	}
}

// WithAssets overrides the asset URLs; empty values keep the current ones
func (o Options) WithAssets(cssFramework, drawingLibrary string) Options {
	if cssFramework != "" {
		o.CSSFrameworkURL = cssFramework
	}
	if drawingLibrary != "" {
		o.DrawingLibraryURL = drawingLibrary
	}
	return o
}

// WithTargetOrigin restricts where reports are posted
func (o Options) WithTargetOrigin(origin string) Options {
	o.TargetOrigin = origin
	return o
}

func (o Options) normalized() Options {
	if o.CSSFrameworkURL == "" {
		o.CSSFrameworkURL = DefaultCSSFrameworkURL
	}
	if o.DrawingLibraryURL == "" {
		o.DrawingLibraryURL = DefaultDrawingLibraryURL
	}
	if o.TargetOrigin == "" {
		o.TargetOrigin = DefaultTargetOrigin
	}
	if o.Padding == "" {
		o.Padding = "0"
	}
	if o.Overflow == "" {
		o.Overflow = "visible"
	}
	return o
}

package frame

import (
	"html"
	"html/template"
	"strconv"
	"strings"
)

const (
	// Sandbox is the complete capability set of a mounted frame. Anything not
	// listed (top navigation, popups, forms, modals) stays denied.
	Sandbox = "allow-scripts allow-same-origin"
	// ElementPrefix prefixes the element id of every frame
	ElementPrefix = "iframe-"
)

// Role distinguishes frames of the same post
type Role string

const (
	RoleExcerpt       Role = "excerpt"
	RoleVisualization Role = "viz"
	RoleContent       Role = "content"
)

// Identifier builds the sandbox identifier for a post and role. Excerpt
// frames use the bare post id.
func Identifier(role Role, postID string) string {
	if role == RoleExcerpt || role == "" {
		return postID
	}
	return string(role) + "-" + postID
}

// ElementID returns the DOM id of the frame with the given identifier
func ElementID(id string) string {
	return ElementPrefix + id
}

// State is the lifecycle state of a mounted frame
type State int

const (
	StateInitial State = iota
	StateSized
	StateUnmounted
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateSized:
		return "sized"
	case StateUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Frame is the element model of one sandboxed frame
type Frame struct {
	ID        string `json:"id"`
	ElementID string `json:"element_id"`
	Title     string `json:"title"`
	SrcDoc    string `json:"srcdoc"`
	Sandbox   string `json:"sandbox"`
	Height    string `json:"height"`
	Policy    Policy `json:"policy"`
	State     State  `json:"-"`
	Reports   int    `json:"-"`
}

// New builds the element model of a frame before it is mounted
func New(doc, id, title string, policy Policy) Frame {
	policy = policy.Normalized()
	return Frame{
		ID:        id,
		ElementID: ElementID(id),
		Title:     title,
		SrcDoc:    doc,
		Sandbox:   Sandbox,
		Height:    policy.InitialHeight,
		Policy:    policy,
		State:     StateInitial,
	}
}

// HeightPx returns the current height in pixels when it is a pixel length
func (f Frame) HeightPx() (int, bool) {
	return ParsePx(f.Height)
}

// Markup renders the iframe element. The document is inlined through srcdoc
// and the data attributes carry the policy to the browser host script.
func (f Frame) Markup() template.HTML {
	style := []string{
		"height:" + f.Height,
		"width:100%",
		"display:block",
		"overflow:hidden",
		"border:0",
	}
	if f.Policy.MinHeightPx > 0 {
		style = append(style, "min-height:"+strconv.Itoa(f.Policy.MinHeightPx)+"px")
	}

	attrs := [][2]string{
		{"id", f.ElementID},
		{"title", f.Title},
		{"sandbox", f.Sandbox},
		{"scrolling", "no"},
		{"style", strings.Join(style, ";")},
		{"data-frame-id", f.ID},
		{"data-initial-height", f.Policy.InitialHeight},
		{"data-min-height", strconv.Itoa(f.Policy.MinHeightPx)},
		{"data-lock", strconv.FormatBool(f.Policy.LockToContainer)},
		{"srcdoc", f.SrcDoc},
	}

	var b strings.Builder
	b.WriteString("<iframe")
	for _, a := range attrs {
		b.WriteString(" ")
		b.WriteString(a[0])
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a[1]))
		b.WriteString(`"`)
	}
	b.WriteString("></iframe>")

	// attribute values are escaped above
	return template.HTML(b.String())
}

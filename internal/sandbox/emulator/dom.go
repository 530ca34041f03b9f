package emulator

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// defaultCanvasHeight is the intrinsic height of a canvas without a height attribute
const defaultCanvasHeight = 150

// DOM is the element tree of an emulated document
type DOM struct {
	root          *Element
	body          *Element
	contentHeight int
	mu            sync.RWMutex
}

// Element represents a DOM element
type Element struct {
	TagName    string
	ID         string
	ClassName  string
	Attributes map[string]string
	Children   []*Element
	Parent     *Element
}

// NewDOM creates an empty document with an html and a body element
func NewDOM() *DOM {
	root := newElement("html")
	body := newElement("body")
	root.AddElement(body)
	return &DOM{root: root, body: body}
}

// ParseDOM builds the element tree below body. Script elements are skipped;
// they are executed, not laid out.
func ParseDOM(body *html.Node) *DOM {
	d := NewDOM()
	if body == nil {
		return d
	}
	for _, attr := range body.Attr {
		d.body.SetAttribute(attr.Key, attr.Val)
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		appendNode(d.body, c)
	}
	return d
}

func appendNode(parent *Element, n *html.Node) {
	if n.Type != html.ElementNode || strings.EqualFold(n.Data, "script") {
		return
	}
	elem := newElement(n.Data)
	for _, attr := range n.Attr {
		elem.SetAttribute(attr.Key, attr.Val)
	}
	parent.AddElement(elem)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendNode(elem, c)
	}
}

func newElement(tag string) *Element {
	return &Element{
		TagName:    strings.ToLower(tag),
		Attributes: make(map[string]string),
		Children:   []*Element{},
	}
}

// Body returns the body element
func (d *DOM) Body() *Element {
	return d.body
}

// Root returns the html element
func (d *DOM) Root() *Element {
	return d.root
}

// SetContentHeight sets the laid-out height of the body content
func (d *DOM) SetContentHeight(px int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if px < 0 {
		px = 0
	}
	d.contentHeight = px
}

// Height returns the emulated layout height of elem
func (d *DOM) Height(elem *Element) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if elem == nil {
		return 0
	}
	if elem == d.body || elem == d.root {
		return d.contentHeight + canvasHeight(d.body)
	}
	return canvasHeight(elem)
}

func canvasHeight(elem *Element) int {
	if elem.TagName == "canvas" {
		if h, err := strconv.Atoi(elem.GetAttribute("height")); err == nil && h >= 0 {
			return h
		}
		return defaultCanvasHeight
	}
	total := 0
	for _, child := range elem.Children {
		total += canvasHeight(child)
	}
	return total
}

// Query finds elements by selector (simplified)
func (d *DOM) Query(selector string) []*Element {
	d.mu.RLock()
	defer d.mu.RUnlock()

	selector = strings.TrimSpace(selector)
	switch {
	case selector == "":
		return []*Element{}
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		if elem := d.findByID(d.root, id); elem != nil {
			return []*Element{elem}
		}
		return []*Element{}
	case strings.HasPrefix(selector, "."):
		return d.findByClass(d.root, strings.TrimPrefix(selector, "."))
	default:
		return d.findByTag(d.root, selector)
	}
}

// First returns the first element matching selector
func (d *DOM) First(selector string) *Element {
	if found := d.Query(selector); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Append adds child to parent under the DOM lock
func (d *DOM) Append(parent, child *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if child.Parent != nil {
		child.Remove()
	}
	parent.AddElement(child)
}

// SetAttribute sets an attribute of elem under the DOM lock
func (d *DOM) SetAttribute(elem *Element, name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	elem.SetAttribute(name, value)
}

// Element methods

// GetAttribute retrieves attribute value
func (e *Element) GetAttribute(name string) string {
	return e.Attributes[name]
}

// SetAttribute sets attribute value; id and class are mirrored on the element
func (e *Element) SetAttribute(name, value string) {
	e.Attributes[name] = value
	switch name {
	case "id":
		e.ID = value
	case "class":
		e.ClassName = value
	}
}

// HasClass reports whether class is one of the element's classes
func (e *Element) HasClass(class string) bool {
	for _, c := range strings.Fields(e.ClassName) {
		if c == class {
			return true
		}
	}
	return false
}

// Helper methods for querying

func (d *DOM) findByID(elem *Element, id string) *Element {
	if elem.ID == id {
		return elem
	}
	for _, child := range elem.Children {
		if found := d.findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

func (d *DOM) findByClass(elem *Element, class string) []*Element {
	var result []*Element
	if elem.HasClass(class) {
		result = append(result, elem)
	}
	for _, child := range elem.Children {
		result = append(result, d.findByClass(child, class)...)
	}
	return result
}

func (d *DOM) findByTag(elem *Element, tag string) []*Element {
	var result []*Element
	if strings.EqualFold(elem.TagName, tag) {
		result = append(result, elem)
	}
	for _, child := range elem.Children {
		result = append(result, d.findByTag(child, tag)...)
	}
	return result
}

// AddElement adds a child element
func (e *Element) AddElement(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// Remove removes element from parent
func (e *Element) Remove() {
	if e.Parent == nil {
		return
	}
	children := e.Parent.Children[:0]
	for _, child := range e.Parent.Children {
		if child != e {
			children = append(children, child)
		}
	}
	e.Parent.Children = children
	e.Parent = nil
}

package dom

import (
	"errors"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind is the closed set of control variants with a value accessor.
type Kind int

const (
	// KindNone is any element that carries no form value.
	KindNone Kind = iota
	// KindText covers text-like inputs and textareas.
	KindText
	// KindChoice covers select elements.
	KindChoice
	// KindCheck covers checkboxes and radio buttons.
	KindCheck
)

// Element wraps an html.Node that belongs to a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Tag returns the lower-case tag name, or "" for non-element nodes.
func (e *Element) Tag() string {
	if e.node.Type != html.ElementNode {
		return ""
	}
	return e.node.Data
}

// ID returns the id attribute.
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// Name returns the name attribute.
func (e *Element) Name() string {
	v, _ := e.Attr("name")
	return v
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	return attr(e.node, key)
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := attr(e.node, key)
	return ok
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr drops an attribute if present.
func (e *Element) RemoveAttr(key string) {
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains class.
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.Classes(), class)
}

// AddClass appends class unless it is already present.
func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), class), " "))
}

// RemoveClass drops class from the class list.
func (e *Element) RemoveClass(class string) {
	classes := e.Classes()
	kept := slices.DeleteFunc(classes, func(c string) bool { return c == class })
	if len(kept) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// Text returns the concatenated text content of the subtree.
func (e *Element) Text() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return sb.String()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(text string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		e.doc.forget(c)
		c = next
	}
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// Kind classifies the element as a form control.
func (e *Element) Kind() Kind {
	switch e.node.DataAtom {
	case atom.Select:
		return KindChoice
	case atom.Textarea:
		return KindText
	case atom.Input:
		typ, _ := e.Attr("type")
		switch strings.ToLower(typ) {
		case "checkbox", "radio":
			return KindCheck
		case "submit", "button", "reset", "image":
			return KindNone
		default:
			return KindText
		}
	}
	return KindNone
}

// Value returns the current value of the control according to its kind.
// Choice controls report the selected option's value, check controls report
// their value only while checked.
func (e *Element) Value() string {
	switch e.Kind() {
	case KindText:
		if e.node.DataAtom == atom.Textarea {
			return e.Text()
		}
		v, _ := e.Attr("value")
		return v
	case KindChoice:
		if opt := e.selectedOption(); opt != nil {
			return optionValue(opt)
		}
		return ""
	case KindCheck:
		if !e.HasAttr("checked") {
			return ""
		}
		if v, ok := e.Attr("value"); ok {
			return v
		}
		return "on"
	}
	return ""
}

// SetValue updates the control according to its kind. For choice controls
// the option with a matching value becomes selected; check controls become
// checked for any non-empty value.
func (e *Element) SetValue(v string) {
	switch e.Kind() {
	case KindText:
		if e.node.DataAtom == atom.Textarea {
			e.SetText(v)
			return
		}
		e.SetAttr("value", v)
	case KindChoice:
		for _, opt := range e.options() {
			if optionValue(opt) == v {
				opt.SetAttr("selected", "")
			} else {
				opt.RemoveAttr("selected")
			}
		}
	case KindCheck:
		if v == "" || v == "false" || v == "off" {
			e.RemoveAttr("checked")
			return
		}
		e.SetAttr("checked", "")
	}
}

func (e *Element) options() []*Element {
	opts, _ := e.QueryAll("option")
	return opts
}

// selectedOption mirrors browser behavior: the first explicitly selected
// option, otherwise the first option of a single-select.
func (e *Element) selectedOption() *Element {
	opts := e.options()
	for _, opt := range opts {
		if opt.HasAttr("selected") {
			return opt
		}
	}
	if len(opts) > 0 && !e.HasAttr("multiple") {
		return opts[0]
	}
	return nil
}

func optionValue(opt *Element) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.Text())
}

// Disabled reports whether the element itself carries the disabled attribute.
func (e *Element) Disabled() bool {
	return e.HasAttr("disabled")
}

// InDisabledScope reports whether the element or any ancestor is disabled.
func (e *Element) InDisabledScope() bool {
	for el := e; el != nil; el = el.Parent() {
		if el.node.Type == html.ElementNode && el.Disabled() {
			return true
		}
	}
	return false
}

// Parent returns the parent element, or nil at the top of the tree.
func (e *Element) Parent() *Element {
	if e.node.Parent == nil {
		return nil
	}
	return e.doc.wrap(e.node.Parent)
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for el := other; el != nil; el = el.Parent() {
		if el == e {
			return true
		}
	}
	return false
}

// Attached reports whether the element is reachable from the document root.
func (e *Element) Attached() bool {
	return e.doc.Root().Contains(e)
}

// Query returns the first element in e's subtree matching selector, or nil.
func (e *Element) Query(selector string) (*Element, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return e.doc.wrap(sel.MatchFirst(e.node)), nil
}

// QueryAll returns all elements in e's subtree matching selector in document order.
func (e *Element) QueryAll(selector string) ([]*Element, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	nodes := sel.MatchAll(e.node)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, e.doc.wrap(n))
	}
	return out, nil
}

// Closest returns e or its nearest ancestor matching selector, or nil.
func (e *Element) Closest(selector string) (*Element, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	for el := e; el != nil; el = el.Parent() {
		if el.node.Type == html.ElementNode && sel.Match(el.node) {
			return el, nil
		}
	}
	return nil, nil
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	child.detach()
	e.node.AppendChild(child.node)
	e.doc.adopt(child)
}

// InsertAfter places sibling directly after e.
func (e *Element) InsertAfter(sibling *Element) {
	if e.node.Parent == nil {
		return
	}
	sibling.detach()
	e.node.Parent.InsertBefore(sibling.node, e.node.NextSibling)
	e.doc.adopt(sibling)
}

// Remove detaches e from the tree. The wrappers of e and its descendants
// are released together with their listeners; e itself becomes live again
// when it is appended or inserted back.
func (e *Element) Remove() {
	e.detach()
	e.doc.forget(e.node)
}

func (e *Element) detach() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

// On registers fn for event on e and returns a function removing it.
func (e *Element) On(event string, fn Listener) func() {
	return e.doc.on(e, event, fn)
}

func compile(selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, errors.Join(ErrInvalidSelector, err)
	}
	return sel, nil
}

package dom

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a mutable HTML tree with an event listener registry.
type Document struct {
	root      *html.Node
	elems     map[*html.Node]*Element
	listeners map[*Element]map[string][]listener
	seq       uint64
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	return newDocument(root), nil
}

// ParseString parses markup held in a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// MustParseString is like ParseString but panics on error.
func MustParseString(markup string) *Document {
	doc, err := ParseString(markup)
	if err != nil {
		panic(err)
	}
	return doc
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		elems:     make(map[*html.Node]*Element),
		listeners: make(map[*Element]map[string][]listener),
	}
}

// wrap returns the cached wrapper for n so element identity stays stable.
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if el, ok := d.elems[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elems[n] = el
	return el
}

// adopt caches el again after a removed element is put back into the tree.
func (d *Document) adopt(el *Element) {
	d.elems[el.node] = el
}

// forget drops the wrappers and listeners of n and its subtree.
func (d *Document) forget(n *html.Node) {
	if el, ok := d.elems[n]; ok {
		delete(d.listeners, el)
		delete(d.elems, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

// Root returns the document node. Queries against it cover the whole tree.
func (d *Document) Root() *Element {
	return d.wrap(d.root)
}

// Body returns the body element, or the root when the tree has none.
func (d *Document) Body() *Element {
	if body := findNode(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	}); body != nil {
		return d.wrap(body)
	}
	return d.Root()
}

// ByID returns the element with the given id attribute, or nil.
func (d *Document) ByID(id string) *Element {
	if id == "" {
		return nil
	}
	n := findNode(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := attr(n, "id")
		return ok && v == id
	})
	return d.wrap(n)
}

// Query returns the first element in the document matching selector.
func (d *Document) Query(selector string) (*Element, error) {
	return d.Root().Query(selector)
}

// QueryAll returns every element in the document matching selector.
func (d *Document) QueryAll(selector string) ([]*Element, error) {
	return d.Root().QueryAll(selector)
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// ParseFragment parses markup in the context of the body element and returns
// the detached top-level elements.
func (d *Document) ParseFragment(markup string) ([]*Element, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, d.wrap(n))
		}
	}
	return out, nil
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return errors.Join(ErrRender, err)
	}
	return nil
}

// Dispatch delivers ev to target's listeners and then to each ancestor's,
// stopping early when a listener calls StopPropagation.
func (d *Document) Dispatch(target *Element, ev *Event) {
	if target == nil || ev == nil {
		return
	}
	ev.Target = target
	for el := target; el != nil; el = el.Parent() {
		ev.Current = el
		byType := d.listeners[el]
		if len(byType) > 0 {
			// Snapshot: listeners may unsubscribe while running.
			ls := append([]listener(nil), byType[ev.Type]...)
			for _, l := range ls {
				l.fn(ev)
			}
		}
		if ev.stopped {
			break
		}
	}
	ev.Current = nil
}

// ListenerCount reports how many listeners for event are attached to el.
func (d *Document) ListenerCount(el *Element, event string) int {
	return len(d.listeners[el][event])
}

func (d *Document) on(el *Element, event string, fn Listener) func() {
	d.seq++
	id := d.seq
	byType, ok := d.listeners[el]
	if !ok {
		byType = make(map[string][]listener)
		d.listeners[el] = byType
	}
	byType[event] = append(byType[event], listener{id: id, fn: fn})

	return func() {
		ls := d.listeners[el][event]
		for i, l := range ls {
			if l.id == id {
				d.listeners[el][event] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
		if len(d.listeners[el][event]) == 0 {
			delete(d.listeners[el], event)
		}
		if len(d.listeners[el]) == 0 {
			delete(d.listeners, el)
		}
	}
}

// OuterHTML renders el and its subtree.
func OuterHTML(el *Element) (string, error) {
	if el == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, el.node); err != nil {
		return "", errors.Join(ErrRender, err)
	}
	return buf.String(), nil
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

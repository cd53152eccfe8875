// Package dom provides a small, mutable document model on top of
// golang.org/x/net/html so form controls can be inspected, decorated and
// observed on the server.
//
// A Document owns a parsed HTML tree and hands out *Element wrappers with a
// stable identity: asking for the same node twice returns the same pointer,
// so elements can be used as map keys. Selectors are CSS selectors compiled
// with github.com/andybalholm/cascadia.
//
// # Controls
//
// Form controls fall into a closed set of kinds (text, choice, check). Value
// and SetValue dispatch on the kind so callers never have to inspect tag names:
//
//	doc, _ := dom.ParseString(`<select id="plan"><option value="">-</option><option value="pro" selected>Pro</option></select>`)
//	doc.ByID("plan").Value() // "pro"
//
// # Events
//
// Listeners are registered with On, which returns a function that removes the
// listener. Dispatch is synchronous and bubbles from the target to the
// document root unless a listener calls StopPropagation.
//
//	off := doc.ByID("email").On("change", func(ev *dom.Event) { ... })
//	defer off()
//	doc.Dispatch(doc.ByID("email"), dom.NewEvent("change"))
//
// A Document is not safe for concurrent use; callers serialize access the same
// way a browser serializes event callbacks.
package dom

package formhttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/validator"
)

// Views renders the HTTP responses. Nil entries fall back to the defaults,
// which write the document markup as is.
type Views struct {
	Page     func(doc *dom.Document) templ.Component
	NotFound func(id string) templ.Component
}

func (v Views) withDefaults() Views {
	if v.Page == nil {
		v.Page = documentPage
	}
	if v.NotFound == nil {
		v.NotFound = notFoundPage
	}
	return v
}

func documentPage(doc *dom.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return doc.Render(w)
	})
}

func notFoundPage(id string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p class="form-expired">This form has expired. `+
			`<a href="../">Start again</a>.</p>`)
		return err
	})
}

func rawHTML(markup string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, markup)
		return err
	})
}

// fragment is the rendered state returned after an event or a submission.
type fragment struct {
	scope     string
	summary   string
	summaryID string
	status    validator.Status
	pending   int
}

func (f fragment) scopeComponent() templ.Component {
	return rawHTML(f.scope)
}

// htmxComponent appends the summary as an out-of-band swap so htmx places
// it outside the swapped scope, or deletes a stale one.
func (f fragment) htmxComponent() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, f.scope); err != nil {
			return err
		}
		oob := f.summary
		if oob == "" {
			oob = `<div id="` + templ.EscapeString(f.summaryID) + `" hx-swap-oob="delete"></div>`
		}
		_, err := io.WriteString(w, oob)
		return err
	})
}

type signals struct {
	Status  validator.Status `json:"formStatus"`
	Passed  bool             `json:"formPassed"`
	Pending int              `json:"formPending"`
}

func (f fragment) signals() []byte {
	b, _ := json.Marshal(signals{
		Status:  f.status,
		Passed:  !f.status.Has(validator.StatusFail),
		Pending: f.pending,
	})
	return b
}

// render writes the fragment in the flavor the client asked for.
func render(w http.ResponseWriter, r *http.Request, code int, f fragment) error {
	if IsDataStar(r) {
		return patchFragment(w, r, f)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if IsHTMX(r) {
		return f.htmxComponent().Render(r.Context(), w)
	}
	return f.scopeComponent().Render(r.Context(), w)
}

func renderPage(w http.ResponseWriter, r *http.Request, code int, c templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	return c.Render(r.Context(), w)
}

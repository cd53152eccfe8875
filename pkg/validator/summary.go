package validator

import (
	"strings"

	"github.com/dmitrymomot/formguard/pkg/dom"
)

// Summary returns every non-empty help message of the fields inside the
// scope, one entry per message line.
func (f *Form) Summary() []string {
	var lines []string
	for _, field := range f.order {
		help := field.findHelp()
		if help == nil || !f.scope.Contains(help) {
			continue
		}
		for line := range strings.Lines(help.Text()) {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// showSummary replaces the single summary dialog with the current messages.
func (f *Form) showSummary() {
	f.hideSummary()

	theme := f.cfg.theme
	doc := f.doc

	modal := doc.CreateElement("div")
	modal.SetAttr("id", theme.SummaryID)
	modal.SetAttr("class", theme.SummaryClass)
	modal.SetAttr("role", "alertdialog")
	modal.SetAttr("aria-modal", "true")

	title := doc.CreateElement("p")
	title.SetText(theme.SummaryTitle)
	modal.AppendChild(title)

	list := doc.CreateElement("ul")
	for _, line := range f.Summary() {
		item := doc.CreateElement("li")
		item.SetText(line)
		list.AppendChild(item)
	}
	modal.AppendChild(list)

	doc.Body().AppendChild(modal)
	f.summary = modal
}

func (f *Form) hideSummary() {
	if f.summary != nil {
		f.summary.Remove()
		f.summary = nil
	}
}

// SummaryElement returns the summary dialog currently shown, or nil.
func (f *Form) SummaryElement() *dom.Element { return f.summary }

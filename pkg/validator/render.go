package validator

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/formguard/pkg/dom"
)

// Render decorates the field according to its status. Submission passes
// use the submit mode, live passes the display mode. A passing field with
// an empty value is left undecorated.
func (f *Field) Render(submitting bool) {
	if f.disposed() {
		return
	}
	help := f.helpElement()
	f.resetDecoration(help)

	if f.status == StatusPass && strings.TrimSpace(f.control.Value()) == "" {
		return
	}

	mode := f.form.cfg.display
	if submitting {
		mode = f.form.cfg.submit
	}
	theme := f.form.cfg.theme
	severity := f.status.Severity()
	text := f.Message()

	f.control.SetAttr("aria-invalid", strconv.FormatBool(f.status.Has(StatusFail)))

	// The help element always carries the text so the submission summary
	// can collect it; ModeHelp only decides whether it is shown.
	help.SetText(text)
	if mode.Has(ModeHelp) && text != "" {
		help.RemoveAttr("hidden")
	}

	if mode.Has(ModeIcon) {
		icon := f.form.doc.CreateElement("span")
		icon.SetAttr("class", theme.IconClass)
		icon.SetAttr("data-status", severity.String())
		icon.SetAttr("aria-hidden", "true")
		if color := theme.Colors[severity]; color != "" {
			icon.SetAttr("style", "color: "+color)
		}
		if text != "" {
			icon.SetAttr("title", text)
		}
		icon.SetText(theme.Icons[severity])
		f.indicator.InsertAfter(icon)
		f.icon = icon
	}

	if mode.Has(ModeHighlight) {
		f.control.AddClass(theme.Highlights[severity])
	}
}

// helpElement returns the element referenced by aria-describedby, creating
// and linking a hidden one right after the control when none exists.
func (f *Field) helpElement() *dom.Element {
	if help := f.findHelp(); help != nil {
		return help
	}

	doc := f.form.doc
	id := f.key + "-help"
	if doc.ByID(id) != nil {
		id = f.key + "-help-" + uuid.NewString()[:8]
	}

	help := doc.CreateElement("span")
	help.SetAttr("id", id)
	help.SetAttr("class", f.form.cfg.theme.HelpClass)
	help.SetAttr("aria-live", "polite")
	help.SetAttr("hidden", "")
	f.control.InsertAfter(help)

	refs, _ := f.control.Attr("aria-describedby")
	f.control.SetAttr("aria-describedby", strings.TrimSpace(refs+" "+id))
	return help
}

func (f *Field) findHelp() *dom.Element {
	refs, ok := f.control.Attr("aria-describedby")
	if !ok {
		return nil
	}
	for _, id := range strings.Fields(refs) {
		if el := f.form.doc.ByID(id); el != nil {
			return el
		}
	}
	return nil
}

func (f *Field) resetDecoration(help *dom.Element) {
	if f.icon != nil {
		f.icon.Remove()
		f.icon = nil
	}
	for _, class := range f.form.cfg.theme.Highlights {
		f.control.RemoveClass(class)
	}
	f.control.RemoveAttr("aria-invalid")
	if help != nil {
		help.SetText("")
		help.SetAttr("hidden", "")
	}
}

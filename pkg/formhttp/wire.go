package formhttp

import (
	"fmt"
	"net/url"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/validator"
)

const defaultScopeID = "fg-scope"

// scopeTarget is the element replaced on every response: the form scope,
// or the body when the whole document is validated.
func scopeTarget(form *validator.Form) *dom.Element {
	scope := form.Scope()
	if scope.Tag() == "" {
		if body := form.Document().Body(); body != nil {
			return body
		}
	}
	return scope
}

// wire adds the client attributes that post control events and the
// submission back to the session.
func (s *Service) wire(sess *Session) {
	form := sess.Form()
	target := scopeTarget(form)
	if target.ID() == "" {
		target.SetAttr("id", defaultScopeID)
	}
	prefix := s.base + "/" + url.PathEscape(sess.ID)

	for _, field := range form.Fields() {
		control := field.Control()
		eventURL := fmt.Sprintf("%s/event?control=%s&event=change", prefix, url.QueryEscape(field.Key()))
		switch s.client {
		case ClientDataStar:
			control.SetAttr("data-on-change", datastarPost(eventURL))
		default:
			control.SetAttr("hx-post", eventURL)
			control.SetAttr("hx-trigger", "change")
			control.SetAttr("hx-target", "#"+target.ID())
			control.SetAttr("hx-swap", "outerHTML")
			control.SetAttr("hx-include", "#"+target.ID())
		}
	}

	submitURL := prefix + "/submit"
	switch s.client {
	case ClientDataStar:
		target.SetAttr("data-on-submit", datastarPost(submitURL))
	default:
		target.SetAttr("hx-post", submitURL)
		target.SetAttr("hx-target", "this")
		target.SetAttr("hx-swap", "outerHTML")
	}
}

func datastarPost(u string) string {
	return fmt.Sprintf("@post('%s', {contentType: 'form'})", u)
}

// findControl resolves the control an event names: a field key first, then
// any element id inside the scope.
func findControl(form *validator.Form, key string) *dom.Element {
	if key == "" {
		return nil
	}
	for _, field := range form.Fields() {
		if field.Key() == key {
			return field.Control()
		}
	}
	if el := form.Document().ByID(key); el != nil && form.Scope().Contains(el) {
		return el
	}
	return nil
}

package formhttp

import (
	"net/url"
	"slices"

	"github.com/dmitrymomot/formguard/pkg/dom"
)

// applyValues copies posted values onto the named controls of scope.
// Checkboxes and radios are checked when their value was posted; other
// controls not present in values keep their current value.
func applyValues(scope *dom.Element, values url.Values) error {
	controls, err := scope.QueryAll("input[name], select[name], textarea[name]")
	if err != nil {
		return err
	}
	for _, el := range controls {
		name := el.Name()
		posted, ok := values[name]

		switch el.Kind() {
		case dom.KindCheck:
			own, has := el.Attr("value")
			if !has {
				own = "on"
			}
			if ok && slices.Contains(posted, own) {
				el.SetValue(own)
			} else {
				el.SetValue("")
			}
		case dom.KindText, dom.KindChoice:
			if typ, _ := el.Attr("type"); ok && typ != "file" {
				el.SetValue(posted[0])
			}
		}
	}
	return nil
}

package validator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/validator"
)

const signupPage = `<!doctype html>
<html><body>
<form id="signup">
  <div class="form-group">
    <label for="email">Email:</label>
    <input id="email" name="email" class="required email">
  </div>
  <div class="form-group">
    <label>Plan *</label>
    <select id="plan" class="required">
      <option value="">Choose</option>
      <option value="pro">Pro</option>
    </select>
  </div>
  <fieldset id="dates">
    <label for="start">Start Date</label>
    <input id="start" class="date">
    <label for="end">End Date</label>
    <input id="end" class="date">
  </fieldset>
  <input id="zip" name="zip">
  <input name="first_name">
  <input id="tos" type="checkbox" value="yes">
  <button id="go" type="submit">Sign up</button>
</form>
<input id="outside" class="required">
</body></html>`

func newSignup(t *testing.T, opts ...validator.Option) (*dom.Document, *validator.Form) {
	t.Helper()
	doc, err := dom.ParseString(signupPage)
	require.NoError(t, err)
	form := validator.New(doc, append([]validator.Option{validator.WithScope("#signup")}, opts...)...)
	t.Cleanup(form.Close)
	return doc, form
}

// fire sets the control's value and dispatches event on it.
func fire(t *testing.T, doc *dom.Document, id, value, event string) {
	t.Helper()
	el := doc.ByID(id)
	require.NotNil(t, el, id)
	el.SetValue(value)
	doc.Dispatch(el, dom.NewEvent(event))
}

// checkRule runs rule once against a control built from markup holding value.
func checkRule(t *testing.T, markup, value string, rule *validator.Rule) (validator.Status, []string) {
	t.Helper()
	doc, err := dom.ParseString(`<html><body><form><label for="c">Thing</label>` + markup + `</form></body></html>`)
	require.NoError(t, err)
	form := validator.New(doc)
	t.Cleanup(form.Close)

	el := doc.ByID("c")
	require.NotNil(t, el)
	el.SetValue(value)
	field := form.AddField(el, "", nil).AddRule(el, "change", rule)
	status := field.Validate(false)
	return status, field.Messages()
}

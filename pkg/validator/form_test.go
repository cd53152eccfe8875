package validator_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/logger"
	"github.com/dmitrymomot/formguard/pkg/validator"
)

func keys(fields []*validator.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Key())
	}
	return out
}

func TestNew_Markers(t *testing.T) {
	doc, form := newSignup(t)

	assert.Equal(t, []string{"email", "plan", "start", "end"}, keys(form.Fields()))
	assert.Nil(t, form.Field(doc.ByID("outside")), "controls outside the scope are ignored")
	assert.Same(t, doc.ByID("signup"), form.Scope())

	email := form.Field(doc.ByID("email"))
	require.NotNil(t, email)
	assert.Equal(t, "Email", email.Name())
	assert.Equal(t, []string{"required", "email"}, email.Rules())
	label, err := doc.Query(`label[for="email"]`)
	require.NoError(t, err)
	assert.Same(t, label, email.Indicator())

	plan := form.Field(doc.ByID("plan"))
	require.NotNil(t, plan)
	assert.Equal(t, "Plan", plan.Name(), "label found through the field group")

	start := form.Field(doc.ByID("start"))
	assert.Equal(t, "Start Date", start.Name())
	assert.Equal(t, []string{"date"}, start.Rules())

	assert.Equal(t, validator.StatusFail, form.CumulativeStatus())
}

func TestNew_WholeDocument(t *testing.T) {
	doc, err := dom.ParseString(signupPage)
	require.NoError(t, err)
	form := validator.New(doc)
	defer form.Close()

	assert.NotNil(t, form.Field(doc.ByID("outside")))
	assert.Same(t, doc.Root(), form.Scope())
}

func TestNew_MissingScopeFallsBack(t *testing.T) {
	doc, err := dom.ParseString(signupPage)
	require.NoError(t, err)
	form := validator.New(doc, validator.WithScope("#nope"))
	defer form.Close()
	assert.Same(t, doc.Root(), form.Scope())
}

func TestAddField_Naming(t *testing.T) {
	doc, form := newSignup(t)

	t.Run("title cased name attribute", func(t *testing.T) {
		el, err := doc.Query(`[name="first_name"]`)
		require.NoError(t, err)
		field := form.AddField(el, "", nil)
		assert.Equal(t, "first_name", field.Key())
		assert.Equal(t, "First Name", field.Name())
		assert.Same(t, el, field.Indicator())
	})

	t.Run("explicit name and indicator", func(t *testing.T) {
		zip, submit := doc.ByID("zip"), doc.ByID("go")
		field := form.AddField(zip, "Postal Code", submit)
		assert.Equal(t, "Postal Code", field.Name())
		assert.Same(t, submit, field.Indicator())
	})

	t.Run("same control returns same field", func(t *testing.T) {
		zip := doc.ByID("zip")
		assert.Same(t, form.AddField(zip, "", nil), form.AddField(zip, "Other", nil))
	})

	t.Run("anonymous control gets an id", func(t *testing.T) {
		el := doc.CreateElement("input")
		doc.ByID("signup").AppendChild(el)
		field := form.AddField(el, "", nil)
		assert.Equal(t, el.ID(), field.Key())
		assert.Contains(t, field.Key(), "fg-")
	})
}

func TestRequired_LiveValidation(t *testing.T) {
	doc, form := newSignup(t)
	email := form.Field(doc.ByID("email"))

	assert.Equal(t, validator.StatusFail, email.Status())
	assert.Equal(t, []string{"Error: Email is required."}, email.Messages())

	fire(t, doc, "email", "a@b.com", "input")
	assert.Equal(t, validator.StatusPass, email.Status())
	assert.Empty(t, email.Messages())

	fire(t, doc, "email", "", "input")
	assert.Equal(t, validator.StatusFail, email.Status())

	fire(t, doc, "email", "not-an-email", "change")
	assert.Equal(t, []string{`Error: "not-an-email" is not a valid email address.`}, email.Messages())
}

func TestCumulativeStatus_IsOrOfFields(t *testing.T) {
	doc, form := newSignup(t)
	fire(t, doc, "email", "a@b.com", "change")
	fire(t, doc, "plan", "pro", "change")
	assert.Equal(t, validator.StatusPass, form.CumulativeStatus())

	soft := validator.NewRule("soft", func(f *validator.Field) {
		if f.Value() == "00000" {
			f.Warn("Zip looks like a placeholder.")
		}
	})
	zip := doc.ByID("zip")
	form.AddField(zip, "", nil).AddRule(zip, "change", soft)
	fire(t, doc, "zip", "00000", "change")
	assert.Equal(t, validator.StatusWarn, form.CumulativeStatus())

	fire(t, doc, "email", "", "change")
	assert.Equal(t, validator.StatusWarn|validator.StatusFail, form.CumulativeStatus())

	var want validator.Status
	for _, f := range form.Fields() {
		want |= f.Status()
	}
	assert.Equal(t, want, form.CumulativeStatus())
}

func TestField_WarnAndFailCombine(t *testing.T) {
	doc, form := newSignup(t)
	zip := doc.ByID("zip")
	both := validator.NewRule("both", func(f *validator.Field) {
		f.Warn("soft")
		f.Fail("hard")
		f.Warn("soft")
	})
	field := form.AddField(zip, "", nil).AddRule(zip, "change", both)
	zip.SetValue("x")

	assert.Equal(t, validator.StatusWarn|validator.StatusFail, field.Validate(false))
	assert.Equal(t, []string{"Warning: soft", "Error: hard"}, field.Messages())
	assert.Equal(t, "Warning: soft\nError: hard", field.Message())

	field.Clear()
	assert.Equal(t, validator.StatusPass, field.Status())
	assert.Empty(t, field.Messages())
}

func TestValidate_Idempotent(t *testing.T) {
	doc, form := newSignup(t, validator.WithDisplayMode(validator.ModeIcon|validator.ModeHelp|validator.ModeHighlight))
	email := form.Field(doc.ByID("email"))

	first := email.Validate(false)
	html1, err := dom.OuterHTML(doc.ByID("signup"))
	require.NoError(t, err)

	second := email.Validate(false)
	form.ValidateAll(false)
	html2, err := dom.OuterHTML(doc.ByID("signup"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, html1, html2)

	icons, err := doc.QueryAll(".validation-icon")
	require.NoError(t, err)
	assert.Len(t, icons, 2, "one icon for each failing field")
}

func TestRender_Decorations(t *testing.T) {
	doc, form := newSignup(t)
	el := doc.ByID("email")

	t.Run("live failure uses display mode", func(t *testing.T) {
		assert.True(t, el.HasClass("is-invalid"))
		v, _ := el.Attr("aria-invalid")
		assert.Equal(t, "true", v)

		help := doc.ByID("email-help")
		require.NotNil(t, help)
		assert.True(t, help.HasAttr("hidden"))
		assert.Equal(t, "Error: Email is required.", help.Text())
		ref, _ := el.Attr("aria-describedby")
		assert.Equal(t, "email-help", ref)

		icon, err := doc.Query(".validation-icon")
		require.NoError(t, err)
		require.NotNil(t, icon)
		assert.Equal(t, "✖", icon.Text())
		status, _ := icon.Attr("data-status")
		assert.Equal(t, "fail", status)
	})

	t.Run("submission shows help", func(t *testing.T) {
		form.IsSubmissionValid(nil)
		assert.False(t, doc.ByID("email-help").HasAttr("hidden"))
	})

	t.Run("passing field gets pass decoration", func(t *testing.T) {
		fire(t, doc, "email", "a@b.com", "change")
		assert.False(t, el.HasClass("is-invalid"))
		assert.True(t, el.HasClass("is-valid"))
		v, _ := el.Attr("aria-invalid")
		assert.Equal(t, "false", v)
		assert.Empty(t, doc.ByID("email-help").Text())
	})

	t.Run("empty passing field is undecorated", func(t *testing.T) {
		form.Unrequire(el)
		fire(t, doc, "email", "", "change")
		assert.False(t, el.HasClass("is-valid"))
		assert.False(t, el.HasAttr("aria-invalid"))
	})
}

func TestRender_ModeNone(t *testing.T) {
	doc, _ := newSignup(t, validator.WithDisplayMode(validator.ModeNone))
	icons, err := doc.QueryAll(".validation-icon")
	require.NoError(t, err)
	assert.Empty(t, icons)
	assert.False(t, doc.ByID("email").HasClass("is-invalid"))
}

func TestRuleRefcount(t *testing.T) {
	doc, form := newSignup(t)
	zip := doc.ByID("zip")
	rule := validator.Length(5)

	field := form.AddField(zip, "", nil)
	field.AddRule(zip, "change", rule).AddRule(zip, "change", rule)
	assert.Equal(t, 1, doc.ListenerCount(zip, "change"))
	assert.Equal(t, []string{"length:5"}, field.Rules())

	field.RemoveRule(zip, "change", rule)
	assert.True(t, field.HasRule("length:5"))
	assert.Equal(t, 1, doc.ListenerCount(zip, "change"))

	fire(t, doc, "zip", "123", "change")
	assert.Equal(t, validator.StatusFail, field.Status())

	field.RemoveRule(zip, "change", rule)
	assert.False(t, field.HasRule("length:5"))
	assert.Equal(t, 0, doc.ListenerCount(zip, "change"))
	assert.Nil(t, form.Field(zip), "field without rules is disposed")
	assert.False(t, zip.HasClass("is-invalid"))
}

func TestRuleRefcount_MultipleEvents(t *testing.T) {
	doc, form := newSignup(t)
	zip := doc.ByID("zip")
	rule := validator.Length(5)

	field := form.AddField(zip, "", nil).AddRule(zip, "change input", rule)
	assert.Equal(t, 1, doc.ListenerCount(zip, "change"))
	assert.Equal(t, 1, doc.ListenerCount(zip, "input"))

	field.RemoveRule(zip, "input", rule)
	assert.Equal(t, 0, doc.ListenerCount(zip, "input"))
	assert.True(t, field.HasRule("length:5"))
}

func TestAddRule_WithoutTrigger(t *testing.T) {
	doc, form := newSignup(t)
	zip := doc.ByID("zip")
	rule := validator.Length(5)

	field := form.AddField(zip, "", nil)
	field.AddRule(nil, "change", rule).AddRule(zip, "  ", rule)
	assert.Empty(t, field.Rules())
	assert.Equal(t, 0, doc.ListenerCount(zip, "change"))

	field.AddRule(zip, "change", rule)
	field.RemoveRule(zip, "change", rule)
	assert.Nil(t, form.Field(zip), "field without rules is disposed")
}

func TestUnrequire(t *testing.T) {
	doc, form := newSignup(t)
	plan := doc.ByID("plan")

	form.Unrequire(plan)
	assert.Nil(t, form.Field(plan))
	assert.Equal(t, 0, doc.ListenerCount(plan, "change"))

	form.Require(plan, "", nil)
	assert.Equal(t, validator.StatusFail, form.Field(plan).Status())

	email := doc.ByID("email")
	form.Unrequire(email)
	require.NotNil(t, form.Field(email), "email rule keeps the field alive")
	assert.Equal(t, []string{"email"}, form.Field(email).Rules())
}

func TestSubmission_BlockedOnFail(t *testing.T) {
	doc, form := newSignup(t)

	ev := dom.NewEvent("submit")
	doc.Dispatch(doc.ByID("signup"), ev)
	assert.True(t, ev.DefaultPrevented())
	assert.True(t, ev.PropagationStopped())

	summary := form.SummaryElement()
	require.NotNil(t, summary)
	assert.Same(t, summary, doc.ByID("validation-summary"))
	role, _ := summary.Attr("role")
	assert.Equal(t, "alertdialog", role)
	assert.Equal(t, []string{
		"Error: Email is required.",
		"Error: Please select a value for Plan.",
	}, form.Summary())

	items, err := summary.QueryAll("li")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	t.Run("only one summary at a time", func(t *testing.T) {
		assert.False(t, form.IsSubmissionValid(nil))
		all, err := doc.QueryAll("#validation-summary")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("errors", func(t *testing.T) {
		err := form.Errors()
		require.Error(t, err)
		assert.True(t, errors.Is(err, validator.ErrValidationFailed))
		verrs := validator.ExtractValidationErrors(err)
		assert.Equal(t, []string{"email", "plan"}, verrs.Fields())
		assert.Equal(t, []string{"Email is required."}, verrs.Get("email"))
	})

	t.Run("summary removed once valid", func(t *testing.T) {
		fire(t, doc, "email", "a@b.com", "change")
		fire(t, doc, "plan", "pro", "change")
		assert.True(t, form.IsSubmissionValid(nil))
		assert.Nil(t, form.SummaryElement())
		assert.Nil(t, doc.ByID("validation-summary"))
		assert.NoError(t, form.Errors())
	})
}

func TestSubmission_SummaryPerForm(t *testing.T) {
	doc, err := dom.ParseString(`<html><body>
<form id="billing"><label for="card">Card</label><input id="card" class="required"></form>
<form id="shipping"><label for="street">Street</label><input id="street" class="required"></form>
</body></html>`)
	require.NoError(t, err)
	billing := validator.New(doc, validator.WithScope("#billing"))
	t.Cleanup(billing.Close)
	shipping := validator.New(doc, validator.WithScope("#shipping"))
	t.Cleanup(shipping.Close)

	assert.False(t, billing.IsSubmissionValid(nil))
	assert.False(t, shipping.IsSubmissionValid(nil))
	require.NotNil(t, billing.SummaryElement())
	require.NotNil(t, shipping.SummaryElement())

	fire(t, doc, "street", "Main St", "change")
	assert.True(t, shipping.IsSubmissionValid(nil))
	assert.Nil(t, shipping.SummaryElement())

	summary := billing.SummaryElement()
	require.NotNil(t, summary)
	assert.True(t, doc.Body().Contains(summary), "other form keeps its summary")
	assert.Equal(t, []string{"Error: Card is required."}, billing.Summary())
}

func TestSubmission_WarningsDoNotBlock(t *testing.T) {
	doc, form := newSignup(t)
	fire(t, doc, "email", "a@b.com", "change")
	fire(t, doc, "plan", "pro", "change")

	zip := doc.ByID("zip")
	form.AddField(zip, "", nil).AddRule(zip, "change", validator.NewRule("soft", func(f *validator.Field) {
		f.Warn("Zip is unusual.")
	}))

	ev := dom.NewEvent("submit")
	doc.Dispatch(doc.ByID("signup"), ev)
	assert.False(t, ev.DefaultPrevented())
	assert.Equal(t, validator.StatusWarn, form.CumulativeStatus())
	assert.Nil(t, form.SummaryElement())
}

func TestSubmission_WithoutSummaryMode(t *testing.T) {
	doc, form := newSignup(t, validator.WithSubmitMode(validator.ModeIcon))
	assert.False(t, form.IsSubmissionValid(nil))
	assert.Nil(t, form.SummaryElement())
	assert.True(t, doc.ByID("email-help").HasAttr("hidden"))
}

func TestDisabledScopeSkipsRules(t *testing.T) {
	doc, form := newSignup(t)
	start := form.Field(doc.ByID("start"))

	fire(t, doc, "start", "1/41/2015", "change")
	assert.Equal(t, validator.StatusFail, start.Status())

	doc.ByID("dates").SetAttr("disabled", "")
	form.ValidateAll(false)
	assert.Equal(t, validator.StatusPass, start.Status())

	doc.ByID("dates").RemoveAttr("disabled")
	form.ValidateAll(false)
	assert.Equal(t, validator.StatusFail, start.Status())
}

func TestPostHook(t *testing.T) {
	var calls []bool
	doc, form := newSignup(t, validator.WithPostHook(func(passed bool) {
		calls = append(calls, passed)
	}))
	require.NotEmpty(t, calls)
	assert.False(t, calls[len(calls)-1])

	fire(t, doc, "email", "a@b.com", "change")
	fire(t, doc, "plan", "pro", "change")
	assert.True(t, calls[len(calls)-1])

	zip := doc.ByID("zip")
	form.AddField(zip, "", nil).AddRule(zip, "change", validator.NewRule("soft", func(f *validator.Field) {
		f.Warn("careful")
	}))
	assert.Equal(t, validator.StatusWarn, form.ValidateAll(false))
	assert.True(t, calls[len(calls)-1], "warnings count as passed")
}

func TestSubmitControl_DisableMode(t *testing.T) {
	doc, _ := newSignup(t, validator.WithSubmitMode(validator.DefaultSubmitMode|validator.ModeDisable))
	submit := doc.ByID("go")
	assert.True(t, submit.HasAttr("disabled"))

	fire(t, doc, "email", "a@b.com", "change")
	assert.True(t, submit.HasAttr("disabled"))
	fire(t, doc, "plan", "pro", "change")
	assert.False(t, submit.HasAttr("disabled"))

	fire(t, doc, "plan", "", "change")
	assert.True(t, submit.HasAttr("disabled"))
}

func TestSubmitControl_IgnoredWithoutDisableMode(t *testing.T) {
	doc, _ := newSignup(t)
	assert.False(t, doc.ByID("go").HasAttr("disabled"))
}

func TestValidate_ReentrantEventsIgnored(t *testing.T) {
	doc, form := newSignup(t)
	zip := doc.ByID("zip")
	runs := 0
	loop := validator.NewRule("loop", func(f *validator.Field) {
		runs++
		f.Control().Document().Dispatch(f.Control(), dom.NewEvent("change"))
	})
	form.AddField(zip, "", nil).AddRule(zip, "change", loop)

	doc.Dispatch(zip, dom.NewEvent("change"))
	assert.Equal(t, 1, runs)
}

func TestValidate_PanickingRuleIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelDebug))
	doc, form := newSignup(t, validator.WithLogger(log))

	zip := doc.ByID("zip")
	boom := validator.NewRule("boom", func(*validator.Field) { panic("boom") })
	field := form.AddField(zip, "", nil).
		AddRule(zip, "change", boom).
		AddRule(zip, "change", validator.Length(5))
	fire(t, doc, "zip", "12", "change")

	assert.Equal(t, validator.StatusFail, field.Status(), "later rules still run")
	assert.Contains(t, buf.String(), `"rule":"boom"`)
	assert.Contains(t, buf.String(), `"component":"validator"`)
}

func TestClose_DetachesListeners(t *testing.T) {
	doc, err := dom.ParseString(signupPage)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	form := validator.New(doc, validator.WithScope("#signup"), validator.WithContext(ctx))

	email := doc.ByID("email")
	require.Positive(t, doc.ListenerCount(email, "change"))
	form.Close()

	assert.Equal(t, 0, doc.ListenerCount(email, "change"))
	assert.Equal(t, 0, doc.ListenerCount(doc.ByID("signup"), "submit"))
}

func TestNewFromConfig(t *testing.T) {
	doc, err := dom.ParseString(signupPage)
	require.NoError(t, err)
	form := validator.NewFromConfig(doc, validator.Config{
		Scope:          "#signup",
		DisplayMode:    validator.DefaultDisplayMode,
		SubmitMode:     validator.DefaultSubmitMode | validator.ModeDisable,
		SubmitControl:  "#go",
		DateWindow:     50,
		RequiredMarker: "required",
	})
	defer form.Close()

	assert.Equal(t, []string{"email", "plan"}, keys(form.Fields()))
	assert.True(t, doc.ByID("go").HasAttr("disabled"))
}

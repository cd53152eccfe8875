package formhttp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/formhttp"
	"github.com/dmitrymomot/formguard/pkg/validator"
)

const signupPage = `<!doctype html>
<html><head><title>Sign up</title></head><body>
<form id="signup">
  <label for="email">Email</label>
  <input id="email" name="email" class="required email">
  <label for="user">Username</label>
  <input id="user" name="user">
  <input id="tos" name="tos" type="checkbox" value="yes" class="required">
  <button id="go" type="submit">Go</button>
</form>
</body></html>`

func taken(ctx context.Context, value string) (string, error) {
	if value == "bob" {
		return "Username is already taken.", nil
	}
	return "", nil
}

func signupFactory(ctx context.Context) (*dom.Document, *validator.Form, error) {
	doc, err := dom.ParseString(signupPage)
	if err != nil {
		return nil, nil, err
	}
	form := validator.New(doc,
		validator.WithScope("#signup"),
		validator.WithSubmitControl("#go"),
	)
	user := doc.ByID("user")
	form.AddField(user, "", nil).AddRule(user, "change", validator.Remote("taken", taken, time.Second))
	return doc, form, nil
}

func newService(t *testing.T, opts ...formhttp.Option) (*formhttp.Service, http.Handler) {
	t.Helper()
	cfg := formhttp.Config{
		LookupWait:  time.Second,
		SessionTTL:  time.Minute,
		MaxSessions: 10,
		Client:      formhttp.ClientHTMX,
	}
	svc := formhttp.NewService(cfg, signupFactory, opts...)
	t.Cleanup(svc.Close)
	return svc, svc.Handle()
}

// createSession runs the entry route and returns the new session id.
func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	loc := rec.Header().Get("Location")
	id := strings.Trim(loc, "/")
	require.NotEmpty(t, id)
	return id
}

func post(h http.Handler, target string, values url.Values, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var htmxHeaders = map[string]string{formhttp.HXRequest: "true"}

package formhttp_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formguard/pkg/formhttp"
)

type statusBody struct {
	Data struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Passed  bool   `json:"passed"`
		Pending int    `json:"pending"`
		Fields  []struct {
			Field    string   `json:"field"`
			Status   string   `json:"status"`
			Messages []string `json:"messages"`
		} `json:"fields"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func getStatus(t *testing.T, h http.Handler, id string) (int, statusBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+id+"/status", nil))
	var body statusBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestService_CreateAndPage(t *testing.T) {
	t.Parallel()
	svc, h := newService(t)

	id := createSession(t, h)
	assert.Equal(t, 1, svc.Store().Len())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+id+"/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, `<title>Sign up</title>`)
	assert.Contains(t, body, `hx-post="/`+id+`/event?control=email&amp;event=change"`)
	assert.Contains(t, body, `hx-post="/`+id+`/submit"`)
	assert.Contains(t, body, `hx-target="#signup"`)
}

func TestService_BasePath(t *testing.T) {
	t.Parallel()
	_, h := newService(t, formhttp.WithBasePath("/forms"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Regexp(t, `^/forms/[0-9a-f-]{36}/$`, rec.Header().Get("Location"))
}

func TestService_Event(t *testing.T) {
	t.Parallel()
	_, h := newService(t)
	id := createSession(t, h)

	t.Run("htmx fragment", func(t *testing.T) {
		rec := post(h, "/"+id+"/event?control=email&event=change",
			url.Values{"email": {"not-an-email"}}, htmxHeaders)
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, `<form id="signup"`)
		assert.Contains(t, body, `aria-invalid="true"`)
		assert.Contains(t, body, `is-invalid`)
		assert.Contains(t, body, `value="not-an-email"`)
		assert.Contains(t, body, `hx-swap-oob="delete"`)
		assert.NotContains(t, body, `<html>`)
	})

	t.Run("trigger header names the control", func(t *testing.T) {
		rec := post(h, "/"+id+"/event", url.Values{"email": {"a@b.com"}},
			map[string]string{formhttp.HXRequest: "true", formhttp.HXTrigger: "email"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `is-valid`)
	})

	t.Run("plain request gets the scope only", func(t *testing.T) {
		rec := post(h, "/"+id+"/event?control=email", url.Values{"email": {"a@b.com"}}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), `hx-swap-oob`)
	})

	t.Run("remote lookup is awaited", func(t *testing.T) {
		rec := post(h, "/"+id+"/event?control=user", url.Values{"user": {"bob"}}, htmxHeaders)
		require.Equal(t, http.StatusOK, rec.Code)

		_, status := getStatus(t, h, id)
		assert.Equal(t, 0, status.Data.Pending)
		for _, f := range status.Data.Fields {
			if f.Field == "user" {
				assert.Equal(t, "fail", f.Status)
				assert.Equal(t, []string{"Error: Username is already taken."}, f.Messages)
			}
		}
	})

	t.Run("unknown control", func(t *testing.T) {
		rec := post(h, "/"+id+"/event?control=nope", nil, htmxHeaders)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = post(h, "/"+id+"/event", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing session", func(t *testing.T) {
		rec := post(h, "/missing/event?control=email", nil, htmxHeaders)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestService_DataStarEvent(t *testing.T) {
	t.Parallel()
	_, h := newService(t, formhttp.WithClient(formhttp.ClientDataStar))
	id := createSession(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+id+"/", nil))
	assert.Contains(t, rec.Body.String(), `data-on-change="@post(&#39;/`+id+`/event?control=email&amp;event=change&#39;, {contentType: &#39;form&#39;})"`)

	rec = post(h, "/"+id+"/event?control=email&event=change",
		url.Values{"email": {"x"}}, map[string]string{formhttp.DataStarRequestHeader: "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `<form id="signup"`)
	assert.Contains(t, body, "#validation-summary")
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, `"formStatus":"fail"`)
	assert.Contains(t, body, `"formPassed":false`)
}

func TestService_Submit(t *testing.T) {
	t.Parallel()

	t.Run("blocked", func(t *testing.T) {
		t.Parallel()
		_, h := newService(t)
		id := createSession(t, h)

		rec := post(h, "/"+id+"/submit", url.Values{"email": {""}}, htmxHeaders)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, `id="validation-summary"`)
		assert.Contains(t, body, `hx-swap-oob="true"`)
		assert.Contains(t, body, "Email is required.")

		code, status := getStatus(t, h, id)
		require.Equal(t, http.StatusOK, code)
		assert.False(t, status.Data.Passed)
		assert.Equal(t, "fail", status.Data.Status)
	})

	t.Run("taken username found during submission", func(t *testing.T) {
		t.Parallel()
		_, h := newService(t)
		id := createSession(t, h)

		rec := post(h, "/"+id+"/submit",
			url.Values{"email": {"a@b.com"}, "tos": {"yes"}, "user": {"bob"}}, htmxHeaders)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Username is already taken.")
	})

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()
		_, h := newService(t)
		id := createSession(t, h)

		rec := post(h, "/"+id+"/submit",
			url.Values{"email": {"a@b.com"}, "tos": {"yes"}, "user": {"alice"}}, htmxHeaders)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "form-submitted", rec.Header().Get(formhttp.HXTriggerHeader))
		assert.NotContains(t, rec.Body.String(), `id="validation-summary"`)

		_, status := getStatus(t, h, id)
		assert.True(t, status.Data.Passed)
		assert.Equal(t, "pass", status.Data.Status)
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()
	svc, h := newService(t)
	id := createSession(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/"+id+"/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, svc.Store().Len())

	code, body := getStatus(t, h, id)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, formhttp.ErrSessionNotFound.Error(), body.Error.Message)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+id+"/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestService_TooManySessions(t *testing.T) {
	t.Parallel()
	cfg := formhttp.Config{SessionTTL: 0, MaxSessions: 1}
	svc := formhttp.NewService(cfg, signupFactory)
	t.Cleanup(svc.Close)
	h := svc.Handle()

	createSession(t, h)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestService_SweepsIdleSessions(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc, h := newService(t,
		formhttp.WithSweepInterval(5*time.Millisecond),
		formhttp.WithStoreOptions(formhttp.WithClock(clock.Now)),
	)

	first := createSession(t, h)
	createSession(t, h)
	require.Equal(t, 2, svc.Store().Len())

	clock.Advance(30 * time.Second)
	code, _ := getStatus(t, h, first)
	require.Equal(t, http.StatusOK, code)

	// the idle session expires without any request touching the store
	clock.Advance(45 * time.Second)
	require.Eventually(t, func() bool {
		return svc.Store().Len() == 1
	}, time.Second, 5*time.Millisecond)

	code, _ = getStatus(t, h, first)
	assert.Equal(t, http.StatusOK, code)

	svc.Close()
	svc.Close()
	assert.Equal(t, 0, svc.Store().Len())
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := formhttp.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = formhttp.RequestIDFromContext(r.Context())
	}))

	t.Run("reuses a valid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(formhttp.RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(formhttp.RequestIDHeader))
	})

	t.Run("replaces an invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(formhttp.RequestIDHeader, "bad id!")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEqual(t, "bad id!", seen)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(formhttp.RequestIDHeader))
	})

	t.Run("extractor", func(t *testing.T) {
		_, ok := formhttp.RequestIDExtractor()(t.Context())
		assert.False(t, ok)
	})
}

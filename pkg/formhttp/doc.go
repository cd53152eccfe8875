// Package formhttp serves validation forms over HTTP so a browser driven by
// htmx or datastar gets live feedback computed on the server.
//
// Each visitor gets a Session holding a parsed document and its
// validator.Form. Control events are posted back with the current form
// values; the server applies them, dispatches the event on the control,
// waits briefly for remote lookups and answers with the re-rendered scope.
// htmx requests receive an HTML fragment, datastar requests an SSE element
// patch, plain requests the fragment as well.
//
// # Routes
//
//	GET    /              create a session and redirect to it
//	GET    /{id}/         full page
//	POST   /{id}/event    ?control=<id>&event=<type>, body: form values
//	POST   /{id}/submit   body: form values; 422 when blocked
//	GET    /{id}/status   JSON field statuses
//	DELETE /{id}/         drop the session
//
// Sessions live in memory and expire after an idle TTL.
package formhttp

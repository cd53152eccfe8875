package formhttp

import (
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

// DataStar detection constants
const (
	// DataStarAcceptHeader is the Accept header value that indicates a DataStar request
	DataStarAcceptHeader = "text/event-stream"

	// DataStarRequestHeader is set by the datastar client on every fetch
	DataStarRequestHeader = "Datastar-Request"
)

// IsDataStar checks if the request comes from the datastar client.
func IsDataStar(r *http.Request) bool {
	if r.Header.Get(DataStarRequestHeader) == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), DataStarAcceptHeader)
}

// patchFragment streams the rendered scope as a morph patch, replaces the
// summary dialog and publishes the form status as signals.
func patchFragment(w http.ResponseWriter, r *http.Request, v fragment) error {
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(v.scopeComponent()); err != nil {
		return err
	}
	if err := sse.PatchElementTempl(rawHTML(""),
		datastar.WithSelector("#"+v.summaryID),
		datastar.WithMode(datastar.ElementPatchModeRemove),
	); err != nil {
		return err
	}
	if v.summary != "" {
		if err := sse.PatchElementTempl(rawHTML(v.summary),
			datastar.WithSelector("body"),
			datastar.WithMode(datastar.ElementPatchModeAppend),
		); err != nil {
			return err
		}
	}
	return sse.PatchSignals(v.signals())
}

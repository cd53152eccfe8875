package formhttp

import "net/http"

// htmx headers used by the form endpoints.
const (
	// Request headers
	HXRequest     = "HX-Request"
	HXTarget      = "HX-Target"
	HXTrigger     = "HX-Trigger"
	HXTriggerName = "HX-Trigger-Name"

	// Response headers
	HXReswap        = "HX-Reswap"
	HXRetarget      = "HX-Retarget"
	HXTriggerHeader = "HX-Trigger"
)

// IsHTMX checks if the request is an HTMX request
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HXRequest) == "true"
}

// triggerControl returns the control id an event refers to: the "control"
// query parameter, falling back to the id htmx sends for the triggering
// element.
func triggerControl(r *http.Request) string {
	if id := r.URL.Query().Get("control"); id != "" {
		return id
	}
	return r.Header.Get(HXTrigger)
}

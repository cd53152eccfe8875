package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+'-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}$`)

	// North American numbers: (555) 555-1234, 555.555.1234, +1 555 555 1234
	phoneNANPRegex = regexp.MustCompile(`^(\+?1[ .-]?)?\(?[2-9]\d{2}\)?[ .-]?\d{3}[ .-]?\d{4}$`)

	// International numbers with a leading + and country code
	phoneIntlRegex = regexp.MustCompile(`^\+[1-9]\d{0,2}[ .-]?\d{4,14}$`)
)

// ValidEmail reports whether s is a single well-formed address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidPhone reports whether s matches one of the accepted phone shapes.
func ValidPhone(s string) bool {
	return phoneNANPRegex.MatchString(s) || phoneIntlRegex.MatchString(s)
}

// Email accepts one address or a semicolon separated list. Segments are
// trimmed, empty segments ignored and each invalid one reported on its own.
var Email = NewRule("email", func(f *Field) {
	for segment := range strings.SplitSeq(f.Value(), ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if !ValidEmail(segment) {
			f.Fail(fmt.Sprintf("%q is not a valid email address.", segment))
		}
	}
})

// Phone fails for non-empty values that are not a recognized phone number.
var Phone = NewRule("phone", func(f *Field) {
	v := strings.TrimSpace(f.Value())
	if v == "" {
		return
	}
	if !ValidPhone(v) {
		f.Fail(fmt.Sprintf("%s must be a valid phone number.", f.Name()))
	}
})

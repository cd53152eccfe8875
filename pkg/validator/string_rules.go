package validator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrymomot/formguard/pkg/dom"
)

// Required fails when the control has no value. Choice controls need a
// selected option with a non-empty value, check controls need to be checked.
var Required = NewRule("required", func(f *Field) {
	if strings.TrimSpace(f.Value()) != "" {
		return
	}
	switch f.Control().Kind() {
	case dom.KindChoice:
		f.Fail(fmt.Sprintf("Please select a value for %s.", f.Name()))
	case dom.KindCheck:
		f.Fail(fmt.Sprintf("%s must be checked.", f.Name()))
	default:
		f.Fail(fmt.Sprintf("%s is required.", f.Name()))
	}
})

// Length requires exactly n characters. Empty values are left to Required.
func Length(n int) *Rule {
	return NewRule("length:"+strconv.Itoa(n), func(f *Field) {
		v := f.Value()
		if v == "" {
			return
		}
		if utf8.RuneCountInString(v) != n {
			f.Fail(fmt.Sprintf("%s must be exactly %d characters long.", f.Name(), n))
		}
	})
}

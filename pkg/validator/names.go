package validator

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var identityReplacer = strings.NewReplacer("_", " ", "-", " ", ".", " ")

// displayName turns a control identity like "first_name" into "First Name".
func displayName(key string) string {
	s := strings.Join(strings.Fields(identityReplacer.Replace(key)), " ")
	// Casers are stateful, so one is built per call.
	return cases.Title(language.English).String(s)
}

// labelName strips the decoration commonly found in label text.
func labelName(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(strings.TrimRight(text, ":*"))
}

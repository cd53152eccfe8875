package validator

// Theme holds the visual vocabulary used when decorating fields. Every Form
// owns its own copy; DefaultTheme returns fresh maps on each call.
type Theme struct {
	Icons      map[Status]string
	Colors     map[Status]string
	Highlights map[Status]string

	IconClass    string
	HelpClass    string
	GroupClass   string // container searched for a label when none points at the control
	SummaryID    string
	SummaryClass string
	SummaryTitle string
}

// DefaultTheme returns the stock icons, colors and class names.
func DefaultTheme() Theme {
	return Theme{
		Icons: map[Status]string{
			StatusPass: "✔",
			StatusWarn: "⚠",
			StatusFail: "✖",
		},
		Colors: map[Status]string{
			StatusPass: "#2e7d32",
			StatusWarn: "#ed6c02",
			StatusFail: "#d32f2f",
		},
		Highlights: map[Status]string{
			StatusPass: "is-valid",
			StatusWarn: "is-warning",
			StatusFail: "is-invalid",
		},
		IconClass:    "validation-icon",
		HelpClass:    "validation-help",
		GroupClass:   "form-group",
		SummaryID:    "validation-summary",
		SummaryClass: "validation-modal",
		SummaryTitle: "Please correct the following before submitting:",
	}
}

// Markers are the class names that opt controls into built-in rules when a
// Form is created.
type Markers struct {
	Required string
	Date     string
	Email    string
}

// DefaultMarkers returns the stock marker classes.
func DefaultMarkers() Markers {
	return Markers{Required: "required", Date: "date", Email: "email"}
}

// Package formspec reads declarative form definitions written in YAML and
// binds them to a validator.Form.
//
// A definition names the scope, display and submit modes, the date window
// and a list of fields. Each field points at its control with a CSS
// selector and lists rules by type:
//
//	scope: "#signup"
//	submit_mode: icon|help|highlight|summary|disable
//	fields:
//	  - control: "#username"
//	    rules:
//	      - type: required
//	      - type: remote
//	        lookup: username
//	        timeout: 2s
//	  - control: "#start"
//	    rules:
//	      - type: date
//	      - type: date_sequence
//	        other: "#end"
//	        compare: "<"
//
// Definitions are checked with go-playground/validator struct tags before
// use; problems are reported as validator.ValidationErrors keyed by the
// YAML path of the offending value.
package formspec

package validator

import (
	"fmt"
	"strings"
)

// Status is the validation state of a field or form. WARN and FAIL are
// independent bits so one field can carry both at once.
type Status uint8

const (
	StatusPass Status = 0
	StatusWarn Status = 1 << 0
	StatusFail Status = 1 << 1
)

// Has reports whether every bit of flag is set.
func (s Status) Has(flag Status) bool {
	return flag != 0 && s&flag == flag
}

// Severity collapses combined bits to the dominant one.
func (s Status) Severity() Status {
	switch {
	case s.Has(StatusFail):
		return StatusFail
	case s.Has(StatusWarn):
		return StatusWarn
	default:
		return StatusPass
	}
}

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	case StatusWarn | StatusFail:
		return "warn|fail"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// MarshalText renders the status name, used by JSON encoders.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Mode selects which decorations are applied. Display and submit behavior
// are configured independently with the same flags.
type Mode uint8

const (
	ModeIcon Mode = 1 << iota
	ModeHelp
	ModeHighlight
	ModeSummary
	ModeDisable

	ModeNone Mode = 0
)

const (
	// DefaultDisplayMode is used while the user is typing.
	DefaultDisplayMode = ModeIcon | ModeHighlight
	// DefaultSubmitMode is used for submission passes.
	DefaultSubmitMode = ModeIcon | ModeHelp | ModeHighlight | ModeSummary
)

var modeNames = []struct {
	mode Mode
	name string
}{
	{ModeIcon, "icon"},
	{ModeHelp, "help"},
	{ModeHighlight, "highlight"},
	{ModeSummary, "summary"},
	{ModeDisable, "disable"},
}

// Has reports whether flag is enabled.
func (m Mode) Has(flag Mode) bool {
	return flag != 0 && m&flag == flag
}

func (m Mode) String() string {
	if m == ModeNone {
		return "none"
	}
	var parts []string
	for _, mn := range modeNames {
		if m.Has(mn.mode) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseMode parses a list of flag names separated by "|" or ",".
// "none" and the empty string yield ModeNone.
func ParseMode(s string) (Mode, error) {
	var m Mode
	for part := range strings.FieldsFuncSeq(s, func(r rune) bool { return r == '|' || r == ',' }) {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" || name == "none" {
			continue
		}
		found := false
		for _, mn := range modeNames {
			if mn.name == name {
				m |= mn.mode
				found = true
				break
			}
		}
		if !found {
			return ModeNone, fmt.Errorf("%w: %q", ErrUnknownMode, name)
		}
	}
	return m, nil
}

// UnmarshalText lets env and yaml decoders read modes as text.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText renders the flag list.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

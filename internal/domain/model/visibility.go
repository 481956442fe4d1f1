package model

// FormVisibility is the tri-state flag selecting between the editing form and
// the QR share view. The zero value means no decision has been made yet.
type FormVisibility int

const (
	FormUnset FormVisibility = iota
	FormShown
	FormHidden
)

// Shown reports whether the editing form is displayed. FormUnset is not shown.
func (v FormVisibility) Shown() bool {
	return v == FormShown
}

// String returns the JSON-friendly name of the flag.
func (v FormVisibility) String() string {
	switch v {
	case FormShown:
		return "shown"
	case FormHidden:
		return "hidden"
	default:
		return "unset"
	}
}

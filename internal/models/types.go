package models

// Category represents the section of the viewing log a record came from
type Category string

const (
	CategoryStandard    Category = "Standard"
	CategoryRecutOrEdit Category = "Recut/Edit"
	CategoryLeftover    Category = "Leftover"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryStandard, CategoryRecutOrEdit, CategoryLeftover:
		return true
	default:
		return false
	}
}

// LookupKind identifies which external lookup was performed
type LookupKind string

const (
	LookupCommentary LookupKind = "commentary"
	LookupDetails    LookupKind = "details"
)

// LookupOutcome is the result class of a lookup, used for metrics and logs
type LookupOutcome string

const (
	OutcomeSuccess LookupOutcome = "success"
	OutcomeFailure LookupOutcome = "failure"
)

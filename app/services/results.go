package services

// Outcome tells callers what a mutation did.
type Outcome int

const (
	NotFound Outcome = iota
	Created
	Updated
	Deleted
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return "not_found"
	}
}

// Result carries a mutation's outcome and the affected record. Record is the
// zero value when Outcome is NotFound.
type Result[T any] struct {
	Outcome Outcome
	Record  T
}

// Found reports whether the target record existed.
func (r Result[T]) Found() bool { return r.Outcome != NotFound }

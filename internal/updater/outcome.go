package updater

// OutcomeKind classifies how an update-check or upgrade step ended.
type OutcomeKind int

const (
	// OutcomeOK means the step completed.
	OutcomeOK OutcomeKind = iota
	// OutcomeSoftFailure means the step failed and the failure was absorbed.
	OutcomeSoftFailure
	// OutcomeHardFailure means the failure must be surfaced to the user.
	OutcomeHardFailure
)

// String returns the string representation of an OutcomeKind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeSoftFailure:
		return "soft-failure"
	case OutcomeHardFailure:
		return "hard-failure"
	default:
		return "unknown"
	}
}

// Outcome pairs a kind with the underlying error, if any.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// OK returns a successful outcome.
func OK() Outcome { return Outcome{Kind: OutcomeOK} }

// Soft returns a suppressed failure.
func Soft(err error) Outcome { return Outcome{Kind: OutcomeSoftFailure, Err: err} }

// Hard returns a surfaced failure.
func Hard(err error) Outcome { return Outcome{Kind: OutcomeHardFailure, Err: err} }

// Failed reports whether the outcome is a soft or hard failure.
func (o Outcome) Failed() bool { return o.Kind != OutcomeOK }

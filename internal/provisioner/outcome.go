package provisioner

import "fmt"

// OutcomeKind classifies the result of a setup step.
type OutcomeKind int

const (
	// OutcomeOK means the step did what it was asked to.
	OutcomeOK OutcomeKind = iota
	// OutcomeWarning means the step failed but setup carries on.
	OutcomeWarning
	// OutcomeFatal means setup must stop.
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeWarning:
		return "warning"
	case OutcomeFatal:
		return "fatal"
	default:
		return "ok"
	}
}

// Outcome is the tagged result of one setup step. Code is the child's exit
// code, or -1 when it never ran.
type Outcome struct {
	Kind OutcomeKind
	Step string
	Code int
	Err  error
}

func ok(step string) Outcome { return Outcome{Kind: OutcomeOK, Step: step} }

func warning(step string, code int, err error) Outcome {
	return Outcome{Kind: OutcomeWarning, Step: step, Code: code, Err: err}
}

func fatal(step string, code int, err error) Outcome {
	return Outcome{Kind: OutcomeFatal, Step: step, Code: code, Err: err}
}

// Fatal reports whether the outcome must abort setup.
func (o Outcome) Fatal() bool { return o.Kind == OutcomeFatal }

// AsError converts a fatal outcome into a *SetupError. Other outcomes
// return nil.
func (o Outcome) AsError() error {
	if !o.Fatal() {
		return nil
	}
	return &SetupError{Step: o.Step, Code: o.Code, Err: o.Err}
}

// SetupError is returned by Setup when a fatal step fails.
type SetupError struct {
	Step string
	Code int
	Err  error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s failed with exit code %d", e.Step, e.Code)
}

func (e *SetupError) Unwrap() error { return e.Err }

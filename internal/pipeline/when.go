package pipeline

// When controls when a rule, cache or artifact applies.
type When string

const (
	WhenAlways    When = "always"
	WhenDelayed   When = "delayed"
	WhenManual    When = "manual"
	WhenNever     When = "never"
	WhenOnFailure When = "on_failure"
	WhenOnSuccess When = "on_success"
)

func (w When) valid() bool {
	switch w {
	case WhenAlways, WhenDelayed, WhenManual, WhenNever, WhenOnFailure, WhenOnSuccess:
		return true
	}
	return false
}

// jobResult reports whether w is one of the values allowed for caches and
// artifacts, which only depend on the result of a job.
func (w When) jobResult() bool {
	switch w {
	case WhenAlways, WhenOnFailure, WhenOnSuccess:
		return true
	}
	return false
}

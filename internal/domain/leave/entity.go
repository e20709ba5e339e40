package leave

import "fmt"

// State is the leave/absence situation of an employee on a given date.
type State string

const (
	StateNone         State = "none"
	StateVacation     State = "vacation"
	StateMedicalLeave State = "medical_leave"
	StatePermit       State = "permit"
)

var StateValues = []string{
	string(StateNone),
	string(StateVacation),
	string(StateMedicalLeave),
	string(StatePermit),
}

// Active reports whether the state suspends the punctuality evaluation.
func (s State) Active() bool {
	return s != "" && s != StateNone
}

// ParseState maps the leave type category stored with approved leave
// requests onto a State.
func ParseState(category string) (State, error) {
	switch State(category) {
	case "", StateNone:
		return StateNone, nil
	case StateVacation, StateMedicalLeave, StatePermit:
		return State(category), nil
	}
	return StateNone, fmt.Errorf("%w: %q", ErrUnknownLeaveCategory, category)
}

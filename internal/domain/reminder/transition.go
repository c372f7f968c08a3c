// internal/domain/reminder/transition.go
package reminder

import "fmt"

// legalTransitions is the single source of truth for which status changes are
// allowed. Pairs absent from the table are illegal, including every identity
// transition. UPCOMING reminders may only be promoted to PENDING by the
// scheduler, and PENDING reminders may only be answered; ANSWERED is terminal.
var legalTransitions = map[Status]map[Status]bool{
	StatusUpcoming: {StatusPending: true},
	StatusPending:  {StatusAnswered: true},
}

// IsLegalTransition reports whether a reminder may move from one status to
// another. A status can never be "transitioned" to its current value.
func IsLegalTransition(from, to Status) bool {
	if from == to {
		return false
	}
	return legalTransitions[from][to]
}

// TransitionError reports a rejected status transition and carries the
// attempted pair.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal reminder transition from %s to %s", e.From, e.To)
}

package mock

import (
	"fmt"
)

// ExpectationMismatch reports a divergence between the script and the
// calls actually made. Expected is nil when the script ran out; Actual is
// nil when a scripted call never happened.
//
// A mismatch detected during a call is raised with panic so the guest run
// stops at the first divergence.
type ExpectationMismatch struct {
	Expected *Kind
	Actual   *Kind
	Reason   string
	Index    int
}

func (m *ExpectationMismatch) Error() string {
	exp, act := "<none>", "<none>"
	if m.Expected != nil {
		exp = m.Expected.String()
	}
	if m.Actual != nil {
		act = m.Actual.String()
	}
	return fmt.Sprintf("mock mismatch at op %d: %s (expected %s, got %s)", m.Index, m.Reason, exp, act)
}

// AbortSession marks the mismatch as fatal to the running guest.
func (m *ExpectationMismatch) AbortSession() {}

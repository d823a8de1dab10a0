package mock

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/hal"
)

// session is the expectation state shared by all four facades.
type session struct {
	failure  *ExpectationMismatch
	expected []Op
	actual   []Kind
	mu       sync.Mutex
	index    int
}

// call matches one operation against the script. build receives the
// expected kind at the cursor, or nil when the script is exhausted, and
// returns the actual kind; read-style builders fill the caller's buffer
// from the expectation before describing it.
func (s *session) call(build func(exp *Kind) Kind) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exp *Op
	if s.index < len(s.expected) {
		exp = &s.expected[s.index]
	}

	var expKind *Kind
	if exp != nil {
		expKind = &exp.Kind
	}
	actual := build(expKind)

	if exp == nil {
		s.fail(&ExpectationMismatch{Index: s.index, Actual: &actual, Reason: "unexpected call after end of script"})
	}
	if !actual.Equal(exp.Kind) {
		e := exp.Kind
		s.fail(&ExpectationMismatch{Index: s.index, Expected: &e, Actual: &actual, Reason: "call differs from script"})
	}

	s.actual = append(s.actual, actual)
	s.index++
	Logger().Debug("mock op", zap.Int("index", s.index-1), zap.Stringer("op", actual), zap.Int32("res", exp.Res))
	return exp.Res
}

func (s *session) fail(m *ExpectationMismatch) {
	if s.failure == nil {
		s.failure = m
	}
	Logger().Error("mock expectation failed", zap.Error(m))
	panic(m)
}

func (s *session) verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return s.failure
	}
	for i := 0; i < len(s.expected) || i < len(s.actual); i++ {
		m := &ExpectationMismatch{Index: i}
		if i < len(s.expected) {
			e := s.expected[i].Kind
			m.Expected = &e
		}
		if i < len(s.actual) {
			a := s.actual[i]
			m.Actual = &a
		}
		switch {
		case m.Actual == nil:
			m.Reason = "scripted call never made"
		case m.Expected == nil:
			m.Reason = "call beyond end of script"
		case !m.Actual.Equal(*m.Expected):
			m.Reason = "call differs from script"
		default:
			continue
		}
		return m
	}
	return nil
}

func (s *session) log() []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Kind(nil), s.actual...)
}

func (s *session) remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expected) - s.index
}

// initResult converts a scripted init result into a handle or error.
func initResult(periph string, res int32) (hal.Handle, error) {
	if res >= 0 {
		return res, nil
	}
	return 0, abi.Errno(-res).Err(periph, abi.FuncInit)
}

// opResult converts a scripted non-init result into an error.
func opResult(periph, op string, res int32) error {
	if res < 0 {
		res = -res
	}
	return abi.Errno(res).Err(periph, op)
}

// fill copies expected read data into buf and returns a snapshot of buf.
func fill(buf, want []byte) []byte {
	copy(buf, want)
	return clone(buf)
}

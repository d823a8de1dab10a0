package mock

import (
	"github.com/wippyai/wasm-embedded/hal"
)

// Backend replays an expectation script. All four capability facades
// share one session, so the script orders calls across peripheral types.
type Backend struct {
	s *session
}

var _ hal.Backend = (*Backend)(nil)

// New creates a backend expecting exactly the calls in cfg, in order.
func New(cfg Config) *Backend {
	return &Backend{s: &session{expected: append([]Op(nil), cfg.Ops...)}}
}

func (b *Backend) Gpio() hal.Gpio { return gpio{b.s} }
func (b *Backend) I2c() hal.I2c   { return i2c{b.s} }
func (b *Backend) Spi() hal.Spi   { return spi{b.s} }
func (b *Backend) Uart() hal.Uart { return uart{b.s} }

// Engine returns an engine with all four capabilities backed by the script.
func (b *Backend) Engine() *hal.Engine {
	return &hal.Engine{Gpio: b.Gpio(), I2c: b.I2c(), Spi: b.Spi(), Uart: b.Uart()}
}

// Actual returns a copy of the calls recorded so far.
func (b *Backend) Actual() []Kind { return b.s.log() }

// Remaining returns the number of scripted calls not yet made.
func (b *Backend) Remaining() int { return b.s.remaining() }

// Verify compares the recorded calls with the script in full. It returns
// the first *ExpectationMismatch, including one already raised during a
// call, or nil when length, order and content all match.
func (b *Backend) Verify() error { return b.s.verify() }

// Close verifies the session.
func (b *Backend) Close() error { return b.Verify() }

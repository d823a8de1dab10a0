package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: New(PhaseIO, KindFailed).
				Peripheral("i2c").
				Op("write").
				Handle(3).
				Detail("nack at %#x", 0x50).
				Cause(errors.New("remote I/O error")).
				Build(),
			contains: []string{"[io]", "failed", "i2c.write", "(handle 3)", "nack at 0x50", "caused by", "remote I/O error"},
		},
		{
			name:     "minimal error",
			err:      &Error{Kind: KindUnexpected},
			contains: []string{"unexpected"},
		},
		{
			name:     "handle zero is still printed",
			err:      NoDevice(PhaseDeinit, "gpio", "deinit", 0),
			contains: []string{"[deinit]", "no_device", "gpio.deinit", "(handle 0)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Failed(PhaseInit, "spi", "init", cause)

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through the chain")
	}
}

func TestError_Is(t *testing.T) {
	err := NoDevice(PhaseIO, "uart", "read", 7)

	if !errors.Is(err, ErrNoDevice) {
		t.Error("Is should match kind sentinel")
	}
	if !errors.Is(err, &Error{Phase: PhaseIO, Kind: KindNoDevice}) {
		t.Error("Is should match same phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseInit, Kind: KindNoDevice}) {
		t.Error("Is should not match different phase")
	}
	if errors.Is(err, ErrFailed) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("guest call: %w", err)
	if !errors.Is(wrapped, ErrNoDevice) {
		t.Error("Is should see through fmt wrapping")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"structured", InvalidArg(PhaseIO, "gpio", "set", "bad state"), KindInvalidArg},
		{"wrapped", fmt.Errorf("x: %w", Failed(PhaseIO, "spi", "read", nil)), KindFailed},
		{"foreign", errors.New("boom"), KindUnexpected},
		{"empty kind", &Error{Phase: PhaseIO}, KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCapabilityKinds(t *testing.T) {
	if len(CapabilityKinds) != 4 {
		t.Fatalf("expected 4 capability kinds, got %d", len(CapabilityKinds))
	}
	seen := make(map[Kind]bool)
	for _, k := range CapabilityKinds {
		if !IsCapability(k) {
			t.Errorf("%q listed but not a capability kind", k)
		}
		if seen[k] {
			t.Errorf("%q listed twice", k)
		}
		seen[k] = true
	}
	for _, k := range []Kind{KindNotProvided, KindUnbound, KindAlreadyBound, KindInvalidState, KindInvalidConfig} {
		if IsCapability(k) {
			t.Errorf("%q must not be a capability kind", k)
		}
	}
}

func TestConvenienceConstructors(t *testing.T) {
	np := NotProvided("spi")
	if np.Phase != PhaseBind || np.Kind != KindNotProvided || np.Peripheral != "spi" {
		t.Errorf("NotProvided = %+v", np)
	}

	cause := errors.New("parse")
	cfg := Config("bad backend", cause)
	if cfg.Kind != KindInvalidConfig || !errors.Is(cfg, cause) {
		t.Errorf("Config = %+v", cfg)
	}

	u := Unexpected(PhaseRuntime, "", "", "cursor past end")
	if u.HasHandle {
		t.Error("Unexpected should not carry a handle")
	}
}

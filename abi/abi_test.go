package abi

import (
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-embedded/errors"
)

func TestKindErrno_CoversCapabilityKinds(t *testing.T) {
	seen := make(map[Errno]errors.Kind)
	for _, k := range errors.CapabilityKinds {
		code, ok := KindErrno[k]
		if !ok {
			t.Fatalf("kind %s has no errno", k)
		}
		if code == Ok {
			t.Fatalf("kind %s maps to ok", k)
		}
		if prev, dup := seen[code]; dup {
			t.Fatalf("errno %d used by both %s and %s", code, prev, k)
		}
		seen[code] = k
		if code.Kind() != k {
			t.Errorf("errno %s round trips to %s, want %s", code, code.Kind(), k)
		}
	}
	if len(KindErrno) != len(errors.CapabilityKinds) {
		t.Errorf("table has %d entries, want %d", len(KindErrno), len(errors.CapabilityKinds))
	}
}

func TestErrnoValues(t *testing.T) {
	tests := []struct {
		code Errno
		want int32
		name string
	}{
		{Ok, 0, "ok"},
		{InvalidArg, 1, "invalid_arg"},
		{Unexpected, 2, "unexpected"},
		{Failed, 3, "failed"},
		{NoDevice, 4, "no_device"},
	}
	for _, tt := range tests {
		if int32(tt.code) != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
		}
		if tt.code.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.code.String(), tt.name)
		}
	}
	if Errno(9).String() != "errno(9)" {
		t.Errorf("unknown errno String() = %q", Errno(9).String())
	}
}

func TestErrnoOf(t *testing.T) {
	tests := []struct {
		err  error
		want Errno
	}{
		{nil, Ok},
		{errors.NoDevice(errors.PhaseIO, "gpio", "set", 3), NoDevice},
		{errors.InvalidArg(errors.PhaseIO, "gpio", "set", "bad state"), InvalidArg},
		{errors.Failed(errors.PhaseInit, "i2c", "init", nil), Failed},
		{errors.Unexpected(errors.PhaseIO, "spi", "read", "x"), Unexpected},
		{errors.NotProvided("uart"), Unexpected},
	}
	for _, tt := range tests {
		if got := ErrnoOf(tt.err); got != tt.want {
			t.Errorf("ErrnoOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestErrno_Err(t *testing.T) {
	if Ok.Err("gpio", "set") != nil {
		t.Fatal("Ok.Err should be nil")
	}
	err := NoDevice.Err("gpio", "deinit")
	if errors.KindOf(err) != errors.KindNoDevice {
		t.Fatalf("KindOf = %s", errors.KindOf(err))
	}
	if ErrnoOf(err) != NoDevice {
		t.Fatal("errno should round trip through error")
	}
}

func TestFuncs_Lowering(t *testing.T) {
	tests := []struct {
		module, name string
		lowered      int
	}{
		{ModuleGpio, FuncInit, 4},
		{ModuleGpio, FuncDeinit, 1},
		{ModuleGpio, FuncSet, 2},
		{ModuleGpio, FuncGet, 2},
		{ModuleI2c, FuncInit, 5},
		{ModuleI2c, FuncWrite, 4},
		{ModuleI2c, FuncRead, 4},
		{ModuleI2c, FuncWriteRead, 6},
		{ModuleSpi, FuncInit, 7},
		{ModuleSpi, FuncRead, 3},
		{ModuleSpi, FuncWrite, 3},
		{ModuleSpi, FuncTransfer, 3},
		{ModuleUart, FuncInit, 5},
		{ModuleUart, FuncWrite, 4},
		{ModuleUart, FuncRead, 4},
	}
	for _, tt := range tests {
		f, ok := Lookup(tt.module, tt.name)
		if !ok {
			t.Fatalf("%s.%s not found", tt.module, tt.name)
		}
		if f.LoweredCount() != tt.lowered {
			t.Errorf("%s lowers to %d params, want %d", f, f.LoweredCount(), tt.lowered)
		}
		for _, vt := range f.ParamTypes() {
			if vt != api.ValueTypeI32 {
				t.Errorf("%s has non-i32 param", f)
			}
		}
		if rt := f.ResultTypes(); len(rt) != 1 || rt[0] != api.ValueTypeI32 {
			t.Errorf("%s result types %v", f, rt)
		}
	}
	if len(Funcs) != 18 {
		t.Errorf("len(Funcs) = %d, want 18", len(Funcs))
	}
}

func TestFunc_String(t *testing.T) {
	f, _ := Lookup(ModuleI2c, FuncWriteRead)
	want := "i2c.write_read(handle: s32, addr: u16, data: list<u8>, buf: list<u8>)"
	if f.String() != want {
		t.Errorf("String() = %q, want %q", f.String(), want)
	}
	g, _ := Lookup(ModuleGpio, FuncGet)
	if g.String() != "gpio.get(handle: s32) -> u32" {
		t.Errorf("String() = %q", g.String())
	}
}

func TestModule(t *testing.T) {
	counts := map[string]int{ModuleGpio: 4, ModuleI2c: 5, ModuleSpi: 5, ModuleUart: 4}
	for m, n := range counts {
		if !IsModule(m) {
			t.Errorf("IsModule(%q) = false", m)
		}
		if got := len(Module(m)); got != n {
			t.Errorf("Module(%q) has %d funcs, want %d", m, got, n)
		}
	}
	if IsModule("wasi_snapshot_preview1") {
		t.Error("wasi is not a capability module")
	}
}

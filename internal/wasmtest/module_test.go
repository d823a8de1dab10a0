package wasmtest

import (
	"bytes"
	"testing"
)

func TestWriter_LEB128(t *testing.T) {
	tests := []struct {
		signed bool
		v      int64
		want   []byte
	}{
		{false, 0, []byte{0x00}},
		{false, 127, []byte{0x7f}},
		{false, 128, []byte{0x80, 0x01}},
		{false, 0x800, []byte{0x80, 0x10}},
		{true, 0, []byte{0x00}},
		{true, -1, []byte{0x7f}},
		{true, 63, []byte{0x3f}},
		{true, 64, []byte{0xc0, 0x00}},
		{true, -64, []byte{0x40}},
		{true, -65, []byte{0xbf, 0x7f}},
	}
	for _, tt := range tests {
		var w writer
		if tt.signed {
			w.WriteS32(int32(tt.v))
		} else {
			w.WriteU32(uint32(tt.v))
		}
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("encode(%d, signed=%v) = % x, want % x", tt.v, tt.signed, w.Bytes(), tt.want)
		}
	}
}

func TestModule_Encode(t *testing.T) {
	m := New()
	f := m.Import("gpio", "init", 4)
	g := m.Import("gpio", "deinit", 1)
	if f != 0 || g != 1 {
		t.Fatalf("import indexes %d, %d", f, g)
	}
	s0 := m.Call(f, I32(0), I32(5), I32(1), I32(0x40))
	s1 := m.Call(g, Load(0x40))
	if s0 != StatusBase || s1 != StatusBase+4 {
		t.Fatalf("status slots %#x, %#x", s0, s1)
	}
	m.Data(0x100, []byte{1, 2, 3})

	bin := m.Encode()
	if !bytes.HasPrefix(bin, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}) {
		t.Fatalf("bad header % x", bin[:8])
	}
	for _, name := range []string{"gpio", "init", "deinit", "memory", "_start"} {
		if !bytes.Contains(bin, []byte(name)) {
			t.Errorf("encoded module missing %q", name)
		}
	}
}

func TestStatus(t *testing.T) {
	mem := make([]byte, StatusBase+8)
	mem[StatusBase+4] = 0xfc
	mem[StatusBase+5] = 0xff
	mem[StatusBase+6] = 0xff
	mem[StatusBase+7] = 0xff
	if got := Status(mem, StatusBase+4); got != -4 {
		t.Errorf("Status = %d, want -4", got)
	}
}

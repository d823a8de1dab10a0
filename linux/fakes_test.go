package linux

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// fakeSysfs builds a sysfs-like GPIO tree with the given lines already
// present, the way the kernel creates them on export.
func fakeSysfs(t *testing.T, pins ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{"export", "unexport"} {
		if err := os.WriteFile(filepath.Join(root, f), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range pins {
		dir := filepath.Join(root, "gpio"+p)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		for _, f := range []string{"direction", "value"} {
			if err := os.WriteFile(filepath.Join(dir, f), []byte("0"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

type fakeI2c struct {
	mu     sync.Mutex
	addr   uint16
	w      []byte
	reply  []byte
	err    error
	closed bool
}

func (f *fakeI2c) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.addr = addr
	f.w = append([]byte(nil), w...)
	copy(r, f.reply)
	return nil
}

func (f *fakeI2c) Close() error {
	f.closed = true
	return nil
}

type fakeSpi struct {
	path   string
	mode   uint8
	baud   uint32
	wrote  []byte
	closed bool
}

// Tx answers each outgoing byte with its inverse and pads with 0x5A.
func (f *fakeSpi) Tx(w, r []byte) error {
	f.wrote = append([]byte(nil), w...)
	for i := range r {
		if i < len(w) {
			r[i] = ^w[i]
		} else {
			r[i] = 0x5A
		}
	}
	return nil
}

func (f *fakeSpi) Transfer(b byte) (byte, error) { return ^b, nil }

func (f *fakeSpi) Close() error {
	f.closed = true
	return nil
}

type fakeSerial struct {
	in      *bytes.Reader
	out     bytes.Buffer
	writes  int
	reads   int
	closed  bool
	timeout time.Duration
}

func (f *fakeSerial) Read(p []byte) (int, error) {
	f.reads++
	n, err := f.in.Read(p)
	if stderrors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

func (f *fakeSerial) Write(p []byte) (int, error) {
	f.writes++
	return f.out.Write(p)
}

func (f *fakeSerial) Close() error {
	f.closed = true
	return nil
}

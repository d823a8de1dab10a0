package cabi

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/engine"
	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/hal"
	"github.com/wippyai/wasm-embedded/internal/wasmtest"
	"github.com/wippyai/wasm-embedded/mock"
)

func newSession(t *testing.T, wasm []byte) *engine.Session {
	t.Helper()
	ctx := context.Background()
	e, err := engine.New(ctx, &engine.Config{MemoryLimitPages: 16})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.Close(ctx) })
	s, err := e.NewSession(ctx, wasm)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close(ctx) })
	return s
}

func TestRegister_CountsFromOne(t *testing.T) {
	r := NewRuntime()
	a := r.Register("a")
	b := r.Register("b")
	if a != 1 || b != 2 {
		t.Fatalf("contexts = %d, %d; want 1, 2", a, b)
	}
	if p, ok := r.Resolve(b); !ok || p != "b" {
		t.Errorf("Resolve(%d) = %v, %v", b, p, ok)
	}
	if _, ok := r.Resolve(Null); ok {
		t.Error("null context must not resolve")
	}
	if _, ok := r.Resolve(99); ok {
		t.Error("unregistered context must not resolve")
	}
}

func TestBind_OncePerType(t *testing.T) {
	r := NewRuntime()
	b := mock.New(mock.Config{})
	c := r.Register(b.Gpio())

	if err := r.BindGpio(r.GpioDriver(), c); err != nil {
		t.Fatal(err)
	}
	err := r.BindGpio(r.GpioDriver(), c)
	if errors.KindOf(err) != errors.KindAlreadyBound {
		t.Fatalf("second BindGpio = %v, want already_bound", err)
	}
	if err := r.BindI2c(r.I2cDriver(), r.Register(b.I2c())); err != nil {
		t.Fatalf("BindI2c after BindGpio: %v", err)
	}
	if !r.Bound(hal.PeripheralGpio) || !r.Bound(hal.PeripheralI2c) || r.Bound(hal.PeripheralSpi) {
		t.Error("Bound reports wrong peripherals")
	}
}

func TestBind_IncompleteTable(t *testing.T) {
	r := NewRuntime()
	drv := r.SpiDriver()
	drv.Transfer = nil
	err := r.BindSpi(drv, r.Register(nil))
	if errors.KindOf(err) != errors.KindInvalidArg {
		t.Fatalf("BindSpi = %v, want invalid_arg", err)
	}
	if r.Bound(hal.PeripheralSpi) {
		t.Error("a rejected table must not be bound")
	}
}

func TestBind_AfterClose(t *testing.T) {
	r := NewRuntime()
	r.Close()
	err := r.BindUart(r.UartDriver(), r.Register(nil))
	if errors.KindOf(err) != errors.KindInvalidState {
		t.Fatalf("BindUart after Close = %v, want invalid_state", err)
	}
}

func TestDefaultDriver_Unresolved(t *testing.T) {
	r := NewRuntime()
	drv := r.GpioDriver()
	if got := drv.Deinit(Null, 0); got != -int32(abi.Unexpected) {
		t.Errorf("Deinit(null) = %d", got)
	}
	wrong := r.Register("not a gpio")
	if got := drv.Set(wrong, 0, 1); got != -int32(abi.Unexpected) {
		t.Errorf("Set(wrong type) = %d", got)
	}
}

func TestDefaultDriver_Values(t *testing.T) {
	b := mock.New(mock.Config{Ops: []mock.Op{
		{Kind: mock.KindGpioInit(0, 2, false), Res: 5},
		{Kind: mock.KindGpioGet(5, hal.High)},
		{Kind: mock.KindGpioDeinit(5), Res: int32(abi.NoDevice)},
	}})
	r := NewRuntime()
	c := r.Register(b.Gpio())
	drv := r.GpioDriver()

	if h := drv.Init(c, 0, 2, false); h != 5 {
		t.Fatalf("Init = %d, want 5", h)
	}
	if got := drv.Set(c, 5, 2); got != -int32(abi.InvalidArg) {
		t.Errorf("Set(2) = %d, want -invalid_arg", got)
	}
	if got := drv.Get(c, 5); got != 1 {
		t.Errorf("Get = %d, want 1", got)
	}
	if got := drv.Deinit(c, 5); got != -int32(abi.NoDevice) {
		t.Errorf("Deinit = %d, want -no_device", got)
	}
	if err := b.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestSessionBind_RequiresDriver(t *testing.T) {
	g := wasmtest.New()
	g.Import(abi.ModuleUart, abi.FuncDeinit, 1)
	s := newSession(t, g.Encode())

	r := NewRuntime()
	b := mock.New(mock.Config{})
	if err := r.BindGpio(r.GpioDriver(), r.Register(b.Gpio())); err != nil {
		t.Fatal(err)
	}
	err := s.Bind(context.Background(), r)
	if !stderrors.Is(err, errors.ErrNotProvided) {
		t.Fatalf("Bind = %v, want not_provided", err)
	}
}

func TestClose_NullsContexts(t *testing.T) {
	ctx := context.Background()
	b := mock.New(mock.Config{})

	g := wasmtest.New()
	deinit := g.Import(abi.ModuleGpio, abi.FuncDeinit, 1)
	initFn := g.Import(abi.ModuleGpio, abi.FuncInit, 4)
	first := g.Call(deinit, wasmtest.I32(0))
	second := g.Call(initFn, wasmtest.I32(0), wasmtest.I32(1), wasmtest.I32(1), wasmtest.I32(0x100))
	s := newSession(t, g.Encode())

	r := NewRuntime()
	if err := r.BindEngine(b.Engine()); err != nil {
		t.Fatal(err)
	}
	if err := s.Bind(ctx, r); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Resolve(1); ok {
		t.Error("Close must release side-table slots")
	}

	if err := s.Run(ctx, ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	mem, _ := s.Memory().Read(0, wasmtest.StatusBase+0x10)
	for _, slot := range []uint32{first, second} {
		if got := abi.Errno(wasmtest.Status(mem, slot)); got != abi.Unexpected {
			t.Errorf("status at %#x = %s, want unexpected", slot, got)
		}
	}
	if len(b.Actual()) != 0 {
		t.Errorf("no call may reach the backend after Close: %v", b.Actual())
	}
}

func TestBadPointerTraps(t *testing.T) {
	ctx := context.Background()
	b := mock.New(mock.Config{})
	g := wasmtest.New()
	read := g.Import(abi.ModuleSpi, abi.FuncRead, 3)
	g.Call(read, wasmtest.I32(0), wasmtest.I32(0x10000), wasmtest.I32(1))
	s := newSession(t, g.Encode())

	r := NewRuntime()
	defer r.Close()
	if err := r.BindEngine(b.Engine()); err != nil {
		t.Fatal(err)
	}
	if err := s.Bind(ctx, r); err != nil {
		t.Fatal(err)
	}
	err := s.Run(ctx, "")
	var trap *engine.Trap
	if !stderrors.As(err, &trap) || trap.Code != abi.InvalidArg {
		t.Fatalf("Run = %v, want invalid_arg trap", err)
	}
}

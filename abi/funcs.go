package abi

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

// Import module names.
const (
	ModuleGpio = "gpio"
	ModuleI2c  = "i2c"
	ModuleSpi  = "spi"
	ModuleUart = "uart"
)

// Function names shared across modules.
const (
	FuncInit      = "init"
	FuncDeinit    = "deinit"
	FuncSet       = "set"
	FuncGet       = "get"
	FuncWrite     = "write"
	FuncRead      = "read"
	FuncWriteRead = "write_read"
	FuncTransfer  = "transfer"
)

// Param is one logical parameter of a capability import.
type Param struct {
	Type wit.Type
	Name string
	// Out marks a byte list the host fills before returning.
	Out bool
}

// Func describes one capability import as seen by the guest.
//
// Lowered, each list<u8> parameter becomes a (ptr, len) pair and a
// non-nil Result adds a trailing out-pointer. Every lowered parameter is
// an i32 and the single return value is an Errno.
type Func struct {
	Result wit.Type
	Module string
	Name   string
	Params []Param
}

// String renders the import as module.name(params) -> result.
func (f Func) String() string {
	s := f.Module + "." + f.Name + "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Name + ": " + TypeString(p.Type)
	}
	s += ")"
	if f.Result != nil {
		s += " -> " + TypeString(f.Result)
	}
	return s
}

// LoweredCount returns the number of i32 parameters after lowering.
func (f Func) LoweredCount() int {
	n := 0
	for _, p := range f.Params {
		if IsBytes(p.Type) {
			n += 2
		} else {
			n++
		}
	}
	if f.Result != nil {
		n++
	}
	return n
}

// ParamTypes returns the lowered wasm parameter types.
func (f Func) ParamTypes() []api.ValueType {
	vt := make([]api.ValueType, f.LoweredCount())
	for i := range vt {
		vt[i] = api.ValueTypeI32
	}
	return vt
}

// ResultTypes returns the wasm result types: a single i32 errno.
func (f Func) ResultTypes() []api.ValueType {
	return []api.ValueType{api.ValueTypeI32}
}

var bytesType = &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}

// IsBytes reports whether t is list<u8>.
func IsBytes(t wit.Type) bool {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return false
	}
	l, ok := td.Kind.(*wit.List)
	if !ok {
		return false
	}
	_, ok = l.Type.(wit.U8)
	return ok
}

func in(name string, t wit.Type) Param { return Param{Name: name, Type: t} }

func out(name string) Param { return Param{Name: name, Type: bytesType, Out: true} }

var handleParam = in("handle", wit.S32{})

// Funcs lists every capability import, grouped by module.
var Funcs = []Func{
	{Module: ModuleGpio, Name: FuncInit, Params: []Param{in("port", wit.U32{}), in("pin", wit.U32{}), in("output", wit.Bool{})}, Result: wit.S32{}},
	{Module: ModuleGpio, Name: FuncDeinit, Params: []Param{handleParam}},
	{Module: ModuleGpio, Name: FuncSet, Params: []Param{handleParam, in("state", wit.U32{})}},
	{Module: ModuleGpio, Name: FuncGet, Params: []Param{handleParam}, Result: wit.U32{}},

	{Module: ModuleI2c, Name: FuncInit, Params: []Param{in("port", wit.U32{}), in("baud", wit.U32{}), in("sda", wit.S32{}), in("scl", wit.S32{})}, Result: wit.S32{}},
	{Module: ModuleI2c, Name: FuncDeinit, Params: []Param{handleParam}},
	{Module: ModuleI2c, Name: FuncWrite, Params: []Param{handleParam, in("addr", wit.U16{}), in("data", bytesType)}},
	{Module: ModuleI2c, Name: FuncRead, Params: []Param{handleParam, in("addr", wit.U16{}), out("buf")}},
	{Module: ModuleI2c, Name: FuncWriteRead, Params: []Param{handleParam, in("addr", wit.U16{}), in("data", bytesType), out("buf")}},

	{Module: ModuleSpi, Name: FuncInit, Params: []Param{in("port", wit.U32{}), in("baud", wit.U32{}), in("mosi", wit.S32{}), in("miso", wit.S32{}), in("sck", wit.S32{}), in("cs", wit.S32{})}, Result: wit.S32{}},
	{Module: ModuleSpi, Name: FuncDeinit, Params: []Param{handleParam}},
	{Module: ModuleSpi, Name: FuncRead, Params: []Param{handleParam, out("buf")}},
	{Module: ModuleSpi, Name: FuncWrite, Params: []Param{handleParam, in("data", bytesType)}},
	{Module: ModuleSpi, Name: FuncTransfer, Params: []Param{handleParam, out("buf")}},

	{Module: ModuleUart, Name: FuncInit, Params: []Param{in("port", wit.U32{}), in("baud", wit.U32{}), in("tx", wit.S32{}), in("rx", wit.S32{})}, Result: wit.S32{}},
	{Module: ModuleUart, Name: FuncDeinit, Params: []Param{handleParam}},
	{Module: ModuleUart, Name: FuncWrite, Params: []Param{handleParam, in("flags", wit.U32{}), in("data", bytesType)}},
	{Module: ModuleUart, Name: FuncRead, Params: []Param{handleParam, in("flags", wit.U32{}), out("buf")}},
}

// Lookup finds the import module.name.
func Lookup(module, name string) (Func, bool) {
	for _, f := range Funcs {
		if f.Module == module && f.Name == name {
			return f, true
		}
	}
	return Func{}, false
}

// Module returns the imports of one module in declaration order.
func Module(module string) []Func {
	var out []Func
	for _, f := range Funcs {
		if f.Module == module {
			out = append(out, f)
		}
	}
	return out
}

// IsModule reports whether name is one of the capability import modules.
func IsModule(name string) bool {
	switch name {
	case ModuleGpio, ModuleI2c, ModuleSpi, ModuleUart:
		return true
	}
	return false
}

// TypeString renders t in WIT syntax.
func TypeString(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if l, ok := v.Kind.(*wit.List); ok {
			return "list<" + TypeString(l.Type) + ">"
		}
		return "typedef"
	case nil:
		return "_"
	}
	return fmt.Sprintf("%T", t)
}

// Package wasmtest assembles small WebAssembly guest modules for tests.
//
// A guest built here exports one memory and one entry function. The entry
// function is a straight-line sequence of imported calls; each call's i32
// result is stored to its own status slot so the test can inspect every
// errno after the run:
//
//	g := wasmtest.New()
//	initFn := g.Import("gpio", "init", 4)
//	st := g.Call(initFn, wasmtest.I32(0), wasmtest.I32(5), wasmtest.I32(1), wasmtest.I32(0x40))
//	bin := g.Encode()
package wasmtest

import (
	"encoding/binary"

	"github.com/tetratelabs/wazero/api"
)

const (
	magic   = 0x6d736100
	version = 1

	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10
	sectionData     = 11

	opUnreachable = 0x00
	opEnd         = 0x0b
	opCall        = 0x10
	opDrop        = 0x1a
	opI32Load     = 0x28
	opI32Store    = 0x36
	opI32Const    = 0x41

	funcType = 0x60
)

// StatusBase is the address of the first status slot. Slots are 4 bytes.
const StatusBase = 0x800

// Arg is an i32 argument: a constant, or a load from guest memory.
type Arg struct {
	value int32
	load  bool
}

// I32 is a constant argument.
func I32(v int32) Arg { return Arg{value: v} }

// Load reads the argument from the u32 at addr when the call executes.
func Load(addr uint32) Arg { return Arg{value: int32(addr), load: true} }

type funcImport struct {
	module, name string
	params       []api.ValueType
	results      []api.ValueType
}

func (f funcImport) typeKey() string {
	return string(f.params) + "/" + string(f.results)
}

type segment struct {
	data   []byte
	offset uint32
}

// Module is a guest under construction.
type Module struct {
	entry   string
	imports []funcImport
	data    []segment
	code    writer
	calls   uint32
	pages   uint32
}

// New creates a guest whose entry function is "_start".
func New() *Module {
	return &Module{entry: "_start", pages: 1}
}

// Entry renames the exported entry function.
func (m *Module) Entry(name string) *Module {
	m.entry = name
	return m
}

// Import declares a function import taking params i32 values and
// returning one i32. It returns the function index.
func (m *Module) Import(module, name string, params int) uint32 {
	vt := make([]api.ValueType, params)
	for i := range vt {
		vt[i] = api.ValueTypeI32
	}
	return m.ImportFunc(module, name, vt, []api.ValueType{api.ValueTypeI32})
}

// ImportFunc declares a function import with an explicit signature. Call
// only pushes i32 arguments, so imports of other shapes are for
// declaration-level tests.
func (m *Module) ImportFunc(module, name string, params, results []api.ValueType) uint32 {
	m.imports = append(m.imports, funcImport{module: module, name: name, params: params, results: results})
	return uint32(len(m.imports) - 1)
}

// Data places bytes at offset in the guest memory.
func (m *Module) Data(offset uint32, b []byte) *Module {
	m.data = append(m.data, segment{offset: offset, data: append([]byte(nil), b...)})
	return m
}

// Call emits a call to fn and stores its result to the next status slot.
// It returns the slot address.
func (m *Module) Call(fn uint32, args ...Arg) uint32 {
	slot := StatusBase + 4*m.calls
	m.calls++

	m.code.Byte(opI32Const)
	m.code.WriteS32(int32(slot))
	m.pushArgs(args)
	m.code.Byte(opCall)
	m.code.WriteU32(fn)
	m.code.Byte(opI32Store)
	m.code.WriteU32(2)
	m.code.WriteU32(0)
	return slot
}

// CallDrop emits a call to fn and discards its result.
func (m *Module) CallDrop(fn uint32, args ...Arg) {
	m.pushArgs(args)
	m.code.Byte(opCall)
	m.code.WriteU32(fn)
	m.code.Byte(opDrop)
}

// Unreachable emits a trapping instruction.
func (m *Module) Unreachable() {
	m.code.Byte(opUnreachable)
}

func (m *Module) pushArgs(args []Arg) {
	for _, a := range args {
		m.code.Byte(opI32Const)
		m.code.WriteS32(a.value)
		if a.load {
			m.code.Byte(opI32Load)
			m.code.WriteU32(2)
			m.code.WriteU32(0)
		}
	}
}

// Encode returns the binary module.
func (m *Module) Encode() []byte {
	var w writer
	w.WriteU32LE(magic)
	w.WriteU32LE(version)

	// Types: one per distinct import signature, then () -> () for the entry.
	types := make(map[string]uint32)
	var order []funcImport
	for _, imp := range m.imports {
		if _, ok := types[imp.typeKey()]; !ok {
			types[imp.typeKey()] = uint32(len(order))
			order = append(order, imp)
		}
	}
	entryType := uint32(len(order))

	var sec writer
	sec.WriteU32(uint32(len(order) + 1))
	for _, sig := range order {
		sec.Byte(funcType)
		sec.WriteU32(uint32(len(sig.params)))
		sec.WriteBytes(sig.params)
		sec.WriteU32(uint32(len(sig.results)))
		sec.WriteBytes(sig.results)
	}
	sec.Byte(funcType)
	sec.WriteU32(0)
	sec.WriteU32(0)
	w.section(sectionType, &sec)

	if len(m.imports) > 0 {
		var sec writer
		sec.WriteU32(uint32(len(m.imports)))
		for _, imp := range m.imports {
			sec.WriteName(imp.module)
			sec.WriteName(imp.name)
			sec.Byte(0x00)
			sec.WriteU32(types[imp.typeKey()])
		}
		w.section(sectionImport, &sec)
	}

	var fn writer
	fn.WriteU32(1)
	fn.WriteU32(entryType)
	w.section(sectionFunction, &fn)

	var mem writer
	mem.WriteU32(1)
	mem.Byte(0x00)
	mem.WriteU32(m.pages)
	w.section(sectionMemory, &mem)

	var exp writer
	exp.WriteU32(2)
	exp.WriteName("memory")
	exp.Byte(0x02)
	exp.WriteU32(0)
	exp.WriteName(m.entry)
	exp.Byte(0x00)
	exp.WriteU32(uint32(len(m.imports)))
	w.section(sectionExport, &exp)

	var body writer
	body.WriteU32(0) // no locals
	body.WriteBytes(m.code.Bytes())
	body.Byte(opEnd)
	var code writer
	code.WriteU32(1)
	code.WriteU32(uint32(len(body.Bytes())))
	code.WriteBytes(body.Bytes())
	w.section(sectionCode, &code)

	if len(m.data) > 0 {
		var sec writer
		sec.WriteU32(uint32(len(m.data)))
		for _, seg := range m.data {
			sec.Byte(0x00)
			sec.Byte(opI32Const)
			sec.WriteS32(int32(seg.offset))
			sec.Byte(opEnd)
			sec.WriteU32(uint32(len(seg.data)))
			sec.WriteBytes(seg.data)
		}
		w.section(sectionData, &sec)
	}

	return w.Bytes()
}

// Status decodes status slot i from a memory snapshot.
func Status(mem []byte, slot uint32) int32 {
	return int32(binary.LittleEndian.Uint32(mem[slot : slot+4]))
}

// Package wasmbuild assembles small core wasm modules for tests.
//
// It covers function imports, one memory, mutable i32 globals, exported
// functions and active data segments; enough to stand in for a guest
// that speaks the abi calling convention.
package wasmbuild

type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
)

const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secCode     = 10
	secData     = 11

	kindFunc   = 0x00
	kindMemory = 0x02
)

type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a function import.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Func is a defined function, exported under Export when it is set.
type Func struct {
	Export string
	Type   FuncType
	Locals []ValType
	Body   *Code
}

// Segment is an active data segment at a constant offset.
type Segment struct {
	Offset uint32
	Bytes  []byte
}

type Module struct {
	Imports []Import
	Funcs   []Func
	// MemoryPages is the minimum size of the single memory, exported as "memory".
	MemoryPages uint32
	// Globals are mutable i32 globals with the given initial values.
	Globals []int32
	Data    []Segment
}

// Encode returns the binary module. Function indices count imports first.
func (m *Module) Encode() []byte {
	out := &buffer{}
	out.write([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})

	types := &buffer{}
	types.u32(uint32(len(m.Imports) + len(m.Funcs)))
	for _, imp := range m.Imports {
		writeType(types, imp.Type)
	}
	for _, f := range m.Funcs {
		writeType(types, f.Type)
	}
	out.section(secType, types)

	if len(m.Imports) > 0 {
		sec := &buffer{}
		sec.u32(uint32(len(m.Imports)))
		for i, imp := range m.Imports {
			sec.name(imp.Module)
			sec.name(imp.Name)
			sec.put(kindFunc)
			sec.u32(uint32(i))
		}
		out.section(secImport, sec)
	}

	funcs := &buffer{}
	funcs.u32(uint32(len(m.Funcs)))
	for i := range m.Funcs {
		funcs.u32(uint32(len(m.Imports) + i))
	}
	out.section(secFunction, funcs)

	mem := &buffer{}
	mem.u32(1)
	mem.put(0x00)
	mem.u32(max(m.MemoryPages, 1))
	out.section(secMemory, mem)

	if len(m.Globals) > 0 {
		sec := &buffer{}
		sec.u32(uint32(len(m.Globals)))
		for _, g := range m.Globals {
			sec.put(byte(I32))
			sec.put(0x01)
			sec.put(opI32Const)
			sec.s64(int64(g))
			sec.put(opEnd)
		}
		out.section(secGlobal, sec)
	}

	exports := &buffer{}
	n := 1
	for _, f := range m.Funcs {
		if f.Export != "" {
			n++
		}
	}
	exports.u32(uint32(n))
	exports.name("memory")
	exports.put(kindMemory)
	exports.u32(0)
	for i, f := range m.Funcs {
		if f.Export == "" {
			continue
		}
		exports.name(f.Export)
		exports.put(kindFunc)
		exports.u32(uint32(len(m.Imports) + i))
	}
	out.section(secExport, exports)

	code := &buffer{}
	code.u32(uint32(len(m.Funcs)))
	for _, f := range m.Funcs {
		body := &buffer{}
		body.u32(uint32(len(f.Locals)))
		for _, l := range f.Locals {
			body.u32(1)
			body.put(byte(l))
		}
		if f.Body != nil {
			body.write(f.Body.buf.bytes)
		}
		body.put(opEnd)
		code.u32(uint32(len(body.bytes)))
		code.write(body.bytes)
	}
	out.section(secCode, code)

	if len(m.Data) > 0 {
		sec := &buffer{}
		sec.u32(uint32(len(m.Data)))
		for _, d := range m.Data {
			sec.u32(0)
			sec.put(opI32Const)
			sec.s64(int64(int32(d.Offset)))
			sec.put(opEnd)
			sec.u32(uint32(len(d.Bytes)))
			sec.write(d.Bytes)
		}
		out.section(secData, sec)
	}

	return out.bytes
}

func writeType(b *buffer, t FuncType) {
	b.put(0x60)
	b.u32(uint32(len(t.Params)))
	for _, p := range t.Params {
		b.put(byte(p))
	}
	b.u32(uint32(len(t.Results)))
	for _, r := range t.Results {
		b.put(byte(r))
	}
}

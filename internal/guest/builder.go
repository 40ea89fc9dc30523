package guest

import (
	"fmt"
	"slices"

	"github.com/reglet-dev/guessgame/domain/ports"
)

// Section ids in the order the binary format requires them.
const (
	sectionType     = 0x01
	sectionImport   = 0x02
	sectionFunction = 0x03
	sectionGlobal   = 0x06
	sectionExport   = 0x07
	sectionCode     = 0x0a

	kindFunc = 0x00
	funcForm = 0x60
)

var magic = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

type funcType struct {
	params  []ports.ValueType
	results []ports.ValueType
}

type importEntry struct {
	module  string
	name    string
	typeIdx uint32
}

type funcEntry struct {
	locals  []ports.ValueType
	body    []byte
	typeIdx uint32
}

type globalEntry struct {
	init    int32
	mutable bool
}

type exportEntry struct {
	name    string
	funcIdx uint32
}

// Builder assembles a module from imported functions, i32 globals,
// defined functions and function exports.
//
// Imported functions share the function index space with defined functions
// and come first, so every ImportFunc call must precede the first Func call.
type Builder struct {
	types   []funcType
	imports []importEntry
	funcs   []funcEntry
	globals []globalEntry
	exports []exportEntry
}

// NewBuilder returns an empty module builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) typeIndex(params, results []ports.ValueType) uint32 {
	for i, t := range b.types {
		if slices.Equal(t.params, params) && slices.Equal(t.results, results) {
			return uint32(i) //nolint:gosec // G115: type count is small
		}
	}
	b.types = append(b.types, funcType{params: params, results: results})
	return uint32(len(b.types) - 1) //nolint:gosec // G115: type count is small
}

// ImportFunc declares an imported function and returns its function index.
func (b *Builder) ImportFunc(module, name string, params, results []ports.ValueType) uint32 {
	if len(b.funcs) > 0 {
		panic(fmt.Sprintf("guest: import %s.%s declared after a defined function", module, name))
	}
	b.imports = append(b.imports, importEntry{
		module:  module,
		name:    name,
		typeIdx: b.typeIndex(params, results),
	})
	return uint32(len(b.imports) - 1) //nolint:gosec // G115: import count is small
}

// GlobalI32 declares an i32 global and returns its index.
func (b *Builder) GlobalI32(mutable bool, init int32) uint32 {
	b.globals = append(b.globals, globalEntry{mutable: mutable, init: init})
	return uint32(len(b.globals) - 1) //nolint:gosec // G115: global count is small
}

// Func defines a function and returns its function index.
// Parameters occupy the first local indices, followed by locals.
func (b *Builder) Func(params, results, locals []ports.ValueType, code *Code) uint32 {
	b.funcs = append(b.funcs, funcEntry{
		typeIdx: b.typeIndex(params, results),
		locals:  locals,
		body:    code.w.bytes(),
	})
	return uint32(len(b.imports) + len(b.funcs) - 1) //nolint:gosec // G115: function count is small
}

// Export exports the function at funcIdx under name.
func (b *Builder) Export(name string, funcIdx uint32) {
	b.exports = append(b.exports, exportEntry{name: name, funcIdx: funcIdx})
}

// Bytes encodes the module.
func (b *Builder) Bytes() []byte {
	var out writer
	out.write(magic)

	if len(b.types) > 0 {
		var s writer
		s.u32(uint32(len(b.types))) //nolint:gosec // G115
		for _, t := range b.types {
			s.byte(funcForm)
			writeTypes(&s, t.params)
			writeTypes(&s, t.results)
		}
		out.section(sectionType, s.bytes())
	}

	if len(b.imports) > 0 {
		var s writer
		s.u32(uint32(len(b.imports))) //nolint:gosec // G115
		for _, imp := range b.imports {
			s.name(imp.module)
			s.name(imp.name)
			s.byte(kindFunc)
			s.u32(imp.typeIdx)
		}
		out.section(sectionImport, s.bytes())
	}

	if len(b.funcs) > 0 {
		var s writer
		s.u32(uint32(len(b.funcs))) //nolint:gosec // G115
		for _, f := range b.funcs {
			s.u32(f.typeIdx)
		}
		out.section(sectionFunction, s.bytes())
	}

	if len(b.globals) > 0 {
		var s writer
		s.u32(uint32(len(b.globals))) //nolint:gosec // G115
		for _, g := range b.globals {
			s.byte(byte(ports.ValueTypeI32))
			if g.mutable {
				s.byte(0x01)
			} else {
				s.byte(0x00)
			}
			s.byte(opI32Const)
			s.s32(g.init)
			s.byte(opEnd)
		}
		out.section(sectionGlobal, s.bytes())
	}

	if len(b.exports) > 0 {
		var s writer
		s.u32(uint32(len(b.exports))) //nolint:gosec // G115
		for _, e := range b.exports {
			s.name(e.name)
			s.byte(kindFunc)
			s.u32(e.funcIdx)
		}
		out.section(sectionExport, s.bytes())
	}

	if len(b.funcs) > 0 {
		var s writer
		s.u32(uint32(len(b.funcs))) //nolint:gosec // G115
		for _, f := range b.funcs {
			var body writer
			writeLocals(&body, f.locals)
			body.write(f.body)
			body.byte(opEnd)

			s.u32(uint32(len(body.bytes()))) //nolint:gosec // G115
			s.write(body.bytes())
		}
		out.section(sectionCode, s.bytes())
	}

	return out.bytes()
}

func writeTypes(w *writer, types []ports.ValueType) {
	w.u32(uint32(len(types))) //nolint:gosec // G115
	for _, t := range types {
		w.byte(byte(t))
	}
}

// writeLocals run-length encodes consecutive locals of the same type.
func writeLocals(w *writer, locals []ports.ValueType) {
	type run struct {
		count uint32
		typ   ports.ValueType
	}
	var runs []run
	for _, l := range locals {
		if n := len(runs); n > 0 && runs[n-1].typ == l {
			runs[n-1].count++
			continue
		}
		runs = append(runs, run{count: 1, typ: l})
	}

	w.u32(uint32(len(runs))) //nolint:gosec // G115
	for _, r := range runs {
		w.u32(r.count)
		w.byte(byte(r.typ))
	}
}

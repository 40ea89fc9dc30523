package guest

// Opcodes used by the built-in players.
const (
	opUnreachable = 0x00
	opLoop        = 0x03
	opIf          = 0x04
	opEnd         = 0x0b
	opBr          = 0x0c
	opCall        = 0x10
	opDrop        = 0x1a
	opLocalGet    = 0x20
	opLocalSet    = 0x21
	opGlobalGet   = 0x23
	opGlobalSet   = 0x24
	opI32Const    = 0x41
	opI32Eq       = 0x46
	opI32LtS      = 0x48
	opI32GtS      = 0x4a
	opI32Add      = 0x6a
	opI32Sub      = 0x6b
	opI32ShrU     = 0x76

	blockTypeEmpty = 0x40
)

// Code accumulates the instruction sequence of a function body.
// The terminating end opcode is added by the Builder.
type Code struct {
	w writer
}

// NewCode returns an empty instruction sequence.
func NewCode() *Code {
	return &Code{}
}

func (c *Code) op(b byte) *Code {
	c.w.byte(b)
	return c
}

func (c *Code) opU32(b byte, idx uint32) *Code {
	c.w.byte(b)
	c.w.u32(idx)
	return c
}

// Unreachable traps unconditionally.
func (c *Code) Unreachable() *Code { return c.op(opUnreachable) }

// Loop opens a loop block with no result.
func (c *Code) Loop() *Code { return c.op(opLoop).op(blockTypeEmpty) }

// If opens a conditional block with no result.
func (c *Code) If() *Code { return c.op(opIf).op(blockTypeEmpty) }

// End closes the innermost block.
func (c *Code) End() *Code { return c.op(opEnd) }

// Br branches to the block at the given label depth.
func (c *Code) Br(depth uint32) *Code { return c.opU32(opBr, depth) }

// Call calls the function at idx.
func (c *Code) Call(idx uint32) *Code { return c.opU32(opCall, idx) }

// Drop discards the top of the stack.
func (c *Code) Drop() *Code { return c.op(opDrop) }

// LocalGet pushes local idx.
func (c *Code) LocalGet(idx uint32) *Code { return c.opU32(opLocalGet, idx) }

// LocalSet pops into local idx.
func (c *Code) LocalSet(idx uint32) *Code { return c.opU32(opLocalSet, idx) }

// GlobalGet pushes global idx.
func (c *Code) GlobalGet(idx uint32) *Code { return c.opU32(opGlobalGet, idx) }

// GlobalSet pops into global idx.
func (c *Code) GlobalSet(idx uint32) *Code { return c.opU32(opGlobalSet, idx) }

// I32Const pushes v.
func (c *Code) I32Const(v int32) *Code {
	c.w.byte(opI32Const)
	c.w.s32(v)
	return c
}

// I32Eq compares the two top values for equality.
func (c *Code) I32Eq() *Code { return c.op(opI32Eq) }

// I32LtS is a signed less-than comparison.
func (c *Code) I32LtS() *Code { return c.op(opI32LtS) }

// I32GtS is a signed greater-than comparison.
func (c *Code) I32GtS() *Code { return c.op(opI32GtS) }

// I32Add adds the two top values, wrapping.
func (c *Code) I32Add() *Code { return c.op(opI32Add) }

// I32Sub subtracts the top value from the one below it, wrapping.
func (c *Code) I32Sub() *Code { return c.op(opI32Sub) }

// I32ShrU is a logical right shift.
func (c *Code) I32ShrU() *Code { return c.op(opI32ShrU) }

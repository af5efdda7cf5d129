package wasmbuild

const (
	opUnreachable = 0x00
	opIf          = 0x04
	opElse        = 0x05
	opEnd         = 0x0b
	opCall        = 0x10
	opDrop        = 0x1a
	opLocalGet    = 0x20
	opGlobalGet   = 0x23
	opGlobalSet   = 0x24
	opI32Const    = 0x41
	opI64Const    = 0x42
	opI32Eqz      = 0x45
	opI32Add      = 0x6a
)

// Code is a function body under construction. The closing end is added
// by Encode.
type Code struct {
	buf buffer
}

func NewCode() *Code { return &Code{} }

func (c *Code) op(b byte) *Code {
	c.buf.put(b)
	return c
}

func (c *Code) Unreachable() *Code { return c.op(opUnreachable) }
func (c *Code) Drop() *Code        { return c.op(opDrop) }
func (c *Code) I32Add() *Code      { return c.op(opI32Add) }
func (c *Code) I32Eqz() *Code      { return c.op(opI32Eqz) }
func (c *Code) Else() *Code        { return c.op(opElse) }
func (c *Code) End() *Code         { return c.op(opEnd) }

// If opens a block producing one value of type result.
func (c *Code) If(result ValType) *Code {
	c.buf.put(opIf)
	c.buf.put(byte(result))
	return c
}

func (c *Code) Call(fn uint32) *Code {
	c.buf.put(opCall)
	c.buf.u32(fn)
	return c
}

func (c *Code) LocalGet(i uint32) *Code {
	c.buf.put(opLocalGet)
	c.buf.u32(i)
	return c
}

func (c *Code) GlobalGet(i uint32) *Code {
	c.buf.put(opGlobalGet)
	c.buf.u32(i)
	return c
}

func (c *Code) GlobalSet(i uint32) *Code {
	c.buf.put(opGlobalSet)
	c.buf.u32(i)
	return c
}

func (c *Code) I32Const(v int32) *Code {
	c.buf.put(opI32Const)
	c.buf.s64(int64(v))
	return c
}

func (c *Code) I64Const(v int64) *Code {
	c.buf.put(opI64Const)
	c.buf.s64(v)
	return c
}

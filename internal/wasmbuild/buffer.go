package wasmbuild

type buffer struct {
	bytes []byte
}

func (b *buffer) put(v byte) {
	b.bytes = append(b.bytes, v)
}

func (b *buffer) write(v []byte) {
	b.bytes = append(b.bytes, v...)
}

// u32 writes unsigned LEB128.
func (b *buffer) u32(v uint32) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b.put(c)
		if v == 0 {
			return
		}
	}
}

// s64 writes signed LEB128; i32 immediates use it too.
func (b *buffer) s64(v int64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			b.put(c)
			return
		}
		b.put(c | 0x80)
	}
}

func (b *buffer) name(s string) {
	b.u32(uint32(len(s)))
	b.write([]byte(s))
}

func (b *buffer) section(id byte, content *buffer) {
	b.put(id)
	b.u32(uint32(len(content.bytes)))
	b.write(content.bytes)
}

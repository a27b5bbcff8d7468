package bytecode

// AppendUleb128 appends the ULEB128 encoding of v to buf and returns the
// extended buffer. All counts and length prefixes in the dump format use
// this encoding.
func AppendUleb128(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
		} else {
			return append(buf, b)
		}
	}
}

// ReadUleb128 decodes a ULEB128 value from the front of buf. It returns the
// value and the number of bytes consumed, or n == 0 if buf is truncated.
func ReadUleb128(buf []byte) (v uint64, n int) {
	var shift uint
	for i, b := range buf {
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, 0
}

// Uleb128Len returns the encoded size of v in bytes.
func Uleb128Len(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

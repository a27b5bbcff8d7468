package bytecode

import "math"

// GC constant type tags. For strings the tag is fused with the content
// length: the written uleb128 is len + KGCStr.
const (
	KGCChild   = 0
	KGCTab     = 1
	KGCI64     = 2
	KGCU64     = 3
	KGCComplex = 4
	KGCStr     = 5
)

// Table item type tags. As with GC strings, a string item's tag doubles as
// its length: the written uleb128 is len + KTabStr.
const (
	KTabNil   = 0
	KTabFalse = 1
	KTabTrue  = 2
	KTabInt   = 3
	KTabNum   = 4
	KTabStr   = 5
)

// GCConstant is a constant living in a prototype's GC ("complex") pool:
// a string, a table, a 64-bit integer, or a child-prototype marker.
type GCConstant interface {
	appendTo(buf []byte) []byte
}

// KStr is a string constant. The tag and length are fused into a single
// uleb128, followed by the raw bytes.
type KStr string

func (k KStr) appendTo(buf []byte) []byte {
	buf = AppendUleb128(buf, uint64(len(k))+KGCStr)
	return append(buf, k...)
}

// KChild marks a nested function prototype. The loader binds the marker to
// the most recently loaded unclaimed child prototype.
type KChild struct{}

func (KChild) appendTo(buf []byte) []byte {
	return append(buf, KGCChild)
}

// KI64 is a boxed 64-bit signed integer constant, encoded as the lo/hi
// uleb128 split of its bit pattern.
type KI64 int64

func (k KI64) appendTo(buf []byte) []byte {
	buf = append(buf, KGCI64)
	buf = AppendUleb128(buf, uint64(k)&0xFFFFFFFF)
	return AppendUleb128(buf, uint64(k)>>32)
}

// KU64 is a boxed 64-bit unsigned integer constant.
type KU64 uint64

func (k KU64) appendTo(buf []byte) []byte {
	buf = append(buf, KGCU64)
	buf = AppendUleb128(buf, uint64(k)&0xFFFFFFFF)
	return AppendUleb128(buf, uint64(k)>>32)
}

// KTable is a table constant: an array part and an ordered hash part.
// The hash part is a slice, not a map, so encoding is deterministic.
type KTable struct {
	Array []TableItem
	Hash  []TableEntry
}

// TableEntry is one key/value pair in a table constant's hash part.
type TableEntry struct {
	Key   TableItem
	Value TableItem
}

func (k *KTable) appendTo(buf []byte) []byte {
	buf = append(buf, KGCTab)
	buf = AppendUleb128(buf, uint64(len(k.Array)))
	buf = AppendUleb128(buf, uint64(len(k.Hash)))
	for _, item := range k.Array {
		buf = item.appendItem(buf)
	}
	for _, entry := range k.Hash {
		buf = entry.Key.appendItem(buf)
		buf = entry.Value.appendItem(buf)
	}
	return buf
}

// TableItem is one value inside a table constant. Unlike function-level
// numeric constants, table-embedded numbers always carry an explicit tag.
type TableItem interface {
	appendItem(buf []byte) []byte
}

// TNil, TFalse and TTrue are the primitive table items.
type TNil struct{}
type TFalse struct{}
type TTrue struct{}

func (TNil) appendItem(buf []byte) []byte   { return append(buf, KTabNil) }
func (TFalse) appendItem(buf []byte) []byte { return append(buf, KTabFalse) }
func (TTrue) appendItem(buf []byte) []byte  { return append(buf, KTabTrue) }

// TInt is an integer table item.
type TInt int32

func (t TInt) appendItem(buf []byte) []byte {
	buf = append(buf, KTabInt)
	return AppendUleb128(buf, uint64(uint32(t)))
}

// TNum is a floating-point table item, encoded as the plain lo/hi uleb128
// split of its IEEE-754 bit pattern (no low-bit trick; the tag already says
// it is a number).
type TNum float64

func (t TNum) appendItem(buf []byte) []byte {
	bits := math.Float64bits(float64(t))
	buf = append(buf, KTabNum)
	buf = AppendUleb128(buf, bits&0xFFFFFFFF)
	return AppendUleb128(buf, bits>>32)
}

// TStr is a string table item; tag and length fused like GC strings.
type TStr string

func (t TStr) appendItem(buf []byte) []byte {
	buf = AppendUleb128(buf, uint64(len(t))+KTabStr)
	return append(buf, t...)
}

// NumericConstant is a constant in a prototype's numeric pool. The low bit
// of the first uleb128 distinguishes the two variants: clear for an integer
// (value << 1), set for a float (lo 32 bits << 1 | 1, then the hi 32 bits).
type NumericConstant interface {
	appendNum(buf []byte) []byte
}

// KInt is an integer numeric constant.
type KInt int32

func (k KInt) appendNum(buf []byte) []byte {
	return AppendUleb128(buf, uint64(uint32(k))<<1)
}

// KNum is a floating-point numeric constant.
type KNum float64

func (k KNum) appendNum(buf []byte) []byte {
	bits := math.Float64bits(float64(k))
	buf = AppendUleb128(buf, (bits&0xFFFFFFFF)<<1|1)
	return AppendUleb128(buf, bits>>32)
}

package bytecode

import (
	"fmt"
	"io"
)

// WriteHexDump formats an encoded dump as classic 16-bytes-per-line hex,
// for the CLI's bytecode inspection flag.
func WriteHexDump(w io.Writer, buf []byte) {
	for off := 0; off < len(buf); off += 16 {
		end := off + 16
		if end > len(buf) {
			end = len(buf)
		}
		fmt.Fprintf(w, "%08X ", off)
		for i := off; i < end; i++ {
			fmt.Fprintf(w, " %02X", buf[i])
		}
		fmt.Fprintln(w)
	}
}

// Disassemble emits a readable assembly-style listing of a prototype's
// instruction words. Operands are shown raw; the opcode determines whether
// the word is read as A/B/C or A/D.
func Disassemble(w io.Writer, proto *Prototype) {
	fmt.Fprintf(w, "proto (args=%d, frame=%d, upvalues=%d, gck=%d, numk=%d)\n",
		proto.ArgCount, proto.FrameSize, len(proto.Upvalues),
		len(proto.GCConstants), len(proto.Numeric))
	for i, ins := range proto.Instructions {
		fmt.Fprintf(w, "%04d  %-6s A=%-3d B=%-3d C=%-3d D=%d\n",
			i, ins.Op(), ins.A(), ins.B(), ins.C(), ins.D())
	}
}
